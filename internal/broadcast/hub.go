package broadcast

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"karolbroda.com/lyricsync/internal/logging"
	"karolbroda.com/lyricsync/internal/lyrics"
)

// Hub keeps the set of connected overlay clients and fans engine output out
// to them. It implements engine.Sink.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	log        logrus.FieldLogger

	mu          sync.RWMutex
	lastLyrics  *lyrics.Content
	lastContent []byte
	lastIndex   []byte
}

func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logging.Discard()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run is the hub's event loop. It must run in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.log.Debug("hub started")
	defer h.log.Debug("hub stopped")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			for _, frame := range h.replay() {
				client.trySend(frame)
			}
			h.log.WithField("remote_addr", client.remoteAddr()).Debug("client registered")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.WithField("remote_addr", client.remoteAddr()).Debug("client unregistered")
			}
		case frame := <-h.broadcast:
			for client := range h.clients {
				if !client.trySend(frame) {
					delete(h.clients, client)
					close(client.send)
					h.log.WithField("remote_addr", client.remoteAddr()).Warn("dropping slow client")
				}
			}
		}
	}
}

// join registers a client. It reports false once the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// replay is what a newly registered client receives first.
func (h *Hub) replay() [][]byte {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var frames [][]byte
	if h.lastContent != nil {
		frames = append(frames, h.lastContent)
	}
	if h.lastIndex != nil {
		frames = append(frames, h.lastIndex)
	}
	return frames
}

func (h *Hub) ContentChanged(content *lyrics.Content) {
	frame := h.encode(contentMessage(content))
	if frame == nil {
		return
	}
	h.mu.Lock()
	if !h.lastLyrics.SameLyrics(content) {
		h.lastIndex = nil
	}
	h.lastLyrics = content
	h.lastContent = frame
	h.mu.Unlock()
	h.publish(frame)
}

func (h *Hub) HighlightChanged(index int, scroll bool) {
	frame := h.encode(highlightMessage(index, scroll))
	if frame == nil {
		return
	}
	h.mu.Lock()
	h.lastIndex = frame
	h.mu.Unlock()
	h.publish(frame)
}

func (h *Hub) StatusMessage(text string) {
	if frame := h.encode(statusMessage(text)); frame != nil {
		h.publish(frame)
	}
}

func (h *Hub) encode(msg Message) []byte {
	frame, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).WithField("type", msg.Type).Error("failed to encode message")
		return nil
	}
	return frame
}

// publish never blocks the engine; frames are dropped when the hub lags.
func (h *Hub) publish(frame []byte) {
	select {
	case h.broadcast <- frame:
	default:
		h.log.Warn("broadcast queue full, dropping frame")
	}
}
