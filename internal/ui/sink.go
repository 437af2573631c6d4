package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/lyricsync/internal/lyrics"
)

type ContentMsg struct {
	Content *lyrics.Content
}

type HighlightMsg struct {
	Index  int
	Scroll bool
}

type StatusMsg struct {
	Text string
}

type ArtworkURLMsg struct {
	URL string
}

// Sink forwards engine output into the bubbletea program and reports which
// lines the view currently shows. It is safe for concurrent use.
type Sink struct {
	msgs     chan tea.Msg
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	first   int
	last    int
	visible bool
}

func NewSink() *Sink {
	return &Sink{
		msgs: make(chan tea.Msg, 256),
		done: make(chan struct{}),
	}
}

func (s *Sink) ContentChanged(content *lyrics.Content) {
	s.send(ContentMsg{Content: content})
}

func (s *Sink) HighlightChanged(index int, scroll bool) {
	s.send(HighlightMsg{Index: index, Scroll: scroll})
}

func (s *Sink) StatusMessage(text string) {
	s.send(StatusMsg{Text: text})
}

// ArtworkChanged tells the view to load new cover art.
func (s *Sink) ArtworkChanged(url string) {
	s.send(ArtworkURLMsg{URL: url})
}

// Close unblocks senders once the program has exited.
func (s *Sink) Close() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

func (s *Sink) send(msg tea.Msg) {
	select {
	case s.msgs <- msg:
	case <-s.done:
	}
}

// VisibleRange satisfies highlight.Viewport.
func (s *Sink) VisibleRange() (int, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.first, s.last, s.visible
}

func (s *Sink) setVisible(first, last int, ok bool) {
	s.mu.Lock()
	s.first, s.last, s.visible = first, last, ok
	s.mu.Unlock()
}

// listen waits for the next engine message.
func (s *Sink) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-s.msgs:
			return msg
		case <-s.done:
			return nil
		}
	}
}
