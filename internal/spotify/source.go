package spotify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"karolbroda.com/lyricsync/internal/logging"
	"karolbroda.com/lyricsync/internal/playback"
)

// SourceID identifies Spotify events to the tracker.
const SourceID = "spotify"

// Poller reads the currently playing track on a fixed interval and turns
// each reading into a playback event.
type Poller struct {
	client   *Client
	interval time.Duration
	log      logrus.FieldLogger
	now      func() time.Time
	events   chan playback.Event
}

func NewPoller(client *Client, interval time.Duration, log logrus.FieldLogger) *Poller {
	if log == nil {
		log = logging.Discard()
	}
	return &Poller{
		client:   client,
		interval: interval,
		log:      log.WithField("source", SourceID),
		now:      time.Now,
		events:   make(chan playback.Event, 16),
	}
}

// Events is closed when Run returns.
func (p *Poller) Events() <-chan playback.Event {
	return p.events
}

func (p *Poller) Run(ctx context.Context) {
	defer close(p.events)

	p.log.Info("poller started")
	defer p.log.Info("poller stopped")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.update(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.update(ctx)
		}
	}
}

func (p *Poller) update(ctx context.Context) {
	current, err := p.client.CurrentlyPlaying(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.WithError(err).Warn("failed to get currently playing track")
		}
		return
	}

	select {
	case p.events <- toEvent(current, p.now()):
	default:
	}
}

// toEvent maps a reading to an event. The progress is stamped with the
// local read time: the API timestamp marks the last state change, not the
// moment progress_ms was sampled.
func toEvent(cp *CurrentlyPlaying, readAt time.Time) playback.Event {
	ev := playback.Event{SourceID: SourceID}
	if cp == nil || cp.Item == nil {
		ev.Snapshot = playback.Snapshot{State: playback.StateStopped, Speed: 1, LastUpdateEpochMs: readAt.UnixMilli()}
		return ev
	}

	state := playback.StatePaused
	if cp.IsPlaying {
		state = playback.StatePlaying
	}

	ev.Title = cp.Item.Name
	ev.Artist = cp.Item.artist()
	ev.Album = cp.Item.Album.Name
	ev.ArtworkURL = cp.Item.artworkURL()
	ev.DurationMs = cp.Item.DurationMs
	ev.Snapshot = playback.Snapshot{
		State:             state,
		PositionMs:        cp.ProgressMs,
		Speed:             1,
		LastUpdateEpochMs: readAt.UnixMilli(),
	}
	return ev
}
