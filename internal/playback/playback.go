package playback

import (
	"strings"
	"time"
)

type State int

const (
	StateOther State = iota
	StatePlaying
	StatePaused
	StateStopped
	StateBuffering
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateBuffering:
		return "buffering"
	default:
		return "other"
	}
}

// ParseState maps an MPRIS PlaybackStatus (or any similar label) to a State.
func ParseState(raw string) State {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "playing":
		return StatePlaying
	case "paused":
		return StatePaused
	case "stopped":
		return StateStopped
	case "buffering":
		return StateBuffering
	default:
		return StateOther
	}
}

// Snapshot is one immutable reading of the player. It is superseded by the
// next one and never patched.
type Snapshot struct {
	State             State
	PositionMs        int64
	Speed             float64
	LastUpdateEpochMs int64
}

func (s Snapshot) IsPlaying() bool {
	return s.State == StatePlaying
}

// PositionAt extrapolates the playback position to now. Readings without an
// update timestamp are taken at face value.
func (s Snapshot) PositionAt(now time.Time) int64 {
	if s.LastUpdateEpochMs <= 0 {
		return s.PositionMs
	}
	speed := s.Speed
	if speed <= 0 {
		speed = 1.0
	}
	elapsed := now.UnixMilli() - s.LastUpdateEpochMs
	return s.PositionMs + int64(float64(elapsed)*speed)
}

// Event is what a media source pushes for every metadata or state change.
type Event struct {
	SourceID   string
	Title      string
	Artist     string
	Album      string
	ArtworkURL string
	DurationMs int64
	Snapshot   Snapshot
	// Gone marks the source itself going away (player quit, session
	// destroyed). The rest of the event is ignored.
	Gone bool
}

func (e Event) HasTitle() bool {
	return strings.TrimSpace(e.Title) != ""
}
