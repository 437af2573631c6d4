package highlight

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"karolbroda.com/lyricsync/internal/logging"
	"karolbroda.com/lyricsync/internal/lyrics"
	"karolbroda.com/lyricsync/internal/playback"
)

// songEndGraceMs is how far past the reported duration the loop keeps going
// before it assumes the song finished.
const songEndGraceMs = 1000

// Source supplies the latest snapshot of the position source the scheduler
// was bound to. ok is false once that source has been replaced or removed.
type Source interface {
	Snapshot() (snap playback.Snapshot, ok bool)
}

// Emitter receives highlight changes.
type Emitter interface {
	HighlightChanged(index int, scroll bool)
}

// Viewport is optionally implemented by an Emitter that knows which lines
// are on screen. ok is false while nothing has been laid out.
type Viewport interface {
	VisibleRange() (first, last int, ok bool)
}

// Job describes one highlighting run. Viewport may be nil, in which case
// the Emitter is asked whether it implements Viewport itself.
type Job struct {
	Lines    []lyrics.TimedLine
	Source   Source
	Emitter  Emitter
	Viewport Viewport
	Duration func() int64
	Log      logrus.FieldLogger
}

func (j Job) runnable() bool {
	return len(j.Lines) > 0 && j.Source != nil && j.Emitter != nil
}

type Scheduler struct {
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Scheduler)

// WithClock replaces the time source used for position extrapolation.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

func New(interval time.Duration, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	s := &Scheduler{
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start cancels any running loop and launches a new one for job. It returns
// false without doing anything else when the job has no timeline, source or
// emitter.
func (s *Scheduler) Start(ctx context.Context, job Job) bool {
	if !job.runnable() {
		return false
	}
	if job.Log == nil {
		job.Log = logging.Discard()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.loop(runCtx, job, done)
	return true
}

// Cancel stops the running loop and waits for it to exit. Nothing is emitted
// once Cancel has returned.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (s *Scheduler) loop(ctx context.Context, job Job, done chan struct{}) {
	defer close(done)

	log := job.Log
	log.WithField("lines", len(job.Lines)).Debug("highlighting started")
	defer log.Debug("highlighting ended")

	timer := time.NewTimer(0)
	defer timer.Stop()

	last := -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		snap, ok := job.Source.Snapshot()
		if !ok {
			log.Debug("position source detached, stopping highlight")
			return
		}

		if !snap.IsPlaying() {
			if last != -1 {
				last = -1
				if !s.emit(ctx, job, -1, false) {
					return
				}
			}
			timer.Reset(2 * s.interval)
			continue
		}

		position := snap.PositionAt(s.now())
		index := lyrics.ActiveIndex(job.Lines, position)

		if index != last {
			last = index
			if !s.emit(ctx, job, index, scrollHint(job, index)) {
				return
			}
		}

		if duration := jobDuration(job); duration > 0 && position > duration+songEndGraceMs {
			log.WithField("duration_ms", duration).Debug("song end reached")
			s.emit(ctx, job, -1, false)
			return
		}

		timer.Reset(s.interval)
	}
}

// emit delivers one change unless the loop was cancelled in the meantime.
func (s *Scheduler) emit(ctx context.Context, job Job, index int, scroll bool) bool {
	if ctx.Err() != nil {
		return false
	}
	job.Emitter.HighlightChanged(index, scroll)
	return true
}

func jobDuration(job Job) int64 {
	if job.Duration == nil {
		return 0
	}
	return job.Duration()
}

// scrollHint decides whether the newly active line should be brought into
// view. Without viewport information every real line asks for a scroll.
func scrollHint(job Job, index int) bool {
	if index < 0 {
		return false
	}
	vp := job.Viewport
	if vp == nil {
		var ok bool
		if vp, ok = job.Emitter.(Viewport); !ok {
			return true
		}
	}
	first, last, ok := vp.VisibleRange()
	if !ok {
		return false
	}
	return NeedsScroll(index, first, last)
}

// NeedsScroll reports whether index sits outside the comfortably visible
// part of the range [first, last].
func NeedsScroll(index, first, last int) bool {
	visible := last - first + 1
	margin := visible / 3
	if margin < 1 {
		margin = 1
	}
	return index < first || index >= last-margin || visible < 4
}
