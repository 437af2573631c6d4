package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"karolbroda.com/lyricsync/internal/highlight"
	"karolbroda.com/lyricsync/internal/logging"
	"karolbroda.com/lyricsync/internal/lyrics"
	"karolbroda.com/lyricsync/internal/playback"
	"karolbroda.com/lyricsync/internal/track"
)

var ErrStopped = errors.New("tracker stopped")

const (
	StatusWaiting      = "Waiting for song..."
	statusLyricsPrefix = "Lyrics for: "
)

type Transition int

const (
	// Ignored is returned for a blank title while no song is active.
	Ignored Transition = iota
	NewSong
	DurationUpdate
	PositionOnly
	SuppressedBlankTitle
)

func (t Transition) String() string {
	switch t {
	case NewSong:
		return "new_song"
	case DurationUpdate:
		return "duration_update"
	case PositionOnly:
		return "position_only"
	case SuppressedBlankTitle:
		return "suppressed_blank_title"
	default:
		return "ignored"
	}
}

// Resolver produces lyrics for one song. It returns lyrics.ErrStale once
// current reports false.
type Resolver interface {
	Resolve(ctx context.Context, req lyrics.Request, current func() bool) (*lyrics.Content, error)
}

// Token ties a resolver request to the song it was issued for.
type Token struct {
	Identity track.Identity
	Session  uint64
}

// Status is a read-only copy of the tracker state for status surfaces.
type Status struct {
	Active     bool
	Identity   track.Identity
	Session    uint64
	Content    *lyrics.Content
	DurationMs int64
	SourceID   string
}

// sessionState is owned by the actor goroutine. Nothing else reads or
// writes it.
type sessionState struct {
	active       bool
	identity     track.Identity
	content      *lyrics.Content
	sourceID     string
	binding      *binding
	knownByTitle map[string]int64
}

type Tracker struct {
	resolver  Resolver
	sink      Sink
	scheduler *highlight.Scheduler
	viewport  highlight.Viewport
	log       logrus.FieldLogger

	ops     chan func()
	stopped chan struct{}
	runCtx  context.Context
	workers sync.WaitGroup

	session  atomic.Uint64
	duration atomic.Int64
	status   atomic.Pointer[Status]

	state sessionState
}

type Option func(*Tracker)

func WithLogger(log logrus.FieldLogger) Option {
	return func(t *Tracker) {
		t.log = log
	}
}

func WithScheduler(s *highlight.Scheduler) Option {
	return func(t *Tracker) {
		t.scheduler = s
	}
}

// WithViewport lets the highlight loop ask which lines are on screen when
// deciding on scroll hints.
func WithViewport(v highlight.Viewport) Option {
	return func(t *Tracker) {
		t.viewport = v
	}
}

func New(resolver Resolver, sink Sink, opts ...Option) *Tracker {
	t := &Tracker{
		resolver: resolver,
		sink:     sink,
		ops:      make(chan func(), 64),
		stopped:  make(chan struct{}),
		runCtx:   context.Background(),
		state: sessionState{
			knownByTitle: make(map[string]int64),
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logging.Discard()
	}
	if t.scheduler == nil {
		t.scheduler = highlight.New(200 * time.Millisecond)
	}
	if t.sink == nil {
		t.sink = Fanout(nil)
	}
	t.publish()
	return t
}

// Run is the actor loop. It processes queued operations in arrival order
// until ctx is cancelled, then stops the highlight loop and waits for
// in-flight lookups to give up.
func (t *Tracker) Run(ctx context.Context) {
	t.runCtx = ctx
	defer close(t.stopped)

	t.log.Debug("tracker started")
	for {
		select {
		case <-ctx.Done():
			t.scheduler.Cancel()
			t.workers.Wait()
			t.log.Debug("tracker stopped")
			return
		case op := <-t.ops:
			op()
		}
	}
}

// Submit hands an event to the actor and waits for its decision.
func (t *Tracker) Submit(ctx context.Context, ev playback.Event) (Transition, error) {
	var result Transition
	err := t.do(ctx, func() {
		result = t.HandleEvent(ev)
	})
	return result, err
}

// Detach tells the tracker a position source went away. If it was the bound
// source the current song is cleared.
func (t *Tracker) Detach(ctx context.Context, sourceID string) error {
	return t.do(ctx, func() {
		t.detach(sourceID)
	})
}

// Consume feeds a source's events into the tracker until the channel closes
// or ctx is done.
func (t *Tracker) Consume(ctx context.Context, events <-chan playback.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			var err error
			if ev.Gone {
				err = t.Detach(ctx, ev.SourceID)
			} else {
				_, err = t.Submit(ctx, ev)
			}
			if err != nil {
				return err
			}
		}
	}
}

func (t *Tracker) Current() Status {
	return *t.status.Load()
}

func (t *Tracker) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	op := func() {
		fn()
		close(done)
	}

	select {
	case t.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	case <-t.stopped:
		return ErrStopped
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.stopped:
		return ErrStopped
	}
}

// post queues an operation from a worker goroutine. It gives up when the
// tracker is shutting down.
func (t *Tracker) post(op func()) {
	select {
	case t.ops <- op:
	case <-t.runCtx.Done():
	}
}

// HandleEvent applies one media event. It must only run on the actor
// goroutine; use Submit from anywhere else.
func (t *Tracker) HandleEvent(ev playback.Event) Transition {
	t.bind(ev.SourceID).store(ev.Snapshot)

	if !ev.HasTitle() {
		if !t.state.active {
			return Ignored
		}
		t.log.Debug("blank title, clearing song")
		t.clear()
		return SuppressedBlankTitle
	}

	id := track.Identity{Title: ev.Title, Artist: ev.Artist}
	if !t.state.active || id != t.state.identity {
		t.newSong(id, ev.DurationMs)
		return NewSong
	}

	if ev.DurationMs > 0 && ev.DurationMs != t.duration.Load() {
		t.updateDuration(ev.DurationMs)
		return DurationUpdate
	}

	t.positionOnly(ev.Snapshot)
	return PositionOnly
}

// bind returns the binding for sourceID, replacing the previous one when
// the source changed. A replaced binding is detached so that a highlight
// loop following it stops.
func (t *Tracker) bind(sourceID string) *binding {
	st := &t.state
	if st.binding != nil && st.sourceID == sourceID {
		return st.binding
	}
	if st.binding != nil {
		t.log.WithFields(logrus.Fields{"from": st.sourceID, "to": sourceID}).Debug("position source changed")
		st.binding.detach()
		t.scheduler.Cancel()
	}
	st.binding = newBinding(sourceID)
	st.sourceID = sourceID
	t.publish()
	return st.binding
}

func (t *Tracker) newSong(id track.Identity, hintMs int64) {
	st := &t.state
	t.scheduler.Cancel()
	session := t.session.Add(1)

	duration := hintMs
	if known := st.knownByTitle[id.Title]; known > duration {
		duration = known
	}
	if duration < 0 {
		duration = 0
	}
	if duration > 0 {
		st.knownByTitle[id.Title] = duration
	}

	st.active = true
	st.identity = id
	st.content = lyrics.NewInfo(id.Title, id.Artist, lyrics.InfoLoading, duration)
	t.duration.Store(duration)
	t.publish()

	t.log.WithFields(logrus.Fields{
		"session": session,
		"title":   id.Title,
		"artist":  id.Artist,
	}).Info("new song")

	t.sink.HighlightChanged(-1, false)
	t.sink.ContentChanged(st.content)
	t.sink.StatusMessage(statusLyricsPrefix + id.Display())

	t.resolve(Token{Identity: id, Session: session}, duration)
}

func (t *Tracker) resolve(token Token, durationMs int64) {
	ctx := t.runCtx
	req := lyrics.Request{
		Title:          token.Identity.Title,
		Artist:         token.Identity.Artist,
		DurationHintMs: durationMs,
	}
	current := func() bool {
		return t.session.Load() == token.Session
	}
	log := t.log.WithField("session", token.Session)

	t.workers.Add(1)
	go func() {
		defer t.workers.Done()

		content, err := t.resolver.Resolve(ctx, req, current)
		if errors.Is(err, lyrics.ErrStale) {
			log.Debug("lyrics result dropped as stale")
			return
		}
		if err != nil {
			log.WithError(err).Warn("lyrics lookup failed")
			content = lyrics.NewInfo(req.Title, req.Artist, lyrics.InfoLoadFailed, durationMs)
		}

		t.post(func() {
			t.apply(token, content)
		})
	}()
}

// apply commits a resolver result if it still belongs to the current song.
func (t *Tracker) apply(token Token, content *lyrics.Content) {
	st := &t.state
	if token.Session != t.session.Load() || !st.active || token.Identity != st.identity {
		t.log.WithField("session", token.Session).Debug("lyrics result superseded")
		return
	}
	if content == nil {
		content = lyrics.NewInfo(token.Identity.Title, token.Identity.Artist, lyrics.InfoNotFound, t.duration.Load())
	}

	known := t.duration.Load()
	switch {
	case known == 0 && content.Duration() > 0:
		t.duration.Store(content.Duration())
		st.knownByTitle[st.identity.Title] = content.Duration()
	case known > 0 && content.Duration() != known:
		content = content.WithDuration(known)
	}

	st.content = content
	t.publish()
	t.sink.ContentChanged(content)
	t.startHighlight()
}

func (t *Tracker) updateDuration(durationMs int64) {
	st := &t.state
	t.duration.Store(durationMs)
	st.knownByTitle[st.identity.Title] = durationMs

	if st.content != nil {
		st.content = st.content.WithDuration(durationMs)
		t.sink.ContentChanged(st.content)
	}
	t.publish()
}

// positionOnly leaves a running loop alone: it reads the new snapshot from
// the binding, clears the highlight while playback is not running and backs
// off until it resumes.
func (t *Tracker) positionOnly(snap playback.Snapshot) {
	if snap.IsPlaying() && !t.scheduler.Running() {
		t.startHighlight()
	}
}

// startHighlight starts the loop when synced lyrics are held and the bound
// source is playing.
func (t *Tracker) startHighlight() {
	st := &t.state
	eff := st.content.Effective()
	if !eff.IsSynced() || st.binding == nil || !st.binding.latest().IsPlaying() {
		return
	}

	t.scheduler.Start(t.runCtx, highlight.Job{
		Lines:    eff.Lines,
		Source:   st.binding,
		Emitter:  t.sink,
		Viewport: t.viewport,
		Duration: t.duration.Load,
		Log:      t.log.WithField("session", t.session.Load()),
	})
}

func (t *Tracker) detach(sourceID string) {
	st := &t.state
	if st.binding == nil || st.sourceID != sourceID {
		return
	}
	t.log.WithField("source", sourceID).Debug("position source detached")
	st.binding.detach()
	st.binding = nil
	st.sourceID = ""
	if st.active {
		t.clear()
		return
	}
	t.publish()
}

// clear drops the current song and invalidates any outstanding lookup.
func (t *Tracker) clear() {
	st := &t.state
	t.scheduler.Cancel()
	t.session.Add(1)

	st.active = false
	st.identity = track.Identity{}
	st.content = nil
	t.duration.Store(0)
	t.publish()

	t.sink.HighlightChanged(-1, false)
	t.sink.ContentChanged(nil)
	t.sink.StatusMessage(StatusWaiting)
}

func (t *Tracker) publish() {
	st := &t.state
	t.status.Store(&Status{
		Active:     st.active,
		Identity:   st.identity,
		Session:    t.session.Load(),
		Content:    st.content,
		DurationMs: t.duration.Load(),
		SourceID:   st.sourceID,
	})
}
