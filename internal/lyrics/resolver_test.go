package lyrics

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	answers map[string][]Result
	errs    map[string]error
	hook    func(query string)
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]Result, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(query)
	}
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.answers[query], nil
}

func (f *fakeSearcher) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func always() bool { return true }

func TestResolveExactMatch(t *testing.T) {
	s := &fakeSearcher{answers: map[string][]Result{
		"Song Artist": {{TrackName: "Song", ArtistName: "Artist", SyncedLyrics: "[00:01.00]hi", Duration: 200}},
	}}

	c, err := NewResolver(s, nil).Resolve(context.Background(), Request{Title: "Song", Artist: "Artist"}, always)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.Kind != KindSynced {
		t.Fatalf("expected synced, got %s", c.Kind)
	}
	if c.DurationMs != 200000 {
		t.Fatalf("expected lookup duration, got %d", c.DurationMs)
	}
	if got := s.seen(); len(got) != 1 {
		t.Fatalf("expected a single query, got %v", got)
	}
}

func TestResolveTruncatedArtistTier(t *testing.T) {
	artist := "The Long Band Name"
	s := &fakeSearcher{answers: map[string][]Result{
		"Song The Long B": {{TrackName: "Song", ArtistName: "The Long Band", PlainLyrics: "words"}},
	}}

	c, err := NewResolver(s, nil).Resolve(context.Background(), Request{Title: "Song", Artist: artist, DurationHintMs: 1000}, always)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	got := s.seen()
	if len(got) != 2 || got[1] != "Song The Long B" {
		t.Fatalf("unexpected queries %q", got)
	}
	if c.Kind != KindMismatch {
		t.Fatalf("expected mismatch, got %s", c.Kind)
	}
	if c.Wrapped == nil || c.Wrapped.Kind != KindPlain {
		t.Fatalf("expected wrapped plain content, got %+v", c.Wrapped)
	}
	if c.Duration() != 1000 {
		t.Fatalf("expected hinted duration, got %d", c.Duration())
	}
}

func TestResolveShortArtistSkipsTruncation(t *testing.T) {
	s := &fakeSearcher{answers: map[string][]Result{
		"Song": {{TrackName: "Song", ArtistName: "Abc", PlainLyrics: "words"}},
	}}

	c, err := NewResolver(s, nil).Resolve(context.Background(), Request{Title: "Song", Artist: "Abc"}, always)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := s.seen(); len(got) != 2 || got[0] != "Song Abc" || got[1] != "Song" {
		t.Fatalf("unexpected queries %q", got)
	}
	if c.Kind != KindPlain {
		t.Fatalf("same names should not be wrapped, got %s", c.Kind)
	}
}

func TestResolveTitleOnlyMismatch(t *testing.T) {
	s := &fakeSearcher{answers: map[string][]Result{
		"Song": {{TrackName: "Song", ArtistName: "Someone Else", SyncedLyrics: "[00:01.00]x"}},
	}}

	c, err := NewResolver(s, nil).Resolve(context.Background(), Request{Title: "Song", Artist: "Me"}, always)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.Kind != KindMismatch || !c.Effective().IsSynced() {
		t.Fatalf("expected mismatch around synced lyrics, got %+v", c)
	}
}

func TestResolveNoArtist(t *testing.T) {
	s := &fakeSearcher{}
	c, err := NewResolver(s, nil).Resolve(context.Background(), Request{Title: "Song", DurationHintMs: 3000}, always)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := s.seen(); len(got) != 2 || got[0] != "Song" {
		t.Fatalf("unexpected queries %q", got)
	}
	if c.Kind != KindInfo || c.Info != InfoNotFound {
		t.Fatalf("expected not found, got %+v", c)
	}
	if c.DurationMs != 3000 {
		t.Fatalf("expected hinted duration, got %d", c.DurationMs)
	}
}

func TestResolveAllTiersFailing(t *testing.T) {
	boom := errors.New("network down")
	s := &fakeSearcher{errs: map[string]error{"Song Me": boom, "Song": boom}}

	c, err := NewResolver(s, nil).Resolve(context.Background(), Request{Title: "Song", Artist: "Me"}, always)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.Info != InfoLoadFailed {
		t.Fatalf("expected load failure, got %+v", c)
	}
}

func TestResolveFailedTierFallsThrough(t *testing.T) {
	s := &fakeSearcher{
		errs: map[string]error{"Song Me": errors.New("timeout")},
		answers: map[string][]Result{
			"Song": {{TrackName: "song", ArtistName: "me", PlainLyrics: "words"}},
		},
	}

	c, err := NewResolver(s, nil).Resolve(context.Background(), Request{Title: "Song", Artist: "Me"}, always)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.Kind != KindPlain {
		t.Fatalf("expected plain lyrics from title tier, got %s", c.Kind)
	}
}

func TestResolveInstrumentalIsNotWrapped(t *testing.T) {
	s := &fakeSearcher{answers: map[string][]Result{
		"Song": {{TrackName: "Other", ArtistName: "Else", Instrumental: true}},
	}}

	c, err := NewResolver(s, nil).Resolve(context.Background(), Request{Title: "Song", Artist: "Me"}, always)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.Kind != KindInfo || c.Info != InfoInstrumental {
		t.Fatalf("expected bare instrumental info, got %+v", c)
	}
}

func TestResolveStaleBeforeSearch(t *testing.T) {
	s := &fakeSearcher{}
	_, err := NewResolver(s, nil).Resolve(context.Background(), Request{Title: "Song"}, func() bool { return false })
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if len(s.seen()) != 0 {
		t.Fatalf("stale request must not search")
	}
}

func TestResolveStaleDuringSearch(t *testing.T) {
	var mu sync.Mutex
	current := true

	s := &fakeSearcher{
		answers: map[string][]Result{"Song": {{PlainLyrics: "x"}}},
		hook: func(string) {
			mu.Lock()
			current = false
			mu.Unlock()
		},
	}
	check := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	_, err := NewResolver(s, nil).Resolve(context.Background(), Request{Title: "Song"}, check)
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if got := s.seen(); len(got) != 1 {
		t.Fatalf("expected no further tiers after staleness, got %q", got)
	}
}

func TestResolveCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResolver(&fakeSearcher{}, nil).Resolve(ctx, Request{Title: "Song"}, always)
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
}
