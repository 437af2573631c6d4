package spotify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"karolbroda.com/lyricsync/internal/playback"
)

const playingJSON = `{
	"is_playing": true,
	"progress_ms": 42000,
	"timestamp": 1700000000000,
	"item": {
		"id": "abc",
		"name": "Song",
		"duration_ms": 210000,
		"artists": [{"name": "Artist"}, {"name": "Feature"}],
		"album": {"name": "Album", "images": [{"url": "https://img/1.jpg"}]}
	}
}`

func TestCurrentlyPlaying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/me/player/currently-playing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(playingJSON))
	}))
	defer srv.Close()

	cp, err := NewClientWithHTTP(srv.Client(), srv.URL).CurrentlyPlaying(context.Background())
	if err != nil {
		t.Fatalf("currently playing: %v", err)
	}
	if cp.Item == nil || cp.Item.Name != "Song" || cp.ProgressMs != 42000 {
		t.Fatalf("unexpected response %+v", cp)
	}
}

func TestCurrentlyPlayingNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cp, err := NewClientWithHTTP(srv.Client(), srv.URL).CurrentlyPlaying(context.Background())
	if err != nil {
		t.Fatalf("currently playing: %v", err)
	}
	if cp.Item != nil || cp.IsPlaying {
		t.Fatalf("expected empty reading, got %+v", cp)
	}
}

func TestCurrentlyPlayingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := NewClientWithHTTP(srv.Client(), srv.URL).CurrentlyPlaying(context.Background()); err == nil {
		t.Fatalf("expected error on 401")
	}
}

func TestToEvent(t *testing.T) {
	readAt := time.UnixMilli(1_700_000_000_500)
	cp := &CurrentlyPlaying{IsPlaying: true, ProgressMs: 42000, Item: &TrackItem{Name: "Song", DurationMs: 210000}}
	cp.Item.Artists = append(cp.Item.Artists, struct {
		Name string `json:"name"`
	}{Name: "Artist"})

	ev := toEvent(cp, readAt)
	if ev.Title != "Song" || ev.Artist != "Artist" || ev.DurationMs != 210000 {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Snapshot.State != playback.StatePlaying || ev.Snapshot.PositionMs != 42000 {
		t.Fatalf("unexpected snapshot %+v", ev.Snapshot)
	}
	if ev.Snapshot.LastUpdateEpochMs != readAt.UnixMilli() {
		t.Fatalf("expected read time stamp")
	}
}

func TestToEventNothingPlaying(t *testing.T) {
	ev := toEvent(&CurrentlyPlaying{}, time.Now())
	if ev.HasTitle() {
		t.Fatalf("expected blank title")
	}
	if ev.Snapshot.State != playback.StateStopped {
		t.Fatalf("expected stopped, got %s", ev.Snapshot.State)
	}
}

func TestPollerEmitsEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(playingJSON))
	}))
	defer srv.Close()

	p := NewPoller(NewClientWithHTTP(srv.Client(), srv.URL), time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx)

	select {
	case ev := <-p.Events():
		if ev.Title != "Song" || ev.SourceID != SourceID {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no event received")
	}

	cancel()
	for range p.Events() {
	}
}
