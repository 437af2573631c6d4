package main

import (
	"testing"

	"karolbroda.com/lyricsync/internal/engine"
	"karolbroda.com/lyricsync/internal/lyrics"
	"karolbroda.com/lyricsync/internal/track"
)

func TestStatusOf(t *testing.T) {
	got := statusOf(engine.Status{
		Active:     true,
		Identity:   track.Identity{Title: "Song", Artist: "Band"},
		Content:    lyrics.NewPlain("Song", "Band", "words", 0),
		DurationMs: 1000,
		SourceID:   "player",
	})
	if !got.Active || got.Title != "Song" || got.Artist != "Band" || got.Kind != "plain" || got.Source != "player" {
		t.Fatalf("unexpected status %+v", got)
	}

	if idle := statusOf(engine.Status{}); idle.Active || idle.Kind != "" {
		t.Fatalf("unexpected idle status %+v", idle)
	}
}
