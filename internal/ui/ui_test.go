package ui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"karolbroda.com/lyricsync/internal/lyrics"
)

func syncedContent(n int) *lyrics.Content {
	lines := make([]lyrics.TimedLine, n)
	for i := range lines {
		lines[i] = lyrics.TimedLine{OffsetMs: int64(i) * 1000, Text: fmt.Sprintf("line %d", i)}
	}
	return lyrics.NewSynced("Song", "Artist", lines, int64(n)*1000)
}

func newTestModel(t *testing.T, width, height int) (Model, *Sink) {
	t.Helper()
	sink := NewSink()
	t.Cleanup(sink.Close)

	m := NewModel(ModelConfig{Sink: sink})
	next, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return next.(Model), sink
}

func TestContentPublishesViewport(t *testing.T) {
	m, sink := newTestModel(t, 80, 24)

	next, cmd := m.Update(ContentMsg{Content: syncedContent(100)})
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("expected listen command after content message")
	}

	first, last, ok := sink.VisibleRange()
	if !ok {
		t.Fatalf("expected synced viewport")
	}
	if first != 0 || last != m.bodyHeight()-1 {
		t.Fatalf("unexpected range %d..%d, body height %d", first, last, m.bodyHeight())
	}
}

func TestHighlightScrollMovesWindow(t *testing.T) {
	m, sink := newTestModel(t, 80, 24)
	next, _ := m.Update(ContentMsg{Content: syncedContent(100)})
	m = next.(Model)

	next, _ = m.Update(HighlightMsg{Index: 50, Scroll: true})
	m = next.(Model)

	if m.index != 50 {
		t.Fatalf("expected index 50, got %d", m.index)
	}
	first, last, ok := sink.VisibleRange()
	if !ok || first > 50 || last < 50 {
		t.Fatalf("highlighted line not visible: %d..%d ok=%v", first, last, ok)
	}
}

func TestHighlightWithoutScrollKeepsWindow(t *testing.T) {
	m, sink := newTestModel(t, 80, 24)
	next, _ := m.Update(ContentMsg{Content: syncedContent(100)})
	m = next.(Model)

	next, _ = m.Update(HighlightMsg{Index: 2, Scroll: false})
	m = next.(Model)

	if m.top != 0 {
		t.Fatalf("expected top to stay 0, got %d", m.top)
	}
	if first, _, _ := sink.VisibleRange(); first != 0 {
		t.Fatalf("expected first visible 0, got %d", first)
	}
}

func TestWindowClampsAtEnd(t *testing.T) {
	m, sink := newTestModel(t, 80, 24)
	next, _ := m.Update(ContentMsg{Content: syncedContent(30)})
	m = next.(Model)

	next, _ = m.Update(HighlightMsg{Index: 29, Scroll: true})
	m = next.(Model)

	_, last, _ := sink.VisibleRange()
	if last != 29 {
		t.Fatalf("expected last visible line 29, got %d", last)
	}
}

func TestPlainContentClearsViewport(t *testing.T) {
	m, sink := newTestModel(t, 80, 24)
	next, _ := m.Update(ContentMsg{Content: syncedContent(10)})
	m = next.(Model)
	next, _ = m.Update(ContentMsg{Content: lyrics.NewPlain("Song", "Artist", "one\ntwo", 0)})
	m = next.(Model)

	if _, _, ok := sink.VisibleRange(); ok {
		t.Fatalf("plain lyrics should not report a synced viewport")
	}
	if !strings.Contains(m.View(), "two") {
		t.Fatalf("expected plain text in view")
	}
}

func TestMismatchWarning(t *testing.T) {
	m, _ := newTestModel(t, 80, 24)
	wrapped := lyrics.NewPlain("Other", "Someone", "words", 0)
	next, _ := m.Update(ContentMsg{Content: lyrics.NewMismatch("Song", "Artist", wrapped)})
	m = next.(Model)

	view := m.View()
	if !strings.Contains(view, mismatchWarning) {
		t.Fatalf("expected mismatch warning in view")
	}
	if !strings.Contains(view, "words") {
		t.Fatalf("expected wrapped lyrics in view")
	}

	next, _ = m.Update(ContentMsg{Content: lyrics.NewMismatch("Song", "Artist", nil)})
	m = next.(Model)
	if !strings.Contains(m.View(), mismatchNoDetails) {
		t.Fatalf("expected placeholder for empty mismatch")
	}
}

func TestInfoMessageAndStatus(t *testing.T) {
	m, _ := newTestModel(t, 80, 24)
	next, _ := m.Update(ContentMsg{Content: lyrics.NewInfo("Song", "Artist", lyrics.InfoNotFound, 0)})
	m = next.(Model)
	next, _ = m.Update(StatusMsg{Text: "Lyrics for: Song"})
	m = next.(Model)

	view := m.View()
	if !strings.Contains(view, lyrics.MessageNotFound) {
		t.Fatalf("expected info message in view")
	}
	if !strings.Contains(view, "Lyrics for: Song") {
		t.Fatalf("expected status in header")
	}
}

func TestWaitingScreenShowsStatus(t *testing.T) {
	m, _ := newTestModel(t, 100, 30)
	if !strings.Contains(m.View(), defaultWaitingText) {
		t.Fatalf("expected waiting text before any content")
	}
}

func TestToggleHeaderGrowsBody(t *testing.T) {
	m, _ := newTestModel(t, 80, 24)
	next, _ := m.Update(ContentMsg{Content: syncedContent(100)})
	m = next.(Model)

	before := m.bodyHeight()
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.bodyHeight() <= before {
		t.Fatalf("expected more rows with header hidden: %d -> %d", before, m.bodyHeight())
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t, 80, 24)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !next.(Model).quitting || cmd == nil {
		t.Fatalf("expected quit")
	}
	if next.(Model).View() != "" {
		t.Fatalf("expected empty view after quit")
	}
}

func TestStaleArtworkIgnored(t *testing.T) {
	m, _ := newTestModel(t, 80, 24)
	next, _ := m.Update(ArtworkURLMsg{URL: "file:///b.png"})
	m = next.(Model)

	next, _ = m.Update(artworkMsg{url: "file:///a.png"})
	if next.(Model).image != nil {
		t.Fatalf("stale artwork should be ignored")
	}
}

func TestSinkCloseUnblocksListen(t *testing.T) {
	sink := NewSink()
	sink.Close()
	sink.StatusMessage("dropped")
	if msg := sink.listen()(); msg != nil {
		if _, ok := msg.(StatusMsg); !ok {
			t.Fatalf("unexpected message %T", msg)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo world", 5); got != "héll…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected truncation %q", got)
	}
}

func TestScrollAnimSettles(t *testing.T) {
	var a scrollAnim
	a.jump(0)
	a.retarget(10)
	for i := 0; i < scrollTicks; i++ {
		a.step()
	}
	if !a.settled() || a.position() != 10 {
		t.Fatalf("expected settled at 10, got %v", a.position())
	}
}

func TestFadeColor(t *testing.T) {
	from, to := lipgloss.Color("#FFFFFF"), lipgloss.Color("#000000")
	if got := fadeColor(from, to, 0); got != from {
		t.Fatalf("expected start color, got %s", got)
	}
	if got := fadeColor(from, to, 2); got != to {
		t.Fatalf("expected end color, got %s", got)
	}
	if got := fadeColor("not a color", to, 0.5); got != "not a color" {
		t.Fatalf("expected fallback to start color, got %s", got)
	}
	mid := fadeColor(from, to, 0.5)
	if mid == from || mid == to {
		t.Fatalf("expected a blended color, got %s", mid)
	}
}

func TestDurationPatchKeepsPlace(t *testing.T) {
	m, sink := newTestModel(t, 80, 24)
	content := syncedContent(100)
	next, _ := m.Update(ContentMsg{Content: content})
	m = next.(Model)
	next, _ = m.Update(HighlightMsg{Index: 50, Scroll: true})
	m = next.(Model)
	top := m.top

	next, _ = m.Update(ContentMsg{Content: content.WithDuration(content.Duration() + 1234)})
	m = next.(Model)

	if m.index != 50 || m.top != top {
		t.Fatalf("expected index 50 top %d kept, got index %d top %d", top, m.index, m.top)
	}
	if first, last, _ := sink.VisibleRange(); first > 50 || last < 50 {
		t.Fatalf("highlighted line left the viewport: %d..%d", first, last)
	}
	if m.content.Duration() != content.Duration()+1234 {
		t.Fatalf("expected patched content adopted")
	}
}
