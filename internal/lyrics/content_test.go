package lyrics

import "testing"

func TestWithDurationPatchesCopy(t *testing.T) {
	original := NewPlain("t", "a", "words", 0)
	patched := original.WithDuration(180000)

	if patched.DurationMs != 180000 {
		t.Fatalf("expected patched duration, got %d", patched.DurationMs)
	}
	if original.DurationMs != 0 {
		t.Fatalf("original must not change, got %d", original.DurationMs)
	}
}

func TestWithDurationIsIdempotent(t *testing.T) {
	c := NewSynced("t", "a", []TimedLine{{0, "x"}}, 1000)
	once := c.WithDuration(5000)
	twice := once.WithDuration(5000)
	if once.Duration() != twice.Duration() || twice.Duration() != 5000 {
		t.Fatalf("expected stable duration 5000, got %d and %d", once.Duration(), twice.Duration())
	}
}

func TestWithDurationPatchesWrappedContent(t *testing.T) {
	inner := NewSynced("other", "b", []TimedLine{{0, "x"}}, 0)
	wrapped := NewMismatch("t", "a", inner)

	patched := wrapped.WithDuration(4000)
	if patched.Kind != KindMismatch {
		t.Fatalf("expected mismatch kind, got %s", patched.Kind)
	}
	if patched.Duration() != 4000 {
		t.Fatalf("expected wrapped duration 4000, got %d", patched.Duration())
	}
	if inner.DurationMs != 0 {
		t.Fatalf("wrapped original must not change")
	}
}

func TestMismatchWithoutInner(t *testing.T) {
	c := NewMismatch("t", "a", nil)
	if c.Duration() != 0 {
		t.Fatalf("expected zero duration")
	}
	if c.WithDuration(10).Effective() != nil {
		t.Fatalf("expected nil effective content")
	}
}

func TestEffectiveUnwraps(t *testing.T) {
	inner := NewSynced("o", "b", []TimedLine{{0, "x"}}, 0)
	if NewMismatch("t", "a", inner).Effective() != inner {
		t.Fatalf("expected wrapped content")
	}
	if !NewMismatch("t", "a", inner).Effective().IsSynced() {
		t.Fatalf("expected wrapped synced lyrics to be highlightable")
	}
	plain := NewPlain("t", "a", "x", 0)
	if plain.Effective() != plain {
		t.Fatalf("expected plain content unchanged")
	}
}

func TestInfoMessages(t *testing.T) {
	c := NewInfo("t", "a", InfoInstrumental, 0)
	if c.Message != MessageInstrumental {
		t.Fatalf("unexpected message %q", c.Message)
	}
	if !c.IsInfo() || c.IsSynced() {
		t.Fatalf("unexpected kind checks for info content")
	}
}

func TestSameLyricsIgnoresDuration(t *testing.T) {
	lines := []TimedLine{{OffsetMs: 0, Text: "one"}, {OffsetMs: 1000, Text: "two"}}
	base := NewSynced("t", "a", lines, 0)

	if !base.SameLyrics(base.WithDuration(180000)) {
		t.Fatalf("duration patch should keep the same lyrics")
	}

	copied := NewSynced("t", "a", append([]TimedLine(nil), lines...), 0)
	if base.SameLyrics(copied) {
		t.Fatalf("a separately parsed timeline is a different body")
	}

	wrapped := NewMismatch("t", "a", base)
	if !wrapped.SameLyrics(wrapped.WithDuration(5000)) {
		t.Fatalf("patched mismatch should keep the same lyrics")
	}
	if wrapped.SameLyrics(base) {
		t.Fatalf("mismatch and synced content differ")
	}

	if !NewPlain("t", "a", "words", 0).SameLyrics(NewPlain("t", "a", "words", 9000)) {
		t.Fatalf("plain text with another duration should match")
	}
	if NewInfo("t", "a", InfoLoading, 0).SameLyrics(NewInfo("t", "a", InfoNotFound, 0)) {
		t.Fatalf("different info kinds should not match")
	}
	var none *Content
	if !none.SameLyrics(nil) || none.SameLyrics(base) {
		t.Fatalf("nil handling is wrong")
	}
}
