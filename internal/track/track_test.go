package track

import "testing"

func TestIdentityEqualityIsExact(t *testing.T) {
	a := Identity{Title: "Song", Artist: "Band"}
	if a != (Identity{Title: "Song", Artist: "Band"}) {
		t.Fatalf("expected identical identities to compare equal")
	}
	if a == (Identity{Title: "song", Artist: "Band"}) {
		t.Fatalf("expected title comparison to be case-sensitive")
	}
	if a == (Identity{Title: "Song"}) {
		t.Fatalf("expected missing artist to differ from a present one")
	}
}

func TestIdentityDisplay(t *testing.T) {
	if got := (Identity{Title: "Song", Artist: "Band"}).Display(); got != "Song by Band" {
		t.Fatalf("unexpected display %q", got)
	}
	if got := (Identity{Title: "Song"}).Display(); got != "Song" {
		t.Fatalf("unexpected display %q", got)
	}
}

func TestInfoIsValid(t *testing.T) {
	if !(&Info{Title: "Song"}).IsValid() {
		t.Fatalf("expected titled info to be valid")
	}
	if (&Info{Artist: "Band"}).IsValid() {
		t.Fatalf("expected untitled info to be invalid")
	}
	var nilInfo *Info
	if nilInfo.IsValid() {
		t.Fatalf("nil info should be invalid")
	}
}
