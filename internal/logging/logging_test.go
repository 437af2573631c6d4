package logging

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"WARN":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"chatty":  logrus.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)
	log.WithField("title", "Song").Debug("resolved")

	out := buf.String()
	if !strings.Contains(out, "resolved") || !strings.Contains(out, "title=Song") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestDiscardDropsEverything(t *testing.T) {
	log := Discard()
	if log.IsLevelEnabled(logrus.ErrorLevel) {
		t.Fatalf("discard logger should not enable error level")
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lyricsync.log")
	log, closer, err := Open("info", path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	log.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
