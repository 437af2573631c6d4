package engine

import (
	"github.com/sirupsen/logrus"

	"karolbroda.com/lyricsync/internal/lyrics"
)

// Sink consumes what the engine produces. Methods may be called from the
// tracker and the highlight loop concurrently and must not block for long.
type Sink interface {
	ContentChanged(content *lyrics.Content)
	HighlightChanged(index int, scroll bool)
	StatusMessage(text string)
}

// Fanout delivers every event to each sink in order.
type Fanout []Sink

func (f Fanout) ContentChanged(content *lyrics.Content) {
	for _, s := range f {
		s.ContentChanged(content)
	}
}

func (f Fanout) HighlightChanged(index int, scroll bool) {
	for _, s := range f {
		s.HighlightChanged(index, scroll)
	}
}

func (f Fanout) StatusMessage(text string) {
	for _, s := range f {
		s.StatusMessage(text)
	}
}

// LogSink writes engine output to a logger, for headless runs.
type LogSink struct {
	Log logrus.FieldLogger
}

func (l LogSink) ContentChanged(content *lyrics.Content) {
	if content == nil {
		l.Log.Info("lyrics cleared")
		return
	}

	fields := logrus.Fields{
		"kind":        content.Kind.String(),
		"title":       content.Title,
		"artist":      content.Artist,
		"duration_ms": content.Duration(),
	}
	if eff := content.Effective(); eff != nil {
		switch eff.Kind {
		case lyrics.KindSynced:
			fields["lines"] = len(eff.Lines)
		case lyrics.KindInfo:
			fields["message"] = eff.Message
		}
	}
	l.Log.WithFields(fields).Info("lyrics changed")
}

func (l LogSink) HighlightChanged(index int, scroll bool) {
	l.Log.WithFields(logrus.Fields{"index": index, "scroll": scroll}).Debug("highlight changed")
}

func (l LogSink) StatusMessage(text string) {
	l.Log.WithField("status", text).Info("status")
}
