package broadcast

import "karolbroda.com/lyricsync/internal/lyrics"

const (
	TypeContent   = "content"
	TypeHighlight = "highlight"
	TypeStatus    = "status"
)

// Message is the JSON frame sent to overlay clients.
type Message struct {
	Type    string   `json:"type"`
	Content *Content `json:"content,omitempty"`
	Index   *int     `json:"index,omitempty"`
	Scroll  bool     `json:"scroll,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type Line struct {
	OffsetMs int64  `json:"offset_ms"`
	Text     string `json:"text"`
}

// Content is the client view of lyrics. A suspected mismatch is flattened
// into the wrapped lyrics with Mismatch set.
type Content struct {
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	Mismatch   bool   `json:"mismatch,omitempty"`
	Lines      []Line `json:"lines,omitempty"`
	Text       string `json:"text,omitempty"`
	Message    string `json:"message,omitempty"`
}

func contentMessage(c *lyrics.Content) Message {
	return Message{Type: TypeContent, Content: newContent(c)}
}

func highlightMessage(index int, scroll bool) Message {
	return Message{Type: TypeHighlight, Index: &index, Scroll: scroll}
}

func statusMessage(text string) Message {
	return Message{Type: TypeStatus, Text: text}
}

func newContent(c *lyrics.Content) *Content {
	if c == nil {
		return nil
	}

	out := &Content{
		Kind:       c.Kind.String(),
		Title:      c.Title,
		Artist:     c.Artist,
		DurationMs: c.Duration(),
	}

	body := c
	if c.Kind == lyrics.KindMismatch {
		out.Mismatch = true
		if c.Wrapped == nil {
			return out
		}
		body = c.Wrapped
		out.Kind = body.Kind.String()
	}

	switch body.Kind {
	case lyrics.KindSynced:
		out.Lines = make([]Line, len(body.Lines))
		for i, l := range body.Lines {
			out.Lines[i] = Line{OffsetMs: l.OffsetMs, Text: l.Text}
		}
	case lyrics.KindPlain:
		out.Text = body.Text
	case lyrics.KindInfo:
		out.Message = body.Message
	}
	return out
}
