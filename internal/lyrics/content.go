package lyrics

type Kind int

const (
	KindInfo Kind = iota
	KindSynced
	KindPlain
	KindMismatch
)

func (k Kind) String() string {
	switch k {
	case KindSynced:
		return "synced"
	case KindPlain:
		return "plain"
	case KindMismatch:
		return "mismatch"
	default:
		return "info"
	}
}

// InfoKind says why an Info content carries a message instead of lyrics.
type InfoKind int

const (
	InfoLoading InfoKind = iota
	InfoNotFound
	InfoInstrumental
	InfoEmpty
	InfoLoadFailed
	InfoNoTitle
)

const (
	MessageLoading      = "Loading lyrics..."
	MessageNotFound     = "Lyrics not found"
	MessageInstrumental = "This is an instrumental song"
	MessageEmpty        = "Lyrics not found (empty content)"
	MessageLoadFailed   = "Could not load lyrics"
	MessageNoTitle      = "Song title not available"
)

func (k InfoKind) Message() string {
	switch k {
	case InfoLoading:
		return MessageLoading
	case InfoNotFound:
		return MessageNotFound
	case InfoInstrumental:
		return MessageInstrumental
	case InfoEmpty:
		return MessageEmpty
	case InfoLoadFailed:
		return MessageLoadFailed
	case InfoNoTitle:
		return MessageNoTitle
	default:
		return ""
	}
}

// Content is the classified lyrics for one song. Which fields are meaningful
// depends on Kind:
//
//	KindSynced   Lines
//	KindPlain    Text
//	KindInfo     Info, Message
//	KindMismatch Wrapped (may be nil)
//
// A published Content is never modified; WithDuration returns a copy.
type Content struct {
	Kind       Kind
	Title      string
	Artist     string
	Lines      []TimedLine
	Text       string
	Info       InfoKind
	Message    string
	Wrapped    *Content
	DurationMs int64
}

func NewSynced(title, artist string, lines []TimedLine, durationMs int64) *Content {
	return &Content{Kind: KindSynced, Title: title, Artist: artist, Lines: lines, DurationMs: durationMs}
}

func NewPlain(title, artist, text string, durationMs int64) *Content {
	return &Content{Kind: KindPlain, Title: title, Artist: artist, Text: text, DurationMs: durationMs}
}

func NewInfo(title, artist string, info InfoKind, durationMs int64) *Content {
	return &Content{Kind: KindInfo, Title: title, Artist: artist, Info: info, Message: info.Message(), DurationMs: durationMs}
}

func NewMismatch(title, artist string, wrapped *Content) *Content {
	return &Content{Kind: KindMismatch, Title: title, Artist: artist, Wrapped: wrapped}
}

// Duration is the best known song length. A mismatch wrapper has none of
// its own.
func (c *Content) Duration() int64 {
	if c == nil {
		return 0
	}
	if c.Kind == KindMismatch {
		if c.Wrapped == nil {
			return 0
		}
		return c.Wrapped.DurationMs
	}
	return c.DurationMs
}

// WithDuration patches the duration on a copy. For a mismatch wrapper the
// patch goes one level down into the wrapped value.
func (c *Content) WithDuration(durationMs int64) *Content {
	if c == nil {
		return nil
	}
	patched := *c
	if c.Kind == KindMismatch {
		if c.Wrapped != nil && c.Wrapped.Kind != KindMismatch {
			patched.Wrapped = c.Wrapped.WithDuration(durationMs)
		}
		return &patched
	}
	patched.DurationMs = durationMs
	return &patched
}

// Effective unwraps a mismatch wrapper; it returns c itself otherwise.
func (c *Content) Effective() *Content {
	if c != nil && c.Kind == KindMismatch {
		return c.Wrapped
	}
	return c
}

func (c *Content) IsSynced() bool {
	return c != nil && c.Kind == KindSynced && len(c.Lines) > 0
}

func (c *Content) IsInfo() bool {
	return c != nil && c.Kind == KindInfo
}

// SameLyrics reports whether c and other carry the same lyrics body,
// ignoring duration. A duration patch shares the timeline with the value it
// was made from.
func (c *Content) SameLyrics(other *Content) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.Kind != other.Kind || c.Title != other.Title || c.Artist != other.Artist {
		return false
	}

	switch c.Kind {
	case KindMismatch:
		if c.Wrapped == nil || other.Wrapped == nil {
			return c.Wrapped == other.Wrapped
		}
		return c.Wrapped.SameLyrics(other.Wrapped)
	case KindSynced:
		if len(c.Lines) != len(other.Lines) {
			return false
		}
		return len(c.Lines) == 0 || &c.Lines[0] == &other.Lines[0]
	case KindPlain:
		return c.Text == other.Text
	default:
		return c.Info == other.Info && c.Message == other.Message
	}
}
