package ui

import (
	"context"
	"image"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/common-nighthawk/go-figure"

	"karolbroda.com/lyricsync/internal/artwork"
	"karolbroda.com/lyricsync/internal/lyrics"
)

const (
	tickInterval = 50 * time.Millisecond

	mismatchWarning    = "Potential song mismatch."
	mismatchNoDetails  = "Lyrics details unavailable (mismatch)."
	defaultWaitingText = "Waiting for song..."
)

type tickMsg time.Time

type artworkMsg struct {
	url     string
	image   image.Image
	palette artwork.Palette
	err     error
}

type Model struct {
	sink       *Sink
	httpClient *http.Client
	hideHeader bool
	banner     []string

	content    *lyrics.Content
	index      int
	status     string
	artworkURL string
	image      image.Image
	palette    artwork.Palette

	top       int
	anim      scrollAnim
	width     int
	height    int
	tickCount int
	quitting  bool
}

type ModelConfig struct {
	Sink       *Sink
	HTTPClient *http.Client
	HideHeader bool
}

func NewModel(cfg ModelConfig) Model {
	return Model{
		sink:       cfg.Sink,
		httpClient: cfg.HTTPClient,
		hideHeader: cfg.HideHeader,
		banner:     figure.NewFigure("lyricsync", "", true).Slicify(),
		index:      -1,
		status:     defaultWaitingText,
		palette:    artwork.DefaultPalette(),
		anim:       scrollAnim{progress: 1},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.sink.listen(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchArtworkCmd(client *http.Client, url string) tea.Cmd {
	return func() tea.Msg {
		img, err := artwork.Fetch(context.Background(), client, url)
		if err != nil {
			return artworkMsg{url: url, err: err}
		}
		return artworkMsg{url: url, image: img, palette: artwork.ExtractPalette(img)}
	}
}

// body returns the lyrics variant the view renders, unwrapping a mismatch.
func (m Model) body() *lyrics.Content {
	return m.content.Effective()
}

func (m Model) mismatch() bool {
	return m.content != nil && m.content.Kind == lyrics.KindMismatch
}

func (m Model) size() (int, int) {
	width, height := m.width, m.height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}
	return width, height
}

// bodyHeight is the number of rows left for lyrics under the header.
func (m Model) bodyHeight() int {
	_, height := m.size()
	h := height - m.headerHeight()
	if h < 1 {
		return 1
	}
	return h
}

// clampTop keeps the lyrics window inside the timeline.
func (m Model) clampTop(top int) int {
	body := m.body()
	if body == nil || body.Kind != lyrics.KindSynced {
		return 0
	}
	maxTop := len(body.Lines) - m.bodyHeight()
	if top > maxTop {
		top = maxTop
	}
	if top < 0 {
		top = 0
	}
	return top
}

// syncViewport publishes the visible line range to the engine.
func (m Model) syncViewport() {
	if m.sink == nil {
		return
	}
	body := m.body()
	if body == nil || body.Kind != lyrics.KindSynced || len(body.Lines) == 0 {
		m.sink.setVisible(0, 0, false)
		return
	}

	last := m.top + m.bodyHeight() - 1
	if last >= len(body.Lines) {
		last = len(body.Lines) - 1
	}
	m.sink.setVisible(m.top, last, true)
}
