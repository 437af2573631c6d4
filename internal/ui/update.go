package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/lyricsync/internal/artwork"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.top = m.clampTop(m.top)
		m.anim.jump(m.top)
		m.syncViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case ContentMsg:
		if m.content.SameLyrics(msg.Content) {
			// duration patch: keep the highlight and scroll position
			m.content = msg.Content
			return m, m.sink.listen()
		}
		m.content = msg.Content
		m.index = -1
		m.top = 0
		m.anim.jump(0)
		m.syncViewport()
		return m, m.sink.listen()

	case HighlightMsg:
		m.index = msg.Index
		if msg.Scroll && msg.Index >= 0 {
			m.top = m.clampTop(msg.Index - m.bodyHeight()/3)
			m.anim.retarget(m.top)
			m.syncViewport()
		}
		return m, m.sink.listen()

	case StatusMsg:
		m.status = msg.Text
		return m, m.sink.listen()

	case ArtworkURLMsg:
		return m.handleArtworkURL(msg.URL)

	case artworkMsg:
		// a late answer for a previous cover is ignored
		if msg.url == m.artworkURL && msg.err == nil {
			m.image = msg.image
			m.palette = msg.palette
			m.top = m.clampTop(m.top)
			m.anim.jump(m.top)
			m.syncViewport()
		}
		return m, nil

	case tickMsg:
		m.tickCount++
		if !m.anim.settled() {
			m.anim.step()
		}
		return m, tickCmd()
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab", "i":
		m.hideHeader = !m.hideHeader
		m.top = m.clampTop(m.top)
		m.anim.jump(m.top)
		m.syncViewport()
	}

	return m, nil
}

func (m Model) handleArtworkURL(url string) (tea.Model, tea.Cmd) {
	listen := m.sink.listen()
	if url == m.artworkURL {
		return m, listen
	}

	m.artworkURL = url
	m.image = nil
	m.palette = artwork.DefaultPalette()
	m.syncViewport()
	if url == "" {
		return m, listen
	}
	return m, tea.Batch(listen, fetchArtworkCmd(m.httpClient, url))
}
