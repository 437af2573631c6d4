package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"karolbroda.com/lyricsync/internal/artwork"
	"karolbroda.com/lyricsync/internal/lyrics"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width, height := m.size()
	if m.content == nil {
		return m.renderWaitingScreen(width, height)
	}

	lines := m.renderHeader(width)
	bodyHeight := height - len(lines)
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	body := m.body()
	switch {
	case body == nil:
		lines = append(lines, m.renderMessage(mismatchNoDetails, bodyHeight, width)...)
	case body.Kind == lyrics.KindSynced:
		lines = append(lines, m.renderSynced(body.Lines, bodyHeight, width)...)
	case body.Kind == lyrics.KindPlain:
		lines = append(lines, m.renderPlain(body.Text, bodyHeight, width)...)
	default:
		lines = append(lines, m.renderMessage(body.Message, bodyHeight, width)...)
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderWaitingScreen(width int, height int) string {
	lines := make([]string, 0, height)

	block := len(m.banner) + 2
	for i := 0; i < (height-block)/2; i++ {
		lines = append(lines, "")
	}

	bannerStyle := lipgloss.NewStyle().Foreground(m.palette.Highlight)
	if lipgloss.Width(strings.Join(m.banner, "\n")) <= width {
		for _, row := range m.banner {
			lines = append(lines, centerText(bannerStyle.Render(row), lipgloss.Width(row), width))
		}
	}

	lines = append(lines, "")

	status := m.status
	if status == "" {
		status = defaultWaitingText
	}
	pulse := []string{"·", "•", "●", "•"}
	style := lipgloss.NewStyle().Foreground(m.palette.Dim).Italic(true)
	text := pulse[(m.tickCount/4)%len(pulse)] + " " + status
	lines = append(lines, centerText(style.Render(text), lipgloss.Width(text), width))

	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) artSize() (int, int) {
	width, height := m.size()
	switch {
	case m.image == nil || width < 50 || height < 20:
		return 0, 0
	case width < 80:
		return 8, 4
	default:
		return 12, 6
	}
}

func (m Model) infoLines(width int) []string {
	maxWidth := width - 20
	if maxWidth < 20 {
		maxWidth = 20
	}

	titleStyle := lipgloss.NewStyle().Foreground(m.palette.Text).Bold(true)
	artistStyle := lipgloss.NewStyle().Foreground(m.palette.Accent)
	statusStyle := lipgloss.NewStyle().Foreground(m.palette.Dim)

	lines := []string{
		titleStyle.Render(truncate(m.content.Title, maxWidth)),
		artistStyle.Render(truncate(m.content.Artist, maxWidth)),
		statusStyle.Render(truncate(m.status, maxWidth)),
	}
	if m.mismatch() {
		warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
		lines = append(lines, warnStyle.Render(mismatchWarning))
	}
	return lines
}

// headerHeight must agree with the number of rows renderHeader produces.
func (m Model) headerHeight() int {
	if m.hideHeader || m.content == nil {
		return 0
	}
	rows := 3
	if m.mismatch() {
		rows++
	}
	if _, artHeight := m.artSize(); artHeight > rows {
		rows = artHeight
	}
	return rows + 2
}

func (m Model) renderHeader(width int) []string {
	if m.hideHeader {
		return nil
	}

	artWidth, artHeight := m.artSize()
	art := artwork.HalfBlocks(m.image, artWidth, artHeight)
	info := m.infoLines(width)

	rows := len(info)
	if artHeight > rows {
		rows = artHeight
	}

	lines := []string{""}
	for i := 0; i < rows; i++ {
		var line strings.Builder
		switch {
		case artWidth > 0 && i < len(art):
			line.WriteString("  ")
			line.WriteString(art[i])
			line.WriteString("  ")
		case artWidth > 0:
			line.WriteString(strings.Repeat(" ", artWidth+4))
		default:
			line.WriteString("  ")
		}
		if i < len(info) {
			line.WriteString(info[i])
		}
		lines = append(lines, line.String())
	}
	lines = append(lines, "")

	return lines
}

func (m Model) renderSynced(timeline []lyrics.TimedLine, height int, width int) []string {
	output := make([]string, height)

	currentStyle := lipgloss.NewStyle().Foreground(m.palette.Highlight).Bold(true)

	top := int(math.Round(m.anim.position()))
	for row := 0; row < height; row++ {
		idx := top + row
		if idx < 0 || idx >= len(timeline) {
			continue
		}

		text := truncate(timeline[idx].Text, width-4)
		style := lipgloss.NewStyle().Foreground(m.lineColor(idx))
		if idx == m.index {
			style = currentStyle
		}
		output[row] = centerText(style.Render(text), lipgloss.Width(text), width)
	}

	return output
}

func (m Model) renderPlain(text string, height int, width int) []string {
	style := lipgloss.NewStyle().Foreground(m.palette.Text)
	output := make([]string, 0, height)
	for _, row := range strings.Split(text, "\n") {
		if len(output) == height {
			break
		}
		row = truncate(strings.TrimRight(row, "\r"), width-4)
		output = append(output, "  "+style.Render(row))
	}
	return output
}

func (m Model) renderMessage(message string, height int, width int) []string {
	lines := make([]string, 0, height)
	for i := 0; i < height/2-1; i++ {
		lines = append(lines, "")
	}

	style := lipgloss.NewStyle().Foreground(m.palette.Dim).Italic(true)
	if message == lyrics.MessageLoading {
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		message = frames[m.tickCount%len(frames)] + " " + message
	}
	lines = append(lines, centerText(style.Render(message), lipgloss.Width(message), width))

	return lines
}

func truncate(s string, limit int) string {
	if limit < 1 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func centerText(text string, visualWidth int, screenWidth int) string {
	padding := (screenWidth - visualWidth) / 2
	if padding < 0 {
		padding = 0
	}
	return strings.Repeat(" ", padding) + text
}
