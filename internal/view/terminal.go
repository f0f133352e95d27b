package view

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hamed0406/statuswidget/internal/domain"
)

var (
	styleUp       = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorUp))
	styleDown     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDown))
	styleChecking = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorChecking))
	styleBold     = lipgloss.NewStyle().Bold(true)
	styleGray     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const (
	glyphUp   = "█"
	glyphDown = "▂"
)

// Sparkline renders one glyph per entry: a full block for success and a
// low block for failure, colored like the SVG bars.
func Sparkline(h domain.History) string {
	var b strings.Builder
	for _, r := range h {
		if r.Success {
			b.WriteString(styleUp.Render(glyphUp))
		} else {
			b.WriteString(styleDown.Render(glyphDown))
		}
	}
	return b.String()
}

// StatusLine is the terminal equivalent of the widget header.
func StatusLine(endpoint string, h domain.History, lastChecked time.Time) string {
	s := StatusOf(h)
	style := styleChecking
	switch s {
	case StatusUp:
		style = styleUp
	case StatusDown:
		style = styleDown
	}

	parts := []string{
		style.Render("● " + string(s)),
		styleBold.Render(endpoint),
		Sparkline(h),
	}
	if !lastChecked.IsZero() {
		parts = append(parts, styleGray.Render("last check "+lastChecked.Local().Format(time.DateTime)))
	}
	return strings.Join(parts, "  ")
}
