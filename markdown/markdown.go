// Package markdown renders answer text to ANSI-styled terminal output using
// goldmark for parsing and lipgloss for styling. The answering service tends
// to reply in markdown; user messages are plain text and bypass this package.
package markdown

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"docchat"
)

// Renderer converts markdown source to styled terminal text. Construct once
// per theme and reuse; rendering is stateless.
type Renderer struct {
	bold      lipgloss.Style
	italic    lipgloss.Style
	heading   lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
}

// New creates a Renderer styled by theme.
func New(theme docchat.Theme) *Renderer {
	return &Renderer{
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		heading:   lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		underline: lipgloss.NewStyle().Underline(true),
	}
}

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow.
func (r *Renderer) Render(source string, width int) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	return r.render([]byte(source), width)
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
