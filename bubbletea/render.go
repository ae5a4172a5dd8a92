package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"docchat"
)

// renderTranscript renders the active session's messages for the viewport.
// User messages are plain prefixed text; bot messages go through the
// markdown renderer since the answering service replies in markdown.
func (m Model) renderTranscript() string {
	width := m.Viewport.Width
	if width <= 0 {
		width = 80
	}

	if len(m.session.Messages) == 0 {
		return m.styles.Muted.Render("Upload a PDF with ^U, then ask away.")
	}

	parts := make([]string, 0, len(m.session.Messages))
	for _, msg := range m.session.Messages {
		if msg.Origin == docchat.OriginUser {
			content := m.styles.UserMsg.Render("> ") + msg.Text
			parts = append(parts, lipgloss.NewStyle().Width(width).Render(content))
			continue
		}
		parts = append(parts, m.md.Render(msg.Text, width))
	}
	return strings.Join(parts, "\n\n")
}
