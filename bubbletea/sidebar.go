package bubbletea

import (
	"fmt"
	"strings"

	rw "github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"docchat"
)

// renderSidebar lists archived sessions, oldest first, with the cursor on
// the selected entry and a marker on the currently reopened one.
func (m Model) renderSidebar(height int) string {
	innerWidth := sidebarWidth - 3 // border and padding

	var b strings.Builder
	b.WriteString(m.styles.Accent.Render(truncate("Previous chats", innerWidth)))
	b.WriteString("\n")

	if len(m.archive) == 0 {
		b.WriteString(m.styles.Muted.Render(truncate("none yet", innerWidth)))
		b.WriteString("\n")
	}

	for i, s := range m.archive {
		title := sessionTitle(s, i)
		line := truncate(title, innerWidth)
		switch {
		case i == m.selected:
			line = m.styles.Selected.Render(line)
		case i == m.reopened:
			line = m.styles.Accent.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")

		if preview := s.Preview(); preview != "" {
			b.WriteString(m.styles.Muted.Render(truncate("  "+preview, innerWidth)))
			b.WriteString("\n")
		}
	}

	return m.styles.Sidebar.
		Width(sidebarWidth - 2).
		Height(height).
		Render(strings.TrimRight(b.String(), "\n"))
}

// sessionTitle is the bound document's name, or a positional fallback for
// sessions that never had a document.
func sessionTitle(s docchat.Session, i int) string {
	if t := s.Title(); t != "" {
		return t
	}
	return fmt.Sprintf("Chat %d", i+1)
}

// truncate cuts s to the given display width on a grapheme cluster
// boundary, appending an ellipsis when anything was removed. Width is
// measured in terminal cells, so wide runes count double.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if rw.StringWidth(s) <= width {
		return s
	}

	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cluster := g.Str()
		cw := rw.StringWidth(cluster)
		if used+cw > width-1 {
			break
		}
		b.WriteString(cluster)
		used += cw
	}
	return b.String() + "…"
}
