package docchat

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	UserMsg int // User message accent
	BotMsg  int // Bot message accent
	Error   int // Error messages
	Success int // Upload confirmations
	Muted   int // Status bar, placeholders, previews
	Accent  int // Headings, links, sidebar selection
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg: 4,
		BotMsg:  6,
		Error:   1,
		Success: 2,
		Muted:   8,
		Accent:  5,
	}
}
