package docchat

import (
	"strings"
	"time"
)

// Session represents one conversation, optionally bound to a document.
// DocumentID is empty until a successful upload binds one; DocumentLabel
// carries the uploaded file's name for display and persistence.
type Session struct {
	Messages      []Message
	DocumentID    string
	DocumentLabel string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Bound reports whether a document has been bound to the session.
func (s Session) Bound() bool { return s.DocumentID != "" }

// Title returns the session's display name: the bound document's label when
// present, empty otherwise (callers substitute a positional fallback).
func (s Session) Title() string { return s.DocumentLabel }

// Preview returns the first message's text, or "" for an empty session.
func (s Session) Preview() string {
	if len(s.Messages) == 0 {
		return ""
	}
	return strings.TrimSpace(s.Messages[0].Text)
}

// Clone returns a copy whose message slice does not share backing storage
// with the receiver. Messages themselves are immutable values.
func (s Session) Clone() Session {
	out := s
	if s.Messages != nil {
		out.Messages = make([]Message, len(s.Messages))
		copy(out.Messages, s.Messages)
	}
	return out
}
