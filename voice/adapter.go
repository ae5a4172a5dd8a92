package voice

import (
	"context"
	"log/slog"
	"strings"

	"docchat"
)

// Adapter feeds recognized utterances into the conversation. Recognition
// failures are logged and otherwise silent: the session state never changes
// unless an utterance actually comes back.
type Adapter struct {
	rec docchat.Recognizer
	log *slog.Logger
}

// AdapterOption configures an [Adapter].
type AdapterOption func(*Adapter)

// WithAdapterLogger sets the logger for suppressed recognition failures.
func WithAdapterLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) { a.log = l }
}

// NewAdapter creates an Adapter over rec, which may be nil when no speech
// engine is configured.
func NewAdapter(rec docchat.Recognizer, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		rec: rec,
		log: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Available reports whether voice input can be attempted.
func (a *Adapter) Available() bool { return a.rec != nil }

// Capture listens for one utterance and returns its text. Failures and
// empty recognitions both return "", so the caller can hand the result
// straight to Submit, which drops empty input.
func (a *Adapter) Capture(ctx context.Context) string {
	if a.rec == nil {
		return ""
	}
	text, err := a.rec.ListenOnce(ctx)
	if err != nil {
		a.log.Warn("speech recognition failed", "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}
