// Package mock provides test doubles for docchat interfaces using function fields.
package mock

import (
	"context"

	"docchat"
)

// Interface compliance checks.
var (
	_ docchat.Ingestor           = (*Ingestor)(nil)
	_ docchat.Answerer           = (*Answerer)(nil)
	_ docchat.HistoryStore       = (*HistoryStore)(nil)
	_ docchat.Recognizer         = (*Recognizer)(nil)
	_ docchat.Synthesizer        = (*Synthesizer)(nil)
	_ docchat.TranscriptRenderer = (*TranscriptRenderer)(nil)
)

// Ingestor is a test double for docchat.Ingestor.
// Set IngestFn before calling Ingest.
type Ingestor struct {
	IngestFn func(ctx context.Context, name string, data []byte) (docchat.IngestResult, error)
}

// Ingest delegates to IngestFn.
func (i *Ingestor) Ingest(ctx context.Context, name string, data []byte) (docchat.IngestResult, error) {
	return i.IngestFn(ctx, name, data)
}

// Answerer is a test double for docchat.Answerer.
// Set AnswerFn before calling Answer.
type Answerer struct {
	AnswerFn func(ctx context.Context, documentID, question string) (string, error)
}

// Answer delegates to AnswerFn.
func (a *Answerer) Answer(ctx context.Context, documentID, question string) (string, error) {
	return a.AnswerFn(ctx, documentID, question)
}

// HistoryStore is a test double for docchat.HistoryStore.
// Set the function fields for the methods you need.
type HistoryStore struct {
	AppendFn       func(ctx context.Context, rec docchat.Record) error
	FetchHistoryFn func(ctx context.Context, userID string) ([]docchat.Session, error)
}

// Append delegates to AppendFn.
func (h *HistoryStore) Append(ctx context.Context, rec docchat.Record) error {
	return h.AppendFn(ctx, rec)
}

// FetchHistory delegates to FetchHistoryFn.
func (h *HistoryStore) FetchHistory(ctx context.Context, userID string) ([]docchat.Session, error) {
	return h.FetchHistoryFn(ctx, userID)
}

// Recognizer is a test double for docchat.Recognizer.
// Set ListenOnceFn before calling ListenOnce.
type Recognizer struct {
	ListenOnceFn func(ctx context.Context) (string, error)
}

// ListenOnce delegates to ListenOnceFn.
func (r *Recognizer) ListenOnce(ctx context.Context) (string, error) {
	return r.ListenOnceFn(ctx)
}

// Synthesizer is a test double for docchat.Synthesizer.
// Set SpeakFn before calling Speak.
type Synthesizer struct {
	SpeakFn func(ctx context.Context, text string) error
}

// Speak delegates to SpeakFn.
func (s *Synthesizer) Speak(ctx context.Context, text string) error {
	return s.SpeakFn(ctx, text)
}

// TranscriptRenderer is a test double for docchat.TranscriptRenderer.
// Set RenderFn before calling Render.
type TranscriptRenderer struct {
	RenderFn func(messages []docchat.Message) ([]byte, error)
}

// Render delegates to RenderFn.
func (t *TranscriptRenderer) Render(messages []docchat.Message) ([]byte, error) {
	return t.RenderFn(messages)
}
