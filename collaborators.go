package docchat

import "context"

// Ingestor uploads a document to the remote understanding service and
// returns its identifier and page count.
type Ingestor interface {
	Ingest(ctx context.Context, name string, data []byte) (IngestResult, error)
}

// IngestResult is the outcome of a successful ingestion call.
type IngestResult struct {
	DocumentID string
	PageCount  int
}

// Answerer queries the remote answering service about a bound document.
type Answerer interface {
	Answer(ctx context.Context, documentID, question string) (string, error)
}

// Record is one message row as mirrored to the history store.
type Record struct {
	UserID        string
	Origin        Origin
	Text          string
	DocumentID    string
	DocumentLabel string
}

// HistoryStore mirrors session state to a remote persistence service.
// The orchestrator treats it as an eventually-consistent copy: Append
// failures are logged and dropped, FetchHistory failures degrade to an
// empty archive. In-memory state is always the source of truth.
type HistoryStore interface {
	Append(ctx context.Context, rec Record) error
	FetchHistory(ctx context.Context, userID string) ([]Session, error)
}

// Recognizer captures exactly one utterance from a speech engine.
type Recognizer interface {
	ListenOnce(ctx context.Context) (string, error)
}

// Synthesizer speaks text through a speech engine. Calls are fire-and-forget;
// overlapping calls race at the engine and are not serialized here.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// TranscriptRenderer renders an ordered transcript to a document artifact.
type TranscriptRenderer interface {
	Render(messages []Message) ([]byte, error)
}
