package docchat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Fixed bot replies. These are part of the conversation contract: the UI and
// the persisted history both carry them verbatim.
const (
	// ReplyUploadFirst is appended when a question arrives before any
	// document has been bound to the active session.
	ReplyUploadFirst = "please upload a document first"

	// ReplyAnswerFailed is appended when the answering service call fails.
	ReplyAnswerFailed = "Error fetching answer"
)

// Upload outcome messages surfaced in the transcript.
const (
	msgOnlyPDF      = "Only PDF files are allowed."
	msgTooLarge     = "File size must be 10MB or less."
	msgUploadFailed = "Error uploading PDF."
)

const backgroundTimeout = 10 * time.Second

// Orchestrator owns the active session, the in-memory archive of previous
// sessions, and the sequencing of every conversation operation. It is the
// only component that mutates session state; adapters read snapshots.
//
// All methods are safe for concurrent use. Remote calls run on the calling
// goroutine; mirror writes and speech output are fired on background
// goroutines and never block or fail a conversation operation.
type Orchestrator struct {
	userID   string
	ingestor Ingestor
	answerer Answerer
	store    HistoryStore
	synth    Synthesizer
	log      *slog.Logger
	onEvent  func(Event)

	bg sync.WaitGroup

	mu          sync.Mutex
	active      Session
	history     []Session
	activeIndex int // index into history when the active session is a reopened one, -1 otherwise
	busy        bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSynthesizer enables speech output. Without it every speak site is a
// no-op (voice is a capability, not a requirement).
func WithSynthesizer(s Synthesizer) Option {
	return func(o *Orchestrator) { o.synth = s }
}

// WithLogger sets the logger for suppressed failures (mirror writes, speech,
// history fetch). Defaults to discarding.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithEventHandler sets a callback invoked on every state change. Handlers
// must not block; they typically forward into a UI event channel.
func WithEventHandler(h func(Event)) Option {
	return func(o *Orchestrator) { o.onEvent = h }
}

// New creates an Orchestrator for the given user identity. Identity is an
// explicit value here; resolving it from durable client storage belongs to
// the surrounding application layer.
func New(userID string, ingestor Ingestor, answerer Answerer, store HistoryStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		userID:      userID,
		ingestor:    ingestor,
		answerer:    answerer,
		store:       store,
		log:         slog.New(slog.DiscardHandler),
		active:      Session{CreatedAt: time.Now()},
		activeIndex: -1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// UserID returns the identity used for persistence calls.
func (o *Orchestrator) UserID() string { return o.userID }

// Active returns a snapshot of the active session.
func (o *Orchestrator) Active() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active.Clone()
}

// Sessions returns a snapshot of the archived sessions, oldest first.
func (o *Orchestrator) Sessions() []Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Session, len(o.history))
	for i, s := range o.history {
		out[i] = s.Clone()
	}
	return out
}

// ActiveIndex returns the archive index the active session was reopened
// from, or -1 when it has never been archived.
func (o *Orchestrator) ActiveIndex() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeIndex
}

// Busy reports whether a remote answer is outstanding.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// Submit runs one question through the conversation: the user message is
// appended (and mirrored) before any network call, then the answering
// service is queried if a document is bound. Whitespace-only input is
// dropped silently. All failures surface as transcript messages, never as
// errors; Submit blocks until the exchange completes, so callers run it on
// their own goroutine (the TUI uses a tea.Cmd).
//
// Submissions are not serialized: concurrent calls resolve in whatever
// order the service answers, and a resolution always appends to whichever
// session is active at completion time, even after a session switch.
func (o *Orchestrator) Submit(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	o.append(UserMessage(text), true)

	o.mu.Lock()
	docID := o.active.DocumentID
	o.mu.Unlock()

	if docID == "" {
		o.append(BotMessage(ReplyUploadFirst), true)
		return
	}

	o.setBusy(true)
	answer, err := o.answerer.Answer(ctx, docID, text)
	o.setBusy(false)

	if err != nil {
		o.log.Warn("answer query failed", "document_id", docID, "error", err)
		o.append(BotMessage(ReplyAnswerFailed), true)
		return
	}

	o.append(BotMessage(answer), true)
	o.speak(answer)
}

// SubmitDocument validates a candidate file, ingests it remotely, and binds
// the returned document to the active session. Validation short-circuits in
// order: media type, size, ingestion, page count. A page count above MaxPages
// discards the result even though the remote side stored the document
// (reject-after-accept). Every outcome is surfaced as a bot message and
// spoken when a synthesizer is configured.
func (o *Orchestrator) SubmitDocument(ctx context.Context, up Upload) (Binding, error) {
	if up.MediaType != PDFMediaType {
		o.announce(msgOnlyPDF)
		return Binding{}, fmt.Errorf("%q: %w", up.MediaType, ErrUnsupportedType)
	}
	if len(up.Data) > MaxUploadBytes {
		o.announce(msgTooLarge)
		return Binding{}, fmt.Errorf("%d bytes: %w", len(up.Data), ErrFileTooLarge)
	}

	res, err := o.ingestor.Ingest(ctx, up.Name, up.Data)
	if err != nil {
		o.log.Warn("ingestion failed", "name", up.Name, "error", err)
		o.announce(msgUploadFailed)
		return Binding{}, fmt.Errorf("%w: %v", ErrIngestion, err)
	}

	if res.PageCount > MaxPages {
		o.announce(fmt.Sprintf("PDF must contain %d pages or fewer.", MaxPages))
		return Binding{}, fmt.Errorf("%d pages: %w", res.PageCount, ErrTooManyPages)
	}

	b := Binding{DocumentID: res.DocumentID, Label: up.Name, PageCount: res.PageCount}

	o.mu.Lock()
	o.active.DocumentID = b.DocumentID
	o.active.DocumentLabel = b.Label
	o.active.UpdatedAt = time.Now()
	o.mu.Unlock()
	o.emit(EventDocumentBound{Binding: b})

	o.announce(fmt.Sprintf("Uploaded %s. Pages: %d.", up.Name, res.PageCount))
	return b, nil
}

// NewSession archives the active session and resets to an empty one. A
// session is archived only when it has at least one message and is not
// itself a reopened archive entry; empty sessions are discarded so the
// archive never accumulates blanks.
func (o *Orchestrator) NewSession() {
	o.mu.Lock()
	if len(o.active.Messages) > 0 && o.activeIndex < 0 {
		o.history = append(o.history, o.active.Clone())
	}
	o.active = Session{CreatedAt: time.Now()}
	o.activeIndex = -1
	o.mu.Unlock()
	o.emit(EventSessionChanged{})
}

// SwitchSession replaces the active session wholesale with a copy of
// history[i] and records i as the active pointer. Switching away from an
// unarchived session without calling NewSession first loses its messages;
// edits to a reopened session are never written back to the archive. Both
// are deliberate: the archive entry itself is immutable once stored.
func (o *Orchestrator) SwitchSession(i int) error {
	o.mu.Lock()
	if i < 0 || i >= len(o.history) {
		o.mu.Unlock()
		return fmt.Errorf("index %d: %w", i, ErrNoSuchSession)
	}
	o.active = o.history[i].Clone()
	o.activeIndex = i
	o.mu.Unlock()
	o.emit(EventSessionChanged{})
	return nil
}

// LoadHistory replaces the archive with sessions fetched from the history
// store. Any failure degrades to keeping the current archive; it is logged
// and never surfaced.
func (o *Orchestrator) LoadHistory(ctx context.Context) {
	sessions, err := o.store.FetchHistory(ctx, o.userID)
	if err != nil {
		o.log.Warn("history fetch failed", "user_id", o.userID, "error", err)
		return
	}
	o.mu.Lock()
	o.history = sessions
	o.mu.Unlock()
	o.emit(EventSessionChanged{})
}

// Export renders a snapshot of the active transcript. Pure read; a renderer
// failure fails only this call.
func (o *Orchestrator) Export(r TranscriptRenderer) ([]byte, error) {
	return r.Render(o.Active().Messages)
}

// Flush blocks until background work (mirror writes, speech) has drained.
// Call before process exit so fire-and-forget writes get a chance to land.
func (o *Orchestrator) Flush() {
	o.bg.Wait()
}

// append adds a message to the active session and optionally mirrors it to
// the history store. Upload announcements are appended without mirroring,
// matching the persistence contract (only conversation turns are stored).
func (o *Orchestrator) append(msg Message, mirror bool) {
	o.mu.Lock()
	o.active.Messages = append(o.active.Messages, msg)
	o.active.UpdatedAt = msg.Timestamp
	rec := Record{
		UserID:        o.userID,
		Origin:        msg.Origin,
		Text:          msg.Text,
		DocumentID:    o.active.DocumentID,
		DocumentLabel: o.active.DocumentLabel,
	}
	o.mu.Unlock()

	o.emit(EventMessage{Message: msg})
	if mirror {
		o.mirror(rec)
	}
}

// announce appends an unmirrored bot message and speaks it.
func (o *Orchestrator) announce(text string) {
	o.append(BotMessage(text), false)
	o.speak(text)
}

// mirror fans a persistence write out on a background goroutine. Failures
// are logged and dropped: the write is permanently lost to the remote store
// while in-memory state is unaffected.
func (o *Orchestrator) mirror(rec Record) {
	o.bg.Add(1)
	go func() {
		defer o.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		if err := o.store.Append(ctx, rec); err != nil {
			o.log.Warn("history append failed", "origin", rec.Origin, "error", err)
		}
	}()
}

// speak forwards text to the synthesizer, if any, without waiting for it.
func (o *Orchestrator) speak(text string) {
	if o.synth == nil {
		return
	}
	o.bg.Add(1)
	go func() {
		defer o.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		if err := o.synth.Speak(ctx, text); err != nil {
			o.log.Debug("speech synthesis failed", "error", err)
		}
	}()
}

func (o *Orchestrator) setBusy(v bool) {
	o.mu.Lock()
	o.busy = v
	o.mu.Unlock()
	o.emit(EventBusy{Busy: v})
}

func (o *Orchestrator) emit(e Event) {
	if o.onEvent != nil {
		o.onEvent(e)
	}
}
