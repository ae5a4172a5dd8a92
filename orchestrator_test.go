package docchat_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"docchat"
	"docchat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore is a thread-safe in-memory HistoryStore that captures
// appended records for assertions.
type recordingStore struct {
	mu      sync.Mutex
	records []docchat.Record
	err     error
}

func (s *recordingStore) Append(_ context.Context, rec docchat.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *recordingStore) FetchHistory(context.Context, string) ([]docchat.Session, error) {
	return nil, nil
}

func (s *recordingStore) all() []docchat.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]docchat.Record(nil), s.records...)
}

func answerWith(text string) *mock.Answerer {
	return &mock.Answerer{
		AnswerFn: func(context.Context, string, string) (string, error) {
			return text, nil
		},
	}
}

func ingestAs(id string, pages int) *mock.Ingestor {
	return &mock.Ingestor{
		IngestFn: func(context.Context, string, []byte) (docchat.IngestResult, error) {
			return docchat.IngestResult{DocumentID: id, PageCount: pages}, nil
		},
	}
}

// bindDocument uploads a small valid PDF so the session has a document.
func bindDocument(t *testing.T, o *docchat.Orchestrator) docchat.Binding {
	t.Helper()
	b, err := o.SubmitDocument(context.Background(), docchat.Upload{
		Name:      "paper.pdf",
		MediaType: docchat.PDFMediaType,
		Data:      []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	return b
}

func TestOrchestrator_Submit_EmptyInputIsNoOp(t *testing.T) {
	t.Parallel()
	store := &recordingStore{}
	called := false
	answerer := &mock.Answerer{
		AnswerFn: func(context.Context, string, string) (string, error) {
			called = true
			return "", nil
		},
	}
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerer, store)

	o.Submit(context.Background(), "")
	o.Submit(context.Background(), "   \t\n")
	o.Flush()

	assert.Empty(t, o.Active().Messages)
	assert.Empty(t, store.all())
	assert.False(t, called)
}

func TestOrchestrator_Submit_UnboundSessionRepliesWithoutRemoteCall(t *testing.T) {
	t.Parallel()
	store := &recordingStore{}
	called := false
	answerer := &mock.Answerer{
		AnswerFn: func(context.Context, string, string) (string, error) {
			called = true
			return "", nil
		},
	}
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerer, store)

	o.Submit(context.Background(), "what is this about?")
	o.Flush()

	msgs := o.Active().Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, docchat.OriginUser, msgs[0].Origin)
	assert.Equal(t, "what is this about?", msgs[0].Text)
	assert.Equal(t, docchat.OriginBot, msgs[1].Origin)
	assert.Equal(t, docchat.ReplyUploadFirst, msgs[1].Text)
	assert.False(t, called, "answering service must not be called without a bound document")

	// Both turns are mirrored even though no document is bound. Mirror
	// writes are concurrent, so assert on content rather than order.
	recs := store.all()
	require.Len(t, recs, 2)
	byOrigin := map[docchat.Origin]docchat.Record{}
	for _, r := range recs {
		byOrigin[r.Origin] = r
	}
	assert.Equal(t, "what is this about?", byOrigin[docchat.OriginUser].Text)
	assert.Equal(t, docchat.ReplyUploadFirst, byOrigin[docchat.OriginBot].Text)
	assert.Empty(t, byOrigin[docchat.OriginUser].DocumentID)
}

func TestOrchestrator_Submit_BoundSessionAnswers(t *testing.T) {
	t.Parallel()
	store := &recordingStore{}
	var gotDoc, gotQuestion string
	answerer := &mock.Answerer{
		AnswerFn: func(_ context.Context, documentID, question string) (string, error) {
			gotDoc = documentID
			gotQuestion = question
			return "the answer", nil
		},
	}
	o := docchat.New("user-1", ingestAs("doc-42", 3), answerer, store)
	bindDocument(t, o)

	o.Submit(context.Background(), "summarize it")
	o.Flush()

	assert.Equal(t, "doc-42", gotDoc)
	assert.Equal(t, "summarize it", gotQuestion)

	msgs := o.Active().Messages
	require.Len(t, msgs, 3) // upload confirmation, question, answer
	assert.Equal(t, "the answer", msgs[2].Text)
	assert.Equal(t, docchat.OriginBot, msgs[2].Origin)

	recs := store.all()
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, "doc-42", r.DocumentID)
		assert.Equal(t, "paper.pdf", r.DocumentLabel)
	}
}

func TestOrchestrator_Submit_UserMessageAppendedBeforeRemoteCall(t *testing.T) {
	t.Parallel()
	var seen []docchat.Message
	var o *docchat.Orchestrator
	answerer := &mock.Answerer{
		AnswerFn: func(context.Context, string, string) (string, error) {
			seen = o.Active().Messages
			return "ok", nil
		},
	}
	o = docchat.New("user-1", ingestAs("doc-1", 1), answerer, &recordingStore{})
	bindDocument(t, o)

	o.Submit(context.Background(), "hello")
	o.Flush()

	require.NotEmpty(t, seen)
	assert.Equal(t, "hello", seen[len(seen)-1].Text)
}

func TestOrchestrator_Submit_AnswerFailureSurfacesAsBotMessage(t *testing.T) {
	t.Parallel()
	store := &recordingStore{}
	answerer := &mock.Answerer{
		AnswerFn: func(context.Context, string, string) (string, error) {
			return "", errors.New("boom")
		},
	}
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerer, store)
	bindDocument(t, o)

	o.Submit(context.Background(), "hello")
	o.Flush()

	msgs := o.Active().Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, docchat.ReplyAnswerFailed, msgs[2].Text)
	assert.Equal(t, docchat.OriginBot, msgs[2].Origin)

	// The failure reply is mirrored like any other turn.
	recs := store.all()
	require.Len(t, recs, 2)
	var texts []string
	for _, r := range recs {
		texts = append(texts, r.Text)
	}
	assert.Contains(t, texts, docchat.ReplyAnswerFailed)
}

func TestOrchestrator_Submit_MirrorFailureDoesNotAffectConversation(t *testing.T) {
	t.Parallel()
	store := &recordingStore{err: errors.New("store down")}
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerWith("fine"), store)
	bindDocument(t, o)

	o.Submit(context.Background(), "hello")
	o.Flush()

	msgs := o.Active().Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, "fine", msgs[2].Text)
}

func TestOrchestrator_Submit_BusyWhileAnswerOutstanding(t *testing.T) {
	t.Parallel()
	started := make(chan struct{})
	release := make(chan struct{})
	answerer := &mock.Answerer{
		AnswerFn: func(context.Context, string, string) (string, error) {
			close(started)
			<-release
			return "done", nil
		},
	}
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerer, &recordingStore{})
	bindDocument(t, o)

	assert.False(t, o.Busy())

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		o.Submit(context.Background(), "slow question")
	}()

	<-started
	assert.True(t, o.Busy())
	close(release)
	<-finished
	assert.False(t, o.Busy())
}

func TestOrchestrator_Submit_InFlightAnswerLandsInCurrentSession(t *testing.T) {
	t.Parallel()
	started := make(chan struct{})
	release := make(chan struct{})
	answerer := &mock.Answerer{
		AnswerFn: func(context.Context, string, string) (string, error) {
			close(started)
			<-release
			return "late answer", nil
		},
	}
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerer, &recordingStore{})
	bindDocument(t, o)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		o.Submit(context.Background(), "slow question")
	}()

	<-started
	o.NewSession()
	close(release)
	<-finished
	o.Flush()

	// The resolution appends to whichever session is active at completion,
	// not the one the question was asked in.
	active := o.Active().Messages
	require.Len(t, active, 1)
	assert.Equal(t, "late answer", active[0].Text)

	archived := o.Sessions()
	require.Len(t, archived, 1)
	for _, m := range archived[0].Messages {
		assert.NotEqual(t, "late answer", m.Text)
	}
}

func TestOrchestrator_NewSession_ArchivesNonEmptyActive(t *testing.T) {
	t.Parallel()
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerWith("a"), &recordingStore{})
	o.Submit(context.Background(), "first session message")

	o.NewSession()

	assert.Empty(t, o.Active().Messages)
	assert.Equal(t, -1, o.ActiveIndex())
	sessions := o.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "first session message", sessions[0].Messages[0].Text)
}

func TestOrchestrator_NewSession_EmptyActiveIsNotArchived(t *testing.T) {
	t.Parallel()
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerWith("a"), &recordingStore{})

	o.NewSession()
	o.NewSession()

	assert.Empty(t, o.Sessions())
}

func TestOrchestrator_NewSession_ReopenedSessionIsNotRearchived(t *testing.T) {
	t.Parallel()
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerWith("a"), &recordingStore{})
	o.Submit(context.Background(), "original")
	o.NewSession()
	require.Len(t, o.Sessions(), 1)

	require.NoError(t, o.SwitchSession(0))
	o.Submit(context.Background(), "added while reopened")
	o.NewSession()

	// Still exactly one archived session, and the reopened edits are gone.
	sessions := o.Sessions()
	require.Len(t, sessions, 1)
	for _, m := range sessions[0].Messages {
		assert.NotEqual(t, "added while reopened", m.Text)
	}
}

func TestOrchestrator_SwitchSession_InvalidIndex(t *testing.T) {
	t.Parallel()
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerWith("a"), &recordingStore{})

	err := o.SwitchSession(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, docchat.ErrNoSuchSession)

	o.Submit(context.Background(), "hi")
	o.NewSession()
	assert.ErrorIs(t, o.SwitchSession(-1), docchat.ErrNoSuchSession)
	assert.ErrorIs(t, o.SwitchSession(1), docchat.ErrNoSuchSession)
	assert.NoError(t, o.SwitchSession(0))
}

func TestOrchestrator_SwitchSession_ActiveIsAClone(t *testing.T) {
	t.Parallel()
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerWith("a"), &recordingStore{})
	o.Submit(context.Background(), "archived message")
	o.NewSession()

	require.NoError(t, o.SwitchSession(0))
	assert.Equal(t, 0, o.ActiveIndex())
	o.Submit(context.Background(), "new message")

	// The archive entry is untouched by edits to the reopened copy.
	archived := o.Sessions()[0]
	require.Len(t, archived.Messages, 2)
	assert.Equal(t, "archived message", archived.Messages[0].Text)
}

func TestOrchestrator_SwitchSession_DiscardsUnarchivedActive(t *testing.T) {
	t.Parallel()
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerWith("a"), &recordingStore{})
	o.Submit(context.Background(), "kept")
	o.NewSession()
	o.Submit(context.Background(), "lost on switch")

	require.NoError(t, o.SwitchSession(0))

	for _, s := range o.Sessions() {
		for _, m := range s.Messages {
			assert.NotEqual(t, "lost on switch", m.Text)
		}
	}
	for _, m := range o.Active().Messages {
		assert.NotEqual(t, "lost on switch", m.Text)
	}
}

func TestOrchestrator_LoadHistory(t *testing.T) {
	t.Parallel()

	t.Run("replaces archive on success", func(t *testing.T) {
		t.Parallel()
		store := &mock.HistoryStore{
			AppendFn: func(context.Context, docchat.Record) error { return nil },
			FetchHistoryFn: func(_ context.Context, userID string) ([]docchat.Session, error) {
				assert.Equal(t, "user-7", userID)
				return []docchat.Session{
					{Messages: []docchat.Message{docchat.UserMessage("old question")}},
				}, nil
			},
		}
		o := docchat.New("user-7", ingestAs("doc-1", 1), answerWith("a"), store)

		o.LoadHistory(context.Background())

		sessions := o.Sessions()
		require.Len(t, sessions, 1)
		assert.Equal(t, "old question", sessions[0].Messages[0].Text)
	})

	t.Run("failure keeps current archive", func(t *testing.T) {
		t.Parallel()
		fail := false
		store := &mock.HistoryStore{
			AppendFn: func(context.Context, docchat.Record) error { return nil },
			FetchHistoryFn: func(context.Context, string) ([]docchat.Session, error) {
				if fail {
					return nil, errors.New("unreachable")
				}
				return []docchat.Session{{Messages: []docchat.Message{docchat.UserMessage("kept")}}}, nil
			},
		}
		o := docchat.New("user-7", ingestAs("doc-1", 1), answerWith("a"), store)
		o.LoadHistory(context.Background())
		require.Len(t, o.Sessions(), 1)

		fail = true
		o.LoadHistory(context.Background())

		assert.Len(t, o.Sessions(), 1)
	})
}

func TestOrchestrator_Export_DelegatesToRenderer(t *testing.T) {
	t.Parallel()
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerWith("a"), &recordingStore{})
	o.Submit(context.Background(), "hello")

	var got []docchat.Message
	renderer := &mock.TranscriptRenderer{
		RenderFn: func(messages []docchat.Message) ([]byte, error) {
			got = messages
			return []byte("rendered"), nil
		},
	}

	out, err := o.Export(renderer)
	require.NoError(t, err)
	assert.Equal(t, []byte("rendered"), out)
	require.Len(t, got, 2)
	assert.Equal(t, "hello", got[0].Text)

	renderErr := errors.New("render failed")
	_, err = o.Export(&mock.TranscriptRenderer{
		RenderFn: func([]docchat.Message) ([]byte, error) { return nil, renderErr },
	})
	assert.ErrorIs(t, err, renderErr)
}

func TestOrchestrator_SpeaksAnswers(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	var spoken []string
	synth := &mock.Synthesizer{
		SpeakFn: func(_ context.Context, text string) error {
			mu.Lock()
			defer mu.Unlock()
			spoken = append(spoken, text)
			return nil
		},
	}
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerWith("spoken answer"), &recordingStore{},
		docchat.WithSynthesizer(synth))
	bindDocument(t, o)

	o.Submit(context.Background(), "hello")
	o.Flush()

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, spoken, "spoken answer")
}

func TestOrchestrator_Events(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	var events []docchat.Event
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerWith("a"), &recordingStore{},
		docchat.WithEventHandler(func(e docchat.Event) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
		}))
	bindDocument(t, o)
	o.Submit(context.Background(), "hello")
	o.NewSession()
	o.Flush()

	mu.Lock()
	defer mu.Unlock()

	var bound, sessionChanged bool
	var busyFlips []bool
	var texts []string
	for _, e := range events {
		switch e := e.(type) {
		case docchat.EventDocumentBound:
			bound = true
			assert.Equal(t, "doc-1", e.Binding.DocumentID)
		case docchat.EventSessionChanged:
			sessionChanged = true
		case docchat.EventBusy:
			busyFlips = append(busyFlips, e.Busy)
		case docchat.EventMessage:
			texts = append(texts, e.Message.Text)
		}
	}
	assert.True(t, bound)
	assert.True(t, sessionChanged)
	assert.Equal(t, []bool{true, false}, busyFlips)
	assert.Contains(t, texts, "hello")
	assert.Contains(t, texts, "a")
}

func TestOrchestrator_Timestamps(t *testing.T) {
	t.Parallel()
	before := time.Now()
	o := docchat.New("user-1", ingestAs("doc-1", 1), answerWith("a"), &recordingStore{})
	o.Submit(context.Background(), "hello")
	after := time.Now()

	s := o.Active()
	require.Len(t, s.Messages, 2)
	for _, m := range s.Messages {
		assert.False(t, m.Timestamp.Before(before))
		assert.False(t, m.Timestamp.After(after))
	}
	assert.False(t, s.UpdatedAt.Before(before))
}
