// Package stub is a self-contained in-memory implementation of the
// document-chat service protocol. It exists for local development and
// end-to-end testing: the real backend does retrieval-augmented answering,
// the stub answers from a configurable function and counts pages with a
// byte-level heuristic.
package stub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// AnswerFunc produces the stub's reply for a query against a stored document.
type AnswerFunc func(docID, question string) string

// Server holds the in-memory document and message stores.
type Server struct {
	answer AnswerFunc
	log    *slog.Logger

	mu      sync.Mutex
	docs    map[string]document
	records map[string][]record // keyed by user id, insertion order preserved
}

type document struct {
	name  string
	pages int
}

type record struct {
	fromUser     string
	text         string
	docID        string
	uploadedName string
}

// Option configures a [Server].
type Option func(*Server)

// WithAnswerFunc sets the reply function for /query/.
func WithAnswerFunc(f AnswerFunc) Option {
	return func(s *Server) { s.answer = f }
}

// WithLogger sets the request logger. Defaults to discarding.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a stub server.
func New(opts ...Option) *Server {
	s := &Server{
		answer: func(docID, question string) string {
			return fmt.Sprintf("Stub answer about document %s: %s", docID, question)
		},
		log:     slog.New(slog.DiscardHandler),
		docs:    make(map[string]document),
		records: make(map[string][]record),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the HTTP routes for the service protocol.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/upload-pdf/", s.handleUpload)
	r.Post("/query/", s.handleQuery)
	r.Post("/save-message/", s.handleSaveMessage)
	r.Get("/get-messages/{userID}", s.handleGetMessages)
	return r
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		respondError(w, http.StatusBadRequest, "Only PDF allowed")
		return
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(file); err != nil {
		respondError(w, http.StatusInternalServerError, "reading upload")
		return
	}

	docID := uuid.NewString()
	pages := countPages(buf.Bytes())

	s.mu.Lock()
	s.docs[docID] = document{name: header.Filename, pages: pages}
	s.mu.Unlock()

	s.log.Info("document stored", "doc_id", docID, "name", header.Filename, "pages", pages)
	respondJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "pages": pages})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		DocID    string `json:"doc_id"`
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.DocID == "" || payload.Question == "" {
		respondError(w, http.StatusBadRequest, "Missing doc_id or question")
		return
	}

	s.mu.Lock()
	_, ok := s.docs[payload.DocID]
	s.mu.Unlock()
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown doc_id")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"answer": s.answer(payload.DocID, payload.Question)})
}

func (s *Server) handleSaveMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID       string `json:"user_id"`
		FromUser     string `json:"from_user"`
		Text         string `json:"text"`
		DocID        string `json:"docId"`
		UploadedName string `json:"uploadedName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" || payload.FromUser == "" || payload.Text == "" {
		respondError(w, http.StatusBadRequest, "Missing user_id, from_user or text")
		return
	}

	s.mu.Lock()
	s.records[payload.UserID] = append(s.records[payload.UserID], record{
		fromUser:     payload.FromUser,
		text:         payload.Text,
		docID:        payload.DocID,
		uploadedName: payload.UploadedName,
	})
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	s.mu.Lock()
	rows := append([]record(nil), s.records[userID]...)
	s.mu.Unlock()

	// Group rows by document, preserving first-seen order so the oldest
	// conversation comes back first.
	type chatGroup struct {
		Messages []map[string]string `json:"messages"`
		DocID    string              `json:"docId"`
		Name     string              `json:"uploadedName"`
	}
	var order []string
	groups := make(map[string]*chatGroup)
	for _, row := range rows {
		key := row.docID
		g, ok := groups[key]
		if !ok {
			g = &chatGroup{DocID: row.docID, Name: row.uploadedName}
			groups[key] = g
			order = append(order, key)
		}
		g.Messages = append(g.Messages, map[string]string{"from": row.fromUser, "text": row.text})
	}

	chats := make([]*chatGroup, 0, len(order))
	for _, key := range order {
		chats = append(chats, groups[key])
	}
	respondJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

// countPages approximates the page count by scanning for page object
// markers. Good enough for a stub; real counting happens service-side in
// production.
func countPages(data []byte) int {
	n := bytes.Count(data, []byte("/Type /Page")) - bytes.Count(data, []byte("/Type /Pages"))
	n += bytes.Count(data, []byte("/Type/Page")) - bytes.Count(data, []byte("/Type/Pages"))
	if n < 1 {
		return 1
	}
	return n
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}
