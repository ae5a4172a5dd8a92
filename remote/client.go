// Package remote implements the document-chat service protocol over HTTP.
// One Client covers all three remote concerns: ingestion, answering, and
// history persistence.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"docchat"
)

// Interface compliance checks.
var (
	_ docchat.Ingestor     = (*Client)(nil)
	_ docchat.Answerer     = (*Client)(nil)
	_ docchat.HistoryStore = (*Client)(nil)
)

const (
	uploadPath   = "/upload-pdf/"
	queryPath    = "/query/"
	savePath     = "/save-message/"
	messagesPath = "/get-messages/"
)

// Client talks to the document-chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a [Client] for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Ingest uploads document bytes as a multipart form and returns the stored
// document's identity. The page count comes from the service; the client
// never parses PDF content itself.
func (c *Client) Ingest(ctx context.Context, name string, data []byte) (docchat.IngestResult, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreatePart(fileHeader(name))
	if err != nil {
		return docchat.IngestResult{}, fmt.Errorf("remote: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return docchat.IngestResult{}, fmt.Errorf("remote: %w", err)
	}
	if err := w.Close(); err != nil {
		return docchat.IngestResult{}, fmt.Errorf("remote: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, &body)
	if err != nil {
		return docchat.IngestResult{}, fmt.Errorf("remote: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out uploadResponse
	if err := c.do(req, &out); err != nil {
		return docchat.IngestResult{}, err
	}
	return docchat.IngestResult{DocumentID: out.DocID, PageCount: out.Pages}, nil
}

// Answer queries the answering service about a previously ingested document.
func (c *Client) Answer(ctx context.Context, documentID, question string) (string, error) {
	body, err := json.Marshal(queryRequest{DocID: documentID, Question: question})
	if err != nil {
		return "", fmt.Errorf("remote: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+queryPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("remote: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out queryResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}

// Append mirrors one message row to the persistence service.
func (c *Client) Append(ctx context.Context, rec docchat.Record) error {
	body, err := json.Marshal(saveRequest{
		UserID:       rec.UserID,
		FromUser:     string(rec.Origin),
		Text:         rec.Text,
		DocID:        rec.DocumentID,
		UploadedName: rec.DocumentLabel,
	})
	if err != nil {
		return fmt.Errorf("remote: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+savePath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("remote: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

// FetchHistory retrieves the user's stored messages grouped by document and
// converts each group to a session. Wire order is preserved; the service
// keeps rows in insertion order.
func (c *Client) FetchHistory(ctx context.Context, userID string) ([]docchat.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+messagesPath+url.PathEscape(userID), nil)
	if err != nil {
		return nil, fmt.Errorf("remote: %w", err)
	}

	var out messagesResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	sessions := make([]docchat.Session, 0, len(out.Chats))
	for _, chat := range out.Chats {
		s := docchat.Session{
			DocumentID:    chat.DocID,
			DocumentLabel: chat.UploadedName,
		}
		for _, m := range chat.Messages {
			s.Messages = append(s.Messages, docchat.Message{
				Origin: docchat.Origin(m.From),
				Text:   m.Text,
			})
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// do executes the request and decodes a successful JSON response into out,
// which may be nil when the caller only cares about success.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseHTTPError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decoding response: %w", err)
	}
	return nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("remote: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Detail == "" {
		return fmt.Errorf("remote: HTTP %d: %s", resp.StatusCode, string(body))
	}
	return fmt.Errorf("remote: HTTP %d: %s", resp.StatusCode, apiErr.Detail)
}

// fileHeader builds the multipart part header for the uploaded file. The
// part is typed as PDF explicitly rather than the default octet-stream.
func fileHeader(name string) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", docchat.PDFMediaType)
	return h
}
