// Package voice provides speech input and output through an external speech
// engine reached over a websocket, plus the adapter that feeds recognized
// utterances into the conversation.
package voice

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"docchat"
)

// Interface compliance checks.
var (
	_ docchat.Recognizer  = (*Gateway)(nil)
	_ docchat.Synthesizer = (*Gateway)(nil)
)

// Frame types exchanged with the speech engine.
const (
	frameListen     = "listen"
	frameSpeak      = "speak"
	frameTranscript = "transcript"
	frameOK         = "ok"
	frameError      = "error"
)

type frame struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

// Gateway implements recognition and synthesis against a speech engine
// speaking a small JSON frame protocol. Each call dials a fresh connection;
// the engine owns microphone and audio device state between calls.
type Gateway struct {
	url    string
	dialer *websocket.Dialer
}

// GatewayOption configures a [Gateway].
type GatewayOption func(*Gateway)

// WithDialer sets a custom websocket dialer.
func WithDialer(d *websocket.Dialer) GatewayOption {
	return func(g *Gateway) { g.dialer = d }
}

// NewGateway creates a Gateway for the speech engine at url
// (e.g. ws://localhost:8765/speech).
func NewGateway(url string, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// ListenOnce asks the engine to capture one utterance and waits for its
// transcript. An empty transcript is a valid result meaning nothing was
// recognized.
func (g *Gateway) ListenOnce(ctx context.Context) (string, error) {
	resp, err := g.roundTrip(ctx, frame{Type: frameListen})
	if err != nil {
		return "", err
	}
	if resp.Type != frameTranscript {
		return "", fmt.Errorf("voice: unexpected frame %q", resp.Type)
	}
	return resp.Text, nil
}

// Speak asks the engine to vocalize text and waits for the acknowledgment.
func (g *Gateway) Speak(ctx context.Context, text string) error {
	resp, err := g.roundTrip(ctx, frame{Type: frameSpeak, Text: text})
	if err != nil {
		return err
	}
	if resp.Type != frameOK {
		return fmt.Errorf("voice: unexpected frame %q", resp.Type)
	}
	return nil
}

func (g *Gateway) roundTrip(ctx context.Context, req frame) (frame, error) {
	conn, httpResp, err := g.dialer.DialContext(ctx, g.url, nil)
	if err != nil {
		return frame{}, fmt.Errorf("voice: dialing engine: %w", err)
	}
	if httpResp != nil && httpResp.StatusCode != http.StatusSwitchingProtocols {
		conn.Close()
		return frame{}, fmt.Errorf("voice: unexpected handshake status %d", httpResp.StatusCode)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	if err := conn.WriteJSON(req); err != nil {
		return frame{}, fmt.Errorf("voice: %w", err)
	}

	var resp frame
	if err := conn.ReadJSON(&resp); err != nil {
		return frame{}, fmt.Errorf("voice: %w", err)
	}
	if resp.Type == frameError {
		return frame{}, fmt.Errorf("voice: engine: %s", resp.Message)
	}
	return resp, nil
}
