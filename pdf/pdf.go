// Package pdf renders a conversation transcript to a PDF document.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"docchat"
)

// Interface compliance check.
var _ docchat.TranscriptRenderer = (*Renderer)(nil)

// DefaultFileName is the conventional name for an exported transcript.
const DefaultFileName = "chat.pdf"

// A4 portrait layout in millimeters.
const (
	marginLeft = 10
	marginTop  = 10
	wrapWidth  = 180
	lineStep   = 10
	pageBottom = 287
)

// Renderer writes transcripts as A4 PDF, one wrapped line per text row,
// each message prefixed with its origin label.
type Renderer struct{}

// New creates a transcript Renderer.
func New() *Renderer { return &Renderer{} }

// Render produces the PDF bytes for an ordered transcript. An empty
// transcript yields a valid single-page document.
func (r *Renderer) Render(messages []docchat.Message) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	y := float64(marginTop)
	for _, msg := range messages {
		text := msg.Origin.Label() + ": " + msg.Text
		for _, line := range doc.SplitText(tr(text), wrapWidth) {
			if y > pageBottom {
				doc.AddPage()
				y = marginTop
			}
			doc.Text(marginLeft, y, line)
			y += lineStep
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return buf.Bytes(), nil
}
