package docchat

// Upload limits applied by SubmitDocument before any remote call.
const (
	// MaxUploadBytes is the largest accepted file size (10 MiB).
	MaxUploadBytes = 10 << 20

	// MaxPages is the largest accepted page count. Documents above it are
	// rejected even after successful remote ingestion.
	MaxPages = 10

	// PDFMediaType is the only accepted upload media type.
	PDFMediaType = "application/pdf"
)

// Upload is a candidate document as handed to SubmitDocument.
type Upload struct {
	Name      string
	MediaType string
	Data      []byte
}

// Binding is the result of a successful upload: the document identity now
// attached to the active session.
type Binding struct {
	DocumentID string
	Label      string
	PageCount  int
}
