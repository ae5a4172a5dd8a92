package docchat

import "errors"

// Sentinel errors for upload validation failures. Transport failures from
// collaborators are wrapped by their adapters and matched with errors.Is
// against ErrIngestion.
var (
	// ErrUnsupportedType indicates the candidate file is not a PDF.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrFileTooLarge indicates the candidate file exceeds MaxUploadBytes.
	ErrFileTooLarge = errors.New("file too large")

	// ErrTooManyPages indicates ingestion succeeded remotely but the page
	// count exceeds MaxPages, so the document was not bound.
	ErrTooManyPages = errors.New("too many pages")

	// ErrIngestion indicates the remote ingestion call failed.
	ErrIngestion = errors.New("ingestion failed")

	// ErrNoSuchSession indicates a session index outside the archive.
	ErrNoSuchSession = errors.New("no such session")
)
