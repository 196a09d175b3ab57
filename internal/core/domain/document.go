package domain

// RawFile represents an uploaded file before extraction.
// It is the input to the extraction pipeline.
type RawFile struct {
	// Name is the original filename, including extension.
	Name string

	// MIMEType is the declared content type (e.g., "application/pdf").
	// May be empty or wrong; the classifier also inspects the extension.
	MIMEType string

	// Size is the file size in bytes.
	Size int64

	// Content is the raw bytes.
	Content []byte
}

// ParsedDocument is the result of one extraction call.
// Content is never empty: a failed extraction still carries
// user-facing guidance text explaining what went wrong.
type ParsedDocument struct {
	// Success reports whether usable text was recovered.
	Success bool

	// Content is the extracted text, or an explanatory fallback message.
	Content string

	// FileName is the source filename.
	FileName string

	// FileType is the canonical MIME type resolved by the classifier.
	FileType string

	// PageCount is populated for PDF documents whenever the file opened,
	// even if no text was recovered. Zero for all other formats.
	PageCount int

	// Error is a machine-readable failure reason, empty on success.
	Error string
}
