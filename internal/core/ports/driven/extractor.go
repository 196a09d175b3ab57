package driven

import (
	"context"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// Extractor converts a raw uploaded file into plain text.
// Each extractor handles specific MIME types and extensions (e.g., PDF, RTF).
//
// Extractors never return an error for content problems: a scanned PDF,
// an empty spreadsheet, or undecodable bytes all produce a ParsedDocument
// with Success=false and guidance text. The error return is reserved for
// nil input and programming mistakes.
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	// A trailing "/" entry matches as a prefix (e.g., "image/").
	SupportedMIMETypes() []string

	// SupportedExtensions returns lowercase extensions with the leading
	// dot (e.g., ".docx") matched when the MIME type is missing or generic.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	// The fallback text extractor returns 1-9; format-specific
	// extractors return 50-100.
	Priority() int

	// Extract converts the raw file into a ParsedDocument.
	Extract(ctx context.Context, raw *domain.RawFile) (*domain.ParsedDocument, error)
}
