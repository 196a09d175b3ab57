package driving

import (
	"context"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// ExtractionService turns uploaded files into analyzable plain text.
type ExtractionService interface {
	// ExtractFile reads the file at path and extracts its text.
	ExtractFile(ctx context.Context, path string) (*domain.ParsedDocument, error)

	// Extract converts an in-memory raw file into a ParsedDocument.
	// Content problems (scanned PDF, empty spreadsheet) are reported via
	// Success=false, never as an error.
	Extract(ctx context.Context, raw *domain.RawFile) (*domain.ParsedDocument, error)
}
