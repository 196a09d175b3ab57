package image

import (
	"context"
	"fmt"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor is the terminal leaf for image files. It never attempts
// extraction: images have no machine-readable text without OCR, which is
// out of scope, so the result is always guidance on how to proceed.
type Extractor struct{}

// New creates a new image handler.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this handler claims.
// The trailing-slash entry matches every image/* subtype.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"image/"}
}

// SupportedExtensions returns the extensions this handler claims.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".svg", ".tiff", ".heic"}
}

// Priority returns the selection priority. Images are checked first.
func (e *Extractor) Priority() int {
	return 100
}

// Extract always reports failure with conversion suggestions.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawFile) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := fmt.Sprintf(`The file %q is an image and contains no extractable text.

To analyze this document, try one of the following:
  1. Run OCR (optical character recognition) on the image and upload the result.
  2. If the image is a scan of a document, request the original file instead.
  3. Re-save the content as a PDF with selectable text, DOCX, or plain text.`, raw.Name)

	return &domain.ParsedDocument{
		Success:  false,
		Content:  content,
		FileName: raw.Name,
		FileType: raw.MIMEType,
		Error:    "image files are not supported for text extraction",
	}, nil
}
