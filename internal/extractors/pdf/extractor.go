package pdf

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// lineBreakDelta is the vertical distance, in PDF units, beyond which
// two text runs are treated as separate lines.
const lineBreakDelta = 5.0

// Extractor handles PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 90
}

// Extract pulls positioned text runs out of each page and reassembles
// lines from their Y coordinates. The PDF library panics on malformed
// input, so page extraction is isolated per page.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawFile) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return &domain.ParsedDocument{
			Success:  false,
			Content:  fmt.Sprintf("%q could not be opened as a PDF. The file may be corrupted or password-protected. Removing the password or re-exporting the PDF should help.", raw.Name),
			FileName: raw.Name,
			FileType: "application/pdf",
			Error:    "unable to open PDF",
		}, nil
	}

	// NumPage can also panic on malformed cross-reference tables.
	pages := 0
	func() {
		defer func() { _ = recover() }()
		pages = reader.NumPage()
	}()

	var sb strings.Builder
	hasText := false
	for i := 1; i <= pages; i++ {
		if i > 1 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("--- Page %d ---\n", i))

		pageText := extractPage(reader, i)
		if strings.TrimSpace(pageText) != "" {
			hasText = true
		}
		sb.WriteString(pageText)
	}

	if !hasText {
		return &domain.ParsedDocument{
			Success:   false,
			Content:   fmt.Sprintf("No text layer was found in %q (%d pages). The PDF is likely scanned images without OCR. Running it through an OCR tool and uploading the result will make it searchable.", raw.Name, pages),
			FileName:  raw.Name,
			FileType:  "application/pdf",
			PageCount: pages,
			Error:     "no extractable text in PDF",
		}, nil
	}

	return &domain.ParsedDocument{
		Success:   true,
		Content:   strings.TrimSpace(sb.String()),
		FileName:  raw.Name,
		FileType:  "application/pdf",
		PageCount: pages,
	}, nil
}

// extractPage returns the reassembled text of one page. A panic inside
// the PDF library poisons only this page.
func extractPage(reader *pdf.Reader, number int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = "[Error extracting this page]"
		}
	}()

	page := reader.Page(number)
	if page.V.IsNull() {
		return ""
	}
	return runsToText(page.Content().Text)
}

// runsToText joins positioned text runs into lines: a vertical jump
// larger than lineBreakDelta starts a new line, otherwise runs on the
// same baseline are joined with a single space unless one side already
// ends or starts with whitespace.
func runsToText(runs []pdf.Text) string {
	var sb strings.Builder
	var lastY float64
	for i, run := range runs {
		if run.S == "" {
			continue
		}
		switch {
		case sb.Len() == 0:
			// first run, no separator
		case math.Abs(run.Y-lastY) > lineBreakDelta:
			sb.WriteString("\n")
		case !whitespaceBoundary(runs, i):
			sb.WriteString(" ")
		}
		sb.WriteString(run.S)
		lastY = run.Y
	}
	return sb.String()
}

// whitespaceBoundary reports whether the run at index i already touches
// whitespace on either side, so no separator is needed.
func whitespaceBoundary(runs []pdf.Text, i int) bool {
	if strings.HasPrefix(runs[i].S, " ") {
		return true
	}
	for j := i - 1; j >= 0; j-- {
		if runs[j].S == "" {
			continue
		}
		return strings.HasSuffix(runs[j].S, " ")
	}
	return false
}
