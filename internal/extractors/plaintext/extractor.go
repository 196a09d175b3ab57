package plaintext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain and structured text files. It is the catch-all:
// any file no other extractor claims lands here.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/markdown",
		"text/html",
		"text/xml",
		"application/json",
		"application/xml",
	}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".txt", ".csv", ".json", ".xml", ".html", ".htm", ".md"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// labels maps extensions to the human-readable label used in the wrapper.
var labels = map[string]string{
	".txt":  "TEXT FILE",
	".csv":  "CSV FILE",
	".json": "JSON FILE",
	".xml":  "XML FILE",
	".html": "HTML FILE",
	".htm":  "HTML FILE",
	".md":   "MARKDOWN FILE",
}

// Extract wraps the decoded text with a label and filename header.
// The content itself passes through unmodified, so extraction is lossless:
// stripping the header recovers the source text exactly.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawFile) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	ext := strings.ToLower(filepath.Ext(raw.Name))
	label, ok := labels[ext]
	if !ok {
		label = "FILE"
	}

	content := string(raw.Content)
	if strings.TrimSpace(content) == "" {
		return &domain.ParsedDocument{
			Success:  false,
			Content:  fmt.Sprintf("The file %q is empty. Please upload a file with text content.", raw.Name),
			FileName: raw.Name,
			FileType: mimeFor(ext, raw.MIMEType),
			Error:    "empty file",
		}, nil
	}

	if ext == ".json" {
		content = prettyJSON(content)
	}

	return &domain.ParsedDocument{
		Success:  true,
		Content:  fmt.Sprintf("=== %s: %s ===\n\n%s", label, raw.Name, content),
		FileName: raw.Name,
		FileType: mimeFor(ext, raw.MIMEType),
	}, nil
}

// prettyJSON re-indents JSON with two spaces. On parse failure the
// content passes through unchanged rather than failing the extraction.
func prettyJSON(content string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(content), "", "  "); err != nil {
		return content
	}
	return buf.String()
}

// mimeFor resolves a canonical MIME type from the extension, falling back
// to the declared type, then text/plain.
func mimeFor(ext, declared string) string {
	switch ext {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".xml":
		return "application/xml"
	case ".html", ".htm":
		return "text/html"
	case ".md":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	}
	if declared != "" {
		return declared
	}
	return "text/plain"
}
