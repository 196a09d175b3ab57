package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// fakeExtractor is a configurable test extractor.
type fakeExtractor struct {
	name     string
	mimes    []string
	exts     []string
	priority int
	doc      *domain.ParsedDocument
	err      error
	panics   bool
}

func (f *fakeExtractor) SupportedMIMETypes() []string  { return f.mimes }
func (f *fakeExtractor) SupportedExtensions() []string { return f.exts }
func (f *fakeExtractor) Priority() int                 { return f.priority }
func (f *fakeExtractor) Extract(_ context.Context, _ *domain.RawFile) (*domain.ParsedDocument, error) {
	if f.panics {
		panic("malformed input")
	}
	return f.doc, f.err
}

func TestResolve_ByMIMEType(t *testing.T) {
	registry := NewExtractorRegistry()
	pdf := &fakeExtractor{name: "pdf", mimes: []string{"application/pdf"}, priority: 90}
	text := &fakeExtractor{name: "text", mimes: []string{"text/plain"}, priority: 5}
	registry.Register(pdf)
	registry.Register(text)

	assert.Same(t, pdf, registry.Resolve("application/pdf", "contract.pdf"))
	assert.Same(t, text, registry.Resolve("text/plain", "notes.txt"))
}

func TestResolve_MIMEPrefix(t *testing.T) {
	registry := NewExtractorRegistry()
	image := &fakeExtractor{name: "image", mimes: []string{"image/"}, priority: 100}
	registry.Register(image)

	assert.Same(t, image, registry.Resolve("image/png", "scan.png"))
	assert.Same(t, image, registry.Resolve("image/tiff", "scan.tiff"))
}

func TestResolve_ExtensionFallback(t *testing.T) {
	registry := NewExtractorRegistry()
	docx := &fakeExtractor{name: "docx", exts: []string{".docx"}, priority: 85}
	registry.Register(docx)

	// MIME missing or generic; extension decides.
	assert.Same(t, docx, registry.Resolve("", "Agreement.DOCX"))
	assert.Same(t, docx, registry.Resolve("application/octet-stream", "agreement.docx"))
}

func TestResolve_HighestPriorityWins(t *testing.T) {
	registry := NewExtractorRegistry()
	low := &fakeExtractor{name: "low", exts: []string{".csv"}, priority: 5}
	high := &fakeExtractor{name: "high", exts: []string{".csv"}, priority: 75}
	registry.Register(low)
	registry.Register(high)

	assert.Same(t, high, registry.Resolve("", "billing.csv"))
}

func TestResolve_CatchAll(t *testing.T) {
	registry := NewExtractorRegistry()
	pdf := &fakeExtractor{name: "pdf", mimes: []string{"application/pdf"}, priority: 90}
	text := &fakeExtractor{name: "text", mimes: []string{"text/plain"}, priority: 5}
	registry.Register(pdf)
	registry.Register(text)

	// Unknown format falls back to the lowest-priority extractor.
	got := registry.Resolve("application/x-mystery", "payload.bin")
	require.NotNil(t, got)
	assert.Same(t, text, got)
}

func TestResolve_MIMEParametersIgnored(t *testing.T) {
	registry := NewExtractorRegistry()
	text := &fakeExtractor{name: "text", mimes: []string{"text/plain"}, priority: 5}
	registry.Register(text)

	assert.Same(t, text, registry.Resolve("Text/Plain; charset=utf-8", "notes.txt"))
}
