package services

import (
	"path/filepath"
	"strings"

	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

// ExtractorRegistry selects the extractor for a file.
// Dispatch is by declared MIME type first, then filename extension, with
// the highest-priority match winning. Ties break by registration order.
type ExtractorRegistry struct {
	extractors []driven.Extractor
}

// NewExtractorRegistry creates an empty registry.
func NewExtractorRegistry() *ExtractorRegistry {
	return &ExtractorRegistry{}
}

// Register adds an extractor to the registry.
func (r *ExtractorRegistry) Register(extractor driven.Extractor) {
	r.extractors = append(r.extractors, extractor)
}

// Resolve returns the best extractor for the given MIME type and
// filename. When nothing matches it falls back to the lowest-priority
// registered extractor (the plain-text catch-all), so the result is
// never nil as long as at least one extractor is registered.
func (r *ExtractorRegistry) Resolve(mimeType, fileName string) driven.Extractor {
	mimeType = canonicalMIME(mimeType)
	ext := strings.ToLower(filepath.Ext(fileName))

	var best driven.Extractor
	for _, e := range r.extractors {
		if !matches(e, mimeType, ext) {
			continue
		}
		if best == nil || e.Priority() > best.Priority() {
			best = e
		}
	}
	if best != nil {
		return best
	}

	// Catch-all: the fallback extractor registers the lowest priority.
	var fallback driven.Extractor
	for _, e := range r.extractors {
		if fallback == nil || e.Priority() < fallback.Priority() {
			fallback = e
		}
	}
	return fallback
}

// matches reports whether the extractor claims the MIME type or the
// extension. A MIME entry with a trailing "/" matches as a prefix.
func matches(e driven.Extractor, mimeType, ext string) bool {
	if mimeType != "" {
		for _, mt := range e.SupportedMIMETypes() {
			if strings.HasSuffix(mt, "/") {
				if strings.HasPrefix(mimeType, mt) {
					return true
				}
				continue
			}
			if mt == mimeType {
				return true
			}
		}
	}
	if ext != "" {
		for _, se := range e.SupportedExtensions() {
			if se == ext {
				return true
			}
		}
	}
	return false
}

// canonicalMIME strips parameters and normalises case, so
// "Text/Plain; charset=utf-8" matches "text/plain".
func canonicalMIME(mimeType string) string {
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
