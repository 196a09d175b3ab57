package services

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driving"
	"github.com/custodia-labs/redline-cli/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// defaultMaxFileSize applies when no max_file_size is configured.
const defaultMaxFileSize = 50 << 20 // 50 MB

// ExtractionService dispatches files to format extractors.
type ExtractionService struct {
	registry *ExtractorRegistry
	config   driven.ConfigStore
}

// NewExtractionService creates a new extraction service.
func NewExtractionService(registry *ExtractorRegistry, config driven.ConfigStore) *ExtractionService {
	return &ExtractionService{
		registry: registry,
		config:   config,
	}
}

// ExtractFile reads the file at path and extracts its text.
func (s *ExtractionService) ExtractFile(ctx context.Context, path string) (*domain.ParsedDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	name := filepath.Base(path)
	return s.Extract(ctx, &domain.RawFile{
		Name:     name,
		MIMEType: canonicalMIME(mime.TypeByExtension(filepath.Ext(name))),
		Size:     int64(len(content)),
		Content:  content,
	})
}

// Extract resolves an extractor for the raw file and runs it. Extractor
// panics on malformed input are contained here so one bad file can
// never take the process down.
func (s *ExtractionService) Extract(ctx context.Context, raw *domain.RawFile) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	if max := s.maxFileSize(); raw.Size > max {
		return nil, fmt.Errorf("%s is %d bytes (limit %d): %w", raw.Name, raw.Size, max, domain.ErrFileTooLarge)
	}

	extractor := s.registry.Resolve(raw.MIMEType, raw.Name)
	if extractor == nil {
		return nil, domain.ErrUnsupportedType
	}
	logger.Debug("extracting %s (%s) with %T", raw.Name, raw.MIMEType, extractor)

	doc, err := safeExtract(ctx, extractor, raw)
	if err != nil {
		return nil, err
	}
	if !doc.Success {
		logger.Warn("extraction of %s produced no usable text: %s", raw.Name, doc.Error)
	}
	return doc, nil
}

// safeExtract invokes the extractor with panic recovery.
func safeExtract(ctx context.Context, extractor driven.Extractor, raw *domain.RawFile) (doc *domain.ParsedDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("extractor panic on %s: %v", raw.Name, r)
			doc = &domain.ParsedDocument{
				Success:  false,
				Content:  fmt.Sprintf("%q could not be processed. The file appears to be corrupted or uses an unsupported variant of its format.", raw.Name),
				FileName: raw.Name,
				FileType: raw.MIMEType,
				Error:    "extraction failed",
			}
			err = nil
		}
	}()
	return extractor.Extract(ctx, raw)
}

// maxFileSize returns the configured upload limit in bytes.
func (s *ExtractionService) maxFileSize() int64 {
	if s.config != nil {
		if v := s.config.GetInt("max_file_size"); v > 0 {
			return int64(v)
		}
	}
	return defaultMaxFileSize
}
