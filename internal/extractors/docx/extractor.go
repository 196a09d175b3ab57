package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{docxMIME}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".docx"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 85
}

// Extract converts a DOCX archive to plain text.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawFile) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return &domain.ParsedDocument{
			Success:  false,
			Content:  fmt.Sprintf("%q could not be opened as a DOCX archive. The file may be corrupted, or it may be a legacy .doc file with the wrong extension.", raw.Name),
			FileName: raw.Name,
			FileType: docxMIME,
			Error:    "not a valid DOCX archive",
		}, nil
	}

	docXML, err := readArchiveFile(reader, "word/document.xml")
	if err != nil {
		return &domain.ParsedDocument{
			Success:  false,
			Content:  fmt.Sprintf("%q is a ZIP archive but does not contain word/document.xml, so it is not a Word document.", raw.Name),
			FileName: raw.Name,
			FileType: docxMIME,
			Error:    "missing word/document.xml",
		}, nil
	}

	text, richCount := parseDocumentXML(docXML)

	if strings.TrimSpace(text) == "" {
		return &domain.ParsedDocument{
			Success:  false,
			Content:  fmt.Sprintf("No text content was found in %q. The document may contain only images, charts, or embedded objects. Exporting it to plain text first should help.", raw.Name),
			FileName: raw.Name,
			FileType: docxMIME,
			Error:    "no text content in document",
		}, nil
	}

	if richCount > 0 {
		text += "\n\n[Note: this document contains images, charts, or embedded objects; formatting has been simplified to plain text]"
	}

	return &domain.ParsedDocument{
		Success:  true,
		Content:  text,
		FileName: raw.Name,
		FileType: docxMIME,
	}, nil
}

// readArchiveFile returns the decompressed contents of one archive entry.
func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, errors.New("entry not found: " + name)
}

// richElements are WordprocessingML elements whose content cannot be
// rendered as plain text.
var richElements = map[string]bool{
	"drawing": true,
	"pict":    true,
	"object":  true,
	"chart":   true,
}

// parseDocumentXML walks the document token stream. Paragraphs become
// newline-separated lines, tabs and breaks keep their plain-text
// equivalents, and rich elements are counted so the caller can flag
// simplified formatting.
func parseDocumentXML(content []byte) (string, int) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var (
		sb        strings.Builder
		inText    bool
		richCount int
		para      strings.Builder
		started   bool
	)

	flushPara := func() {
		if started {
			sb.WriteString("\n")
		}
		sb.WriteString(para.String())
		para.Reset()
		started = true
	}

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteString("\t")
			case "br", "cr":
				para.WriteString("\n")
			default:
				if richElements[t.Name.Local] {
					richCount++
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flushPara()
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	if para.Len() > 0 {
		flushPara()
	}

	return strings.TrimSpace(sb.String()), richCount
}
