package rtf

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor strips RTF control structure down to the document text.
type Extractor struct{}

// New creates a new RTF extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/rtf", "text/rtf"}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".rtf"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 55
}

// metadataGroups are brace-delimited groups that carry no document text.
var metadataGroups = []string{`\fonttbl`, `\colortbl`, `\stylesheet`, `\info`}

var (
	tripleNewlineRe = regexp.MustCompile(`\n{3,}`)
	spaceRunRe      = regexp.MustCompile(`[ \t]{2,}`)
)

// Extract converts an RTF stream to plain text.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawFile) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := stripRTF(string(raw.Content))

	if len(strings.TrimSpace(text)) < 10 {
		return &domain.ParsedDocument{
			Success:  false,
			Content:  fmt.Sprintf("No readable text could be recovered from %q. The RTF file may be empty or heavily formatted. Converting it to DOCX or plain text should help.", raw.Name),
			FileName: raw.Name,
			FileType: "application/rtf",
			Error:    "no extractable text in RTF",
		}, nil
	}

	return &domain.ParsedDocument{
		Success:  true,
		Content:  text,
		FileName: raw.Name,
		FileType: "application/rtf",
	}, nil
}

// stripRTF removes RTF structure: the header control word, metadata
// groups, then every remaining control word, keeping only document text.
func stripRTF(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, `{\rtf`) {
		text = text[1:] // drop the opening brace; \rtfN falls to the control-word pass
	}

	for _, group := range metadataGroups {
		text = removeGroup(text, group)
	}

	text = processControlWords(text)

	text = tripleNewlineRe.ReplaceAllString(text, "\n\n")
	text = spaceRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// removeGroup deletes a brace-balanced group introduced by the given
// control word, e.g. {\fonttbl ...}.
func removeGroup(text, keyword string) string {
	for {
		idx := strings.Index(text, "{"+keyword)
		if idx < 0 {
			return text
		}
		depth := 0
		end := -1
		for i := idx; i < len(text); i++ {
			switch text[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					end = i
				}
			}
			if end >= 0 {
				break
			}
		}
		if end < 0 {
			// Unbalanced group; drop everything from the opener.
			return text[:idx]
		}
		text = text[:idx] + text[end+1:]
	}
}

// processControlWords walks the stream once: \par and \line become
// newlines, \tab a tab, \'XX decodes a hex byte, escaped braces and
// backslashes become literals, and every other control word (with its
// optional numeric parameter and trailing space) is dropped. Unescaped
// braces are removed.
func processControlWords(text string) string {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '{' || c == '}' {
			continue
		}
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		if i+1 >= len(text) {
			break
		}
		next := text[i+1]
		switch {
		case next == '\'' && i+3 < len(text):
			if v, err := strconv.ParseUint(text[i+2:i+4], 16, 8); err == nil {
				sb.WriteByte(byte(v))
			}
			i += 3
		case next == '\\' || next == '{' || next == '}':
			sb.WriteByte(next)
			i++
		case isLetter(next):
			j := i + 1
			for j < len(text) && isLetter(text[j]) {
				j++
			}
			word := text[i+1 : j]
			k := j
			if k < len(text) && text[k] == '-' {
				k++
			}
			for k < len(text) && text[k] >= '0' && text[k] <= '9' {
				k++
			}
			switch word {
			case "par", "line":
				sb.WriteByte('\n')
			case "tab":
				sb.WriteByte('\t')
			}
			if k < len(text) && text[k] == ' ' {
				k++
			}
			i = k - 1
		default:
			// Symbol control like \~ or \*: dropped.
			i++
		}
	}
	return sb.String()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
