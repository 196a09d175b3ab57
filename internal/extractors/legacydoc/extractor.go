package legacydoc

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Thresholds for the tiered fallback. A tier only runs when the best
// output so far is below tierThreshold; anything under minLength at the
// end is treated as unrecoverable.
const (
	tierThreshold = 100
	minLength     = 50
	maxOutput     = 100_000
)

// Extractor recovers text from legacy binary Word documents without an
// OLE/CFB parser. It tries an ordered list of decoding heuristics and
// keeps whichever produced the longest plausible text.
type Extractor struct {
	truncateLimit int
}

// New creates a new legacy DOC extractor. truncateLimit caps the output
// length in characters; zero or negative selects the default.
func New(truncateLimit int) *Extractor {
	if truncateLimit <= 0 {
		truncateLimit = maxOutput
	}
	return &Extractor{truncateLimit: truncateLimit}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/msword"}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".doc"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 80
}

// tier is one decoding heuristic: bytes in, candidate text out.
type tier func([]byte) string

// Extract runs the tiers in order, each attempted only while the best
// candidate is still short, and returns the longest result.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawFile) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	tiers := []struct {
		fn        tier
		threshold int
	}{
		{decodeUTF16LE, 0},           // always attempted
		{decodeUTF8, tierThreshold},  // only if prior output < 100 chars
		{scanWordRuns, minLength},    // only if still < 50 chars
	}

	var best string
	for _, t := range tiers {
		if t.threshold > 0 && len(best) >= t.threshold {
			continue
		}
		if candidate := t.fn(raw.Content); len(candidate) > len(best) {
			best = candidate
		}
	}

	if len(best) < minLength {
		return &domain.ParsedDocument{
			Success:  false,
			Content:  fmt.Sprintf("Text could not be recovered from %q. Legacy .doc files store text in a binary format this tool can only read heuristically. Please re-save the document as .docx and upload it again.", raw.Name),
			FileName: raw.Name,
			FileType: "application/msword",
			Error:    "Unable to extract text from legacy DOC format",
		}, nil
	}

	if len(best) > e.truncateLimit {
		best = best[:e.truncateLimit]
	}

	return &domain.ParsedDocument{
		Success:  true,
		Content:  fmt.Sprintf("[Best-effort extraction from legacy .doc format]\n\n%s", best),
		FileName: raw.Name,
		FileType: "application/msword",
	}, nil
}

// decodeUTF16LE interprets the full buffer as UTF-16 little-endian and
// keeps Latin-1 text. Word stores most document text as UTF-16, so this
// tier usually wins on real files. Restricting to Latin-1 matters:
// arbitrary byte pairs misread as UTF-16 decode to runes all over the
// BMP (control-byte pairs land in Latin Extended, single-byte text in
// the CJK ranges), and keeping those would let this tier report
// mojibake as text.
func decodeUTF16LE(data []byte) string {
	if len(data) < 2 {
		return ""
	}
	u16 := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		u16 = append(u16, uint16(data[i])|uint16(data[i+1])<<8)
	}

	var sb strings.Builder
	for _, r := range utf16.Decode(u16) {
		if printableLatin(r) || r == '\n' || r == '\t' || r == '\r' {
			sb.WriteRune(r)
		}
	}
	return collapseWhitespace(sb.String())
}

// decodeUTF8 keeps printable ASCII plus the Latin-1 supplement from a
// UTF-8 interpretation of the buffer.
func decodeUTF8(data []byte) string {
	var sb strings.Builder
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		i += size
		if r == utf8.RuneError && size == 1 {
			continue
		}
		if printableLatin(r) || r == '\n' || r == '\t' {
			sb.WriteRune(r)
		}
	}
	return collapseWhitespace(sb.String())
}

var wordRunRe = regexp.MustCompile(`[A-Za-z]{3,}(?:\s+[A-Za-z]{2,})*`)

// scanWordRuns is the last resort: pull out anything that looks like
// runs of words and join the matches.
func scanWordRuns(data []byte) string {
	matches := wordRunRe.FindAllString(string(data), -1)
	return strings.Join(matches, " ")
}

// printableLatin reports printable ASCII plus the Latin-1 supplement.
// The range stops at 0xFF: admitting Latin Extended would let control
// byte pairs (e.g. 0x00,0x01 → U+0100) pass the UTF-16 tier as text.
func printableLatin(r rune) bool {
	if r >= 0x20 && r <= 0x7E {
		return true
	}
	return r >= 0xA0 && r <= 0xFF
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
