package ics

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor parses iCalendar files into a readable event listing.
type Extractor struct{}

// New creates a new calendar extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/calendar"}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".ics", ".cal", ".ical", ".ifb", ".vcs"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 60
}

// event holds the fields we surface for one VEVENT.
type event struct {
	Summary     string
	Description string
	Location    string
	Start       string
	End         string
	Organizer   string
	Attendees   []string
}

// Extract parses VEVENT blocks and renders them as numbered entries.
// Events without a summary are dropped.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawFile) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	events := parseEvents(string(raw.Content))

	if len(events) == 0 {
		return &domain.ParsedDocument{
			Success:  false,
			Content:  fmt.Sprintf("No calendar events were found in %q. The file may be empty or use an unsupported calendar structure.", raw.Name),
			FileName: raw.Name,
			FileType: "text/calendar",
			Error:    "no events found",
		}, nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Calendar: %s (%d events)\n", raw.Name, len(events)))
	for i, ev := range events {
		sb.WriteString(fmt.Sprintf("\nEvent %d: %s\n", i+1, ev.Summary))
		if ev.Start != "" && ev.End != "" {
			sb.WriteString(fmt.Sprintf("  When: %s to %s\n", ev.Start, ev.End))
		} else if ev.Start != "" {
			sb.WriteString(fmt.Sprintf("  When: %s\n", ev.Start))
		}
		if ev.Location != "" {
			sb.WriteString(fmt.Sprintf("  Location: %s\n", ev.Location))
		}
		if ev.Organizer != "" {
			sb.WriteString(fmt.Sprintf("  Organizer: %s\n", ev.Organizer))
		}
		if len(ev.Attendees) > 0 {
			sb.WriteString(fmt.Sprintf("  Attendees: %s\n", strings.Join(ev.Attendees, ", ")))
		}
		if ev.Description != "" {
			sb.WriteString(fmt.Sprintf("  Description: %s\n", ev.Description))
		}
	}

	return &domain.ParsedDocument{
		Success:  true,
		Content:  sb.String(),
		FileName: raw.Name,
		FileType: "text/calendar",
	}, nil
}

// parseEvents runs a line-oriented state machine over unfolded lines.
func parseEvents(content string) []event {
	var events []event
	var current *event

	for _, line := range unfoldLines(content) {
		name, params, value := splitField(line)

		switch {
		case name == "BEGIN" && value == "VEVENT":
			current = &event{}
			continue
		case name == "END" && value == "VEVENT":
			if current != nil && current.Summary != "" {
				events = append(events, *current)
			}
			current = nil
			continue
		}

		if current == nil {
			continue
		}

		switch name {
		case "SUMMARY":
			current.Summary = decodeValue(value)
		case "DESCRIPTION":
			current.Description = decodeValue(value)
		case "LOCATION":
			current.Location = decodeValue(value)
		case "DTSTART":
			current.Start = formatDateTime(value)
		case "DTEND":
			current.End = formatDateTime(value)
		case "ORGANIZER":
			current.Organizer = extractEmail(value, params)
		case "ATTENDEE":
			if email := extractEmail(value, params); email != "" {
				current.Attendees = append(current.Attendees, email)
			}
		}
	}

	return events
}

// unfoldLines joins RFC 5545 folded lines: a line starting with a space
// or tab continues the previous logical line, minus the fold character.
func unfoldLines(content string) []string {
	rawLines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	var lines []string
	for _, line := range rawLines {
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// splitField breaks "NAME;PARAMS:VALUE" into its parts. Parameters are
// kept only for fields that need them (CN= fallback on attendees).
func splitField(line string) (name, params, value string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return strings.TrimSpace(line), "", ""
	}
	name, params, _ = strings.Cut(field, ";")
	return strings.TrimSpace(name), params, strings.TrimSpace(value)
}

// decodeValue reverses iCalendar text escaping.
func decodeValue(value string) string {
	value = strings.ReplaceAll(value, `\n`, "\n")
	value = strings.ReplaceAll(value, `\N`, "\n")
	value = strings.ReplaceAll(value, `\,`, ",")
	value = strings.ReplaceAll(value, `\;`, ";")
	value = strings.ReplaceAll(value, `\\`, `\`)
	return value
}

// formatDateTime normalises iCalendar timestamps:
// 20240115 becomes 2024-01-15, an optional THHMMSS suffix appends HH:MM,
// and a trailing Z adds a UTC marker. Unparseable input passes through.
func formatDateTime(value string) string {
	if len(value) < 8 || !allDigits(value[:8]) {
		return value
	}
	date := fmt.Sprintf("%s-%s-%s", value[:4], value[4:6], value[6:8])

	rest := value[8:]
	if len(rest) >= 7 && rest[0] == 'T' && allDigits(rest[1:7]) {
		date += fmt.Sprintf(" %s:%s", rest[1:3], rest[3:5])
		if strings.HasSuffix(rest, "Z") {
			date += " UTC"
		}
	}
	return date
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// extractEmail pulls a contact out of an ORGANIZER/ATTENDEE value:
// mailto: prefix first, then a bare email pattern, then the CN= display
// name from the field parameters.
func extractEmail(value, params string) string {
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "mailto:") {
		return value[len("mailto:"):]
	}
	if m := emailRe.FindString(value); m != "" {
		return m
	}
	for _, p := range strings.Split(params, ";") {
		if cn, ok := strings.CutPrefix(p, "CN="); ok {
			return strings.Trim(cn, `"`)
		}
	}
	return ""
}
