package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// proposalJSON is the wire shape of an AI edit proposal.
type proposalJSON struct {
	EditedText string `json:"editedText"`
	Changes    []struct {
		Type        string `json:"type"`
		Original    string `json:"original"`
		Replacement string `json:"replacement"`
		Reason      string `json:"reason"`
	} `json:"changes"`
}

// parseProposal decodes an AI edit proposal. The model may return bare
// JSON or JSON wrapped in Markdown fences with prose around it; we
// strip fences and take the outermost brace-delimited object. Any
// failure is domain.ErrProposalParse: there is no safe fallback for a
// proposal we cannot read.
func parseProposal(proposal string) (string, []domain.Change, error) {
	payload, ok := extractJSON(proposal)
	if !ok {
		return "", nil, fmt.Errorf("no JSON object in proposal: %w", domain.ErrProposalParse)
	}

	var parsed proposalJSON
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return "", nil, fmt.Errorf("%v: %w", err, domain.ErrProposalParse)
	}
	if parsed.EditedText == "" {
		return "", nil, fmt.Errorf("proposal has no editedText: %w", domain.ErrProposalParse)
	}

	changes := make([]domain.Change, 0, len(parsed.Changes))
	for i, c := range parsed.Changes {
		change := domain.Change{
			ID:          uuid.New().String(),
			Type:        domain.ChangeType(c.Type),
			Original:    c.Original,
			Replacement: c.Replacement,
			Position:    i,
			Status:      domain.StatusPending,
			Context:     c.Reason,
		}
		if !change.Valid() {
			return "", nil, fmt.Errorf("change %d (%q) is malformed: %w", i, c.Type, domain.ErrProposalParse)
		}
		changes = append(changes, change)
	}

	return parsed.EditedText, changes, nil
}

// extractJSON locates the JSON object inside model output: Markdown
// fences are removed, then everything from the first "{" to the last
// "}" is taken.
func extractJSON(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, fence := range []string{"```json", "```JSON", "```"} {
		s = strings.ReplaceAll(s, fence, "")
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
