package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driving"
	"github.com/custodia-labs/redline-cli/internal/logger"
)

// Ensure RedlineService implements the interface.
var _ driving.RedlineService = (*RedlineService)(nil)

// RedlineService manages tracked-change sessions.
type RedlineService struct {
	store driven.SessionStore
}

// NewRedlineService creates a new redline service.
func NewRedlineService(store driven.SessionStore) *RedlineService {
	return &RedlineService{store: store}
}

// CreateSession parses an AI edit proposal and persists a new session
// with every change pending.
func (s *RedlineService) CreateSession(ctx context.Context, fileName, originalText, proposal string) (*domain.RedlineResult, error) {
	if originalText == "" {
		return nil, fmt.Errorf("original text is empty: %w", domain.ErrInvalidInput)
	}

	editedText, changes, err := parseProposal(proposal)
	if err != nil {
		return nil, err
	}

	result := &domain.RedlineResult{
		ID:           uuid.New().String(),
		FileName:     fileName,
		OriginalText: originalText,
		EditedText:   editedText,
		Changes:      changes,
		CreatedAt:    time.Now(),
	}

	if err := s.store.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	logger.Info("created redline session %s with %d changes", result.ID, len(changes))
	return result, nil
}

// Get retrieves a session by ID, or the latest session when id is empty.
func (s *RedlineService) Get(ctx context.Context, id string) (*domain.RedlineResult, error) {
	if id == "" {
		return s.store.Latest(ctx)
	}
	return s.store.Get(ctx, id)
}

// Accept marks one change accepted.
func (s *RedlineService) Accept(ctx context.Context, sessionID, changeID string) error {
	return s.setStatus(ctx, sessionID, changeID, domain.StatusAccepted)
}

// Decline marks one change declined.
func (s *RedlineService) Decline(ctx context.Context, sessionID, changeID string) error {
	return s.setStatus(ctx, sessionID, changeID, domain.StatusDeclined)
}

func (s *RedlineService) setStatus(ctx context.Context, sessionID, changeID string, status domain.ChangeStatus) error {
	result, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	change := result.ChangeByID(changeID)
	if change == nil {
		return fmt.Errorf("change %s: %w", changeID, domain.ErrNotFound)
	}
	if change.Status == status {
		return nil // already decided, idempotent
	}
	return s.store.UpdateStatuses(ctx, result.ID, map[string]domain.ChangeStatus{changeID: status})
}

// AcceptAll marks every change accepted in one atomic update.
func (s *RedlineService) AcceptAll(ctx context.Context, sessionID string) error {
	return s.setAll(ctx, sessionID, domain.StatusAccepted)
}

// DeclineAll marks every change declined in one atomic update.
func (s *RedlineService) DeclineAll(ctx context.Context, sessionID string) error {
	return s.setAll(ctx, sessionID, domain.StatusDeclined)
}

// ResetAll returns every change to pending in one atomic update.
func (s *RedlineService) ResetAll(ctx context.Context, sessionID string) error {
	return s.setAll(ctx, sessionID, domain.StatusPending)
}

func (s *RedlineService) setAll(ctx context.Context, sessionID string, status domain.ChangeStatus) error {
	result, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	statuses := make(map[string]domain.ChangeStatus, len(result.Changes))
	for _, c := range result.Changes {
		statuses[c.ID] = status
	}
	return s.store.UpdateStatuses(ctx, result.ID, statuses)
}

// GenerateFinalDocument reconstructs the document under the current
// decisions. The result depends only on the session's immutable texts
// and the change statuses, so repeated calls are identical.
func (s *RedlineService) GenerateFinalDocument(ctx context.Context, sessionID string) (string, error) {
	result, err := s.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return reconstruct(result), nil
}

// reconstruct applies the accepted subset of changes to the original
// text. The two unanimous cases short-circuit to the stored texts so
// they are exact, whatever the span resolution would produce.
func reconstruct(result *domain.RedlineResult) string {
	switch {
	case result.AllAccepted():
		return result.EditedText
	case result.NoneAccepted():
		return result.OriginalText
	}

	spans := resolveSpans(result)

	// Apply in descending offset order so earlier offsets stay valid.
	// At equal offsets the replaced span applies first, so an insertion
	// anchored there lands before the replacement text instead of being
	// spliced by it.
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].offset != spans[j].offset {
			return spans[i].offset > spans[j].offset
		}
		return spans[i].length > spans[j].length
	})

	text := result.OriginalText
	for _, sp := range spans {
		if sp.change.Status != domain.StatusAccepted {
			continue
		}
		text = text[:sp.offset] + sp.change.Replacement + text[sp.offset+sp.length:]
	}
	return text
}

// span anchors one change to a byte range of the original text.
type span struct {
	change domain.Change
	offset int
	length int // 0 for insertions
}

// insertionContext is the longest edited-text suffix used to anchor an
// insertion into the original text.
const insertionContext = 64

// resolveSpans maps each change onto the original text. A forward
// cursor walks the text in proposal order, so a change whose Original
// appears several times binds to its first occurrence not already
// claimed by an earlier change. Changes that cannot be located are
// dropped from mixed reconstruction.
func resolveSpans(result *domain.RedlineResult) []span {
	original := result.OriginalText

	ordered := make([]domain.Change, len(result.Changes))
	copy(ordered, result.Changes)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	var spans []span
	cursor := 0
	for _, c := range ordered {
		if c.Type == domain.ChangeInsertion {
			if offset, ok := anchorInsertion(result, c); ok {
				spans = append(spans, span{change: c, offset: offset})
			}
			continue
		}

		offset := strings.Index(original[cursor:], c.Original)
		if offset >= 0 {
			offset += cursor
		} else {
			// Out-of-order proposal; retry from the start.
			offset = strings.Index(original, c.Original)
		}
		if offset < 0 {
			logger.Warn("change %s: original text not found, skipping", c.ID)
			continue
		}
		spans = append(spans, span{change: c, offset: offset, length: len(c.Original)})
		cursor = offset + len(c.Original)
	}
	return spans
}

// anchorInsertion finds where inserted text belongs in the original by
// matching the text that precedes it in the edited version: the longest
// suffix of that preceding context found in the original marks the
// insertion point.
func anchorInsertion(result *domain.RedlineResult, c domain.Change) (int, bool) {
	at := strings.Index(result.EditedText, c.Replacement)
	if at < 0 {
		return 0, false
	}
	prefix := result.EditedText[:at]
	if prefix == "" {
		return 0, true // inserted at the very start
	}

	maxLen := insertionContext
	if len(prefix) < maxLen {
		maxLen = len(prefix)
	}
	for l := maxLen; l > 0; l-- {
		ctx := prefix[len(prefix)-l:]
		if pos := strings.Index(result.OriginalText, ctx); pos >= 0 {
			return pos + len(ctx), true
		}
	}
	return 0, false
}
