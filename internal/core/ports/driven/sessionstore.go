package driven

import (
	"context"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// SessionStore persists redline sessions.
// A session's text and change list are immutable after Save; only change
// statuses mutate, through UpdateStatuses, which must be atomic so a
// bulk accept/decline/reset is observed as a single state update.
type SessionStore interface {
	// Save persists a new session, replacing any previous session for
	// the same ID.
	Save(ctx context.Context, result *domain.RedlineResult) error

	// Get retrieves a session by ID. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.RedlineResult, error)

	// Latest returns the most recently created session.
	// Returns domain.ErrNoSession when none exist.
	Latest(ctx context.Context) (*domain.RedlineResult, error)

	// UpdateStatuses applies the given change-ID to status mapping in a
	// single transaction.
	UpdateStatuses(ctx context.Context, sessionID string, statuses map[string]domain.ChangeStatus) error

	// Delete removes a session and its changes.
	Delete(ctx context.Context, id string) error
}
