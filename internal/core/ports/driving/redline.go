package driving

import (
	"context"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
)

// ExportVariant selects which document variant to export.
type ExportVariant string

const (
	// ExportCurrent is the reconstruction under the current decisions.
	ExportCurrent ExportVariant = "current"

	// ExportFinal is the AI's fully-edited text, verbatim.
	ExportFinal ExportVariant = "final"

	// ExportRedlined is a human-readable change log.
	ExportRedlined ExportVariant = "redlined"

	// ExportOriginal is the extracted source text, verbatim.
	ExportOriginal ExportVariant = "original"
)

// RedlineService manages tracked-change sessions over extracted text.
type RedlineService interface {
	// CreateSession parses an AI edit proposal against the given source
	// text and persists a new session. The proposal may be raw JSON or
	// wrapped in Markdown fences; parse failures return
	// domain.ErrProposalParse.
	CreateSession(ctx context.Context, fileName, originalText, proposal string) (*domain.RedlineResult, error)

	// Get retrieves a session by ID, or the latest session when id is empty.
	Get(ctx context.Context, id string) (*domain.RedlineResult, error)

	// Accept marks one change accepted. Idempotent.
	Accept(ctx context.Context, sessionID, changeID string) error

	// Decline marks one change declined. Idempotent.
	Decline(ctx context.Context, sessionID, changeID string) error

	// AcceptAll marks every change accepted in one atomic update.
	AcceptAll(ctx context.Context, sessionID string) error

	// DeclineAll marks every change declined in one atomic update.
	DeclineAll(ctx context.Context, sessionID string) error

	// ResetAll returns every change to pending in one atomic update.
	// This is the only path back to pending.
	ResetAll(ctx context.Context, sessionID string) error

	// GenerateFinalDocument reconstructs the document text from the
	// original text and the current change decisions. Pure with respect
	// to statuses: repeated calls without status changes are identical.
	GenerateFinalDocument(ctx context.Context, sessionID string) (string, error)

	// Export writes the requested variant to dir and returns the path.
	Export(ctx context.Context, sessionID string, variant ExportVariant, dir string) (string, error)
}
