package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driving"
	"github.com/custodia-labs/redline-cli/internal/logger"
)

// variantSuffixes maps export variants to the filename suffix of the
// written .txt file.
var variantSuffixes = map[driving.ExportVariant]string{
	driving.ExportCurrent:  "_custom",
	driving.ExportFinal:    "_final",
	driving.ExportRedlined: "_redlined",
	driving.ExportOriginal: "_original",
}

// Export writes one variant of the session's document to dir and
// returns the written path.
func (s *RedlineService) Export(ctx context.Context, sessionID string, variant driving.ExportVariant, dir string) (string, error) {
	result, err := s.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}

	var content string
	switch variant {
	case driving.ExportCurrent:
		content = reconstruct(result)
	case driving.ExportFinal:
		content = result.EditedText
	case driving.ExportOriginal:
		content = result.OriginalText
	case driving.ExportRedlined:
		content = renderRedline(result)
	default:
		return "", fmt.Errorf("export variant %q: %w", variant, domain.ErrUnsupportedType)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}

	base := strings.TrimSuffix(result.FileName, filepath.Ext(result.FileName))
	if base == "" {
		base = "document"
	}
	path := filepath.Join(dir, base+variantSuffixes[variant]+".txt")

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	logger.Info("exported %s variant of session %s to %s", variant, result.ID, path)
	return path, nil
}

// renderRedline produces the human-readable change log: the edited text
// followed by every change with its decision.
func renderRedline(result *domain.RedlineResult) string {
	pending, accepted, declined := result.Counts()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("REDLINE: %s\n", result.FileName))
	sb.WriteString(fmt.Sprintf("%d changes (%d accepted, %d declined, %d pending)\n\n", len(result.Changes), accepted, declined, pending))
	sb.WriteString("--- Proposed document ---\n")
	sb.WriteString(result.EditedText)
	sb.WriteString("\n\n--- Changes ---\n")

	for i, c := range result.Changes {
		sb.WriteString(fmt.Sprintf("\n%d. [%s] %s\n", i+1, c.Status, c.Type))
		if c.Original != "" {
			sb.WriteString(fmt.Sprintf("   - %s\n", c.Original))
		}
		if c.Replacement != "" {
			sb.WriteString(fmt.Sprintf("   + %s\n", c.Replacement))
		}
		if c.Context != "" {
			sb.WriteString(fmt.Sprintf("   Reason: %s\n", c.Context))
		}
	}
	return sb.String()
}
