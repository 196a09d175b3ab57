package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/redline-cli/internal/adapters/driving/tui"
)

var redlineReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review changes interactively",
	Long: `Opens an interactive screen listing every change in the session.
Move with the arrow keys, accept with 'a', decline with 'd', reset all
with 'r', and quit with 'q'. Decisions are persisted immediately.`,
	Args: cobra.NoArgs,
	RunE: runRedlineReview,
}

func init() {
	redlineCmd.AddCommand(redlineReviewCmd)
}

func runRedlineReview(_ *cobra.Command, _ []string) error {
	if redlineService == nil {
		return errors.New("redline service not configured")
	}

	model, err := tui.NewReview(context.Background(), redlineService, redlineSession)
	if err != nil {
		return err
	}

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("review screen failed: %w", err)
	}
	return nil
}
