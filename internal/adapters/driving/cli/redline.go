package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/redline-cli/internal/core/domain"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driving"
)

var (
	redlineSession      string
	redlineProposal     string
	redlineProposalFile string
	redlineAcceptAll    bool
	redlineDeclineAll   bool
	redlineVariant      string
	redlineExportDir    string
)

var redlineCmd = &cobra.Command{
	Use:   "redline",
	Short: "Manage tracked-change sessions",
	Long: `Creates and reviews redline sessions. A session holds the original
document text, the AI's edited version, and the list of discrete changes
between them. Changes start pending and can be accepted or declined
individually or in bulk; the final document is reconstructed from the
decisions.`,
}

var redlineNewCmd = &cobra.Command{
	Use:   "new <file>",
	Short: "Create a session from a document and an AI edit proposal",
	Args:  cobra.ExactArgs(1),
	RunE:  runRedlineNew,
}

var redlineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a session and its changes",
	Args:  cobra.NoArgs,
	RunE:  runRedlineShow,
}

var redlineAcceptCmd = &cobra.Command{
	Use:   "accept [change-id]",
	Short: "Accept a change (or all changes with --all)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRedlineAccept,
}

var redlineDeclineCmd = &cobra.Command{
	Use:   "decline [change-id]",
	Short: "Decline a change (or all changes with --all)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRedlineDecline,
}

var redlineResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Return every change to pending",
	Args:  cobra.NoArgs,
	RunE:  runRedlineReset,
}

var redlineExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a document variant",
	Long: `Exports one variant of the session document as a .txt file:

  current  - the document under the current accept/decline decisions
  final    - the AI's fully edited text
  redlined - a human-readable change log
  original - the extracted source text`,
	Args: cobra.NoArgs,
	RunE: runRedlineExport,
}

func init() {
	redlineCmd.PersistentFlags().StringVarP(&redlineSession, "session", "s", "", "session ID (defaults to the latest session)")

	redlineNewCmd.Flags().StringVarP(&redlineProposal, "proposal", "p", "", "AI edit proposal (JSON, possibly fenced)")
	redlineNewCmd.Flags().StringVar(&redlineProposalFile, "proposal-file", "", "read the proposal from a file")

	redlineAcceptCmd.Flags().BoolVar(&redlineAcceptAll, "all", false, "accept every change")
	redlineDeclineCmd.Flags().BoolVar(&redlineDeclineAll, "all", false, "decline every change")

	redlineExportCmd.Flags().StringVar(&redlineVariant, "variant", "current", "variant to export: current, final, redlined, original")
	redlineExportCmd.Flags().StringVarP(&redlineExportDir, "dir", "d", "", "export directory (defaults to export_dir setting or .)")

	redlineCmd.AddCommand(redlineNewCmd)
	redlineCmd.AddCommand(redlineShowCmd)
	redlineCmd.AddCommand(redlineAcceptCmd)
	redlineCmd.AddCommand(redlineDeclineCmd)
	redlineCmd.AddCommand(redlineResetCmd)
	redlineCmd.AddCommand(redlineExportCmd)
	rootCmd.AddCommand(redlineCmd)
}

func runRedlineNew(cmd *cobra.Command, args []string) error {
	if redlineService == nil || extractionService == nil {
		return errors.New("redline service not configured")
	}

	proposal := redlineProposal
	if redlineProposalFile != "" {
		data, err := os.ReadFile(redlineProposalFile)
		if err != nil {
			return fmt.Errorf("failed to read proposal: %w", err)
		}
		proposal = string(data)
	}
	if proposal == "" {
		return errors.New("a proposal is required (--proposal or --proposal-file)")
	}

	ctx := context.Background()
	doc, err := extractionService.ExtractFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if !doc.Success {
		return fmt.Errorf("no usable text in %s: %s", doc.FileName, doc.Error)
	}

	result, err := redlineService.CreateSession(ctx, doc.FileName, doc.Content, proposal)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	cmd.Printf("Created session %s with %d changes\n", result.ID, len(result.Changes))
	printChanges(cmd, result)
	return nil
}

func runRedlineShow(cmd *cobra.Command, _ []string) error {
	if redlineService == nil {
		return errors.New("redline service not configured")
	}

	result, err := redlineService.Get(context.Background(), redlineSession)
	if err != nil {
		return err
	}

	pending, accepted, declined := result.Counts()
	cmd.Printf("Session %s (%s)\n", result.ID, result.FileName)
	cmd.Printf("Created %s\n", result.CreatedAt.Format("2006-01-02 15:04"))
	cmd.Printf("%d changes: %d accepted, %d declined, %d pending\n", len(result.Changes), accepted, declined, pending)
	printChanges(cmd, result)
	return nil
}

func printChanges(cmd *cobra.Command, result *domain.RedlineResult) {
	for i, c := range result.Changes {
		cmd.Printf("\n[%d] %s  (%s, %s)\n", i+1, c.ID, c.Type, c.Status)
		if c.Original != "" {
			cmd.Printf("    - %s\n", truncate(c.Original, 120))
		}
		if c.Replacement != "" {
			cmd.Printf("    + %s\n", truncate(c.Replacement, 120))
		}
		if c.Context != "" {
			cmd.Printf("    %s\n", c.Context)
		}
	}
}

func runRedlineAccept(cmd *cobra.Command, args []string) error {
	return runDecision(cmd, args, redlineAcceptAll, "accepted",
		func(ctx context.Context, sessionID string) error {
			return redlineService.AcceptAll(ctx, sessionID)
		},
		func(ctx context.Context, sessionID, changeID string) error {
			return redlineService.Accept(ctx, sessionID, changeID)
		})
}

func runRedlineDecline(cmd *cobra.Command, args []string) error {
	return runDecision(cmd, args, redlineDeclineAll, "declined",
		func(ctx context.Context, sessionID string) error {
			return redlineService.DeclineAll(ctx, sessionID)
		},
		func(ctx context.Context, sessionID, changeID string) error {
			return redlineService.Decline(ctx, sessionID, changeID)
		})
}

func runDecision(cmd *cobra.Command, args []string, all bool, verb string,
	bulk func(context.Context, string) error,
	single func(context.Context, string, string) error,
) error {
	if redlineService == nil {
		return errors.New("redline service not configured")
	}

	ctx := context.Background()
	result, err := redlineService.Get(ctx, redlineSession)
	if err != nil {
		return err
	}

	if all {
		if err := bulk(ctx, result.ID); err != nil {
			return err
		}
		cmd.Printf("All %d changes %s\n", len(result.Changes), verb)
		return nil
	}

	if len(args) == 0 {
		return errors.New("a change ID is required without --all")
	}
	if err := single(ctx, result.ID, args[0]); err != nil {
		return err
	}
	cmd.Printf("Change %s %s\n", args[0], verb)
	return nil
}

func runRedlineReset(cmd *cobra.Command, _ []string) error {
	if redlineService == nil {
		return errors.New("redline service not configured")
	}

	ctx := context.Background()
	result, err := redlineService.Get(ctx, redlineSession)
	if err != nil {
		return err
	}
	if err := redlineService.ResetAll(ctx, result.ID); err != nil {
		return err
	}
	cmd.Printf("All %d changes reset to pending\n", len(result.Changes))
	return nil
}

func runRedlineExport(cmd *cobra.Command, _ []string) error {
	if redlineService == nil {
		return errors.New("redline service not configured")
	}

	variant := driving.ExportVariant(strings.ToLower(redlineVariant))
	dir := redlineExportDir
	if dir == "" && configStore != nil {
		dir = configStore.GetString("export_dir")
	}
	if dir == "" {
		dir = "."
	}

	ctx := context.Background()
	result, err := redlineService.Get(ctx, redlineSession)
	if err != nil {
		return err
	}

	path, err := redlineService.Export(ctx, result.ID, variant, dir)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	cmd.Printf("Exported %s variant to %s\n", variant, path)
	return nil
}

// truncate shortens s for single-line display.
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
