package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract plain text from a document",
	Long: `Extracts readable text from a document. The format is detected from the
file's MIME type and extension; unknown formats fall back to plain-text
handling. A file that yields no usable text (scanned PDF, image, empty
workbook) reports guidance instead of failing.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "write extracted text to this file instead of stdout")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractionService == nil {
		return errors.New("extraction service not configured")
	}

	doc, err := extractionService.ExtractFile(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if !doc.Success {
		// Still print the guidance text; signal the failure via exit code.
		cmd.PrintErrf("warning: no usable text extracted (%s)\n", doc.Error)
	}

	if extractOutput != "" {
		if err := os.WriteFile(extractOutput, []byte(doc.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		cmd.Printf("Extracted %s -> %s\n", doc.FileName, extractOutput)
		return nil
	}

	cmd.Println(doc.Content)
	return nil
}
