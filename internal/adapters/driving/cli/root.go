// Package cli implements the command-line interface using cobra.
// Commands are package-level vars registered with rootCmd in init();
// services are injected from main before Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/redline-cli/internal/core/ports/driven"
	"github.com/custodia-labs/redline-cli/internal/core/ports/driving"
	"github.com/custodia-labs/redline-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Commands check for nil and fail with a clear
// message, so partial wiring in tests stays harmless.
var (
	extractionService driving.ExtractionService
	redlineService    driving.RedlineService
	configStore       driven.ConfigStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "redline",
	Short: "Local document extraction and AI redlining",
	Long: `Redline extracts plain text from legal documents (PDF, DOCX, legacy DOC,
XLSX, RTF, iCalendar, plain text) and manages tracked-change sessions:
an AI-proposed edit set is split into discrete changes you can accept or
decline individually, then exported in several variants.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// SetExtractionService injects the extraction service.
func SetExtractionService(svc driving.ExtractionService) {
	extractionService = svc
}

// SetRedlineService injects the redline service.
func SetRedlineService(svc driving.RedlineService) {
	redlineService = svc
}

// SetConfigStore injects the configuration store.
func SetConfigStore(store driven.ConfigStore) {
	configStore = store
}

// SetVersion sets the version string shown by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
