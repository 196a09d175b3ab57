// Command redline is the entry point for the redline CLI.
// It wires the adapters to the core services and hands control to the
// command tree.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/redline-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/redline-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/redline-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/redline-cli/internal/core/services"
	"github.com/custodia-labs/redline-cli/internal/extractors/docx"
	"github.com/custodia-labs/redline-cli/internal/extractors/ics"
	"github.com/custodia-labs/redline-cli/internal/extractors/image"
	"github.com/custodia-labs/redline-cli/internal/extractors/legacydoc"
	"github.com/custodia-labs/redline-cli/internal/extractors/pdf"
	"github.com/custodia-labs/redline-cli/internal/extractors/plaintext"
	"github.com/custodia-labs/redline-cli/internal/extractors/rtf"
	"github.com/custodia-labs/redline-cli/internal/extractors/spreadsheet"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("initialising config: %w", err)
	}

	sessionStore, err := sqlite.NewStore(configStore.GetString("data_dir"))
	if err != nil {
		return fmt.Errorf("initialising session store: %w", err)
	}
	defer sessionStore.Close()

	registry := services.NewExtractorRegistry()
	registry.Register(plaintext.New())
	registry.Register(image.New())
	registry.Register(pdf.New())
	registry.Register(docx.New())
	registry.Register(legacydoc.New(configStore.GetInt("doc_truncate_limit")))
	registry.Register(spreadsheet.New())
	registry.Register(ics.New())
	registry.Register(rtf.New())

	cli.SetConfigStore(configStore)
	cli.SetExtractionService(services.NewExtractionService(registry, configStore))
	cli.SetRedlineService(services.NewRedlineService(sessionStore))
	cli.SetVersion(version)

	return cli.Execute()
}
