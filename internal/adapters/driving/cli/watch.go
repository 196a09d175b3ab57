package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/redline-cli/internal/logger"
)

// settleDelay gives the writing process time to finish before we read
// a newly created file.
const settleDelay = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and extract new documents",
	Long: `Watches a directory for new files. Each new file is run through the
extraction pipeline and the result is written next to it as
<name>.extracted.txt. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if extractionService == nil {
		return errors.New("extraction service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", dir)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			if skipWatchedFile(event.Name) {
				continue
			}
			time.Sleep(settleDelay)
			if err := extractWatched(cmd, event.Name); err != nil {
				cmd.PrintErrf("error: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		case <-sig:
			cmd.Println("\nStopped.")
			return nil
		}
	}
}

// skipWatchedFile filters out our own output and editor noise.
func skipWatchedFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasSuffix(name, ".extracted.txt") {
		return true
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return true
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return true
	}
	return false
}

func extractWatched(cmd *cobra.Command, path string) error {
	doc, err := extractionService.ExtractFile(context.Background(), path)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", path, err)
	}

	outPath := path + ".extracted.txt"
	if err := os.WriteFile(outPath, []byte(doc.Content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	if doc.Success {
		cmd.Printf("Extracted %s -> %s\n", filepath.Base(path), filepath.Base(outPath))
	} else {
		cmd.Printf("No usable text in %s (%s); guidance written to %s\n", filepath.Base(path), doc.Error, filepath.Base(outPath))
	}
	return nil
}
