package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

// settingsKeys are the recognised configuration keys and their help text.
var settingsKeys = map[string]string{
	"data_dir":           "directory for the session database",
	"export_dir":         "default directory for exported documents",
	"max_file_size":      "maximum upload size in bytes",
	"doc_truncate_limit": "character cap for legacy DOC extraction",
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting (persisted immediately)",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Printf("Config file: %s\n\n", configStore.Path())

	keys := make([]string, 0, len(settingsKeys))
	for key := range settingsKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, ok := configStore.Get(key)
		if !ok {
			value = "(unset)"
		}
		cmd.Printf("  %-20s %-12v %s\n", key, value, settingsKeys[key])
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("setting %q is not set", args[0])
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if _, known := settingsKeys[key]; !known {
		return fmt.Errorf("unknown setting %q", key)
	}

	// Store integers as integers so typed getters work.
	var value any = raw
	if n, err := strconv.Atoi(raw); err == nil {
		value = n
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	cmd.Printf("%s = %v\n", key, value)
	return nil
}
