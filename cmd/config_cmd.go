package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/subtrack-cli/subtrack/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Currency:     %s\n", cfg.General.Currency)
	fmt.Printf("    Default days: %d\n", cfg.General.DefaultDays)
	fmt.Printf("    Data dir:     %s\n", config.DataDir(cfg))
	fmt.Println()

	fmt.Println("  [Storage]")
	if cfg.Storage.StrictNotFound {
		fmt.Println("    Unknown ids: error")
	} else {
		fmt.Println("    Unknown ids: ignored")
	}
	fmt.Println()

	fmt.Println("  [Notifications]")
	fmt.Printf("    Lead days:    %d\n", cfg.Notifications.LeadDays)
	fmt.Printf("    Exact timers: %v\n", cfg.Notifications.ExactTimers)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Poll interval: %s\n", cfg.Daemon.PollInterval())
	fmt.Println()

	fmt.Printf("  Edit %s to change settings.\n", config.Path())
	return nil
}
