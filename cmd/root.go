// Package cmd implements the subtrack CLI commands.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/subtrack-cli/subtrack/internal/config"
	"github.com/subtrack-cli/subtrack/internal/model"
	"github.com/subtrack-cli/subtrack/internal/notify"
	"github.com/subtrack-cli/subtrack/internal/service"
	"github.com/subtrack-cli/subtrack/internal/store"
	"github.com/subtrack-cli/subtrack/internal/vault"
)

var (
	flagDataDir string
	flagStrict  bool
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "subtrack",
	Short: "Private, on-device subscription tracker",
	Long: "Track recurring subscriptions, budgets, and renewal reminders.\n" +
		"All data stays on this device, encrypted at rest.",
	RunE: runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagStrict, "strict", false, "Error on update/delete of unknown ids")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// appEnv bundles the opened store, service, and scheduler shared by
// all commands.
type appEnv struct {
	cfg       config.Config
	dataDir   string
	key       []byte
	store     *store.Store
	service   *service.Service
	scheduler *notify.Scheduler
	queue     *notify.Queue

	closers []func() error
}

func (e *appEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
}

// openEnv loads config, unlocks the document store, and wires the
// notification scheduler. Callers must Close.
func openEnv() (*appEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	dataDir := config.DataDir(cfg)
	if flagDataDir != "" {
		dataDir = flagDataDir
	}

	key, err := vault.LoadOrCreateKey(filepath.Join(dataDir, "store.key"))
	if err != nil {
		return nil, err
	}

	st, err := store.Open(filepath.Join(dataDir, "subtrack.db"), key)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	env := &appEnv{
		cfg:     cfg,
		dataDir: dataDir,
		key:     key,
		store:   st,
	}
	env.closers = append(env.closers, st.Close)

	env.service = service.New(st, service.Options{
		StrictNotFound: flagStrict || cfg.Storage.StrictNotFound,
	})

	queue, err := notify.OpenQueue(filepath.Join(dataDir, "queue.db"))
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("opening notification queue: %w", err)
	}
	env.queue = queue
	env.closers = append(env.closers, queue.Close)

	// CLI invocations are short-lived, so exact in-process timers can
	// never fire; everything routes to the durable queue. The daemon
	// rebuilds the scheduler with exact timers enabled.
	env.scheduler = notify.NewScheduler(
		notify.StaticCapabilities{Exact: false},
		notify.NewExactTimers(terminalPresenter{}),
		queue,
	)
	return env, nil
}

// terminalPresenter prints fired reminders to the terminal. The
// OS-level notification popup is outside the core.
type terminalPresenter struct{}

func (terminalPresenter) Present(n model.Notification) {
	label := "renews soon"
	if n.Kind == model.KindTrialEnding {
		label = "trial ending"
	}
	fmt.Printf("\a  [reminder] %s: %s\n", n.SubscriptionName, label)
}
