package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/subtrack-cli/subtrack/internal/daemon"
	"github.com/subtrack-cli/subtrack/internal/notify"
)

type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	DataDir   string    `json:"data_dir"`
}

var (
	flagDaemonInterval time.Duration
	flagDaemonDetach   bool
	flagDaemonPIDFile  string
	flagDaemonLogFile  string
	flagDaemonChild    bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background reminder daemon",
	Long: "Run the background reminder daemon. It polls the durable queue\n" +
		"and fires renewal and trial reminders at 09:00 local time. No\n" +
		"network sockets are opened.",
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (overrides config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", "", "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", "", "Log file path for detached mode")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func daemonPIDFile(dataDir string) string {
	if flagDaemonPIDFile != "" {
		return flagDaemonPIDFile
	}
	return filepath.Join(dataDir, "subtrackd.pid")
}

func daemonLogFile(dataDir string) string {
	if flagDaemonLogFile != "" {
		return flagDaemonLogFile
	}
	return filepath.Join(dataDir, "subtrackd.log")
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}

	if flagDaemonDetach {
		return startDaemonDetached()
	}

	return runDaemonForeground()
}

func startDaemonDetached() error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	pidFile := daemonPIDFile(env.dataDir)
	logFile := daemonLogFile(env.dataDir)
	env.Close()

	if err := ensureDaemonNotRunning(pidFile); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(logFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	logf, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...)
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidFile)
	fmt.Printf("  Log: %s\n", logFile)
	return nil
}

func runDaemonForeground() error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	pidFile := daemonPIDFile(env.dataDir)
	if err := ensureDaemonNotRunning(pidFile); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(pidFile), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}

	pid := os.Getpid()
	if err := writePID(pidFile, pid); err != nil {
		return err
	}
	defer func() { _ = os.Remove(pidFile) }()

	state := daemonRuntimeState{
		PID:       pid,
		StartedAt: time.Now(),
		DataDir:   env.dataDir,
	}
	_ = writeState(statePath(pidFile), state)
	defer func() { _ = os.Remove(statePath(pidFile)) }()

	// While the daemon runs, exact in-process timers can actually fire,
	// so rebuild the scheduler with the capability the config allows.
	presenter := terminalPresenter{}
	scheduler := notify.NewScheduler(
		notify.StaticCapabilities{Exact: env.cfg.Notifications.ExactTimers},
		notify.NewExactTimers(presenter),
		env.queue,
	)
	subs := env.service.Subscriptions()
	if res := scheduler.ScheduleAllRenewals(subs); res.Err() != nil {
		fmt.Fprintf(os.Stderr, "  warning: %v\n", res.Err())
	}
	for _, sub := range subs {
		if err := scheduler.ScheduleTrialEnding(sub); err != nil {
			fmt.Fprintf(os.Stderr, "  warning: %v\n", err)
		}
	}

	interval := env.cfg.Daemon.PollInterval()
	if flagDaemonInterval > 0 {
		interval = flagDaemonInterval
	}

	svc := daemon.New(daemon.Config{Interval: interval}, env.queue, presenter)

	fmt.Printf("  subtrack daemon running (pid %d)\n", pid)
	fmt.Printf("  Polling every %s, data in %s\n", interval, env.dataDir)
	fmt.Printf("  Stop with: subtrack daemon stop\n")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	pidFile := daemonPIDFile(env.dataDir)
	pid, err := readPID(pidFile)
	if err != nil {
		fmt.Println("  Daemon: not running (pid file not found)")
		return nil
	}

	if !processAlive(pid) {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	fmt.Printf("  Daemon PID: %d\n", pid)
	if st, err := readState(statePath(pidFile)); err == nil {
		fmt.Printf("  Started: %s\n", st.StartedAt.Local().Format(time.RFC3339))
		fmt.Printf("  Data dir: %s\n", st.DataDir)
	}

	pending, err := env.queue.Pending()
	if err != nil {
		return err
	}
	fmt.Printf("  Queued reminders: %d\n", pending)
	if next, ok, err := env.queue.NextFireAt(); err == nil && ok {
		fmt.Printf("  Next reminder: %s\n", next.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	pidFile := daemonPIDFile(env.dataDir)
	env.Close()

	pid, err := readPID(pidFile)
	if err != nil {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(pidFile)
			_ = os.Remove(statePath(pidFile))
			fmt.Printf("  Stopped daemon (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func ensureDaemonNotRunning(pidFile string) error {
	pid, err := readPID(pidFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	_ = os.Remove(pidFile)
	_ = os.Remove(statePath(pidFile))
	return nil
}

func writePID(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", path)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func statePath(pidFile string) string {
	return pidFile + ".json"
}

func writeState(path string, st daemonRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readState(path string) (daemonRuntimeState, error) {
	var st daemonRuntimeState
	data, err := os.ReadFile(path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, err
	}
	return st, nil
}
