package app

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rewind/internal/output"
	"github.com/blackwell-systems/rewind/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool
	watchOnce        bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Ingest recorded foreground events into the database",
		Long: `Watch the event log written by rewind-record and ingest new events into
the database as they arrive.

Watch modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run as a detached background process
  • Stop: Stop a running daemon
  • Once: Ingest whatever is in the log now and exit

New events are picked up as soon as the log is written. The log is also
re-read every 30 seconds in case a file notification is missed. Events older
than timeline.retention_days are pruned when that setting is positive.`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  rewind watch

  # Run as background daemon
  rewind watch --daemon

  # Stop running daemon
  rewind watch --stop

  # Ingest pending events and exit
  rewind watch --once`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: <data-dir>/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: <data-dir>/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "ingest pending events and exit")

	watchCmd.Flags().MarkHidden("daemon-child")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	pidFile := watchPIDFile
	if pidFile == "" {
		pidFile = cfg.PIDFile()
	}
	logFile := watchLogFile
	if logFile == "" {
		logFile = cfg.WatchLogFile()
	}

	if watchStop {
		return stopWatchDaemon(out, pidFile)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.CreateSchema(); err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}

	eventLog := watcher.EventLog{Path: cfg.EventLog, OffsetPath: cfg.OffsetFile()}

	opts := watcher.Options{}
	if cfg.Timeline.RetentionDays > 0 {
		opts.Retention = time.Duration(cfg.Timeline.RetentionDays) * 24 * time.Hour
	}

	w, err := watcher.New(st, eventLog, opts, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if watchOnce {
		return runWatchOnce(out, w)
	}

	switch {
	case watchDaemon:
		return startWatchDaemon(out, w, pidFile, logFile)
	case watchDaemonChild:
		return w.RunDaemon(pidFile)
	default:
		return runWatchForeground(out, w)
	}
}

func runWatchOnce(out io.Writer, w *watcher.Watcher) error {
	ingested, pruned, err := w.Drain()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Ingested %d events\n", ingested)
	if pruned > 0 {
		fmt.Fprintf(out, "✓ Pruned %d events older than %d days\n", pruned, cfg.Timeline.RetentionDays)
	}
	return nil
}

func stopWatchDaemon(out io.Writer, pidFile string) error {
	running, err := watcher.IsDaemonRunning(pidFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running {
		fmt.Fprintln(out, "Daemon is not running")
		return nil
	}

	spinner := output.NewSpinner("Stopping daemon")
	spinner.SetWriter(out)
	spinner.Start()
	if err := watcher.StopDaemon(pidFile); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon stopped")
	return nil
}

func startWatchDaemon(out io.Writer, w *watcher.Watcher, pidFile, logFile string) error {
	spinner := output.NewSpinner("Starting daemon")
	spinner.SetWriter(out)
	spinner.Start()
	if err := w.StartDaemon(pidFile, logFile, forwardedFlags()); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon started")

	fmt.Fprintf(out, "\nEvent ingestion daemon started\n")
	fmt.Fprintf(out, "  PID file: %s\n", pidFile)
	fmt.Fprintf(out, "  Log file: %s\n", logFile)
	fmt.Fprintf(out, "\nTo stop: rewind watch --stop\n")
	return nil
}

func runWatchForeground(out io.Writer, w *watcher.Watcher) error {
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintf(out, "Watching %s (press Ctrl+C to stop)\n", cfg.EventLog)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	fmt.Fprintf(out, "\nReceived signal %v, shutting down...\n", sig)

	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	fmt.Fprintln(out, "✓ Watcher stopped")
	return nil
}
