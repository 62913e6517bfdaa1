package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rewind/internal/output"
	"github.com/blackwell-systems/rewind/internal/watcher"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check tracking status and database statistics",
	Long: `Display the current state of rewind.

Shows:
  • Whether usage access is granted
  • Ingestion daemon status
  • Database location and size
  • Number of cataloged apps
  • Total recorded events and the most recent one`,
	Example: `  # Check status
  rewind status`,
	RunE: runStatus,
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

const statusLabel = "%-14s"

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	granted, err := accessGate().Granted()
	if err != nil {
		return err
	}
	if granted {
		fmt.Fprintf(out, statusLabel+"granted\n", "Access:")
	} else {
		fmt.Fprintf(out, statusLabel+"not granted  (run 'rewind access grant')\n", "Access:")
	}

	running, err := watcher.IsDaemonRunning(cfg.PIDFile())
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		fmt.Fprintf(out, statusLabel+"running (since %s)\n", "Watcher:", daemonSince(cfg.PIDFile()))
	} else {
		fmt.Fprintf(out, statusLabel+"stopped  (run 'rewind watch --daemon')\n", "Watcher:")
	}

	info, err := os.Stat(cfg.DBPath)
	if os.IsNotExist(err) {
		fmt.Fprintf(out, statusLabel+"not set up  (run 'rewind scan')\n", "Database:")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat database: %w", err)
	}
	fmt.Fprintf(out, statusLabel+"%s (%s)\n", "Database:", cfg.DBPath, humanize.Bytes(uint64(info.Size())))

	return printStoreStatus(out)
}

func printStoreStatus(out io.Writer) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	apps, err := st.ListApps()
	if err != nil {
		return err
	}
	events, err := st.GetEventCount()
	if err != nil {
		return err
	}
	last, err := st.GetLastEventTime()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, statusLabel+"%d\n", "Apps:", len(apps))
	fmt.Fprintf(out, statusLabel+"%s total\n", "Events:", humanize.Comma(int64(events)))
	lastEvent := "never"
	if last != nil {
		lastEvent = output.FormatRelativeTime(*last)
	}
	fmt.Fprintf(out, statusLabel+"%s\n", "Last event:", lastEvent)
	return nil
}

// daemonSince returns the age of the PID file, a proxy for daemon start.
func daemonSince(pidFile string) string {
	fi, err := os.Stat(pidFile)
	if err != nil {
		return "unknown"
	}
	return output.FormatDuration(time.Since(fi.ModTime())) + " ago"
}
