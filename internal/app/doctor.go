package app

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rewind/internal/config"
	"github.com/blackwell-systems/rewind/internal/watcher"
)

const recorderBinary = "rewind-record"

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose common issues and check setup health",
	Long: `Runs diagnostic checks on your rewind setup.

Checks:
  • App manifest exists
  • Database exists and has a catalog
  • Usage access is granted
  • rewind-record is installed and events are being recorded
  • Ingestion daemon is running and keeping up

Critical issues make the command fail. Warnings are reported but do not.`,
	RunE: runDoctor,
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}

// doctorReport counts issues by severity while checks print their result.
type doctorReport struct {
	out      io.Writer
	critical int
	warnings int
}

func (r *doctorReport) ok(format string, a ...any) {
	fmt.Fprintf(r.out, "✓ "+format+"\n", a...)
}

func (r *doctorReport) fail(action, format string, a ...any) {
	fmt.Fprintf(r.out, "✗ "+format+"\n", a...)
	if action != "" {
		fmt.Fprintf(r.out, "  Action: %s\n", action)
	}
	r.critical++
}

func (r *doctorReport) warn(action, format string, a ...any) {
	fmt.Fprintf(r.out, "⚠ "+format+"\n", a...)
	if action != "" {
		fmt.Fprintf(r.out, "  Action: %s\n", action)
	}
	r.warnings++
}

func runDoctor(cmd *cobra.Command, args []string) error {
	r := &doctorReport{out: cmd.OutOrStdout()}
	fmt.Fprintln(r.out, "Running rewind diagnostics...")
	fmt.Fprintln(r.out)

	if _, err := os.Stat(cfg.Manifest); err != nil {
		r.warn("Create it and run 'rewind scan' (see 'rewind scan --help')", "App manifest not found at %s", cfg.Manifest)
	} else {
		r.ok("App manifest found: %s", cfg.Manifest)
	}

	checkDatabase(r)

	granted, err := accessGate().Granted()
	switch {
	case err != nil:
		r.fail("", "Cannot check usage access: %v", err)
	case !granted:
		r.fail("Run 'rewind access grant'", "Usage access not granted")
	default:
		r.ok("Usage access granted")
	}

	if path, err := exec.LookPath(recorderBinary); err != nil {
		r.warn("Install "+recorderBinary+" and call it from your session's focus hook", "%s not found in PATH", recorderBinary)
	} else {
		r.ok("Recorder found: %s", path)
	}

	running := checkDaemon(r)
	checkEventLog(r, running)

	fmt.Fprintln(r.out)
	if r.critical > 0 {
		fmt.Fprintf(r.out, "Found %d critical issue(s) and %d warning(s).\n", r.critical, r.warnings)
		return fmt.Errorf("diagnostics failed")
	}
	if r.warnings > 0 {
		fmt.Fprintf(r.out, "Found %d warning(s). rewind is usable but not fully set up.\n", r.warnings)
		return nil
	}
	fmt.Fprintln(r.out, "✓ All checks passed!")
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Next steps:")
	fmt.Fprintln(r.out, "  • See today so far: rewind timeline --close-open")
	fmt.Fprintln(r.out, "  • Per-app totals: rewind stats")
	return nil
}

func checkDatabase(r *doctorReport) {
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		r.fail("Run 'rewind scan' to create it", "Database not found at %s", cfg.DBPath)
		return
	}

	st, err := openStore()
	if err != nil {
		r.fail("", "Cannot open database: %v", err)
		return
	}
	defer st.Close()
	r.ok("Database found: %s", cfg.DBPath)

	apps, err := st.ListApps()
	switch {
	case err != nil:
		r.fail("Run 'rewind scan'", "Cannot read app catalog: %v", err)
		return
	case len(apps) == 0:
		r.fail("Add apps to the manifest and run 'rewind scan'", "App catalog is empty")
	default:
		r.ok("%d apps in catalog", len(apps))
	}

	events, err := st.GetEventCount()
	switch {
	case err != nil:
		r.warn("", "Cannot read events: %v", err)
	case events == 0:
		r.warn("", "No usage events ingested yet")
	default:
		r.ok("%s usage events ingested", humanize.Comma(int64(events)))
	}
}

// checkDaemon reports the ingestion daemon and returns whether it runs.
func checkDaemon(r *doctorReport) bool {
	pidFile := cfg.PIDFile()
	running, err := watcher.IsDaemonRunning(pidFile)
	switch {
	case err != nil:
		r.warn("", "Failed to check daemon status: %v", err)
		return false
	case !running:
		r.warn("Run 'rewind watch --daemon'", "Daemon not running")
		return false
	}

	if data, err := os.ReadFile(pidFile); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			r.ok("Daemon running (PID %d)", pid)
			return true
		}
	}
	r.ok("Daemon running")
	return true
}

func checkEventLog(r *doctorReport, daemonRunning bool) {
	el := watcher.EventLog{Path: cfg.EventLog, OffsetPath: cfg.OffsetFile()}

	if recorded, err := config.RecorderEventLog(); err == nil && filepath.Clean(recorded) != filepath.Clean(el.Path) {
		r.warn("Export REWIND_EVENT_LOG="+el.Path+" to the environment that runs "+recorderBinary,
			"%s writes to %s but rewind reads %s", recorderBinary, recorded, el.Path)
	}
	if _, err := os.Stat(el.Path); os.IsNotExist(err) {
		r.warn("Check that "+recorderBinary+" is called when apps come to the front", "No event log at %s", el.Path)
		return
	}

	pending, err := el.Pending()
	switch {
	case err != nil:
		r.warn("", "Cannot read event log offset: %v", err)
	case pending == 0:
		r.ok("Event log fully ingested")
	case daemonRunning:
		r.ok("Event log: %s awaiting ingestion", humanize.Bytes(uint64(pending)))
	default:
		r.warn("Run 'rewind watch --once' or start the daemon", "Event log: %s not yet ingested", humanize.Bytes(uint64(pending)))
	}
}
