package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blackwell-systems/rewind/internal/access"
	"github.com/blackwell-systems/rewind/internal/catalog"
	"github.com/blackwell-systems/rewind/internal/export"
	"github.com/blackwell-systems/rewind/internal/store"
)

// testEnv isolates config and data directories for one test.
type testEnv struct {
	configDir string
	dataDir   string
}

func setupEnv(t *testing.T) testEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("NO_COLOR", "1")

	env := testEnv{
		configDir: filepath.Join(home, ".config", "rewind"),
		dataDir:   filepath.Join(home, "data"),
	}
	if err := os.MkdirAll(env.configDir, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	return env
}

// resetFlags restores every flag in the command tree to its default so
// state does not leak between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue) //nolint:errcheck
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the CLI with the env's data directory and returns its output.
func (env testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(RootCmd)

	buf := new(bytes.Buffer)
	RootCmd.SetOut(buf)
	RootCmd.SetErr(buf)
	RootCmd.SetArgs(append(args, "--data-dir", env.dataDir, "--log-level", "error"))
	err := RootCmd.Execute()
	return buf.String(), err
}

func (env testEnv) writeManifest(t *testing.T) {
	t.Helper()
	manifest := `apps:
  - package: org.mozilla.firefox
    label: Firefox
  - package: org.gnome.Terminal
    label: Terminal
  - package: org.gnome.Settings
    label: Settings
    system: true
  - package: com.example.launcher
    label: Pixel Launcher
`
	if err := os.WriteFile(filepath.Join(env.configDir, "apps.yaml"), []byte(manifest), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func (env testEnv) appendEvents(t *testing.T, lines ...string) {
	t.Helper()
	if err := os.MkdirAll(env.dataDir, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	f, err := os.OpenFile(filepath.Join(env.dataDir, "events.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		t.Fatalf("open event log: %v", err)
	}
	defer f.Close()
	for _, l := range lines {
		fmt.Fprintln(f, l)
	}
}

func eventLine(pkg, kind string, at time.Time) string {
	return fmt.Sprintf("%d,%s,%s", at.UnixNano(), pkg, kind)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range RootCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, want := range []string{"scan", "watch", "timeline", "stats", "export", "status", "access", "doctor"} {
		if !found[want] {
			t.Errorf("expected command %q to be registered", want)
		}
	}
}

func TestRootCommandHasPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "db", "data-dir", "log-level", "log-format"} {
		flag := RootCmd.PersistentFlags().Lookup(name)
		if flag == nil {
			t.Errorf("expected --%s flag to be registered", name)
			continue
		}
		if flag.Usage == "" {
			t.Errorf("expected --%s flag to have usage text", name)
		}
	}
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		flags []string
	}{
		{scanCmd, []string{"manifest", "quiet"}},
		{watchCmd, []string{"daemon", "daemon-child", "pid-file", "log-file", "stop", "once"}},
		{timelineCmd, []string{"date", "format", "close-open", "require-foreground"}},
		{statsCmd, []string{"date", "app", "history"}},
		{exportCmd, []string{"date", "format", "output"}},
	}
	for _, tt := range tests {
		for _, name := range tt.flags {
			if tt.cmd.Flags().Lookup(name) == nil {
				t.Errorf("%s: flag --%s not defined", tt.cmd.Name(), name)
			}
		}
	}

	if f := watchCmd.Flags().Lookup("daemon-child"); f != nil && !f.Hidden {
		t.Error("--daemon-child should be hidden")
	}
	if f := timelineCmd.Flags().Lookup("format"); f.DefValue != "bars" {
		t.Errorf("timeline --format default = %s, want bars", f.DefValue)
	}
}

func TestParseDay(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.Local)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "2026-03-14", false},
		{"today", "2026-03-14", false},
		{"Yesterday", "2026-03-13", false},
		{"2025-12-31", "2025-12-31", false},
		{"31/12/2025", "", true},
	}
	for _, tt := range tests {
		got, err := parseDay(tt.in, now)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseDay(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDay(%q) error: %v", tt.in, err)
			continue
		}
		if got.Format(dateLayout) != tt.want {
			t.Errorf("parseDay(%q) = %s, want %s", tt.in, got.Format(dateLayout), tt.want)
		}
	}
}

func TestForwardedFlags(t *testing.T) {
	resetFlags(RootCmd)
	defer resetFlags(RootCmd)

	dataDir = "/tmp/rewind-data"
	logLevel = "debug"

	got := strings.Join(forwardedFlags(), " ")
	if got != "--data-dir /tmp/rewind-data --log-level debug" {
		t.Errorf("forwardedFlags() = %q", got)
	}
}

func TestScan(t *testing.T) {
	env := setupEnv(t)
	env.writeManifest(t)

	out, err := env.run(t, "scan")
	if err != nil {
		t.Fatalf("scan failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Indexed 2 apps") {
		t.Errorf("unexpected scan output:\n%s", out)
	}

	st, err := store.New(filepath.Join(env.dataDir, "rewind.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer st.Close()

	apps, err := st.ListApps()
	if err != nil {
		t.Fatalf("ListApps: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("expected 2 stored apps, got %d", len(apps))
	}
	for _, app := range apps {
		if app.Package == "org.gnome.Settings" || app.Package == "com.example.launcher" {
			t.Errorf("%s should have been filtered out", app.Package)
		}
	}
}

func TestScan_MissingManifest(t *testing.T) {
	env := setupEnv(t)

	out, err := env.run(t, "scan")
	if !errors.Is(err, catalog.ErrManifestNotFound) {
		t.Fatalf("scan error = %v, want ErrManifestNotFound", err)
	}
	if !strings.Contains(out, "No app manifest found") {
		t.Errorf("expected a hint about the manifest, got:\n%s", out)
	}
}

func TestTimeline_RequiresAccess(t *testing.T) {
	env := setupEnv(t)

	for _, args := range [][]string{{"timeline"}, {"stats"}, {"stats", "--history"}, {"export"}} {
		out, err := env.run(t, args...)
		if !errors.Is(err, access.ErrAccessDenied) {
			t.Errorf("%v: error = %v, want ErrAccessDenied", args, err)
		}
		if !strings.Contains(out, "rewind access grant") {
			t.Errorf("%v: expected grant instructions, got:\n%s", args, out)
		}
	}

	// Nothing was read, so no database was created.
	if _, err := os.Stat(filepath.Join(env.dataDir, "rewind.db")); !os.IsNotExist(err) {
		t.Error("denied commands should not open the database")
	}
}

func TestAccessCommands(t *testing.T) {
	env := setupEnv(t)

	out, err := env.run(t, "access", "check")
	if err != nil || strings.TrimSpace(out) != "not granted" {
		t.Fatalf("access check = %q, %v; want not granted", out, err)
	}

	if _, err := env.run(t, "access", "grant"); err != nil {
		t.Fatalf("access grant: %v", err)
	}
	out, _ = env.run(t, "access", "check")
	if strings.TrimSpace(out) != "granted" {
		t.Errorf("access check after grant = %q", out)
	}

	if _, err := env.run(t, "access", "revoke"); err != nil {
		t.Fatalf("access revoke: %v", err)
	}
	out, _ = env.run(t, "access", "check")
	if strings.TrimSpace(out) != "not granted" {
		t.Errorf("access check after revoke = %q", out)
	}
}

func TestEndToEnd(t *testing.T) {
	env := setupEnv(t)
	env.writeManifest(t)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	env.appendEvents(t,
		eventLine("org.mozilla.firefox", "resumed", at(9, 0)),
		eventLine("org.mozilla.firefox", "paused", at(9, 20)),
		eventLine("org.gnome.Settings", "resumed", at(9, 25)),
		eventLine("org.gnome.Terminal", "resumed", at(9, 30)),
		eventLine("org.mozilla.firefox", "resumed", at(10, 0)),
	)

	steps := [][]string{{"scan"}, {"access", "grant"}, {"watch", "--once"}}
	for _, args := range steps {
		if out, err := env.run(t, args...); err != nil {
			t.Fatalf("%v failed: %v\n%s", args, err, out)
		}
	}

	out, err := env.run(t, "timeline", "--date", "2026-03-14", "--format", "table")
	if err != nil {
		t.Fatalf("timeline failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Saturday, 14 March 2026", "09:00:00", "09:30:00", "Firefox", "Terminal", "2 sessions"} {
		if !strings.Contains(out, want) {
			t.Errorf("timeline output missing %q:\n%s", want, out)
		}
	}

	out, err = env.run(t, "timeline", "--date", "2026-03-14", "--format", "table", "--close-open")
	if err != nil {
		t.Fatalf("timeline --close-open failed: %v", err)
	}
	if !strings.Contains(out, "3 sessions") {
		t.Errorf("--close-open should keep the last session:\n%s", out)
	}

	out, err = env.run(t, "stats", "--date", "2026-03-14")
	if err != nil {
		t.Fatalf("stats failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "50.0%") {
		t.Errorf("expected an even split between the two apps:\n%s", out)
	}

	out, err = env.run(t, "stats", "--history")
	if err != nil {
		t.Fatalf("stats --history failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Firefox") || !strings.Contains(out, "Frequency") {
		t.Errorf("unexpected history output:\n%s", out)
	}

	out, err = env.run(t, "export", "--date", "2026-03-14", "--format", "json")
	if err != nil {
		t.Fatalf("export failed: %v\n%s", err, out)
	}
	var doc export.Document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("export output is not JSON: %v\n%s", err, out)
	}
	if doc.Day != "2026-03-14" || len(doc.Sessions) != 2 || doc.TotalSeconds != 3600 {
		t.Errorf("unexpected export document: %+v", doc)
	}

	outDir := t.TempDir()
	if _, err := env.run(t, "export", "--date", "2026-03-14", "--format", "md", "--output", outDir); err != nil {
		t.Fatalf("export to dir failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "rewind-2026-03-14.md")); err != nil {
		t.Errorf("expected export file in output dir: %v", err)
	}

	out, err = env.run(t, "status")
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Access:       granted", "Apps:         2", "Events:       5 total", "stopped"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	env := setupEnv(t)
	_, err := env.run(t, "export", "--format", "csv")
	if err == nil || !strings.Contains(err.Error(), "supported") {
		t.Errorf("export --format csv error = %v, want unsupported format", err)
	}
}

func TestStatus_NotSetUp(t *testing.T) {
	env := setupEnv(t)
	out, err := env.run(t, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "run 'rewind scan'") {
		t.Errorf("expected setup hint, got:\n%s", out)
	}
}

func TestDoctor_NotSetUp(t *testing.T) {
	env := setupEnv(t)
	t.Setenv("PATH", t.TempDir())

	out, err := env.run(t, "doctor")
	if err == nil || err.Error() != "diagnostics failed" {
		t.Errorf("doctor error = %v, want diagnostics failed", err)
	}
	for _, want := range []string{"App manifest not found", "Database not found", "Usage access not granted", "rewind-record not found in PATH"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestDoctor_WarningsOnly(t *testing.T) {
	env := setupEnv(t)
	env.writeManifest(t)

	bin := t.TempDir()
	if err := os.WriteFile(filepath.Join(bin, "rewind-record"), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("PATH", bin)
	t.Setenv("REWIND_DATA_DIR", env.dataDir)

	env.appendEvents(t, eventLine("org.mozilla.firefox", "resumed", time.Now()))
	for _, args := range [][]string{{"scan", "--quiet"}, {"access", "grant"}, {"watch", "--once"}} {
		if out, err := env.run(t, args...); err != nil {
			t.Fatalf("%v failed: %v\n%s", args, err, out)
		}
	}

	out, err := env.run(t, "doctor")
	if err != nil {
		t.Fatalf("doctor with only warnings should succeed, got %v\n%s", err, out)
	}
	for _, want := range []string{
		"✓ 2 apps in catalog",
		"✓ 1 usage events ingested",
		"✓ Usage access granted",
		"✓ Recorder found",
		"✓ Event log fully ingested",
		"⚠ Daemon not running",
		"Found 1 warning(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestDoctor_RecorderLogMismatch(t *testing.T) {
	env := setupEnv(t)
	t.Setenv("REWIND_EVENT_LOG", "")
	t.Setenv("REWIND_DATA_DIR", "")

	// event_log set only in config.yaml never reaches rewind-record.
	logPath := filepath.Join(t.TempDir(), "focus.log")
	if err := os.WriteFile(filepath.Join(env.configDir, "config.yaml"), []byte("event_log: "+logPath+"\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, _ := env.run(t, "doctor")
	if !strings.Contains(out, "but rewind reads "+logPath) || !strings.Contains(out, "REWIND_EVENT_LOG="+logPath) {
		t.Errorf("expected recorder log mismatch warning, got:\n%s", out)
	}

	t.Setenv("REWIND_EVENT_LOG", logPath)
	out, _ = env.run(t, "doctor")
	if strings.Contains(out, "but rewind reads") {
		t.Errorf("no mismatch expected once REWIND_EVENT_LOG is exported:\n%s", out)
	}
}

func TestWatchOnce_AppliesRetention(t *testing.T) {
	env := setupEnv(t)
	if err := os.WriteFile(filepath.Join(env.configDir, "config.yaml"), []byte("timeline:\n  retention_days: 1\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	now := time.Now()
	env.appendEvents(t,
		eventLine("org.mozilla.firefox", "resumed", now.Add(-72*time.Hour)),
		eventLine("org.mozilla.firefox", "resumed", now),
	)

	out, err := env.run(t, "watch", "--once")
	if err != nil {
		t.Fatalf("watch --once failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Ingested 2 events", "Pruned 1 events older than 1 days"} {
		if !strings.Contains(out, want) {
			t.Errorf("watch --once output missing %q:\n%s", want, out)
		}
	}

	st, err := store.New(filepath.Join(env.dataDir, "rewind.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer st.Close()
	n, err := st.GetEventCount()
	if err != nil {
		t.Fatalf("GetEventCount: %v", err)
	}
	if n != 1 {
		t.Errorf("events after watch --once = %d, want 1", n)
	}
}
