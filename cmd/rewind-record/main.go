// Command rewind-record appends one foreground event to the rewind event log.
// It is meant to be called from a window-manager or session hook whenever an
// app comes to the front or leaves it:
//
//	rewind-record org.mozilla.firefox           # resumed
//	rewind-record org.mozilla.firefox paused
//
// The record must NOT import any internal rewind packages. It runs on every
// focus change and is built and deployed separately from the main CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintln(os.Stderr, "usage: rewind-record <package> [resumed|paused]")
		os.Exit(2)
	}

	pkg := os.Args[1]
	if pkg == "" || strings.ContainsAny(pkg, ",\n") {
		fmt.Fprintf(os.Stderr, "rewind-record: invalid package %q\n", pkg)
		os.Exit(2)
	}
	kind := "resumed"
	if len(os.Args) == 3 {
		kind = os.Args[2]
	}
	if kind != "resumed" && kind != "paused" {
		fmt.Fprintf(os.Stderr, "rewind-record: unknown event kind %q\n", kind)
		os.Exit(2)
	}

	// Best-effort: the hook that invoked us must never see a failure.
	record(pkg, kind)
}

// record appends "<unix_nano>,<package>,<kind>\n" to the event log.
// Failures are silently ignored.
func record(pkg, kind string) {
	path := eventLogPath()
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}

	// O_APPEND keeps concurrent single-line writes from interleaving.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "%d,%s,%s\n", time.Now().UnixNano(), pkg, kind)
}

// eventLogPath resolves the log from the environment only: REWIND_EVENT_LOG,
// else REWIND_DATA_DIR/events.log, else ~/.rewind/events.log. Settings in
// config.yaml are not read here; internal/config.RecorderEventLog mirrors
// this lookup so the CLI can detect a mismatch.
func eventLogPath() string {
	if path := os.Getenv("REWIND_EVENT_LOG"); path != "" {
		return path
	}
	if dir := os.Getenv("REWIND_DATA_DIR"); dir != "" {
		return filepath.Join(dir, "events.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rewind", "events.log")
}
