package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/blackwell-systems/rewind/internal/access"
	"github.com/blackwell-systems/rewind/internal/analyzer"
	"github.com/blackwell-systems/rewind/internal/config"
	"github.com/blackwell-systems/rewind/internal/store"
)

const dateLayout = "2006-01-02"

// openStore opens the database, creating the data directory if needed.
func openStore() (*store.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return st, nil
}

func accessGate() *access.FileGate {
	return access.NewFileGate(cfg.DataDir)
}

// requireAccess fails with instructions unless usage access is granted.
func requireAccess(w io.Writer) error {
	err := access.Require(accessGate())
	if errors.Is(err, access.ErrAccessDenied) {
		fmt.Fprintln(w, "Usage access has not been granted, so rewind cannot read your app history.")
		fmt.Fprintln(w, "Run 'rewind access grant' to allow it.")
	}
	return err
}

// parseDay parses a --date value: "", "today", "yesterday" or YYYY-MM-DD in
// the local time zone.
func parseDay(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return now, nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	}
	day, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD, today or yesterday)", s)
	}
	return day, nil
}

// timelineOptions builds analyzer options from config, with command flags
// taking precedence when set.
func timelineOptions(closeOpen, requireForeground *bool) analyzer.Options {
	opts := analyzer.Options{
		CloseOpen:         cfg.Timeline.CloseOpen,
		RequireForeground: cfg.Timeline.RequireForeground,
	}
	if closeOpen != nil {
		opts.CloseOpen = *closeOpen
	}
	if requireForeground != nil {
		opts.RequireForeground = *requireForeground
	}
	return opts
}

// labelsFor returns the catalog labels keyed by package, for display.
func labelsFor(st *store.Store) map[string]string {
	apps, err := st.ListApps()
	if err != nil {
		return nil
	}
	labels := make(map[string]string, len(apps))
	for _, app := range apps {
		labels[app.Package] = app.Label
	}
	return labels
}

// configDir is the directory holding config.yaml, apps.yaml and labels.
func configDir() string {
	dir, err := config.Dir()
	if err != nil {
		return "."
	}
	return dir
}
