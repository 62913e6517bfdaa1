package app

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rewind/internal/config"
	"github.com/blackwell-systems/rewind/internal/logging"
)

var (
	configPath string
	dbPath     string
	dataDir    string
	logLevel   string
	logFormat  string

	// cfg and logger are populated before any subcommand runs.
	cfg    *config.Config
	logger = zerolog.Nop()

	// RootCmd is the root command for rewind
	RootCmd = &cobra.Command{
		Use:   "rewind",
		Short: "Reconstruct a day of app usage from foreground events",
		Long: `rewind records when apps come to the foreground and turns that history
into a timeline of usage sessions: which app you were in, from when to when.

Each time an app resumes, rewind-record appends an event to the event log.
The watcher ingests the log into a local database, and the timeline, stats
and export commands rebuild sessions from it on demand.

Quick Start:
  1. Describe your apps in ~/.config/rewind/apps.yaml
  2. rewind scan
  3. rewind access grant
  4. rewind watch --daemon
  5. rewind timeline

Examples:
  # Show today's timeline
  rewind timeline

  # Show per-app totals for a given day
  rewind stats --date 2026-03-14

  # Export yesterday as JSON
  rewind export --date yesterday --format json --output day.json`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/rewind/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: <data-dir>/rewind.db)")
	RootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default: ~/.rewind)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// loadConfig resolves configuration from file, environment and flags, and
// sets up the logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	dir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("failed to locate config directory: %w", err)
	}

	c, err := config.Load(dir, configPath, config.Overrides{
		DataDir:   dataDir,
		DBPath:    dbPath,
		LogLevel:  logLevel,
		LogFormat: logFormat,
	})
	if err != nil {
		return err
	}

	cfg = c
	logger = logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Debug().Str("data_dir", cfg.DataDir).Str("db", cfg.DBPath).Msg("configuration loaded")
	return nil
}

// forwardedFlags returns the global flags given on this invocation so a
// re-executed child process resolves the same configuration.
func forwardedFlags() []string {
	var args []string
	for _, f := range []struct{ name, val string }{
		{"config", configPath},
		{"db", dbPath},
		{"data-dir", dataDir},
		{"log-level", logLevel},
		{"log-format", logFormat},
	} {
		if f.val != "" {
			args = append(args, "--"+f.name, f.val)
		}
	}
	return args
}
