// Package config provides configuration loading for rewind.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
//
// EventLog is where the watcher reads events. rewind-record only sees its
// environment (REWIND_EVENT_LOG, REWIND_DATA_DIR), so an event_log or
// data_dir set only in config.yaml must also be exported to the recorder.
type Config struct {
	DataDir  string         `mapstructure:"data_dir"`
	DBPath   string         `mapstructure:"db_path"`
	EventLog string         `mapstructure:"event_log"`
	Manifest string         `mapstructure:"manifest"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Timeline TimelineConfig `mapstructure:"timeline"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TimelineConfig defines how timelines are built and drawn
type TimelineConfig struct {
	RequireForeground bool `mapstructure:"require_foreground"`
	CloseOpen         bool `mapstructure:"close_open"`
	Width             int  `mapstructure:"width"`
	RetentionDays     int  `mapstructure:"retention_days"`
}

// Overrides carries command-line values that take precedence over the
// config file and environment. Empty fields are ignored.
type Overrides struct {
	DataDir   string
	DBPath    string
	LogLevel  string
	LogFormat string
}

func (o Overrides) apply(v *viper.Viper) {
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("data_dir", o.DataDir)
	set("db_path", o.DBPath)
	set("logging.level", o.LogLevel)
	set("logging.format", o.LogFormat)
}

// Dir returns the rewind config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/rewind if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "rewind"), nil
}

// Load reads configuration from configPath (or config.yaml in dir when
// configPath is empty) and REWIND_* environment variables. A missing
// config.yaml in dir is not an error; a missing explicit configPath is.
func Load(dir, configPath string, ov Overrides) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("REWIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	ov.apply(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.resolvePaths(dir); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("db_path", "")
	v.SetDefault("event_log", "")
	v.SetDefault("manifest", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("timeline.require_foreground", false)
	v.SetDefault("timeline.close_open", false)
	v.SetDefault("timeline.width", 80)
	v.SetDefault("timeline.retention_days", 0)
}

// resolvePaths fills empty paths with defaults under the data directory.
func (c *Config) resolvePaths(configDir string) error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".rewind")
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "rewind.db")
	}
	if c.EventLog == "" {
		c.EventLog = filepath.Join(c.DataDir, "events.log")
	}
	if c.Manifest == "" {
		c.Manifest = filepath.Join(configDir, "apps.yaml")
	}
	if c.Timeline.Width <= 0 {
		c.Timeline.Width = 80
	}
	return nil
}

// PIDFile returns the watch daemon PID file path.
func (c *Config) PIDFile() string {
	return filepath.Join(c.DataDir, "watch.pid")
}

// WatchLogFile returns the watch daemon log file path.
func (c *Config) WatchLogFile() string {
	return filepath.Join(c.DataDir, "watch.log")
}

// OffsetFile returns the event log offset tracking path.
func (c *Config) OffsetFile() string {
	return filepath.Join(c.DataDir, "events.offset")
}

// RecorderEventLog returns the log path rewind-record resolves from the
// environment alone: REWIND_EVENT_LOG, else REWIND_DATA_DIR/events.log,
// else ~/.rewind/events.log.
func RecorderEventLog() (string, error) {
	if path := os.Getenv("REWIND_EVENT_LOG"); path != "" {
		return path, nil
	}
	if dir := os.Getenv("REWIND_DATA_DIR"); dir != "" {
		return filepath.Join(dir, "events.log"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".rewind", "events.log"), nil
}
