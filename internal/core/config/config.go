// Package config handles configuration loading and validation for taskcoach.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/model"
)

// Config holds the application configuration.
type Config struct {
	Behavior  BehaviorConfig  `yaml:"behavior"`
	Sync      SyncConfig      `yaml:"sync"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Database  DatabaseConfig  `yaml:"database"`
	DataDir   string          `yaml:"-"` // set by caller, not from config file
}

// BehaviorConfig holds the preferences consulted by the model.
type BehaviorConfig struct {
	MarkParentCompleted    bool   `yaml:"mark_parent_completed"`
	DueSoonDays            int    `yaml:"due_soon_days"`
	WeekStart              string `yaml:"week_start"`
	StopTrackingOnComplete bool   `yaml:"stop_tracking_on_complete"`
}

// SyncConfig configures synchronization through a shared file.
type SyncConfig struct {
	// SharedFile is the path of the sync file. Empty disables sync.
	SharedFile string `yaml:"shared_file"`
	// DeviceID overrides the ID generated and stored in the database.
	DeviceID string `yaml:"device_id"`
	// Debounce coalesces bursts of changes to the shared file.
	Debounce time.Duration `yaml:"debounce"`
	// Interval also synchronizes periodically; 0 only syncs on change.
	Interval time.Duration `yaml:"interval"`
}

// SchedulerConfig configures the timer loop of `taskcoach run`.
type SchedulerConfig struct {
	Poll        time.Duration `yaml:"poll"`
	Snooze      time.Duration `yaml:"snooze"`
	MetricsAddr string        `yaml:"metrics_addr"` // empty disables the metrics server
}

// DatabaseConfig configures the SQLite connection pool.
type DatabaseConfig struct {
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	settings := model.DefaultSettings()
	return Config{
		Behavior: BehaviorConfig{
			MarkParentCompleted:    settings.MarkParentCompleted,
			DueSoonDays:            settings.DueSoonDays,
			WeekStart:              strings.ToLower(settings.WeekStart.String()),
			StopTrackingOnComplete: settings.StopTrackingOnComplete,
		},
		Sync: SyncConfig{
			Debounce: 50 * time.Millisecond,
		},
		Scheduler: SchedulerConfig{
			Poll:   250 * time.Millisecond,
			Snooze: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5 * time.Second,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()
	cfg.Sync.SharedFile = expandHome(cfg.Sync.SharedFile)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Behavior.WeekStart == "" {
		c.Behavior.WeekStart = defaults.Behavior.WeekStart
	}
	if c.Sync.Debounce == 0 {
		c.Sync.Debounce = defaults.Sync.Debounce
	}
	if c.Scheduler.Poll == 0 {
		c.Scheduler.Poll = defaults.Scheduler.Poll
	}
	if c.Scheduler.Snooze == 0 {
		c.Scheduler.Snooze = defaults.Scheduler.Snooze
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
}

// Settings converts the behavior section into model settings. The config
// must be valid.
func (c *Config) Settings() model.Settings {
	week, err := date.ParseWeekday(c.Behavior.WeekStart)
	if err != nil {
		week = model.DefaultSettings().WeekStart
	}
	return model.Settings{
		MarkParentCompleted:    c.Behavior.MarkParentCompleted,
		DueSoonDays:            c.Behavior.DueSoonDays,
		WeekStart:              week,
		StopTrackingOnComplete: c.Behavior.StopTrackingOnComplete,
	}
}

// SyncEnabled reports whether a shared file is configured.
func (c *Config) SyncEnabled() bool {
	return c.Sync.SharedFile != ""
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "taskcoach", "config.yaml")
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "taskcoach")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "taskcoach")
	}
	return filepath.Join(home, ".local", "share", "taskcoach")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
