package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/taskcoach/internal/core/date"
	"github.com/colonyops/taskcoach/internal/core/validate"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("cannot be empty"))
	}

	if c.Behavior.DueSoonDays < 0 {
		errs = errs.Append("behavior.due_soon_days", fmt.Errorf("must not be negative, got %d", c.Behavior.DueSoonDays))
	}
	if _, err := date.ParseWeekday(c.Behavior.WeekStart); err != nil {
		errs = errs.Append("behavior.week_start", err)
	}

	if c.Sync.Debounce < 0 {
		errs = errs.Append("sync.debounce", fmt.Errorf("must not be negative"))
	}
	if c.Sync.Interval < 0 {
		errs = errs.Append("sync.interval", fmt.Errorf("must not be negative"))
	}
	if c.Sync.DeviceID != "" {
		if err := validate.DeviceID(c.Sync.DeviceID); err != nil {
			errs = errs.Append("sync.device_id", err)
		}
	}

	if c.Scheduler.Poll <= 0 {
		errs = errs.Append("scheduler.poll", fmt.Errorf("must be positive"))
	}
	if c.Scheduler.Snooze <= 0 {
		errs = errs.Append("scheduler.snooze", fmt.Errorf("must be positive"))
	}

	if c.Database.MaxOpenConns < 1 {
		errs = errs.Append("database.max_open_conns", fmt.Errorf("must be at least 1"))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = errs.Append("database.max_idle_conns", fmt.Errorf("must not be negative"))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", fmt.Errorf("must not be negative"))
	}

	return errs.ToError()
}

// ValidateDeep performs comprehensive validation of the configuration including
// file accessibility and listen addresses. The configPath argument specifies
// the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateSharedFile(),
		criterio.Run("scheduler.metrics_addr", c.Scheduler.MetricsAddr, isListenAddr),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.SyncEnabled() && c.Sync.DeviceID == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Sync",
			Item:     "device_id",
			Message:  "no device_id set; the ID stored in the database is used",
		})
	}
	if !c.SyncEnabled() && c.Sync.Interval > 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Sync",
			Item:     "interval",
			Message:  "interval has no effect without shared_file",
		})
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		warnings = append(warnings, ValidationWarning{
			Category: "Database",
			Item:     "max_idle_conns",
			Message:  "max_idle_conns exceeds max_open_conns and is capped",
		})
	}
	if c.Scheduler.Poll > time.Second {
		warnings = append(warnings, ValidationWarning{
			Category: "Scheduler",
			Item:     "poll",
			Message:  "tracked efforts report their duration less than once a second",
		})
	}

	return warnings
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// validateSharedFile checks that the shared file is a file in a usable directory.
func (c *Config) validateSharedFile() error {
	if !c.SyncEnabled() {
		return nil
	}

	var errs criterio.FieldErrorsBuilder
	if info, err := os.Stat(c.Sync.SharedFile); err == nil && info.IsDir() {
		errs = errs.Append("sync.shared_file", fmt.Errorf("%s is a directory, not a file", c.Sync.SharedFile))
	}
	if err := isDirectoryOrNotExist(filepath.Dir(c.Sync.SharedFile)); err != nil {
		errs = errs.Append("sync.shared_file", fmt.Errorf("parent directory: %w", err))
	}
	return errs.ToError()
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// isListenAddr validates a host:port listen address. Empty is allowed.
func isListenAddr(addr string) error {
	if addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	return nil
}
