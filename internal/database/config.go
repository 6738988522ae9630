package database

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the SQLite configuration for the activity log.
type Config struct {
	Path            string `json:"path"`            // database file path
	JournalMode     string `json:"journalMode"`     // SQLite journal mode (WAL, DELETE, MEMORY, ...)
	SynchronousMode string `json:"synchronousMode"` // SQLite synchronous mode (FULL, NORMAL, OFF)
	CacheSize       int    `json:"cacheSize"`       // SQLite cache size in KB
	BusyTimeout     int    `json:"busyTimeout"`     // SQLite busy timeout in milliseconds
	AutoMigrate     bool   `json:"autoMigrate"`     // run migrations on startup
	MaxConnections  int    `json:"maxConnections"`  // maximum number of open connections
}

// DefaultPath returns the activity log location under the per-user
// application-data directory (%AppData%\TraceTime on Windows).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "ActivityLog.db"
	}
	return filepath.Join(dir, "TraceTime", "ActivityLog.db")
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Path:            DefaultPath(),
		JournalMode:     "WAL",
		SynchronousMode: "NORMAL",
		CacheSize:       2000,
		BusyTimeout:     5000,
		AutoMigrate:     true,
		MaxConnections:  1,
	}
}

// TestConfig returns a configuration backed by an in-memory database.
func TestConfig() *Config {
	return &Config{
		Path:            ":memory:",
		JournalMode:     "MEMORY",
		SynchronousMode: "OFF",
		CacheSize:       1000,
		BusyTimeout:     1000,
		AutoMigrate:     true,
		MaxConnections:  1,
	}
}

// LoadFromEnvironment applies TRACETIME_DB_* environment overrides.
func (c *Config) LoadFromEnvironment() {
	if path := os.Getenv("TRACETIME_DB_PATH"); path != "" {
		c.Path = path
	}
	if mode := os.Getenv("TRACETIME_DB_JOURNAL_MODE"); mode != "" {
		c.JournalMode = mode
	}
	if mode := os.Getenv("TRACETIME_DB_SYNCHRONOUS_MODE"); mode != "" {
		c.SynchronousMode = mode
	}
	if size := os.Getenv("TRACETIME_DB_CACHE_SIZE"); size != "" {
		if val, err := strconv.Atoi(size); err == nil && val > 0 {
			c.CacheSize = val
		}
	}
	if timeout := os.Getenv("TRACETIME_DB_BUSY_TIMEOUT"); timeout != "" {
		if val, err := strconv.Atoi(timeout); err == nil && val >= 0 {
			c.BusyTimeout = val
		}
	}
	if migrate := os.Getenv("TRACETIME_DB_AUTO_MIGRATE"); migrate != "" {
		if val, err := strconv.ParseBool(migrate); err == nil {
			c.AutoMigrate = val
		}
	}
}

// Validate checks the configuration and creates the database directory for
// file-based databases.
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if !c.IsInMemory() {
		dir := filepath.Dir(c.Path)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create database directory %s: %w", dir, err)
				}
			}
		}
	}

	validJournalModes := []string{"DELETE", "TRUNCATE", "PERSIST", "MEMORY", "WAL", "OFF"}
	journalModeValid := false
	for _, mode := range validJournalModes {
		if strings.EqualFold(c.JournalMode, mode) {
			journalModeValid = true
			break
		}
	}
	if !journalModeValid {
		return fmt.Errorf("invalid journalMode: %s", c.JournalMode)
	}
	if c.IsInMemory() && strings.EqualFold(c.JournalMode, "WAL") {
		return fmt.Errorf("journalMode cannot be WAL when using in-memory database")
	}

	switch strings.ToUpper(c.SynchronousMode) {
	case "OFF", "NORMAL", "FULL", "EXTRA":
	default:
		return fmt.Errorf("invalid synchronousMode: %s", c.SynchronousMode)
	}

	if c.CacheSize <= 0 {
		return fmt.Errorf("cacheSize must be positive, got %d", c.CacheSize)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("busyTimeout cannot be negative, got %d", c.BusyTimeout)
	}
	if c.MaxConnections <= 0 {
		return fmt.Errorf("maxConnections must be positive, got %d", c.MaxConnections)
	}

	return nil
}

// ConnectionString builds the SQLite DSN with all pragma options.
func (c *Config) ConnectionString() string {
	values := url.Values{}
	values.Set("_journal_mode", c.JournalMode)
	values.Set("_synchronous", c.SynchronousMode)
	// Negative cache size so SQLite interprets it as KB.
	values.Set("_cache_size", fmt.Sprintf("%d", -c.CacheSize))
	values.Set("_busy_timeout", fmt.Sprintf("%d", c.BusyTimeout))

	path := c.Path
	if strings.ContainsAny(path, "?&") {
		path = strings.ReplaceAll(path, "?", "%3F")
		path = strings.ReplaceAll(path, "&", "%26")
	}

	return path + "?" + values.Encode()
}

// IsInMemory returns true when the database lives in memory.
func (c *Config) IsInMemory() bool {
	return c.Path == ":memory:"
}
