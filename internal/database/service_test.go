package database

import (
	"context"
	"strings"
	"testing"

	"tracetime/internal/testutils"
)

func setupTestService(t *testing.T) *SQLiteService {
	t.Helper()

	service := NewSQLiteService(&testutils.CaptureLogger{})
	if err := service.Connect(context.Background(), TestConfig()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { service.Close() })
	return service
}

func TestSQLiteService_ConnectAndHealth(t *testing.T) {
	t.Parallel()
	service := setupTestService(t)

	if err := service.Health(context.Background()); err != nil {
		t.Errorf("Health failed on a fresh connection: %v", err)
	}
	if service.DB() == nil {
		t.Error("DB should be available after Connect")
	}
}

func TestSQLiteService_MigrationsCreateSchema(t *testing.T) {
	t.Parallel()
	service := setupTestService(t)
	ctx := context.Background()

	version, err := service.MigrationVersion(ctx)
	if err != nil {
		t.Fatalf("MigrationVersion failed: %v", err)
	}
	if version < 2 {
		t.Errorf("expected schema at version >= 2, got %d", version)
	}

	// The is_primary column from migration 2 must be queryable.
	var count int
	err = service.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM activity WHERE is_primary = 1").Scan(&count)
	if err != nil {
		t.Fatalf("activity table should exist with is_primary column: %v", err)
	}
}

func TestSQLiteService_MigrateTwiceIsIdempotent(t *testing.T) {
	t.Parallel()
	service := setupTestService(t)
	ctx := context.Background()

	if err := service.Migrate(ctx); err != nil {
		t.Fatalf("re-running migrations should be a no-op, got: %v", err)
	}
}

func TestSQLiteService_HealthWithoutConnect(t *testing.T) {
	t.Parallel()
	service := NewSQLiteService(&testutils.CaptureLogger{})

	if err := service.Health(context.Background()); err == nil {
		t.Error("Health should fail before Connect")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults for test db", func(c *Config) {}, false},
		{"empty path", func(c *Config) { c.Path = "" }, true},
		{"bad journal mode", func(c *Config) { c.JournalMode = "SIDEWAYS" }, true},
		{"wal in memory", func(c *Config) { c.JournalMode = "WAL" }, true},
		{"bad sync mode", func(c *Config) { c.SynchronousMode = "MAYBE" }, true},
		{"zero cache", func(c *Config) { c.CacheSize = 0 }, true},
		{"negative busy timeout", func(c *Config) { c.BusyTimeout = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := TestConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestConfig_ConnectionString(t *testing.T) {
	t.Parallel()

	config := TestConfig()
	dsn := config.ConnectionString()

	for _, want := range []string{":memory:?", "_journal_mode=MEMORY", "_busy_timeout=1000", "_cache_size=-1000"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN %q should contain %q", dsn, want)
		}
	}
}
