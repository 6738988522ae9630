package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	dberrors "tracetime/internal/infrastructure/errors"
	"tracetime/internal/infrastructure/logging"
)

// SQLiteService implements Service for the SQLite activity log.
//
// Lifecycle:
//  1. Create with NewSQLiteService()
//  2. Connect()
//  3. Migrate() (Connect does this when AutoMigrate is set)
//  4. Use DB() from the repository
//  5. Close()
type SQLiteService struct {
	db              *sqlx.DB
	config          *Config
	migrationRunner MigrationManager
	logger          logging.Logger
}

// NewSQLiteService creates a new SQLite database service
func NewSQLiteService(logger logging.Logger) *SQLiteService {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &SQLiteService{logger: logger}
}

// Connect opens the database, applies the configured pragmas and, when
// AutoMigrate is set, brings the schema up to date.
func (s *SQLiteService) Connect(ctx context.Context, config *Config) error {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Connect", err, map[string]string{
			"phase": "config",
		})
	}
	s.config = config

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close existing database connection", "error", err)
		}
		s.db = nil
		s.migrationRunner = nil
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", config.ConnectionString())
	if err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Connect", err, map[string]string{
			"path": config.Path,
		})
	}

	// SQLite writes are serialized anyway; a small pool keeps lock
	// contention out of the picture.
	db.SetMaxOpenConns(config.MaxConnections)
	db.SetMaxIdleConns(config.MaxConnections)

	s.db = db
	s.migrationRunner = NewMigrationRunner(db.DB, s.logger)

	if config.AutoMigrate {
		if err := s.Migrate(ctx); err != nil {
			s.db.Close()
			s.db = nil
			s.migrationRunner = nil
			return err
		}
	}

	s.logger.Info("Connected to SQLite activity log", "path", config.Path)
	return nil
}

// Close closes the database connection.
func (s *SQLiteService) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.migrationRunner = nil
	if err != nil {
		return dberrors.WrapDatabaseError("Close", err)
	}
	s.logger.Info("Closed SQLite activity log")
	return nil
}

// Migrate runs pending schema migrations.
func (s *SQLiteService) Migrate(ctx context.Context) error {
	if s.db == nil {
		return dberrors.HandleConnectionError("Migrate", "database not connected")
	}
	if s.migrationRunner == nil {
		return dberrors.HandleValidationError("Migrate", "migrationRunner", "nil", "migration runner not initialized")
	}
	if err := s.migrationRunner.RunMigrations(ctx); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Migrate", err, map[string]string{
			"phase": "execution",
		})
	}
	return nil
}

// MigrationVersion returns the current schema version.
func (s *SQLiteService) MigrationVersion(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, dberrors.HandleConnectionError("MigrationVersion", "database not connected")
	}
	version, err := s.migrationRunner.CurrentVersion(ctx)
	if err != nil {
		return 0, dberrors.WrapDatabaseError("MigrationVersion", err)
	}
	return version, nil
}

// Health checks the database connection health
func (s *SQLiteService) Health(ctx context.Context) error {
	if s.db == nil {
		return dberrors.HandleConnectionError("Health", "database not connected")
	}
	if err := s.db.PingContext(ctx); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Health", err, map[string]string{
			"phase": "ping",
		})
	}

	var result int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return dberrors.WrapDatabaseErrorWithContext("Health", err, map[string]string{
			"phase": "query",
		})
	}
	if result != 1 {
		return dberrors.HandleValidationError("Health", "query_result", fmt.Sprintf("%d", result), "expected result 1")
	}
	return nil
}

// DB returns the underlying connection for repository use.
func (s *SQLiteService) DB() *sqlx.DB {
	return s.db
}
