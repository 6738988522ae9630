package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Service abstracts connection management and schema migrations for the
// activity log.
type Service interface {
	Connect(ctx context.Context, config *Config) error
	Close() error
	Health(ctx context.Context) error

	DB() *sqlx.DB

	Migrate(ctx context.Context) error
	MigrationVersion(ctx context.Context) (int64, error)
}

// MigrationManager handles schema evolution.
type MigrationManager interface {
	RunMigrations(ctx context.Context) error
	CurrentVersion(ctx context.Context) (int64, error)
}
