package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/b2files/database/internal"
	"github.com/sagarc03/b2files/database/postgres"
	"github.com/sagarc03/b2files/database/sqlite"
	"github.com/sagarc03/b2files/emulator"
)

// Tables names the tables a backend stores file records in.
type Tables = internal.Tables

// IsValidTableName reports whether name is a lowercase SQL identifier of at most 63 chars.
func IsValidTableName(name string) bool {
	return internal.IsValidTableName(name)
}

// Database is a connected file record backend.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Drop(ctx context.Context) error
	Validate(ctx context.Context) error
	GetRepo() emulator.FileRepo
	Close() error
}

// Config holds the configuration for connecting to a file record backend.
type Config struct {
	// Type is "sqlite" or "postgres".
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	// DSN is the data source name (connection string).
	DSN string `mapstructure:"dsn" validate:"required"`
	// Tables names the tables the backend uses.
	Tables Tables `mapstructure:"tables"`
	// AutoMigrate creates missing tables on serve.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// Connect opens the configured backend. It does not migrate or validate;
// callers decide which of the two to run.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.Type)
	}
}
