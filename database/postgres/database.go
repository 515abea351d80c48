package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/b2files/database/internal"
	"github.com/sagarc03/b2files/emulator"
)

// DB provides PostgreSQL database operations.
type DB struct {
	pool   *pgxpool.Pool
	tables internal.Tables
}

// Connect creates a connection pool. Tables should be validated before calling Connect.
func Connect(ctx context.Context, dsn string, tables internal.Tables) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &DB{pool: pool, tables: tables}, nil
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Migrate creates the required tables if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.pool, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Drop removes the file record tables.
func (d *DB) Drop(ctx context.Context) error {
	if err := DropTables(ctx, d.pool, d.tables); err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches the expected structure.
func (d *DB) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.pool, d.tables)
}

// GetRepo returns the file record repository.
func (d *DB) GetRepo() emulator.FileRepo {
	return &Repo{pool: d.pool, tableName: quoteIdentifier(d.tables.Files)}
}

// Close closes the connection pool.
func (d *DB) Close() error {
	d.pool.Close()
	return nil
}
