package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/b2files/database/internal"
	"github.com/sagarc03/b2files/emulator"

	_ "modernc.org/sqlite" // SQLite driver
)

// DB provides SQLite database operations.
type DB struct {
	db     *sql.DB
	tables internal.Tables
}

// Connect opens a SQLite database. Tables should be validated before calling Connect.
func Connect(ctx context.Context, dsn string, tables internal.Tables) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	return &DB{db: db, tables: tables}, nil
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate creates the required tables if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Drop removes the file record tables.
func (d *DB) Drop(ctx context.Context) error {
	if err := DropTables(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches the expected structure.
func (d *DB) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// GetRepo returns the file record repository.
func (d *DB) GetRepo() emulator.FileRepo {
	return &repo{db: d.db, tableName: quoteIdentifier(d.tables.Files)}
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}
