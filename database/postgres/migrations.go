package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/b2files/database/internal"
)

func quoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// Migrate creates all tables. It is safe to run repeatedly.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables internal.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := createFilesTable(ctx, pool, tables.Files); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Files, err)
	}
	return nil
}

// DropTables drops all tables.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables internal.Tables) error {
	if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", quoteIdentifier(tables.Files))); err != nil {
		return fmt.Errorf("migrate down %s: %w", tables.Files, err)
	}
	return nil
}

func createFilesTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := quoteIdentifier(tableName)
	indexFileID := quoteIdentifier(fmt.Sprintf("idx_%s_file_id", tableName))

	// file_name uses the "C" collation so listings order by UTF-8 bytes.
	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			bucket_id TEXT NOT NULL,
			file_name TEXT COLLATE "C" NOT NULL,
			file_id TEXT NOT NULL,
			account_id TEXT NOT NULL,
			action TEXT NOT NULL,
			content_length BIGINT NOT NULL,
			content_sha1 TEXT NOT NULL,
			content_type TEXT NOT NULL,
			file_info JSONB NOT NULL DEFAULT '{}'::jsonb,
			upload_timestamp BIGINT NOT NULL,
			PRIMARY KEY (bucket_id, file_name)
		);

		CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (file_id);
	`,
		quotedTable,
		indexFileID, quotedTable,
	)

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create files table: %w", err)
	}
	return nil
}
