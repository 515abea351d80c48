package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/b2files/database/internal"
)

// quoteIdentifier quotes a SQLite identifier. Names are validated before use.
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

// TableMigration creates and drops one table.
type TableMigration struct {
	TableName string
	Up        func(ctx context.Context, db *sql.DB) error
	Down      func(ctx context.Context, db *sql.DB) error
}

func getTableMigrations(tables internal.Tables) []TableMigration {
	return []TableMigration{
		{
			TableName: tables.Files,
			Up:        createFilesTable(tables.Files),
			Down:      dropTable(tables.Files),
		},
	}
}

// Migrate creates all tables. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sql.DB, tables internal.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	for _, m := range getTableMigrations(tables) {
		if err := m.Up(ctx, db); err != nil {
			return fmt.Errorf("migrate up %s: %w", m.TableName, err)
		}
	}
	return nil
}

// DropTables drops all tables in reverse creation order.
func DropTables(ctx context.Context, db *sql.DB, tables internal.Tables) error {
	migrations := getTableMigrations(tables)

	for i := len(migrations) - 1; i >= 0; i-- {
		if err := migrations[i].Down(ctx, db); err != nil {
			return fmt.Errorf("migrate down %s: %w", migrations[i].TableName, err)
		}
	}
	return nil
}

func createFilesTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		quotedTable := quoteIdentifier(tableName)
		indexFileID := quoteIdentifier(fmt.Sprintf("idx_%s_file_id", tableName))

		// TEXT compares with BINARY collation, which orders by UTF-8 bytes.
		createTableSQL := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				bucket_id TEXT NOT NULL,
				file_name TEXT NOT NULL,
				file_id TEXT NOT NULL,
				account_id TEXT NOT NULL,
				action TEXT NOT NULL,
				content_length INTEGER NOT NULL,
				content_sha1 TEXT NOT NULL,
				content_type TEXT NOT NULL,
				file_info TEXT NOT NULL DEFAULT '{}',
				upload_timestamp INTEGER NOT NULL,
				PRIMARY KEY (bucket_id, file_name)
			)
		`, quotedTable)

		if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}

		indexSQL := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (file_id)`, indexFileID, quotedTable)
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return fmt.Errorf("create index file_id: %w", err)
		}

		return nil
	}
}

func dropTable(tableName string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(tableName)))
		return err
	}
}
