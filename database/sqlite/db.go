package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sagarc03/b2files/database/internal"
)

var filesTableSchema = map[string]internal.Column{
	"file_id":          {DataType: "text"},
	"bucket_id":        {DataType: "text"},
	"file_name":        {DataType: "text"},
	"account_id":       {DataType: "text"},
	"action":           {DataType: "text"},
	"content_length":   {DataType: "integer"},
	"content_sha1":     {DataType: "text"},
	"content_type":     {DataType: "text"},
	"file_info":        {DataType: "text"},
	"upload_timestamp": {DataType: "integer"},
}

// ValidateSchema checks every table the emulator needs against its expected columns.
func ValidateSchema(ctx context.Context, db *sql.DB, tables internal.Tables) error {
	if err := validateTableSchema(ctx, db, tables.Files, filesTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", tables.Files, err)
	}
	return nil
}

func validateTableSchema(ctx context.Context, db *sql.DB, tableName string, expected map[string]internal.Column) error {
	if !internal.IsValidTableName(tableName) {
		return fmt.Errorf("validate table schema: invalid table name: %s", tableName)
	}

	exists, err := tableExists(ctx, db, tableName)
	if err != nil {
		return fmt.Errorf("validate table schema: %w", err)
	}
	if !exists {
		return fmt.Errorf("validate table schema: table %s does not exist", tableName)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(tableName)))
	if err != nil {
		return fmt.Errorf("validate table schema: query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	actual := make(map[string]internal.Column)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, dataType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("validate table schema: scan column: %w", err)
		}
		actual[name] = internal.Column{
			DataType:   strings.ToLower(dataType),
			IsNullable: notNull == 0,
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("validate table schema: rows error: %w", err)
	}

	return internal.CompareColumns(tableName, expected, actual)
}

func tableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name=?`, tableName).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return true, nil
}
