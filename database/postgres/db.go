package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/b2files/database/internal"
)

var filesTableSchema = map[string]internal.Column{
	"file_id":          {DataType: "text"},
	"bucket_id":        {DataType: "text"},
	"file_name":        {DataType: "text"},
	"account_id":       {DataType: "text"},
	"action":           {DataType: "text"},
	"content_length":   {DataType: "bigint"},
	"content_sha1":     {DataType: "text"},
	"content_type":     {DataType: "text"},
	"file_info":        {DataType: "jsonb"},
	"upload_timestamp": {DataType: "bigint"},
}

// ValidateSchema checks every table the emulator needs against its expected columns.
// It is meant for databases migrated by hand.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables internal.Tables) error {
	if err := validateTableSchema(ctx, pool, tables.Files, filesTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", tables.Files, err)
	}
	return nil
}

func validateTableSchema(ctx context.Context, pool *pgxpool.Pool, tableName string, expected map[string]internal.Column) error {
	if !internal.IsValidTableName(tableName) {
		return fmt.Errorf("validate table schema: invalid table name: %s", tableName)
	}

	exists, err := tableExists(ctx, pool, tableName)
	if err != nil {
		return fmt.Errorf("validate table schema: %w", err)
	}
	if !exists {
		return fmt.Errorf("validate table schema: table %s does not exist", tableName)
	}

	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position
	`, tableName)
	if err != nil {
		return fmt.Errorf("validate table schema: query columns: %w", err)
	}
	defer rows.Close()

	actual := make(map[string]internal.Column)
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return fmt.Errorf("validate table schema: scan column: %w", err)
		}
		actual[name] = internal.Column{
			DataType:   strings.ToLower(dataType),
			IsNullable: nullable == "YES",
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("validate table schema: rows error: %w", err)
	}

	return internal.CompareColumns(tableName, expected, actual)
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = current_schema()
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return exists, nil
}
