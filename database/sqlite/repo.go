// Package sqlite stores emulator file records in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sagarc03/b2files"
	"github.com/sagarc03/b2files/database/internal"
	"github.com/sagarc03/b2files/emulator"
)

type repo struct {
	db        *sql.DB
	tableName string // quoted
}

// NewRepo creates a repository over an already migrated database.
func NewRepo(db *sql.DB, tables internal.Tables) (emulator.FileRepo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}
	return &repo{db: db, tableName: quoteIdentifier(tables.Files)}, nil
}

func (r *repo) Upsert(ctx context.Context, rec b2files.FileRecord) (string, error) {
	info, err := internal.EncodeFileInfo(rec.FileInfo)
	if err != nil {
		return "", fmt.Errorf("upsert: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("upsert: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var replaced string
	selectQuery := fmt.Sprintf(`SELECT file_id FROM %s WHERE bucket_id = ? AND file_name = ?`, r.tableName) //nolint:gosec // table name is validated
	err = tx.QueryRowContext(ctx, selectQuery, rec.BucketID, rec.FileName).Scan(&replaced)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("upsert: check existing: %w", err)
	}

	upsertQuery := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (bucket_id, file_name, file_id, account_id, action, content_length,
			content_sha1, content_type, file_info, upload_timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (bucket_id, file_name) DO UPDATE
		SET file_id = excluded.file_id,
			account_id = excluded.account_id,
			action = excluded.action,
			content_length = excluded.content_length,
			content_sha1 = excluded.content_sha1,
			content_type = excluded.content_type,
			file_info = excluded.file_info,
			upload_timestamp = excluded.upload_timestamp`, r.tableName)

	_, err = tx.ExecContext(ctx, upsertQuery,
		rec.BucketID, rec.FileName, rec.FileID, rec.AccountID, rec.Action, rec.ContentLength,
		rec.ContentSHA1, rec.ContentType, string(info), rec.UploadTimestamp,
	)
	if err != nil {
		return "", fmt.Errorf("upsert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("upsert: commit: %w", err)
	}

	return replaced, nil
}

func (r *repo) List(ctx context.Context, bucketID, startFileName string, limit int) ([]b2files.FileRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT bucket_id, file_name, file_id, account_id, action, content_length,
			content_sha1, content_type, file_info, upload_timestamp
		FROM %s
		WHERE bucket_id = ? AND file_name >= ?
		ORDER BY file_name
		LIMIT ?`, r.tableName)

	rows, err := r.db.QueryContext(ctx, query, bucketID, startFileName, limit)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]b2files.FileRecord, 0, limit)
	for rows.Next() {
		var rec b2files.FileRecord
		var info string

		if err := rows.Scan(&rec.BucketID, &rec.FileName, &rec.FileID, &rec.AccountID, &rec.Action, &rec.ContentLength,
			&rec.ContentSHA1, &rec.ContentType, &info, &rec.UploadTimestamp); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}

		rec.FileInfo, err = internal.DecodeFileInfo([]byte(info))
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: rows: %w", err)
	}

	return records, nil
}
