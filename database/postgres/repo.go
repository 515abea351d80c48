// Package postgres stores emulator file records in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/b2files"
	"github.com/sagarc03/b2files/database/internal"
)

// Repo implements emulator.FileRepo on a pgx pool.
type Repo struct {
	pool      *pgxpool.Pool
	tableName string // quoted
}

// NewRepo creates a repository over an already migrated database.
func NewRepo(pool *pgxpool.Pool, tables internal.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: quoteIdentifier(tables.Files)}, nil
}

// Upsert stores rec as the current version of its name and returns the file
// id it replaced. The existing row is locked for the duration of the swap.
func (r *Repo) Upsert(ctx context.Context, rec b2files.FileRecord) (string, error) {
	info, err := internal.EncodeFileInfo(rec.FileInfo)
	if err != nil {
		return "", fmt.Errorf("upsert: %w", err)
	}

	var replaced string
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		selectQuery := fmt.Sprintf(`
			SELECT file_id FROM %s
			WHERE bucket_id = $1 AND file_name = $2
			FOR UPDATE
		`, r.tableName)

		scanErr := tx.QueryRow(ctx, selectQuery, rec.BucketID, rec.FileName).Scan(&replaced)
		if scanErr != nil && !errors.Is(scanErr, pgx.ErrNoRows) {
			return fmt.Errorf("check existing: %w", scanErr)
		}

		upsertQuery := fmt.Sprintf(`
			INSERT INTO %s (bucket_id, file_name, file_id, account_id, action, content_length,
				content_sha1, content_type, file_info, upload_timestamp)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (bucket_id, file_name) DO UPDATE
			SET file_id = EXCLUDED.file_id,
				account_id = EXCLUDED.account_id,
				action = EXCLUDED.action,
				content_length = EXCLUDED.content_length,
				content_sha1 = EXCLUDED.content_sha1,
				content_type = EXCLUDED.content_type,
				file_info = EXCLUDED.file_info,
				upload_timestamp = EXCLUDED.upload_timestamp
		`, r.tableName)

		_, execErr := tx.Exec(ctx, upsertQuery,
			rec.BucketID, rec.FileName, rec.FileID, rec.AccountID, rec.Action, rec.ContentLength,
			rec.ContentSHA1, rec.ContentType, info, rec.UploadTimestamp,
		)
		return execErr
	})
	if err != nil {
		return "", fmt.Errorf("upsert: %w", err)
	}

	return replaced, nil
}

// List returns up to limit records of bucketID starting at startFileName.
func (r *Repo) List(ctx context.Context, bucketID, startFileName string, limit int) ([]b2files.FileRecord, error) {
	query := fmt.Sprintf(`
		SELECT bucket_id, file_name, file_id, account_id, action, content_length,
			content_sha1, content_type, file_info, upload_timestamp
		FROM %s
		WHERE bucket_id = $1 AND file_name >= $2
		ORDER BY file_name
		LIMIT $3
	`, r.tableName)

	rows, err := r.pool.Query(ctx, query, bucketID, startFileName, limit)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	records := make([]b2files.FileRecord, 0, limit)
	for rows.Next() {
		var rec b2files.FileRecord
		var info []byte

		if err := rows.Scan(&rec.BucketID, &rec.FileName, &rec.FileID, &rec.AccountID, &rec.Action, &rec.ContentLength,
			&rec.ContentSHA1, &rec.ContentType, &info, &rec.UploadTimestamp); err != nil {
			return nil, fmt.Errorf("list: scan: %w", err)
		}

		rec.FileInfo, err = internal.DecodeFileInfo(info)
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
