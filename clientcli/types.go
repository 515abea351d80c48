package clientcli

import (
	"time"

	"github.com/sagarc03/b2files"
)

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath   string
	RemotePath  string // file name in the bucket; prefix when Recursive
	BucketID    string // empty = profile bucket
	ContentType string // empty = service detects from the name
	Recursive   bool
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath   string    `json:"local_path"`
	FileName    string    `json:"file_name"`
	FileID      string    `json:"file_id"`
	BucketID    string    `json:"bucket_id"`
	ContentType string    `json:"content_type"`
	ContentSHA1 string    `json:"content_sha1"`
	Size        int64     `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"`
	Err         error     `json:"-"` // nil on success
}

// ListOptions configures a list operation.
type ListOptions struct {
	BucketID      string // empty = profile bucket
	StartFileName string
	MaxFileCount  int
	All           bool // follow nextFileName until the listing is exhausted
}

// ListResult contains one or more pages of file names.
type ListResult struct {
	Files        []FileInfo `json:"files"`
	NextFileName string     `json:"next_file_name,omitempty"`
}

// FileInfo is the CLI view of a stored file.
type FileInfo struct {
	FileID      string    `json:"file_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	ContentSHA1 string    `json:"content_sha1"`
	Size        int64     `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// TotalSize calculates the total size of all files in bytes.
func (r *ListResult) TotalSize() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}

func fileInfoFromRecord(rec b2files.FileRecord) FileInfo {
	return FileInfo{
		FileID:      rec.FileID,
		FileName:    rec.FileName,
		ContentType: rec.ContentType,
		ContentSHA1: rec.ContentSHA1,
		Size:        rec.ContentLength,
		UploadedAt:  time.UnixMilli(rec.UploadTimestamp).UTC(),
	}
}
