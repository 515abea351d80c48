package b2files

const (
	// APIPath is the versioned prefix every account-scoped endpoint lives under.
	APIPath = "/b2api/v2"

	// DefaultMaxFileCount is the page size used when a list query leaves it unset.
	DefaultMaxFileCount = 100

	// DefaultContentType asks the service to detect the content type from the file name.
	DefaultContentType = "b2/x-auto"
)

// Header names that make up the upload wire contract.
const (
	HeaderAuthorization = "Authorization"
	HeaderFileName      = "X-Bz-File-Name"
	HeaderContentSHA1   = "X-Bz-Content-Sha1"
	HeaderContentType   = "Content-Type"
)

// FileRecord is the service's description of a stored file.
type FileRecord struct {
	AccountID       string            `json:"accountId,omitempty"`
	Action          string            `json:"action,omitempty"`
	BucketID        string            `json:"bucketId"`
	ContentLength   int64             `json:"contentLength"`
	ContentSHA1     string            `json:"contentSha1"`
	ContentMD5      string            `json:"contentMd5,omitempty"`
	ContentType     string            `json:"contentType"`
	FileID          string            `json:"fileId"`
	FileInfo        map[string]string `json:"fileInfo,omitempty"`
	FileName        string            `json:"fileName"`
	UploadTimestamp int64             `json:"uploadTimestamp"`
}

// FileListPage is one page of a file name listing. NextFileName is nil once
// the listing is exhausted.
type FileListPage struct {
	Files        []FileRecord `json:"files"`
	NextFileName *string      `json:"nextFileName"`
}

// HasMore reports whether another page can be requested.
func (p FileListPage) HasMore() bool {
	return p.NextFileName != nil && *p.NextFileName != ""
}

// UploadCredential is a short-lived upload target for a single bucket.
type UploadCredential struct {
	BucketID           string `json:"bucketId"`
	UploadURL          string `json:"uploadUrl"`
	AuthorizationToken string `json:"authorizationToken"`
}

// ListQuery selects one page of file names.
type ListQuery struct {
	BucketID      string
	StartFileName string
	MaxFileCount  int
}

// UploadObject describes a single file upload.
type UploadObject struct {
	Data        []byte
	FileName    string
	BucketID    string
	ContentType string // empty means DefaultContentType
}

// Authorization is the result of authorizing an account.
type Authorization struct {
	AccountID          string `json:"accountId"`
	AuthorizationToken string `json:"authorizationToken"`
	APIURL             string `json:"apiUrl"`
	DownloadURL        string `json:"downloadUrl"`
	Allowed            struct {
		BucketID   string   `json:"bucketId,omitempty"`
		BucketName string   `json:"bucketName,omitempty"`
		Capability []string `json:"capabilities,omitempty"`
	} `json:"allowed"`
}
