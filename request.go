package b2files

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	listFileNamesEndpoint = "/b2_list_file_names"
	getUploadURLEndpoint  = "/b2_get_upload_url"
	authorizeEndpoint     = "/b2_authorize_account"
)

type listFileNamesBody struct {
	BucketID      string `json:"bucketId"`
	StartFileName string `json:"startFileName,omitempty"`
	MaxFileCount  int    `json:"maxFileCount"`
}

type getUploadURLBody struct {
	BucketID string `json:"bucketId"`
}

// BuildListFilesRequest builds the request for one page of file names.
// A zero maxCount means DefaultMaxFileCount; counts above the service's own
// ceiling are sent as-is.
func BuildListFilesRequest(ctx context.Context, s Session, bucketID, startFileName string, maxCount int) (*http.Request, error) {
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("build list files request: %w", err)
	}
	if bucketID == "" {
		return nil, fmt.Errorf("build list files request: %w", ErrBucketRequired)
	}
	if maxCount == 0 {
		maxCount = DefaultMaxFileCount
	}
	if maxCount < 0 {
		return nil, fmt.Errorf("build list files request: %w", ErrInvalidMaxFileCount)
	}

	return newAPIRequest(ctx, s, listFileNamesEndpoint, listFileNamesBody{
		BucketID:      bucketID,
		StartFileName: startFileName,
		MaxFileCount:  maxCount,
	})
}

// BuildGetUploadURLRequest builds the request for a fresh upload credential.
func BuildGetUploadURLRequest(ctx context.Context, s Session, bucketID string) (*http.Request, error) {
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("build get upload url request: %w", err)
	}
	if bucketID == "" {
		return nil, fmt.Errorf("build get upload url request: %w", ErrBucketRequired)
	}

	return newAPIRequest(ctx, s, getUploadURLEndpoint, getUploadURLBody{BucketID: bucketID})
}

// BuildUploadRequest builds the upload of data as fileName using cred.
// The body is sent verbatim; size limits are left to the service.
func BuildUploadRequest(ctx context.Context, cred UploadCredential, data []byte, fileName, contentType string) (*http.Request, error) {
	if cred.UploadURL == "" || cred.AuthorizationToken == "" {
		return nil, fmt.Errorf("build upload request: %w: incomplete upload credential", ErrPrecondition)
	}
	if !IsValidFileName(fileName) {
		return nil, fmt.Errorf("build upload request %q: %w", fileName, ErrInvalidFileName)
	}
	if contentType == "" {
		contentType = DefaultContentType
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cred.UploadURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = int64(len(data))
	req.Header.Set(HeaderAuthorization, cred.AuthorizationToken)
	req.Header.Set(HeaderFileName, EncodeFileName(fileName))
	req.Header.Set(HeaderContentType, contentType)
	req.Header.Set("Content-Length", strconv.Itoa(len(data)))
	req.Header.Set(HeaderContentSHA1, ContentSHA1(data))

	return req, nil
}

// BuildAuthorizeRequest builds the account authorization request against authURL.
func BuildAuthorizeRequest(ctx context.Context, authURL, keyID, key string) (*http.Request, error) {
	if authURL == "" {
		return nil, fmt.Errorf("build authorize request: %w", ErrAPIURLRequired)
	}
	if keyID == "" || key == "" {
		return nil, fmt.Errorf("build authorize request: %w: key id and key are required", ErrPrecondition)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(authURL, "/")+APIPath+authorizeEndpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build authorize request: %w", err)
	}
	req.SetBasicAuth(keyID, key)
	return req, nil
}

func newAPIRequest(ctx context.Context, s Session, endpoint string, body any) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.APIURL+APIPath+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", endpoint, err)
	}
	req.Header.Set(HeaderAuthorization, s.AccountToken)
	req.Header.Set(HeaderContentType, "application/json")

	return req, nil
}
