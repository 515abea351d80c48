// Package b2files provides the file-transfer session layer of a B2-style
// object storage client: listing file names in a bucket and uploading files.
//
// # Key Components
//
//   - SessionConfig: account-wide values (API URL, account token, persisted bucket)
//   - Request builders: BuildListFilesRequest, BuildGetUploadURLRequest, BuildUploadRequest
//   - CheckResponse / DecodeJSON: turn service errors into *ServiceError, bad bodies into *MalformedResponseError
//   - Files: the List, Pages and Upload operations
//
// # Upload Credentials
//
// Every Upload fetches a brand-new upload credential and hands it straight to
// the upload request. Credentials are never written back into the
// SessionConfig, so concurrent uploads sharing one session cannot use each
// other's tokens.
//
// # Example Usage
//
//	auth, err := b2files.Authorize(ctx, http.DefaultClient, "https://api.backblazeb2.com", keyID, key)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	files, err := b2files.NewFiles(b2files.SessionFromAuthorization(auth))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	record, err := files.Upload(ctx, b2files.UploadObject{
//	    Data:     data,
//	    FileName: "reports/2026/q3.csv",
//	    BucketID: bucketID,
//	})
//
//	for page, err := range files.Pages(ctx, b2files.ListQuery{BucketID: bucketID}) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for _, f := range page.Files {
//	        fmt.Println(f.FileName)
//	    }
//	}
//
// # Errors
//
// Failures fall into four kinds: precondition errors (match ErrPrecondition,
// raised before any request), transport errors (returned wrapped), service
// errors (*ServiceError) and malformed responses (match ErrMalformedResponse).
package b2files
