// Package http serves the emulator's B2-compatible HTTP API.
//
// # Endpoints
//
// Every route lives under /b2api/v2:
//
//	GET  /b2_authorize_account          basic auth with key id and key
//	POST /b2_list_file_names            {"bucketId", "startFileName", "maxFileCount"}
//	POST /b2_get_upload_url             {"bucketId"}
//	POST /b2_upload_file/{bucketId}     raw body, X-Bz-* headers
//
// All but the first require an Authorization header carrying an account
// token, or for uploads the token returned by b2_get_upload_url.
//
// # Errors
//
// Failures are JSON bodies shaped like {"status", "code", "message"}:
//
//	400 bad_request          invalid input or checksum mismatch
//	401 unauthorized         unknown key id or wrong key
//	401 bad_auth_token       missing, unknown or out-of-scope token
//	401 expired_auth_token   token past its lifetime
//	404 not_found            unknown endpoint
//	500 internal_error       anything else
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    CORS: http.CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}},
//	}, service)
//	stdhttp.ListenAndServe(":5709", handler.Router())
package http
