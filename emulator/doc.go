// Package emulator implements a local, B2-compatible file service for
// development and integration tests.
//
// It covers account authorization, file name listing, upload URLs and
// uploads. File records live in a FileRepo (SQLite or PostgreSQL, see the
// database package) and contents in a BlobStorage (local filesystem or an
// S3-compatible store).
//
//	service, err := emulator.NewService(repo, storage, keys, emulator.ServiceConfig{
//	    APIURL: "http://localhost:5709",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	handler := b2http.NewHandler(&b2http.HandlerConfig{}, service)
//	http.ListenAndServe(":5709", handler.Router())
package emulator
