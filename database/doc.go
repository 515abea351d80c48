// Package database connects the emulator to its file record backend.
//
// # Supported Backends
//
//   - PostgreSQL: pgx connection pool, suited to shared test environments
//   - SQLite: modernc.org/sqlite, suited to local development and CI
//
// # Usage
//
//	db, err := database.Connect(ctx, database.Config{
//	    Type:   "sqlite",
//	    DSN:    "b2emu.db",
//	    Tables: database.Tables{Files: "b2_files"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	repo := db.GetRepo()
//
// Both backends keep one row per (bucket, file name): uploading a name again
// replaces the row and reports the file id it replaced.
package database
