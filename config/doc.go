// Package config loads and validates the emulator configuration.
//
// YAML files, environment variables, and CLI flags are merged and the
// result is checked with go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s), merged left-to-right (b2emu.yaml in the working directory when none are given)
//  3. Environment variables (B2EMU_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"b2emu.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = config.WithContext(ctx, cfg)
//
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with the B2EMU_ prefix:
//   - server.port → B2EMU_SERVER_PORT
//   - database.dsn → B2EMU_DATABASE_DSN
//   - storage.minio.endpoint → B2EMU_STORAGE_MINIO_ENDPOINT
//
// # Configuration Structure
//
//   - Server: port, api_url advertised to clients, and max_upload_size
//   - Service: account_id, token_ttl, cleanup_timeout, and the served buckets
//   - Database: type (sqlite/postgres), DSN, and table names
//   - Storage: filesystem path or minio connection settings
//   - Keys: inline application keys and an optional keys file
//   - CORS: cross-origin resource sharing settings
//   - Log: level and format (text/json)
//
// # Validation
//
//   - Port must be 1-65535
//   - Database type must be sqlite or postgres, table names must be valid identifiers
//   - Storage type must be filesystem (path required) or minio (endpoint, keys and bucket required)
//   - Every configured bucket needs an id
//   - Log level must be debug, info, warn, or error
package config
