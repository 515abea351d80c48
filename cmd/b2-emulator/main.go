package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/b2files/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "b2-emulator",
	Short:   "Local emulator for the B2 file listing and upload API",
	Long: `b2-emulator serves b2_authorize_account, b2_list_file_names,
b2_get_upload_url and b2_upload_file backed by SQLite or PostgreSQL
metadata and filesystem or MinIO blob storage.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSlice("config", nil, "config file paths, merged in order (default: ./b2emu.yaml)")
	flags.String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: B2EMU_DATABASE_TYPE)")
	flags.String("db-dsn", "", "database connection string (default: b2emu.db, env: B2EMU_DATABASE_DSN)")
	flags.String("storage-type", "", "blob storage: filesystem, minio (default: filesystem, env: B2EMU_STORAGE_TYPE)")
	flags.String("storage-path", "", "blob directory for filesystem storage (default: ./data, env: B2EMU_STORAGE_PATH)")
	flags.String("log-level", "", "log level: debug, info, warn, error (env: B2EMU_LOG_LEVEL)")
	flags.String("log-format", "", "log format: text, json (env: B2EMU_LOG_FORMAT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
