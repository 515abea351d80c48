package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/b2files/config"
	"github.com/sagarc03/b2files/database"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the file record tables",
	Long: `Create the configured file record tables if they do not exist and
verify their schema. Use this when database.auto_migrate is disabled.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("drop", false, "drop existing tables before creating them")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if drop, _ := cmd.Flags().GetBool("drop"); drop {
		if err := db.Drop(ctx); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
		slog.Warn("dropped file record tables", "table", cfg.Database.Tables.Files)
	}

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if err := db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database schema: %w", err)
	}

	slog.Info("database initialized", "type", cfg.Database.Type, "table", cfg.Database.Tables.Files)
	return nil
}
