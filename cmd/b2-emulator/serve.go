package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/b2files/config"
	"github.com/sagarc03/b2files/database"
	"github.com/sagarc03/b2files/emulator"
	b2http "github.com/sagarc03/b2files/http"
	"github.com/sagarc03/b2files/keybackend"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the emulator HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5709, "HTTP server port (env: B2EMU_SERVER_PORT)")
	serveCmd.Flags().String("api-url", "", "API URL advertised to clients (default: http://localhost:<port>)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err = db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err = db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		slog.Info("database migration complete")
	}

	if err = db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database schema: %w", err)
	}
	slog.Info("connected to database", "type", cfg.Database.Type)

	storage, closeStorage, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStorage()

	keys, err := keybackend.NewKeyStore(cfg.Keys)
	if err != nil {
		return fmt.Errorf("load keys: %w", err)
	}

	serviceCfg := cfg.EmulatorConfig()
	serviceCfg.Logger = slog.Default().With("component", "emulator")

	service, err := emulator.NewService(db.GetRepo(), storage, keys, serviceCfg)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	handler := b2http.NewHandler(&b2http.HandlerConfig{
		CORS:           cfg.CORS,
		MaxUploadBytes: cfg.Server.MaxUploadSize,
		Logger:         slog.Default(),
	}, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "api_url", cfg.Server.BaseURL(), "buckets", len(cfg.Service.Buckets))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
