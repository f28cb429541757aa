package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/revomotors/api-leads/internal/auth"
	"github.com/revomotors/api-leads/internal/blob"
	"github.com/revomotors/api-leads/internal/catalog"
	"github.com/revomotors/api-leads/internal/config"
	"github.com/revomotors/api-leads/internal/estimator"
	"github.com/revomotors/api-leads/internal/notification"
	"github.com/revomotors/api-leads/internal/ratelimit"
	"github.com/revomotors/api-leads/internal/server"
	dbutil "github.com/revomotors/api-leads/internal/utils/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "leads-api",
		Short:         "Used-car lead marketplace API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	cmd.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCatalogCmd(), newVersionCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			if err := dbutil.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			slog.Info("schema migrated", "tables", len(dbutil.AllModels()))
			return nil
		},
	}
}

func newSeedCatalogCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-catalog",
		Short: "Load the vehicle catalog into the taxonomy tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			f, err := catalogFile(file)
			if err != nil {
				return err
			}
			res, err := catalog.Seed(cmd.Context(), db, f)
			if err != nil {
				return err
			}
			slog.Info("catalog seeded", "makes", res.Makes, "models", res.Models)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML to load instead of the built-in one")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", server.ServiceName, server.Version)
		},
	}
}

func catalogFile(path string) (*catalog.File, error) {
	if path == "" {
		return catalog.Embedded()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return catalog.Parse(data)
}

// bootstrap loads configuration, installs the logger and opens the database.
func bootstrap(ctx context.Context) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	slog.SetDefault(newLogger(cfg))
	db, err := dbutil.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	return cfg, db, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func runServe(ctx context.Context) error {
	cfg, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := dbutil.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	est, err := estimator.NewByName(cfg.EstimatorFormula, cfg.EstimatorReferenceYear)
	if err != nil {
		return err
	}
	blobs, err := blob.NewFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}
	cars, err := catalog.NewProvider(cfg.CatalogSource, db)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := ratelimit.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	handler, err := server.New(server.Deps{
		Config:    cfg,
		DB:        db,
		Tokens:    auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		Estimator: est,
		Sender:    notification.NewSender(cfg.MessageRelayURL),
		Blobs:     blobs,
		Catalog:   cars,
		Limiter:   limiter,
	})
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api starting",
			"addr", addr,
			"env", cfg.AppEnv,
			"estimator", cfg.EstimatorFormula,
			"lead_matching", cfg.LeadMatching,
			"catalog", cfg.CatalogSource,
			"blob_backend", cfg.BlobBackend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	// a missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
