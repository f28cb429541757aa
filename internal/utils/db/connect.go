package db

import (
	"context"
	"fmt"

	"github.com/revomotors/api-leads/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the Postgres database described by cfg.
func Connect(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	dsn, err := BuildDSN(ctx, cfg, secretsManagerFetcher{})
	if err != nil {
		return nil, err
	}
	level := logger.Error
	if cfg.LogLevel == "debug" {
		level = logger.Info
	}
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database, nil
}

// BuildDSN prefers DATABASE_URL and otherwise assembles a key/value DSN from
// the DB_* settings, resolving credentials through fetcher when they are not
// set directly.
func BuildDSN(ctx context.Context, cfg *config.Config, fetcher CredentialsFetcher) (string, error) {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL, nil
	}
	username, password := cfg.DBUsername, cfg.DBPassword
	if username == "" || password == "" {
		if cfg.DBSecretID == "" {
			return "", fmt.Errorf("database credentials missing: set DATABASE_URL, DB_USERNAME/DB_PASSWORD or DB_SECRET_ID")
		}
		creds, err := fetcher.Fetch(ctx, cfg.DBSecretID)
		if err != nil {
			return "", fmt.Errorf("retrieve database credentials: %w", err)
		}
		username, password = creds.Username, creds.Password
	}
	var sslMode string
	if cfg.DBSSLDisable {
		sslMode = " sslmode=disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d%s",
		cfg.DBHost, username, password, cfg.DBName, cfg.DBPort, sslMode), nil
}
