package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     int
	AppEnv   string
	LogLevel string

	// Database. DatabaseURL wins when set; otherwise the DSN is built from
	// the DB_* parts, with credentials from DB_USERNAME/DB_PASSWORD or the
	// AWS Secrets Manager secret DB_SECRET_ID.
	DatabaseURL  string
	DBHost       string
	DBPort       int
	DBName       string
	DBSecretID   string
	DBUsername   string
	DBPassword   string
	DBSSLDisable bool
	AutoMigrate  bool

	JWTSecret string
	JWTTTL    time.Duration

	CORSAllowedOrigins []string

	EstimatorFormula       string
	EstimatorReferenceYear int
	LeadMatching           string

	WebhookSecret   string
	RateLimitRPS    float64
	RateLimitBurst  int
	CatalogSource   string
	MessageRelayURL string

	BlobBackend       string
	BlobFSRoot        string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3ForcePathStyle  bool
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	port, err := getIntEnv("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	ttlHours, err := getIntEnv("JWT_TTL_HOURS", 720)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_HOURS: %w", err)
	}
	refYear, err := getIntEnv("ESTIMATOR_REFERENCE_YEAR", time.Now().Year())
	if err != nil {
		return nil, fmt.Errorf("invalid ESTIMATOR_REFERENCE_YEAR: %w", err)
	}
	rps, err := getFloatEnv("WEBHOOK_RATE_LIMIT_RPS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_RATE_LIMIT_RPS: %w", err)
	}
	burst, err := getIntEnv("WEBHOOK_RATE_LIMIT_BURST", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_RATE_LIMIT_BURST: %w", err)
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:     port,
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:  getEnv("DATABASE_URL", ""),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       dbPort,
		DBName:       getEnv("DB_NAME", "leads"),
		DBSecretID:   getEnv("DB_SECRET_ID", ""),
		DBUsername:   getEnv("DB_USERNAME", ""),
		DBPassword:   getEnv("DB_PASSWORD", ""),
		DBSSLDisable: getEnv("DB_SSL_MODE_DISABLE", "false") == "true",
		AutoMigrate:  getEnv("AUTO_MIGRATE", "true") != "false",

		JWTSecret: secret,
		JWTTTL:    time.Duration(ttlHours) * time.Hour,

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		EstimatorFormula:       strings.ToLower(getEnv("ESTIMATOR_FORMULA", "standard")),
		EstimatorReferenceYear: refYear,
		LeadMatching:           strings.ToLower(getEnv("LEAD_MATCHING", "verified")),

		WebhookSecret:   getEnv("WEBHOOK_SECRET", ""),
		RateLimitRPS:    rps,
		RateLimitBurst:  burst,
		CatalogSource:   strings.ToLower(getEnv("CATALOG_SOURCE", "static")),
		MessageRelayURL: getEnv("MESSAGE_WEBHOOK_URL", ""),

		BlobBackend:       getEnv("BLOB_BACKEND", "filesystem"),
		BlobFSRoot:        getEnv("BLOB_FS_ROOT", "./data/documents"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3ForcePathStyle:  getEnv("S3_FORCE_PATH_STYLE", "false") == "true",
	}

	switch cfg.EstimatorFormula {
	case "standard", "simplified":
	default:
		return nil, fmt.Errorf("invalid ESTIMATOR_FORMULA %q", cfg.EstimatorFormula)
	}
	switch cfg.LeadMatching {
	case "verified", "filters":
	default:
		return nil, fmt.Errorf("invalid LEAD_MATCHING %q", cfg.LeadMatching)
	}
	switch cfg.CatalogSource {
	case "static", "database":
	default:
		return nil, fmt.Errorf("invalid CATALOG_SOURCE %q", cfg.CatalogSource)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getFloatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
