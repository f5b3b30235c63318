package config

import (
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	StoreDriver    string
	SQLitePath     string
	MigrationsPath string
	RunMigrations  bool

	PostMaxRetries   int
	PostRetryBackoff time.Duration
	BalanceEpsilon   decimal.Decimal

	RateLimit          string // e.g. "100-M"
	CORSAllowedOrigins []string
	LogLevel           slog.Level
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("SQLITE_PATH", "ledger.db")
	v.SetDefault("MIGRATIONS_PATH", "migrations")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("POST_MAX_RETRIES", 3)
	v.SetDefault("POST_RETRY_BACKOFF", "50ms")
	v.SetDefault("BALANCE_EPSILON", "0.01")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:    v.GetString("PGSQL_URL"),
		Port:           v.GetString("PORT"),
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:  v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		StoreDriver:    strings.ToLower(v.GetString("STORE_DRIVER")),
		SQLitePath:     v.GetString("SQLITE_PATH"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		RunMigrations:  v.GetBool("RUN_MIGRATIONS"),
		PostMaxRetries: v.GetInt("POST_MAX_RETRIES"),
		RateLimit:      v.GetString("RATE_LIMIT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: expected %s or %s", cfg.StoreDriver, DriverPostgres, DriverSQLite)
	}

	if cfg.IsProduction && cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	backoff, err := time.ParseDuration(v.GetString("POST_RETRY_BACKOFF"))
	if err != nil {
		return nil, fmt.Errorf("invalid POST_RETRY_BACKOFF: %w", err)
	}
	cfg.PostRetryBackoff = backoff

	if cfg.PostMaxRetries < 0 {
		return nil, fmt.Errorf("invalid POST_MAX_RETRIES %d: must not be negative", cfg.PostMaxRetries)
	}

	eps, err := decimal.NewFromString(v.GetString("BALANCE_EPSILON"))
	if err != nil || eps.IsNegative() {
		return nil, fmt.Errorf("invalid BALANCE_EPSILON %q", v.GetString("BALANCE_EPSILON"))
	}
	cfg.BalanceEpsilon = eps

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}
