package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, 3, cfg.PostMaxRetries)
	assert.Equal(t, 50*time.Millisecond, cfg.PostRetryBackoff)
	assert.Equal(t, "0.01", cfg.BalanceEpsilon.String())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "POSTGRES")
	t.Setenv("PGSQL_URL", "postgres://ledger@localhost/ledger")
	t.Setenv("POST_MAX_RETRIES", "5")
	t.Setenv("POST_RETRY_BACKOFF", "1s")
	t.Setenv("BALANCE_EPSILON", "0.001")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 5, cfg.PostMaxRetries)
	assert.Equal(t, time.Second, cfg.PostRetryBackoff)
	assert.Equal(t, "0.001", cfg.BalanceEpsilon.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"driver":  {"STORE_DRIVER": "mongo"},
		"backoff": {"STORE_DRIVER": "sqlite", "POST_RETRY_BACKOFF": "soon"},
		"epsilon": {"STORE_DRIVER": "sqlite", "BALANCE_EPSILON": "-1"},
		"retries": {"STORE_DRIVER": "sqlite", "POST_MAX_RETRIES": "-2"},
		"level":   {"STORE_DRIVER": "sqlite", "LOG_LEVEL": "chatty"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
