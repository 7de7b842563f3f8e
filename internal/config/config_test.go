package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/discovertours/internal/config"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestNewReadsYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
storage:
  driver: sqlite
sqlite:
  path: test.db
auth:
  jwt_secret: ` + secret + `
kafka:
  brokers: ["localhost:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("PORT", "8081")

	cfg, err := config.New(path)
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "test.db", cfg.SQLite.Path)
	assert.Equal(t, "8081", cfg.HTTP.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, int64(10<<20), cfg.Uploads.MaxBytes)
}

func TestNewFallsBackToEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", config.DriverMemory)
	t.Setenv("JWT_SECRET", secret)

	cfg, err := config.New(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "3000", cfg.HTTP.Port)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := map[string]map[string]string{
		"postgres without dsn": {"STORAGE_DRIVER": config.DriverPostgres, "JWT_SECRET": secret},
		"unknown driver":       {"STORAGE_DRIVER": "mysql", "JWT_SECRET": secret},
		"short secret":         {"STORAGE_DRIVER": config.DriverMemory, "JWT_SECRET": "short"},
		"zero poll interval": {
			"STORAGE_DRIVER": config.DriverMemory, "JWT_SECRET": secret,
			"KAFKA_BROKERS": "localhost:9092", "KAFKA_POLL_INTERVAL": "0s",
		},
		"zero batch size": {
			"STORAGE_DRIVER": config.DriverMemory, "JWT_SECRET": secret,
			"KAFKA_BROKERS": "localhost:9092", "KAFKA_BATCH_SIZE": "0",
		},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}

			_, err := config.New(filepath.Join(t.TempDir(), "missing.yaml"))
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}
