package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "data/records.json", cfg.Storage.Path)
	assert.Equal(t, "records", cfg.Storage.Slot)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 60*time.Second, cfg.Extraction.Timeout)
	assert.False(t, cfg.ExtractionEnabled())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
server:
  addr: ":9000"
  read_timeout: 5s
storage:
  driver: memory
extraction:
  model: gemini-test
  rate_per_minute: 10
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("RECORDS_STORAGE_DRIVER", "redis")
	t.Setenv("RECORDS_STORAGE_REDIS_ADDR", "cache:6380")
	t.Setenv("RECORDS_EXTRACTION_API_KEY", "k-123")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, "cache:6380", cfg.Storage.RedisAddr)
	assert.Equal(t, "gemini-test", cfg.Extraction.Model)
	assert.Equal(t, 10, cfg.Extraction.RatePerMinute)
	assert.True(t, cfg.ExtractionEnabled())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("RECORDS_STORAGE_DRIVER", "sqlite")

	_, err := Load("")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("RECORDS_STORAGE_DRIVER", "postgres")

	_, err := Load("")
	require.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv("RECORDS_STORAGE_DSN", "postgres://u:p@localhost/db")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost/db", cfg.Storage.DSN)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "storage.driver", envKey("RECORDS_STORAGE_DRIVER"))
	assert.Equal(t, "extraction.rate_per_minute", envKey("RECORDS_EXTRACTION_RATE_PER_MINUTE"))
	assert.Equal(t, "debug", envKey("RECORDS_DEBUG"))
}

func TestLoad_WriteTimeoutMustCoverExtraction(t *testing.T) {
	t.Setenv("RECORDS_EXTRACTION_TIMEOUT", "2m")

	_, err := Load("")
	require.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv("RECORDS_SERVER_WRITE_TIMEOUT", "3m")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Greater(t, cfg.Server.WriteTimeout, cfg.Extraction.Timeout)
}
