package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0finn0the0human0/springbootTraining/internal/config"
)

type testConfig struct {
	Log        config.Log
	Postgres   config.Postgres
	Store      config.Store
	HTTP       config.HTTP
	Validation config.Validation
}

func TestNew(t *testing.T) {
	t.Setenv(config.EnvFileEnv, filepath.Join(t.TempDir(), "missing.env"))

	t.Run("Should apply defaults", func(t *testing.T) {
		cfg, err := config.New[testConfig]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatJSON, cfg.Log.Format)
		assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
		assert.Equal(t, "localhost", cfg.Postgres.Host)
		assert.Equal(t, 5432, cfg.Postgres.Port)
		assert.Equal(t, time.Hour, cfg.Postgres.MaxConnLifetime)
		assert.Equal(t, config.StoreDriverPostgres, cfg.Store.Driver)
		assert.Equal(t, uint32(8000), cfg.HTTP.Port)
		assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
		assert.True(t, cfg.Validation.FailFast)
	})

	t.Run("Should read environment overrides", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "text")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("STORE_DRIVER", "gorm")
		t.Setenv("GORM_DIALECT", "sqlite")
		t.Setenv("VALIDATION_FAIL_FAST", "false")
		t.Setenv("HTTP_ALLOWED_ORIGINS", "http://a.test,http://b.test")

		cfg, err := config.New[testConfig]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatText, cfg.Log.Format)
		assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
		assert.Equal(t, config.StoreDriverGorm, cfg.Store.Driver)
		assert.False(t, cfg.Validation.FailFast)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.AllowedOrigins)
	})

	t.Run("Should reject unknown store driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")

		_, err := config.New[testConfig]()
		assert.Error(t, err)
	})
}

func TestNewLoadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("POSTGRES_HOST=db.internal\nHTTP_PORT=9100\n"), 0o600))
	t.Setenv(config.EnvFileEnv, path)

	// godotenv sets variables process-wide; restore them after the test.
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("HTTP_PORT", "")
	require.NoError(t, os.Unsetenv("POSTGRES_HOST"))
	require.NoError(t, os.Unsetenv("HTTP_PORT"))

	cfg, err := config.New[testConfig]()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, uint32(9100), cfg.HTTP.Port)
}

func TestStoreDriverText(t *testing.T) {
	var d config.StoreDriver
	require.NoError(t, d.UnmarshalText([]byte("PGX")))
	assert.Equal(t, config.StoreDriverPostgres, d)

	b, err := config.StoreDriverGorm.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "gorm", string(b))
}

func TestLogText(t *testing.T) {
	var f config.LogFormat
	require.NoError(t, f.UnmarshalText([]byte("tint")))
	assert.Equal(t, config.LogFormatText, f)
	assert.Equal(t, "LogFormat(7)", config.LogFormat(7).String())

	var o config.LogOutput
	require.NoError(t, o.UnmarshalText([]byte("STDERR")))
	assert.Equal(t, os.Stderr, o.Writer())
	assert.Error(t, o.UnmarshalText([]byte("syslog")))
}
