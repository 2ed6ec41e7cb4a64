package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FEEDING_HOST", "FEEDING_PORT", "FEEDING_PUBLIC_URL", "FEEDING_DB_PATH", "FEEDING_DEFAULT_PET", "FEEDING_LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "0.0.0.0:8011", cfg.Addr())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FEEDING_PORT", "9000")
	t.Setenv("FEEDING_PUBLIC_URL", " https://feeding.example ")
	t.Setenv("FEEDING_DEFAULT_PET", " Mochi ")
	t.Setenv("FEEDING_LOG_LEVEL", "DEBUG")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "https://feeding.example", cfg.PublicURL)
	assert.Equal(t, "Mochi", cfg.DefaultPet)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestFromEnv_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("FEEDING_PORT", "http")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "FEEDING_PORT")

	clearEnv(t)
	t.Setenv("FEEDING_LOG_LEVEL", "loud")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FEEDING_DB_PATH=/tmp/feeding.db\nFEEDING_HOST=127.0.0.1\n"), 0o644))
	t.Setenv("FEEDING_HOST", "localhost")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/feeding.db", cfg.DBPath)
	assert.Equal(t, "localhost", cfg.Host)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
