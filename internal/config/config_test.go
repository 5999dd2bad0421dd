package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("COOKIE_SECRET", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "proxybin.db", cfg.DatabasePath)
	assert.Equal(t, []byte("s3cret"), cfg.CookieSecret)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.ExecuteTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("COOKIE_SECRET", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_PATH", "/tmp/t.db")
	t.Setenv("EXECUTE_TIMEOUT", "5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "/tmp/t.db", cfg.DatabasePath)
	assert.Equal(t, 5*time.Second, cfg.ExecuteTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFromEnvRequiresCookieSecret(t *testing.T) {
	t.Setenv("COOKIE_SECRET", "")

	_, err := FromEnv()
	assert.Error(t, err)
}
