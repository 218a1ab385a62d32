package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 100, cfg.History.Limit)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.GRPC.Enabled)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("HISTORY_LIMIT", "20")
	t.Setenv("READ_TIMEOUT", "3")
	t.Setenv("WS_WRITE_TIMEOUT", "250ms")
	t.Setenv("GRPC_ENABLED", "false")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "scenes")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.History.Limit)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.WebSocket.WriteTimeout)
	assert.False(t, cfg.GRPC.Enabled)
	assert.Contains(t, cfg.Database.DSN(), "host=db")
	assert.Contains(t, cfg.Database.DSN(), "dbname=scenes")
}

func TestFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrMissingEnv)

	t.Setenv("JWT_SECRET", "change-this-secret-in-production")
	_, err = FromEnv()
	assert.ErrorIs(t, err, ErrDefaultSecret)
}
