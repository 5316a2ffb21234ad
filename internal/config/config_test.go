package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORAGE", "DB_DEBUG", "SEED_DEMO", "CHAT_RATE_LIMIT", "CHAT_RATE_WINDOW", "CORS_ORIGINS", "MINIO_ENDPOINT", "TRUST_PROXY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageInMemory, cfg.Storage)
	assert.False(t, cfg.DBDebug)
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, 20, cfg.ChatRateLimit)
	assert.Equal(t, time.Minute, cfg.ChatRateWindow)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.TrustProxy)
	assert.False(t, cfg.MediaEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE", StorageSQLite)
	t.Setenv("DB_DEBUG", "true")
	t.Setenv("CHAT_RATE_LIMIT", "5")
	t.Setenv("CHAT_RATE_WINDOW", "30s")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.True(t, cfg.DBDebug)
	assert.Equal(t, 5, cfg.ChatRateLimit)
	assert.Equal(t, 30*time.Second, cfg.ChatRateWindow)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.TrustProxy)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("CHAT_RATE_LIMIT", "many")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Storage: StoragePostgres}
	assert.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgres://localhost/halal"
	assert.NoError(t, cfg.Validate())

	cfg.Storage = "mongo"
	assert.Error(t, cfg.Validate())
}
