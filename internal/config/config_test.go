package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "STORE_BACKEND", "STORE_URL", "STORE_PATH", "STORE_AUTH_TOKEN", "STORE_TIMEOUT", "FIREBASE_CREDENTIALS_FILE",
		"DB_PATH", "DB_DRIVER", "CACHE_TTL", "SESSION_TTL", "GRPC_PORT", "GRPC_REFLECTION_ENABLED",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadFromEnv()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, StoreBackendHTTP, cfg.StoreBackend)
	assert.Equal(t, "http://localhost:9000", cfg.StoreURL)
	assert.Equal(t, "reviews", cfg.StorePath)
	assert.Empty(t, cfg.StoreAuthToken)
	assert.Empty(t, cfg.FirebaseCredentialsFile)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "./data/reviews.db", cfg.DBPath)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.False(t, cfg.GRPCReflectionEnabled)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("STORE_URL", "https://example-default-rtdb.firebaseio.com")
	t.Setenv("STORE_TIMEOUT", "3s")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("GRPC_PORT", "6000")
	t.Setenv("GRPC_REFLECTION_ENABLED", "true")

	cfg := LoadFromEnv()

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, StoreBackendSQLite, cfg.StoreBackend)
	assert.Equal(t, "https://example-default-rtdb.firebaseio.com", cfg.StoreURL)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 6000, cfg.GRPCPort)
	assert.True(t, cfg.GRPCReflectionEnabled)
}

func TestLoadFromEnv_FirebaseBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "firebase")
	t.Setenv("STORE_URL", "https://example-default-rtdb.firebaseio.com")
	t.Setenv("FIREBASE_CREDENTIALS_FILE", "/secrets/sa.json")

	cfg := LoadFromEnv()

	assert.Equal(t, StoreBackendFirebase, cfg.StoreBackend)
	assert.Equal(t, "/secrets/sa.json", cfg.FirebaseCredentialsFile)
}

func TestLoadFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("STORE_TIMEOUT", "soon")
	t.Setenv("CACHE_TTL", "-1m")
	t.Setenv("GRPC_PORT", "abc")
	t.Setenv("GRPC_REFLECTION_ENABLED", "maybe")

	cfg := LoadFromEnv()

	assert.Equal(t, StoreBackendHTTP, cfg.StoreBackend)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.False(t, cfg.GRPCReflectionEnabled)
}

func TestLoadFromEnv_RedisAddr(t *testing.T) {
	t.Run("empty disables the cache", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "")
		cfg := LoadFromEnv()
		assert.False(t, cfg.CacheEnabled())
	})

	t.Run("explicit address", func(t *testing.T) {
		t.Setenv("REDIS_ADDR", "redis:6379")
		cfg := LoadFromEnv()
		assert.True(t, cfg.CacheEnabled())
		assert.Equal(t, "redis:6379", cfg.RedisAddr)
	})
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := NewLogger(&Config{AppEnv: env})
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}
