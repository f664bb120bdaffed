package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("DOCUMENT_TTL_HOURS", "48")

	cfg := Load()

	assert.Equal(t, "minio:9000", cfg.MinIO.Endpoint)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 48*time.Hour, cfg.Documents.DefaultTTL)
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "documents", cfg.Documents.Prefix)
	assert.Equal(t, "meta/documents", cfg.Documents.MetaPrefix)
	assert.Equal(t, "templates", cfg.Templates.Prefix)
	assert.Equal(t, "general", cfg.Templates.DefaultCategory)
	assert.Equal(t, 24*time.Hour, cfg.Documents.URLTTL)
	assert.Equal(t, time.Hour, cfg.Documents.CleanupInterval)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
