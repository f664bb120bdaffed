package config

import (
	"os"
	"strconv"
	"time"
)

// MinIOConfig holds object storage settings for MinIO / S3-compatible backends.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// DocumentConfig holds the lifecycle settings for generated documents.
type DocumentConfig struct {
	// Prefix is the key prefix for document blobs inside the bucket.
	Prefix string
	// MetaPrefix is the key prefix for document registry entries.
	MetaPrefix string
	// DefaultTTL bounds the lifetime of a generated document; it can be
	// overridden per creation call but is never refreshed by edits.
	DefaultTTL time.Duration
	// URLTTL caps the validity of presigned download URLs.
	URLTTL time.Duration
	// CleanupInterval is how often the background sweeper removes expired
	// documents; zero disables it (cleanup stays available on demand).
	CleanupInterval time.Duration
}

// TemplateConfig holds the layout settings for stored templates.
type TemplateConfig struct {
	// Prefix is the key prefix for template blobs; templates are keyed
	// category/name under it.
	Prefix string
	// DefaultCategory is used when a caller passes no category.
	DefaultCategory string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	MinIO     MinIOConfig
	Documents DocumentConfig
	Templates TemplateConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "word-documents"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Documents: DocumentConfig{
			Prefix:          getEnv("DOCUMENTS_PREFIX", "documents"),
			MetaPrefix:      getEnv("DOCUMENTS_META_PREFIX", "meta/documents"),
			DefaultTTL:      time.Duration(getEnvInt("DOCUMENT_TTL_HOURS", 24)) * time.Hour,
			URLTTL:          time.Duration(getEnvInt("DOCUMENT_URL_TTL_HOURS", 24)) * time.Hour,
			CleanupInterval: time.Duration(getEnvInt("DOCUMENT_CLEANUP_INTERVAL_MINUTES", 60)) * time.Minute,
		},
		Templates: TemplateConfig{
			Prefix:          getEnv("TEMPLATES_PREFIX", "templates"),
			DefaultCategory: getEnv("TEMPLATES_DEFAULT_CATEGORY", "general"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
