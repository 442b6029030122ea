// Package config loads runtime settings from environment variables.
//
// Defaults are development values; every setting that matters in production
// (the session secret above all) must be overridden there.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultSessionSecret is the insecure development fallback. main logs a
// warning whenever it is still in effect.
const DefaultSessionSecret = "dev-session-secret-change-me"

// Config holds every runtime setting of the server.
type Config struct {
	Port          int
	DBPath        string
	UploadDir     string
	SessionDir    string
	SessionSecret string
	SessionMaxAge time.Duration

	// StorageBackend selects where photos go: "local" (default) or "s3".
	StorageBackend string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

// Load reads the environment, applying defaults for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           8080,
		DBPath:         "data/reports.db",
		UploadDir:      "data/uploads",
		SessionDir:     "data/sessions",
		SessionSecret:  DefaultSessionSecret,
		SessionMaxAge:  24 * time.Hour,
		StorageBackend: "local",
		S3Region:       "us-east-1",
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	setIfPresent(&cfg.DBPath, "DB_PATH")
	setIfPresent(&cfg.UploadDir, "UPLOAD_DIR")
	setIfPresent(&cfg.SessionDir, "SESSION_DIR")
	setIfPresent(&cfg.SessionSecret, "SESSION_SECRET")
	setIfPresent(&cfg.StorageBackend, "STORAGE_BACKEND")
	setIfPresent(&cfg.S3Bucket, "S3_BUCKET")
	setIfPresent(&cfg.S3Region, "S3_REGION")
	setIfPresent(&cfg.S3Endpoint, "S3_ENDPOINT")
	setIfPresent(&cfg.S3AccessKey, "S3_ACCESS_KEY")
	setIfPresent(&cfg.S3SecretKey, "S3_SECRET_KEY")
	setIfPresent(&cfg.S3PublicBaseURL, "S3_PUBLIC_BASE_URL")

	if v := os.Getenv("SESSION_MAX_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid SESSION_MAX_AGE %q: %w", v, err)
		}
		cfg.SessionMaxAge = d
	}

	if cfg.StorageBackend != "local" && cfg.StorageBackend != "s3" {
		return nil, fmt.Errorf("config: unknown STORAGE_BACKEND %q (want \"local\" or \"s3\")", cfg.StorageBackend)
	}
	if cfg.StorageBackend == "s3" && cfg.S3Bucket == "" {
		return nil, fmt.Errorf("config: S3_BUCKET is required when STORAGE_BACKEND=s3")
	}

	return cfg, nil
}

func setIfPresent(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
