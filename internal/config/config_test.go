package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DBPath != "data/reports.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.StorageBackend != "local" {
		t.Errorf("StorageBackend = %q, want local", cfg.StorageBackend)
	}
	if cfg.SessionMaxAge != 24*time.Hour {
		t.Errorf("SessionMaxAge = %v, want 24h", cfg.SessionMaxAge)
	}
	if cfg.SessionSecret != DefaultSessionSecret {
		t.Errorf("SessionSecret = %q, want the development default", cfg.SessionSecret)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_PATH", "/var/lib/app/app.db")
	t.Setenv("SESSION_SECRET", "a-much-better-secret-value")
	t.Setenv("SESSION_MAX_AGE", "45m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.DBPath != "/var/lib/app/app.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.SessionSecret != "a-much-better-secret-value" {
		t.Errorf("SessionSecret = %q", cfg.SessionSecret)
	}
	if cfg.SessionMaxAge != 45*time.Minute {
		t.Errorf("SessionMaxAge = %v, want 45m", cfg.SessionMaxAge)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail for a non-numeric PORT")
	}
}

func TestLoad_InvalidMaxAge(t *testing.T) {
	t.Setenv("SESSION_MAX_AGE", "tomorrow")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail for an unparseable SESSION_MAX_AGE")
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "ftp")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject unknown storage backends")
	}
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "s3")

	if _, err := Load(); err == nil {
		t.Error("Load() should require S3_BUCKET when the backend is s3")
	}

	t.Setenv("S3_BUCKET", "reports-media")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.S3Bucket != "reports-media" {
		t.Errorf("S3Bucket = %q", cfg.S3Bucket)
	}
}
