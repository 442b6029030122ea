// Package main is the entry point for the issue-reporting server.
// Its only job: read configuration, build the shared dependencies (logger,
// blob storage), and hand off to internal/server.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/urban-reports/internal/config"
	"github.com/sakif/urban-reports/internal/server"
	"github.com/sakif/urban-reports/internal/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.SessionSecret == config.DefaultSessionSecret {
		logger.Warn("SESSION_SECRET not set, using the insecure development default")
	}

	for _, dir := range []string{filepath.Dir(cfg.DBPath), cfg.SessionDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create data directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// Photos go to local disk unless an S3-compatible host is configured.
	// Either way the rest of the app only sees storage.Storage.
	var blobs storage.Storage
	switch cfg.StorageBackend {
	case "s3":
		blobs, err = storage.NewS3(context.Background(), storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to create S3 storage", slog.String("error", err.Error()))
			os.Exit(1)
		}
	default:
		blobs, err = storage.NewLocal(cfg.UploadDir)
		if err != nil {
			logger.Error("failed to create local storage", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger, blobs)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
