// Package server wires the dependency graph and defines the routes.
//
// main.go creates the config, logger, and blob storage; New assembles
// everything else: sqlite DB → services → handlers → router. All wiring
// happens here, in one composition root, so the rest of the codebase only
// sees its direct dependencies.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/urban-reports/internal/auth"
	"github.com/sakif/urban-reports/internal/config"
	"github.com/sakif/urban-reports/internal/handler"
	"github.com/sakif/urban-reports/internal/middleware"
	sqliteRepo "github.com/sakif/urban-reports/internal/repository/sqlite"
	"github.com/sakif/urban-reports/internal/service"
	"github.com/sakif/urban-reports/internal/storage"
)

// Server owns the router, the database connection, and the HTTP lifecycle.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency graph. The blob storage backend is
// injected by main (local disk or S3) — nothing below this layer knows which
// one is in use.
func New(cfg *config.Config, logger *slog.Logger, blobs storage.Storage) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sessions, err := auth.NewFilesystemSessionManager(cfg.SessionDir, cfg.SessionSecret, cfg.SessionMaxAge)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session manager: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes(sessions, blobs)

	return s, nil
}

func (s *Server) setupRoutes(sessions *auth.SessionManager, blobs storage.Storage) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer) // final catch-all: panics become 500s
	s.router.Use(middleware.Logger(s.logger))

	// Permissive CORS for the static frontend; credentials allowed because
	// the session travels in a cookie.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Uploaded photos (local backend) are served as plain files.
	fileServer := http.FileServer(http.Dir(s.config.UploadDir))
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	passwords := auth.NewPasswordService()
	authService := service.NewAuthService(sqliteRepo.NewUserRepo(s.db), passwords, blobs, s.logger)
	reportService := service.NewReportService(sqliteRepo.NewReportRepo(s.db), blobs, s.logger)

	authHandler := handler.NewAuthHandler(authService, sessions, s.logger)
	reportHandler := handler.NewReportHandler(reportService, s.logger)

	// Public routes.
	s.router.Post("/cadastro", authHandler.HandleRegister)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Post("/logout", authHandler.HandleLogout)
	s.router.Get("/problemas", reportHandler.HandleList)
	s.router.Get("/usuario/{id}", authHandler.HandleGetUser)

	// Session check: OptionalAuth attaches the identity when present but
	// never rejects.
	s.router.With(auth.OptionalAuth(sessions)).Get("/auth/check", authHandler.HandleAuthCheck)

	// Protected routes: the guard answers 401 before the handler runs.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(sessions))
		r.Post("/problemas", reportHandler.HandleCreate)
		r.Delete("/problemas/{id}/foto", reportHandler.HandleRemovePhoto)
		r.Put("/perfil", authHandler.HandleUpdateProfile)
	})

	// Unmatched routes get the uniform JSON 404.
	s.router.NotFound(handler.NotFoundHandler)
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("storage", s.config.StorageBackend),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
