// Package server is the composition root: it opens the user store, builds
// the Instagram clients and services, and mounts the routes.
//
// WHY A SEPARATE PACKAGE?
// Tests build a full Server against a fake Instagram and an in-memory store
// and drive it through Handler() with httptest, no listener needed.
//
// Dependency flow:
//
//	config.Config → store (mongo | sqlite, optionally sealed)
//	             → graph.Client, auth.InstagramProvider, auth.StateSigner
//	             → services → handlers → chi router
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/commentdesk/internal/auth"
	"github.com/sakif/commentdesk/internal/config"
	"github.com/sakif/commentdesk/internal/graph"
	"github.com/sakif/commentdesk/internal/handler"
	"github.com/sakif/commentdesk/internal/middleware"
	"github.com/sakif/commentdesk/internal/repository"
	mongoRepo "github.com/sakif/commentdesk/internal/repository/mongo"
	sqliteRepo "github.com/sakif/commentdesk/internal/repository/sqlite"
	"github.com/sakif/commentdesk/internal/service"
)

// Server owns the router and the user store. The store is closed when
// Start returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	users  repository.UserRepository
}

// New wires every dependency. A store that cannot be opened is logged and
// replaced with repository.Unavailable so the process still serves the
// routes that do not need it. Bad secrets are configuration mistakes and
// fail New.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	users := openStore(cfg.Store, logger)

	if key := cfg.Security.TokenEncryptionKey; key != "" {
		sealer, err := auth.NewSealer(key)
		if err != nil {
			users.Close()
			return nil, fmt.Errorf("server: TOKEN_ENCRYPTION_KEY: %w", err)
		}
		users = repository.Sealed(users, sealer)
		logger.Info("access tokens are encrypted at rest")
	}

	var states *auth.StateSigner
	if secret := cfg.Security.StateSecret; secret != "" {
		var err error
		states, err = auth.NewStateSigner(secret)
		if err != nil {
			users.Close()
			return nil, fmt.Errorf("server: STATE_SECRET: %w", err)
		}
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		users:  users,
	}
	s.setupRoutes(states)

	return s, nil
}

// openStore picks MongoDB when a URI is configured, SQLite otherwise.
func openStore(cfg config.StoreConfig, logger *slog.Logger) repository.UserRepository {
	if cfg.UseMongo() {
		store, err := mongoRepo.New(context.Background(), cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			logger.Error("user store unavailable",
				slog.String("backend", "mongodb"),
				slog.String("error", err.Error()),
			)
			return repository.Unavailable(err)
		}
		logger.Info("user store ready", slog.String("backend", "mongodb"), slog.String("database", cfg.MongoDatabase))
		return store
	}

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			logger.Error("user store unavailable",
				slog.String("backend", "sqlite"),
				slog.String("error", err.Error()),
			)
			return repository.Unavailable(err)
		}
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		logger.Error("user store unavailable",
			slog.String("backend", "sqlite"),
			slog.String("error", err.Error()),
		)
		return repository.Unavailable(err)
	}
	logger.Info("user store ready", slog.String("backend", "sqlite"), slog.String("path", cfg.DBPath))
	return db
}

// setupRoutes mounts:
//
//	GET  /health
//	GET  /api/auth/instagram/url
//	POST /api/auth/instagram/callback
//	GET  /api/user/profile                 (token)
//	PUT  /api/user/profile                 (token)
//	GET  /api/media                        (token)
//	GET  /api/media/{mediaId}/comments     (token)
//	POST /api/media/{mediaId}/comments     (token)
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID first, so the logger can print it;
//  2. RealIP rewrites RemoteAddr from X-Forwarded-For;
//  3. Logger wraps Recoverer, so a recovered panic is still logged as 500;
//  4. CORS last, so preflight answers are logged too but never routed.
func (s *Server) setupRoutes(states *auth.StateSigner) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.CORS)

	// === Instagram clients ===
	// One *http.Client is shared by the token exchange and the Graph API so
	// both reuse the same connection pool and timeout.
	ig := s.config.Instagram
	httpClient := &http.Client{Timeout: ig.Timeout}
	graphClient := graph.NewClient(ig.GraphBaseURL, httpClient, s.logger)
	provider := auth.NewInstagramProvider(auth.ProviderConfig{
		ClientID:     ig.AppID,
		ClientSecret: ig.AppSecret,
		RedirectURL:  ig.RedirectURI,
		AuthURL:      ig.AuthURL(),
		TokenURL:     ig.TokenURL(),
		HTTPClient:   httpClient,
	}, graphClient)

	// === Services and handlers ===
	// Handlers never see the store or the Graph client directly; each gets
	// only the service it needs.
	authHandler := handler.NewAuthHandler(
		service.NewAuthService(provider, states, s.users, s.logger), s.logger)
	profileHandler := handler.NewProfileHandler(
		service.NewProfileService(graphClient, s.users, s.logger), s.logger)
	mediaHandler := handler.NewMediaHandler(
		service.NewMediaService(graphClient, s.logger), s.logger)

	s.router.Get("/health", handler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/auth/instagram/url", authHandler.HandleAuthURL)
		r.Post("/auth/instagram/callback", authHandler.HandleCallback)

		// Everything in this group needs the caller's Instagram token.
		// RequireToken answers 401 before any handler, so a missing header
		// never costs an upstream call.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireToken)

			r.Get("/user/profile", profileHandler.HandleGet)
			r.Put("/user/profile", profileHandler.HandleUpdate)

			r.Get("/media", mediaHandler.HandleList)
			r.Get("/media/{mediaId}/comments", mediaHandler.HandleComments)
			r.Post("/media/{mediaId}/comments", mediaHandler.HandlePostComment)
		})
	})
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the user store.
func (s *Server) Close() error {
	return s.users.Close()
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes the store.
//
// SHUTDOWN SEQUENCE:
//  1. stop accepting connections;
//  2. wait for in-flight requests (including Graph calls) to finish;
//  3. close the store: SQLite checkpoints its WAL, MongoDB drops its pool.
func (s *Server) Start() error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Error("closing user store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
		// Graph calls are bounded by the client timeout; leave room above it.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.config.Instagram.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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
