// Package server wires the application together: database, services,
// handlers, middleware, and routes, plus server start and graceful shutdown.
//
// This is the composition root — the one place where concrete types meet.
// The service layer receives repository interfaces, the handlers receive
// services, and neither knows how the other is built. main.go stays minimal:
// load config, build a logger, hand both to New, call Start.
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

	"github.com/sakif/miniblog/internal/auth"
	"github.com/sakif/miniblog/internal/config"
	"github.com/sakif/miniblog/internal/handler"
	"github.com/sakif/miniblog/internal/middleware"
	sqliteRepo "github.com/sakif/miniblog/internal/repository/sqlite"
	"github.com/sakif/miniblog/internal/service"
)

// Server owns the router and the database connection. The database is the
// one resource that needs explicit teardown: Start closes it after the HTTP
// side has drained, flushing the WAL and releasing the file lock.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the full dependency chain:
//
//	sqlite.DB → AuthService / PostService → handlers → routes
//
// The sqlite import is aliased to sqliteRepo to keep it visually distinct
// from the driver package of the same name.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// ROUTE TABLE:
//
//	POST   /api/auth/register  → create account             (public)
//	POST   /api/auth/login     → start session              (public)
//	POST   /api/auth/logout    → end session                (public, idempotent)
//	GET    /api/me             → current user               (auth required)
//	GET    /api/posts          → list posts with authors    (public)
//	POST   /api/posts          → create post                (auth required)
//	GET    /api/posts/{id}     → read own post              (auth + ownership)
//	PUT    /api/posts/{id}     → update own post            (auth + ownership)
//	DELETE /api/posts/{id}     → delete own post            (auth + ownership)
//
// MIDDLEWARE ORDER MATTERS. Outermost first:
// RequestID/RealIP/Recoverer/Logger are bookkeeping; RequestConn scopes one
// database connection to the request and releases it on every exit path;
// CurrentUser resolves the session AFTER RequestConn so its user lookup
// rides the request's own connection. RequireAuth sits only on the
// protected subtree. That ordering fixes the per-request sequence: connect →
// resolve session → authorize → touch the store.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	postService := service.NewPostService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)

	s.router.Use(chimiddleware.RequestID) // X-Request-ID for tracing
	s.router.Use(chimiddleware.RealIP)    // client IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // panics become 500s, not crashes
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.RequestConn(s.db, s.logger))
	s.router.Use(auth.CurrentUser(tokens, authService, s.logger))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		r.Get("/posts", postHandler.HandleList)

		// Protected subtree: RequireAuth rejects anonymous callers with a
		// 401 before the handler runs.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)

			r.Get("/me", authHandler.HandleMe)
			r.Post("/posts", postHandler.HandleCreate)
			r.Get("/posts/{id}", postHandler.HandleGet)
			r.Put("/posts/{id}", postHandler.HandleUpdate)
			r.Delete("/posts/{id}", postHandler.HandleDelete)
		})
	})

	return nil
}

// Router exposes the handler chain for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds to drain, and finally close the database. The deferred Close
// runs even if something inside panics.
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
