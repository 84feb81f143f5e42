// Package server is the composition root: it opens storage, builds the
// services and handlers, mounts the routes and runs the HTTP server.
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go: config.Load() → server.New(cfg, logger)
//	server.New: storage (sqlite | postgres)
//	              → AuthService, InterviewService, FeedbackService
//	              → AuthHandler, InterviewHandler, FeedbackHandler
//	              → chi routes
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/interview-coach/internal/auth"
	"github.com/sakif/interview-coach/internal/config"
	"github.com/sakif/interview-coach/internal/generator"
	"github.com/sakif/interview-coach/internal/handler"
	"github.com/sakif/interview-coach/internal/middleware"
	"github.com/sakif/interview-coach/internal/repository/store"
	"github.com/sakif/interview-coach/internal/service"
)

// healthTimeout bounds the database ping behind /healthz.
const healthTimeout = 2 * time.Second

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the storage connection. Start closes it after the HTTP
// server has drained; callers that never Start must call Close.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  *store.Store
}

// New opens storage, wires every component and registers the routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	st, err := store.Open(context.Background(), cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  st,
	}

	if err := s.setupRoutes(); err != nil {
		st.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler returns the router, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the storage connection.
func (s *Server) Close() error {
	return s.store.Close()
}

// setupRoutes configures middleware and routes.
//
// ROUTE STRUCTURE:
//
//	GET    /healthz                        → liveness + database ping
//	GET    /auth/github/login              → GitHub OAuth redirect   (when configured)
//	GET    /auth/github/callback           → GitHub OAuth callback   (when configured)
//	POST   /api/auth/sign-up               → create account
//	POST   /api/auth/token                 → password → ID token
//	POST   /api/auth/sign-in               → ID token → session cookie
//	POST   /api/auth/sign-out              → revoke session, clear cookie
//	POST   /api/auth/sign-out-all          → revoke all sessions     (session)
//	GET    /api/auth/me                    → current user            (session)
//	GET    /api/interviews                 → own interviews          (session)
//	GET    /api/interviews/latest?limit=   → others' finalized ones  (session)
//	GET    /api/interviews/{id}            → one interview           (session)
//	GET    /api/interviews/{id}/feedback   → own feedback            (session)
//	POST   /api/interviews/{id}/feedback   → generate feedback       (session)
//	DELETE /api/feedback/{id}              → delete own feedback     (session)
//
// MIDDLEWARE ORDER MATTERS:
// RequestID runs first so the logger can read the id; Recoverer sits inside
// the logger so a recovered panic is still logged as a 500.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// === Services ===
	tokens, err := auth.NewTokenService(s.config.Auth.SessionSecret, s.config.Auth.IDTokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	authService := service.NewAuthService(
		s.store.Users,
		s.store.Sessions,
		tokens,
		auth.NewPasswordService(s.config.Auth.PasswordCost),
		s.config.Auth.SessionDuration,
		s.logger,
	)
	interviewService := service.NewInterviewService(s.store.Interviews, s.logger)

	client, err := generator.NewClient(context.Background(), s.config.Generator, nil)
	if err != nil {
		return fmt.Errorf("creating generator client: %w", err)
	}
	if s.config.Generator.APIKey == "" {
		s.logger.Warn("generator API key not set; feedback generation will fail",
			slog.String("provider", s.config.Generator.Provider),
		)
	}
	feedbackService := service.NewFeedbackService(s.store.Feedback, generator.NewFeedbackGenerator(client), s.logger)

	// === Handlers ===
	// A nil interface, not a nil *auth.GitHubProvider, disables the routes.
	var github handler.GitHubProvider
	if s.config.Auth.GitHubEnabled() {
		github = auth.NewGitHubProvider(
			s.config.Auth.GitHubClientID,
			s.config.Auth.GitHubClientSecret,
			s.config.Auth.GitHubCallbackURL,
		)
	}
	authHandler := handler.NewAuthHandler(authService, github, s.config.Production(), s.logger)
	interviewHandler := handler.NewInterviewHandler(interviewService, s.logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, interviewService, s.logger)

	// === Routes ===
	s.router.Get("/healthz", s.handleHealth)

	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	s.router.Route("/api", func(r chi.Router) {
		// Public: these establish or end the session.
		r.Post("/auth/sign-up", authHandler.HandleSignUp)
		r.Post("/auth/token", authHandler.HandleToken)
		r.Post("/auth/sign-in", authHandler.HandleSignIn)
		r.Post("/auth/sign-out", authHandler.HandleSignOut)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(authService))

			r.Get("/auth/me", authHandler.HandleMe)
			r.Post("/auth/sign-out-all", authHandler.HandleSignOutAll)

			r.Get("/interviews", interviewHandler.HandleList)
			r.Get("/interviews/latest", interviewHandler.HandleLatest)
			r.Get("/interviews/{id}", interviewHandler.HandleGetByID)
			r.Get("/interviews/{id}/feedback", feedbackHandler.HandleGet)
			r.Post("/interviews/{id}/feedback", feedbackHandler.HandleCreate)

			r.Delete("/feedback/{id}", feedbackHandler.HandleDelete)
		})
	})

	return nil
}

// handleHealth reports 200 when the database answers a ping, 503 otherwise.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("health check: database ping failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}` + "\n"))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// Start runs the HTTP server until SIGINT or SIGTERM, then shuts down
// gracefully:
//  1. Stop accepting new connections
//  2. Wait up to ShutdownTimeout for in-flight requests
//  3. Close the storage connection
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("storage", s.store.Driver),
			slog.String("generator", s.config.Generator.Provider),
			slog.String("environment", s.config.Environment),
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

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
