package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/proposalpilot/hub/internal/api/handlers"
	"github.com/proposalpilot/hub/internal/api/middleware"
	"github.com/proposalpilot/hub/internal/config"
	"github.com/proposalpilot/hub/internal/repository"
	"github.com/proposalpilot/hub/internal/service"
)

// App holds all server dependencies and coordinates startup and shutdown.
type App struct {
	cfg    *config.Config
	db     *pgxpool.Pool
	server *http.Server
}

// NewApp builds and wires all components. It does not start the HTTP server;
// call Run to start and block until shutdown or failure.
func NewApp(cfg *config.Config, db *pgxpool.Pool) (*App, error) {
	sessionsRepo := repository.NewSessionsRepository(db)
	responsesRepo := repository.NewResponsesRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	knowledgeRepo := repository.NewKnowledgeEntriesRepository(db)

	persister := service.NewPersistenceAdapter(responsesRepo, feedbackRepo)
	materializer := service.NewSessionMaterializer(
		sessionsRepo, responsesRepo, feedbackRepo, persister, slog.Default(),
	)
	reviewManager := service.NewReviewManager(materializer)

	sessionsService := service.NewSessionsService(sessionsRepo)
	knowledgeService := service.NewKnowledgeEntriesService(knowledgeRepo)

	healthHandler := handlers.NewHealthHandler()
	sessionsHandler := handlers.NewSessionsHandler(sessionsService, sessionsRepo, reviewManager)
	reviewHandler := handlers.NewReviewHandler(reviewManager)
	knowledgeHandler := handlers.NewKnowledgeEntriesHandler(knowledgeService)

	server := newHTTPServer(cfg, healthHandler, sessionsHandler, reviewHandler, knowledgeHandler)

	return &App{
		cfg:    cfg,
		db:     db,
		server: server,
	}, nil
}

// newHTTPServer builds the HTTP server and muxes (no auth on /health, API key on /v1/).
func newHTTPServer(
	cfg *config.Config,
	health *handlers.HealthHandler,
	sessions *handlers.SessionsHandler,
	review *handlers.ReviewHandler,
	knowledge *handlers.KnowledgeEntriesHandler,
) *http.Server {
	public := http.NewServeMux()
	public.HandleFunc("GET /health", health.Check)

	protected := http.NewServeMux()
	protected.HandleFunc("POST /v1/sessions", sessions.Create)
	protected.HandleFunc("GET /v1/sessions/latest", sessions.GetLatest)
	protected.HandleFunc("GET /v1/company-profile", sessions.GetCompanyProfile)

	protected.HandleFunc("GET /v1/review", review.Get)
	protected.HandleFunc("POST /v1/review/select", review.Select)
	protected.HandleFunc("POST /v1/review/save", review.Save)
	protected.HandleFunc("POST /v1/review/feedback", review.Feedback)
	protected.HandleFunc("POST /v1/review/status", review.Status)
	protected.HandleFunc("POST /v1/review/bulk-status", review.BulkStatus)
	protected.HandleFunc("GET /v1/review/stats", review.Stats)
	protected.HandleFunc("PUT /v1/review/view", review.UpdateView)

	protected.HandleFunc("GET /v1/knowledge-entries", knowledge.List)

	protectedWithAuth := middleware.Auth(cfg.APIKey)(protected)
	mux := http.NewServeMux()
	mux.Handle("/v1/", protectedWithAuth)
	mux.Handle("/", public)

	handler := middleware.MaxBody(middleware.DefaultMaxBodyBytes)(mux)
	handler = middleware.Logging(slog.Default())(handler)
	handler = middleware.RequestID(handler)

	const (
		readTimeout  = 15 * time.Second
		writeTimeout = 15 * time.Second
		idleTimeout  = 60 * time.Second
	)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled (e.g. signal)
// or the server fails. Caller should then call Shutdown.
func (a *App) Run(ctx context.Context) error {
	runErr := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "port", a.cfg.Port)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case runErr <- fmt.Errorf("server: %w", err):
			default:
			}
		}
	}()

	select {
	case err := <-runErr:
		return err
	case <-ctx.Done():
		return nil
	}
}

// Shutdown stops the HTTP server. Call after Run returns.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
