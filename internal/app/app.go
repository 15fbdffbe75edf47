// Package app wires the dashboard together: configuration, logging, the
// startup dataset snapshot, the HTTP router and the server lifecycle.
package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hoteldash/internal/analytics"
	"hoteldash/internal/config"
	apierrors "hoteldash/internal/errors"
	"hoteldash/internal/infrastructure"
	customMiddleware "hoteldash/internal/middleware"
	handlers "hoteldash/internal/transport/http"
	"hoteldash/internal/upload"
)

const (
	// Version identifies the build; overridden via -ldflags on release.
	Version = "1.0.0"
	// AppName is the human-readable application name.
	AppName = "Hotel Bookings Dashboard"
)

// Application is the main application container.
type Application struct {
	Config     *config.Config
	Logger     *slog.Logger
	Snapshot   *analytics.Snapshot
	Router     chi.Router
	Server     *http.Server
	FrontendFS fs.FS

	registry *prometheus.Registry
}

// NewApplication creates a new application instance. It loads the
// configuration, initializes logging, builds the immutable dataset
// snapshot (a missing or malformed dataset is fatal) and assembles the
// router.
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	snapshot, err := analytics.Build(context.Background(), cfg.Data.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load startup dataset: %w", err)
	}

	app := &Application{
		Config:     cfg,
		Logger:     logger,
		Snapshot:   snapshot,
		FrontendFS: frontendFS,
		registry:   prometheus.NewRegistry(),
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// setupRouter configures the HTTP router with all routes.
// Middleware ordering: RequestID → RealIP → metrics → logger → recoverer
// → security headers → rate limit.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// Prometheus endpoint stays outside the middleware group
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		if metrics, err := customMiddleware.NewRequestMetrics(a.registry); err != nil {
			a.Logger.Error("failed to register request metrics", slog.String("error", err.Error()))
		} else {
			r.Use(metrics.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.Compress(5))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupFrontendRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures the API endpoints.
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			render.Render(w, req, apierrors.NewErrorResponse(apierrors.ErrNotFound))
		})

		healthHandler := handlers.NewHealthHandler(Version, infrastructure.WithComponent(a.Logger, "health"))
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/version", healthHandler.Version)

		analyticsHandler := handlers.NewAnalyticsHandler(a.Snapshot, infrastructure.WithComponent(a.Logger, "analytics"))
		r.Mount("/analytics", analyticsHandler.Routes())

		bookingsHandler := handlers.NewBookingsHandler(a.Snapshot, a.Config.Data.PreviewRows, infrastructure.WithComponent(a.Logger, "bookings"), errorHandler)
		r.Mount("/bookings", bookingsHandler.Routes())

		parser := upload.NewParser(infrastructure.WithComponent(a.Logger, "upload"), a.Config.Data.MaxUploadBytes)
		uploadHandler := handlers.NewUploadHandler(parser, infrastructure.WithComponent(a.Logger, "upload"), errorHandler)
		r.Mount("/upload", uploadHandler.Routes())
	})
}

// setupFrontendRoutes serves the embedded dashboard page and assets.
func (a *Application) setupFrontendRoutes(r chi.Router) {
	if a.FrontendFS == nil {
		a.Logger.Warn("no frontend filesystem configured, serving API only")
		return
	}

	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(a.FrontendFS)))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		a.serveFrontendFile(w, req, "index.html")
	})
	r.Get("/static/*", fileServer.ServeHTTP)
}

// serveFrontendFile serves a single file from the embedded frontend.
func (a *Application) serveFrontendFile(w http.ResponseWriter, r *http.Request, filename string) {
	data, err := fs.ReadFile(a.FrontendFS, filename)
	if err != nil {
		infrastructure.WithError(a.Logger, err).ErrorContext(r.Context(),
			"failed to read frontend file", slog.String("file", filename))
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// createServer builds the HTTP server from configuration.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Server.ListenAddr(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts the HTTP server.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting application",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.String("addr", a.Config.Server.ListenAddr()),
		slog.Int("dataset_records", len(a.Snapshot.Records)))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	return nil
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		infrastructure.WithError(a.Logger, err).ErrorContext(ctx, "failed to close log file")
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
