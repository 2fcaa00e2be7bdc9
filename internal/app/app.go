package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trooplogistics/internal/config"
	"trooplogistics/internal/dataprocessing"
	apierrors "trooplogistics/internal/errors"
	"trooplogistics/internal/exporter"
	"trooplogistics/internal/infrastructure"
	customMiddleware "trooplogistics/internal/middleware"
	"trooplogistics/internal/services"
	handlers "trooplogistics/internal/transport/http"
	"trooplogistics/pkg/contracts/domain"
)

// readHeaderTimeout bounds slow header writers independently of ReadTimeout.
const readHeaderTimeout = 10 * time.Second

var (
	// Version is set at link time with -ldflags "-X trooplogistics/internal/app.Version=..."
	Version = config.AppVersion
	// BuildTime is set at link time
	BuildTime = ""
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Logistics     *services.LogisticsService
	Health        *services.HealthService
}

// New wires every component from a loaded configuration. It starts nothing.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", Version))

	vocab, labels, err := config.LoadVocabulary(cfg.Vocabulary.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	app.initializeServices(vocab, labels)
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices(vocab domain.Vocabulary, labels domain.Labels) {
	a.Logistics = services.NewLogisticsService(vocab, labels, services.LogisticsConfig{
		Limits: dataprocessing.Limits{
			MaxRows:    a.Config.Limits.MaxRows,
			MaxColumns: a.Config.Limits.MaxColumns,
		},
		Render: exporter.Options{
			Title:      a.Config.Render.Title,
			PDFEnabled: a.Config.Render.PDFEnabled,
			ChromePath: a.Config.Render.ChromePath,
			PDFTimeout: a.Config.Render.PDFTimeout,
		},
		ArchiveWorkers: a.Config.Limits.ArchiveWorkers,
	}, a.Metrics, a.Logger)

	a.Health = services.NewHealthService(Version, BuildTime, a.Logger,
		services.ReadinessProbe{Name: "logistics", Check: a.Logistics.Ready})
}

// setupRouter builds the middleware chain and mounts the handlers.
// Order: tracing, request id, logging, recovery, headers, metrics, rate
// limit, timeout, body limit.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	if a.Config.Telemetry.TracingEnabled {
		r.Use(customMiddleware.Tracing(a.Config.Telemetry.ServiceName))
	}
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.HTTPMetrics(a.Metrics))

	// Probes and scrapes stay outside the rate limit.
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}
	health := handlers.NewHealthHandler(a.Health, a.Logger)
	r.Mount("/api/health", health.Routes())
	r.Get("/api/version", health.Version)

	r.Group(func(r chi.Router) {
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.ErrorHandler,
			).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		r.Use(customMiddleware.MaxBodySize(a.Config.Limits.MaxUploadBytes))

		defaultFormat := domain.FormatHTML
		if a.Config.Render.PDFEnabled {
			defaultFormat = domain.FormatPDF
		}
		documents := handlers.NewDocumentsHandler(
			a.Logistics,
			customMiddleware.NewRequestValidator(a.Logger),
			a.ErrorHandler,
			defaultFormat,
			a.Logger,
		)
		r.Mount("/api", documents.Routes())
	})

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		WriteTimeout:      a.Config.Server.WriteTimeout,
		IdleTimeout:       a.Config.Server.IdleTimeout,
		MaxHeaderBytes:    a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves until ctx is cancelled or the listener fails, then shuts down.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.InfoContext(ctx, "HTTP server listening",
			slog.String("address", a.Server.Addr),
			slog.Bool("pdf_enabled", a.Config.Render.PDFEnabled))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			a.shutdownTelemetry(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Received shutdown signal")
	}

	return a.Stop(context.Background())
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.shutdownTelemetry(shutdownCtx)
	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

func (a *Application) shutdownTelemetry(ctx context.Context) {
	if a.OTelProviders == nil {
		return
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}
}
