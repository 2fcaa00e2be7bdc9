// Package app wires the logistics web service together and manages its
// lifecycle.
//
// New takes a loaded configuration and a logger, loads the product
// vocabulary, initializes OpenTelemetry, builds the services and mounts the
// HTTP handlers behind the middleware chain:
//
//	tracing (when enabled) → request id → structured logging → recovery →
//	security headers → HTTP metrics → rate limit → timeout → body limit
//
// Health probes, the version endpoint and /metrics sit before the rate
// limiter so orchestrators and scrapers are never throttled.
//
// Run serves until its context is cancelled and then shuts down gracefully:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := application.Run(ctx); err != nil {
//	    logger.Error("server failed", slog.String("error", err.Error()))
//	}
//
// The package never calls os.Exit; errors are returned to main.
package app
