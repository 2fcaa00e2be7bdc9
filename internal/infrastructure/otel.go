package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"trooplogistics/internal/config"
)

// MeterName is the instrumentation scope of every application instrument.
const MeterName = "trooplogistics"

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Meter          metric.Meter
	// PrometheusHTTP serves the metrics registry. It is nil when metrics are disabled.
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel sets up metrics (Prometheus exposition from a private
// registry) and, when enabled, stdout tracing. Disabled parts fall back to
// no-op implementations.
func InitializeOTel(cfg config.TelemetryConfig, version string, logger *slog.Logger) (*OTelProviders, error) {
	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(version),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	providers := &OTelProviders{
		Meter:  noop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
	}

	if cfg.TracingEnabled {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		providers.TracerProvider = tp
		otel.SetTracerProvider(tp)
	}

	if cfg.MetricsEnabled {
		registry := prom.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(version))
		providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		otel.SetMeterProvider(mp)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "OpenTelemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("version", version),
		slog.Bool("tracing_enabled", cfg.TracingEnabled),
		slog.Bool("metrics_enabled", cfg.MetricsEnabled))

	return providers, nil
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("opentelemetry shutdown: %w", err)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// BusinessMetrics holds the application instruments
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Pipeline metrics
	UploadsTotal      metric.Int64Counter
	UploadBytes       metric.Int64Histogram
	StageDuration     metric.Float64Histogram
	StageFailures     metric.Int64Counter
	OrdersRetained    metric.Int64Histogram
	DocumentsRendered metric.Int64Counter
	DocumentDuration  metric.Float64Histogram
	ArchiveEntries    metric.Int64Histogram
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		m   BusinessMetrics
		err error
	)

	// Each step is skipped once an earlier one failed.
	int64Counter := func(dst *metric.Int64Counter, name, desc string) {
		if err == nil {
			*dst, err = meter.Int64Counter(name, metric.WithDescription(desc))
		}
	}
	float64Histogram := func(dst *metric.Float64Histogram, name, desc string) {
		if err == nil {
			*dst, err = meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		}
	}
	int64Histogram := func(dst *metric.Int64Histogram, name, desc, unit string) {
		if err == nil {
			*dst, err = meter.Int64Histogram(name, metric.WithDescription(desc), metric.WithUnit(unit))
		}
	}

	int64Counter(&m.HTTPRequestsTotal, "http_requests_total", "Total number of HTTP requests")
	float64Histogram(&m.HTTPRequestDuration, "http_request_duration_seconds", "HTTP request duration in seconds")
	if err == nil {
		m.HTTPActiveRequests, err = meter.Int64UpDownCounter("http_active_requests",
			metric.WithDescription("Number of active HTTP requests"))
	}

	int64Counter(&m.UploadsTotal, "uploads_total", "Total number of processed exports by outcome")
	int64Histogram(&m.UploadBytes, "upload_size_bytes", "Size of uploaded exports", "By")
	float64Histogram(&m.StageDuration, "pipeline_stage_duration_seconds", "Pipeline stage duration in seconds")
	int64Counter(&m.StageFailures, "pipeline_stage_failures_total", "Total number of pipeline stage failures")
	int64Histogram(&m.OrdersRetained, "orders_retained", "In-person orders retained per export", "{order}")
	int64Counter(&m.DocumentsRendered, "documents_rendered_total", "Total number of rendered documents")
	float64Histogram(&m.DocumentDuration, "document_render_duration_seconds", "Document rendering duration in seconds")
	int64Histogram(&m.ArchiveEntries, "archive_entries", "Recipient packets per archive", "{packet}")

	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordStage records one pipeline stage. code is the stable error code of a
// failed stage and empty on success.
func (m *BusinessMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, code string) {
	if m == nil {
		return
	}
	status := "success"
	if code != "" {
		status = "failure"
	}
	m.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
	if code != "" {
		m.StageFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("error.code", code),
		))
	}
}

// RecordUpload records a processed export.
func (m *BusinessMetrics) RecordUpload(ctx context.Context, format string, size int, retained int, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("format", format), attribute.String("outcome", outcome))
	m.UploadsTotal.Add(ctx, 1, attrs)
	m.UploadBytes.Record(ctx, int64(size), metric.WithAttributes(attribute.String("format", format)))
	if err == nil {
		m.OrdersRetained.Record(ctx, int64(retained))
	}
}

// RecordDocument records a rendered document.
func (m *BusinessMetrics) RecordDocument(ctx context.Context, kind, format string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("format", format),
		attribute.String("outcome", outcome),
	)
	m.DocumentsRendered.Add(ctx, 1, attrs)
	m.DocumentDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordArchive records the number of packets in a built archive.
func (m *BusinessMetrics) RecordArchive(ctx context.Context, entries int) {
	if m == nil {
		return
	}
	m.ArchiveEntries.Record(ctx, int64(entries))
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts the OpenTelemetry trace ID from context
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}
