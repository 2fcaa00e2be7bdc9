package dataprocessing

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"trooplogistics/pkg/contracts/domain"
)

const tracerName = "trooplogistics/dataprocessing"

// StageObserver is notified when a stage finishes. It lets callers record
// metrics without the pipeline depending on them.
type StageObserver interface {
	StageCompleted(ctx context.Context, stage Stage, duration time.Duration, err error)
}

// Pipeline runs ingest, resolve, filter and aggregate for one upload. It holds
// no per-upload state and may be shared between requests.
type Pipeline struct {
	limits     Limits
	resolver   *Resolver
	processor  *OrderProcessor
	summarizer *Summarizer
	observer   StageObserver
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewPipeline wires the stages for a vocabulary and label set.
func NewPipeline(vocab domain.Vocabulary, labels domain.Labels, limits Limits, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		limits:     limits,
		resolver:   NewResolver(vocab, labels, logger),
		processor:  NewOrderProcessor(labels, logger),
		summarizer: NewSummarizer(logger),
		tracer:     otel.Tracer(tracerName),
		logger:     logger.With(slog.String("component", "pipeline")),
	}
}

// WithObserver sets the stage observer.
func (p *Pipeline) WithObserver(o StageObserver) *Pipeline {
	p.observer = o
	return p
}

// Run processes an uploaded export. The filename's extension selects the
// decoder. Errors are *StageError values wrapping one of the package sentinels.
func (p *Pipeline) Run(ctx context.Context, data []byte, filename string) (*domain.Report, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(
			attribute.String("filename", filename),
			attribute.Int("bytes", len(data)),
		))
	defer span.End()

	report := &domain.Report{
		ID:          uuid.New().String(),
		Filename:    filename,
		Format:      NormalizeExtension(filepath.Ext(filename)),
		ProcessedAt: time.Now().UTC(),
	}

	var table *domain.RawTable
	err := p.stage(ctx, StageIngest, func() (err error) {
		table, err = Ingest(data, report.Format, p.limits)
		return err
	})
	if err != nil {
		return nil, p.fail(ctx, span, err)
	}
	report.Columns = table.Columns

	err = p.stage(ctx, StageResolve, func() (err error) {
		report.Resolution, err = p.resolver.Resolve(table)
		return err
	})
	if err != nil {
		return nil, p.fail(ctx, span, err)
	}

	err = p.stage(ctx, StageFilter, func() (err error) {
		report.Orders, err = p.processor.Filter(table, report.Resolution)
		return err
	})
	if err != nil {
		return nil, p.fail(ctx, span, err)
	}

	_ = p.stage(ctx, StageAggregate, func() error {
		report.Result = p.summarizer.Aggregate(report.Orders)
		return nil
	})

	span.SetAttributes(
		attribute.Int("orders.retained", len(report.Orders.Orders)),
		attribute.Int("recipients", len(report.Result.RecipientOrders)),
	)
	p.logger.InfoContext(ctx, "Export processed",
		slog.String("report_id", report.ID),
		slog.String("filename", filename),
		slog.Int("source_rows", report.Orders.SourceRows),
		slog.Int("retained_rows", len(report.Orders.Orders)))

	return report, nil
}

// stage times fn, reports it to the observer and tags failures with the stage.
func (p *Pipeline) stage(ctx context.Context, stage Stage, fn func() error) error {
	_, span := p.tracer.Start(ctx, "pipeline."+string(stage))
	defer span.End()

	start := time.Now()
	err := fn()
	if p.observer != nil {
		p.observer.StageCompleted(ctx, stage, time.Since(start), err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &StageError{Stage: stage, Err: err}
	}
	return nil
}

func (p *Pipeline) fail(ctx context.Context, span trace.Span, err error) error {
	span.SetStatus(codes.Error, err.Error())
	stage, _ := StageOf(err)
	p.logger.WarnContext(ctx, "Export rejected",
		slog.String("stage", string(stage)),
		slog.String("error_code", ErrorCode(err)),
		slog.String("error", err.Error()))
	return err
}
