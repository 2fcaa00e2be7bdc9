package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"trooplogistics/internal/dataprocessing"
	"trooplogistics/internal/exporter"
	"trooplogistics/internal/infrastructure"
	"trooplogistics/pkg/contracts/domain"
)

// LogisticsConfig holds the tunables of the logistics service.
type LogisticsConfig struct {
	Limits         dataprocessing.Limits
	Render         exporter.Options
	ArchiveWorkers int
}

// DocumentRequest selects one document of a processed report.
type DocumentRequest struct {
	Kind   domain.DocumentKind
	Format domain.DocumentFormat
	// Recipient is required for packets and ignored otherwise.
	Recipient string
}

// VocabularyInfo is the active product table and label set.
type VocabularyInfo struct {
	Products []domain.Product `json:"products"`
	Labels   domain.Labels    `json:"labels"`
}

// LogisticsService turns uploaded exports into reports and reports into
// printable documents. It keeps no state between calls.
type LogisticsService struct {
	pipeline *dataprocessing.Pipeline
	vocab    domain.Vocabulary
	labels   domain.Labels
	cfg      LogisticsConfig
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger

	// renderers holds one renderer per enabled format. It is filled at
	// construction and only read afterwards.
	renderers map[domain.DocumentFormat]*exporter.DocumentRenderer
}

// NewLogisticsService wires the pipeline for a vocabulary. metrics may be nil.
func NewLogisticsService(vocab domain.Vocabulary, labels domain.Labels, cfg LogisticsConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *LogisticsService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "logistics_service"))

	pipeline := dataprocessing.NewPipeline(vocab, labels, cfg.Limits, logger)
	if metrics != nil {
		pipeline.WithObserver(stageMetrics{metrics: metrics})
	}

	logger.Info("LogisticsService initialized",
		slog.Int("products", len(vocab.Products)),
		slog.Int("max_rows", cfg.Limits.MaxRows),
		slog.Bool("pdf_enabled", cfg.Render.PDFEnabled))

	renderers := make(map[domain.DocumentFormat]*exporter.DocumentRenderer)
	for _, format := range []domain.DocumentFormat{domain.FormatCSV, domain.FormatXLSX, domain.FormatHTML, domain.FormatPDF} {
		if r, err := exporter.NewRenderer(format, cfg.Render); err == nil {
			renderers[format] = r
		}
	}

	return &LogisticsService{
		pipeline:  pipeline,
		vocab:     vocab,
		labels:    labels,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger,
		renderers: renderers,
	}
}

// renderer returns the cached renderer for format. Formats without one report
// why through exporter.NewRenderer.
func (s *LogisticsService) renderer(format domain.DocumentFormat) (*exporter.DocumentRenderer, error) {
	if r, ok := s.renderers[format]; ok {
		return r, nil
	}
	return exporter.NewRenderer(format, s.cfg.Render)
}

// Vocabulary returns the product table and labels in use.
func (s *LogisticsService) Vocabulary() VocabularyInfo {
	return VocabularyInfo{Products: s.vocab.Products, Labels: s.labels}
}

// Ready reports whether the service can process uploads.
func (s *LogisticsService) Ready(context.Context) error {
	if len(s.vocab.Products) == 0 {
		return fmt.Errorf("vocabulary has no products")
	}
	return nil
}

// Process runs the pipeline over one uploaded export.
func (s *LogisticsService) Process(ctx context.Context, data []byte, filename string) (*domain.Report, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	report, err := s.pipeline.Run(ctx, data, filename)

	retained := 0
	if report != nil {
		retained = len(report.Orders.Orders)
	}
	format := dataprocessing.NormalizeExtension(filepath.Ext(filename))
	s.metrics.RecordUpload(ctx, format, len(data), retained, err)

	if err != nil {
		return nil, err
	}
	return report, nil
}

// Render produces one document of a processed report.
func (s *LogisticsService) Render(ctx context.Context, report *domain.Report, req DocumentRequest) (*domain.Document, error) {
	start := time.Now()
	doc, err := s.render(ctx, report, req)
	s.metrics.RecordDocument(ctx, string(req.Kind), string(req.Format), time.Since(start), err)

	if err != nil {
		s.logger.WarnContext(ctx, "Document rendering failed",
			slog.String("kind", string(req.Kind)),
			slog.String("format", string(req.Format)),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.InfoContext(ctx, "Document rendered",
		slog.String("report_id", report.ID),
		slog.String("kind", string(req.Kind)),
		slog.String("format", string(req.Format)),
		slog.Int("bytes", len(doc.Data)),
		slog.Duration("duration", time.Since(start)))
	return doc, nil
}

// RenderAll produces the troop summary, pick list, packing slips and packet
// archive of a report in one format.
func (s *LogisticsService) RenderAll(ctx context.Context, report *domain.Report, format domain.DocumentFormat) ([]*domain.Document, error) {
	kinds := []domain.DocumentKind{
		domain.DocumentTroopSummary,
		domain.DocumentPickList,
		domain.DocumentPackingSlips,
		domain.DocumentArchive,
	}
	docs := make([]*domain.Document, 0, len(kinds))
	for _, kind := range kinds {
		doc, err := s.Render(ctx, report, DocumentRequest{Kind: kind, Format: format})
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *LogisticsService) render(ctx context.Context, report *domain.Report, req DocumentRequest) (*domain.Document, error) {
	if report == nil || report.Result == nil {
		return nil, fmt.Errorf("render: report has no aggregation result")
	}
	if !knownKind(req.Kind) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDocumentKind, req.Kind)
	}

	renderer, err := s.renderer(req.Format)
	if err != nil {
		return nil, err
	}

	result := report.Result
	doc := &domain.Document{
		Kind:        req.Kind,
		Format:      req.Format,
		Filename:    documentFilename(req.Kind, req.Format, req.Recipient),
		ContentType: exporter.ContentType(req.Format),
	}

	var data []byte
	switch req.Kind {
	case domain.DocumentTroopSummary:
		data, err = renderer.RenderTroopSummary(ctx, result.TroopTotals)
	case domain.DocumentPickList:
		data, err = renderer.RenderRecipientPickList(ctx, result.Products, result.RecipientTotals)
	case domain.DocumentPackingSlips:
		data, err = renderer.RenderPackingSlips(ctx, result.RecipientOrders)
	case domain.DocumentPacket:
		if req.Recipient == "" {
			return nil, ErrRecipientRequired
		}
		orders, ok := result.Orders(req.Recipient)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrRecipientNotFound, req.Recipient)
		}
		totals, _ := result.Totals(req.Recipient)
		data, err = renderer.RenderRecipientPacket(ctx, req.Recipient, totals, orders)
	case domain.DocumentArchive:
		var archive *exporter.Archive
		archive, err = exporter.BuildArchive(ctx, renderer, result, s.cfg.ArchiveWorkers)
		if err == nil {
			data = archive.Data
			doc.ContentType = exporter.ArchiveContentType
			s.metrics.RecordArchive(ctx, len(archive.Entries))
		}
	}
	if err != nil {
		return nil, &dataprocessing.StageError{Stage: dataprocessing.StageRender, Err: err}
	}

	doc.Data = data
	return doc, nil
}

func knownKind(kind domain.DocumentKind) bool {
	switch kind {
	case domain.DocumentTroopSummary, domain.DocumentPickList, domain.DocumentPackingSlips,
		domain.DocumentPacket, domain.DocumentArchive:
		return true
	}
	return false
}

// documentFilename names a download: troop-summary.csv, packet-Ada_Lovelace.pdf,
// packets-html.zip.
func documentFilename(kind domain.DocumentKind, format domain.DocumentFormat, recipient string) string {
	switch kind {
	case domain.DocumentArchive:
		return "packets-" + string(format) + ".zip"
	case domain.DocumentPacket:
		name := strings.ReplaceAll(exporter.SanitizeName(recipient), " ", "_")
		return "packet-" + name + "." + exporter.Extension(format)
	default:
		return string(kind) + "." + exporter.Extension(format)
	}
}

// stageMetrics records pipeline stages on the business metrics.
type stageMetrics struct {
	metrics *infrastructure.BusinessMetrics
}

func (o stageMetrics) StageCompleted(ctx context.Context, stage dataprocessing.Stage, d time.Duration, err error) {
	code := ""
	if err != nil {
		code = dataprocessing.ErrorCode(err)
		if code == "" {
			code = "INTERNAL"
		}
	}
	o.metrics.RecordStage(ctx, string(stage), d, code)
}
