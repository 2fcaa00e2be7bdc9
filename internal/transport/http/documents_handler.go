package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "trooplogistics/internal/errors"
	"trooplogistics/internal/exporter"
	"trooplogistics/internal/middleware"
	"trooplogistics/internal/services"
	"trooplogistics/pkg/contracts/domain"
)

// uploadField is the multipart field carrying the export.
const uploadField = "file"

// multipartMemory is the part of an upload kept in memory before spilling to disk.
const multipartMemory = 8 << 20

// LogisticsService is the subset of services.LogisticsService the handlers use.
type LogisticsService interface {
	Process(ctx context.Context, data []byte, filename string) (*domain.Report, error)
	Render(ctx context.Context, report *domain.Report, req services.DocumentRequest) (*domain.Document, error)
	Vocabulary() services.VocabularyInfo
}

// DocumentsHandler serves export analysis and document downloads.
type DocumentsHandler struct {
	service       LogisticsService
	validator     *middleware.RequestValidator
	errorHandler  *apierrors.ErrorHandler
	defaultFormat domain.DocumentFormat
	logger        *slog.Logger
}

// NewDocumentsHandler creates a documents handler. Requests without a format
// get defaultFormat.
func NewDocumentsHandler(service LogisticsService, validator *middleware.RequestValidator, errorHandler *apierrors.ErrorHandler, defaultFormat domain.DocumentFormat, logger *slog.Logger) *DocumentsHandler {
	if defaultFormat == "" {
		defaultFormat = domain.FormatHTML
	}
	return &DocumentsHandler{
		service:       service,
		validator:     validator,
		errorHandler:  errorHandler,
		defaultFormat: defaultFormat,
		logger:        logger.With(slog.String("handler", "documents")),
	}
}

// uploadRequest describes the uploaded file part.
type uploadRequest struct {
	Filename string `json:"filename" validate:"required,filename"`
}

// documentQuery holds the query parameters of a document download.
type documentQuery struct {
	Format    string `json:"format" validate:"required,oneof=csv xlsx html pdf"`
	Recipient string `json:"recipient" validate:"omitempty,max=200,recipient"`
}

// ReportSummary is the JSON view of a processed export.
type ReportSummary struct {
	ID              string                   `json:"id"`
	Filename        string                   `json:"filename"`
	Format          string                   `json:"format"`
	ProcessedAt     time.Time                `json:"processed_at"`
	Resolution      *domain.ColumnResolution `json:"resolution"`
	SourceRows      int                      `json:"source_rows"`
	RetainedOrders  int                      `json:"retained_orders"`
	Degraded        bool                     `json:"degraded"`
	HasMoney        bool                     `json:"has_money"`
	Products        []string                 `json:"products"`
	TroopTotals     []domain.Quantity        `json:"troop_totals"`
	RecipientTotals []domain.RecipientTotals `json:"recipient_totals"`
	Recipients      []string                 `json:"recipients"`
}

func newReportSummary(report *domain.Report) *ReportSummary {
	return &ReportSummary{
		ID:              report.ID,
		Filename:        report.Filename,
		Format:          report.Format,
		ProcessedAt:     report.ProcessedAt,
		Resolution:      report.Resolution,
		SourceRows:      report.Orders.SourceRows,
		RetainedOrders:  len(report.Orders.Orders),
		Degraded:        report.Orders.Degraded,
		HasMoney:        report.Result.HasMoney,
		Products:        report.Result.Products,
		TroopTotals:     report.Result.TroopTotals,
		RecipientTotals: report.Result.RecipientTotals,
		Recipients:      report.Result.Recipients(),
	}
}

// Render implements render.Renderer
func (s *ReportSummary) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// Routes mounts under /api.
func (h *DocumentsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/vocabulary", h.GetVocabulary)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireContentType(h.errorHandler, "multipart/form-data"))
		r.Post("/orders/analyze", h.Analyze)
		r.Post("/documents/{kind}", h.Download)
	})
	return r
}

// GetVocabulary handles GET /api/vocabulary
func (h *DocumentsHandler) GetVocabulary(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Vocabulary())
}

// Analyze handles POST /api/orders/analyze
func (h *DocumentsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	report, ok := h.process(w, r)
	if !ok {
		return
	}

	render.Status(r, http.StatusOK)
	if err := render.Render(w, r, newReportSummary(report)); err != nil {
		h.errorHandler.LogHandlerError(r, "failed to write report summary", err)
	}
}

// Download handles POST /api/documents/{kind}
func (h *DocumentsHandler) Download(w http.ResponseWriter, r *http.Request) {
	query := documentQuery{
		Format:    r.URL.Query().Get("format"),
		Recipient: r.URL.Query().Get("recipient"),
	}
	if query.Format == "" {
		query.Format = string(h.defaultFormat)
	}
	if err := h.validator.ValidateStruct(query); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, ok := h.process(w, r)
	if !ok {
		return
	}

	doc, err := h.service.Render(r.Context(), report, services.DocumentRequest{
		Kind:      domain.DocumentKind(chi.URLParam(r, "kind")),
		Format:    domain.DocumentFormat(query.Format),
		Recipient: query.Recipient,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.Header().Set("X-Report-ID", report.ID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		h.errorHandler.LogHandlerError(r, "failed to write document", err)
	}
}

// process reads the uploaded export and runs the pipeline. It writes the
// error response itself and reports whether the caller should continue.
func (h *DocumentsHandler) process(w http.ResponseWriter, r *http.Request) (*domain.Report, bool) {
	data, filename, err := h.readUpload(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	report, err := h.service.Process(r.Context(), data, filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return nil, false
	}

	h.logger.InfoContext(r.Context(), "export processed",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("report_id", report.ID),
		slog.String("filename", filename),
		slog.Int("orders", len(report.Orders.Orders)))
	return report, true
}

func (h *DocumentsHandler) readUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, "", err
		}
		return nil, "", apierrors.InvalidRequestWithError(err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, "", apierrors.ErrValidation(uploadField, "a file upload is required")
	}
	defer file.Close()

	upload := uploadRequest{Filename: filepath.Base(header.Filename)}
	if err := h.validator.ValidateStruct(upload); err != nil {
		return nil, "", err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read upload %q: %w", upload.Filename, err)
	}
	return data, upload.Filename, nil
}

// mapServiceError turns service and exporter sentinels into API errors.
// Pipeline errors pass through; the error handler maps them by code.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrEmptyUpload):
		return apierrors.New(http.StatusBadRequest, "EMPTY_UPLOAD", err.Error())
	case errors.Is(err, services.ErrUnknownDocumentKind):
		return apierrors.NewWithDetails(http.StatusNotFound, "UNKNOWN_DOCUMENT_KIND", err.Error(), documentKinds)
	case errors.Is(err, services.ErrRecipientRequired):
		return apierrors.ErrValidation("recipient", "recipient is required for a packet")
	case errors.Is(err, services.ErrRecipientNotFound):
		return apierrors.New(http.StatusNotFound, "RECIPIENT_NOT_FOUND", err.Error())
	case errors.Is(err, exporter.ErrUnsupportedFormat):
		return apierrors.New(http.StatusBadRequest, "UNSUPPORTED_DOCUMENT_FORMAT", err.Error())
	case errors.Is(err, exporter.ErrFormatDisabled):
		return apierrors.New(http.StatusBadRequest, "FORMAT_DISABLED", err.Error())
	default:
		return err
	}
}

var documentKinds = []domain.DocumentKind{
	domain.DocumentTroopSummary,
	domain.DocumentPickList,
	domain.DocumentPackingSlips,
	domain.DocumentPacket,
	domain.DocumentArchive,
}
