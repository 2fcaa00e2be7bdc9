package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trooplogistics/internal/config"
	"trooplogistics/internal/dataprocessing"
	"trooplogistics/internal/exporter"
	"trooplogistics/internal/infrastructure"
	"trooplogistics/pkg/contracts/domain"
)

const ordersCSV = "Order Number,Girl Name,Customer Name,Delivery Method,Thin Mints,Samoas,Amount Due\n" +
	"1001,Ada,Pat Doe,Girl Delivery,2,1,$18.00\n" +
	"1002,Bea,Sam Roe,Shipped,5,,$30.00\n" +
	"1003,Ada,Lee Poe,In-Person,1,,$6.00\n"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testVocabulary() domain.Vocabulary {
	return domain.Vocabulary{Products: []domain.Product{
		{Name: "Thin Mints", Aliases: []string{"Thin Mints"}},
		{Name: "Samoas", Aliases: []string{"Samoas", "Caramel deLites"}},
		{Name: "Trefoils", Aliases: []string{"Trefoils", "Shortbread"}},
	}}
}

func newTestService(metrics *infrastructure.BusinessMetrics) *LogisticsService {
	return NewLogisticsService(testVocabulary(), domain.DefaultLabels(), LogisticsConfig{
		Limits:         dataprocessing.Limits{MaxRows: 100, MaxColumns: 20},
		Render:         exporter.Options{Title: "Troop 42"},
		ArchiveWorkers: 2,
	}, metrics, testLogger())
}

func mustProcess(t *testing.T, svc *LogisticsService) *domain.Report {
	t.Helper()
	report, err := svc.Process(context.Background(), []byte(ordersCSV), "orders.csv")
	require.NoError(t, err)
	return report
}

func TestLogisticsService_Process(t *testing.T) {
	report := mustProcess(t, newTestService(nil))

	assert.Equal(t, "orders.csv", report.Filename)
	require.Len(t, report.Orders.Orders, 2)
	assert.Equal(t, []string{"Ada"}, report.Result.Recipients())
	assert.Equal(t, []string{"Thin Mints", "Samoas"}, report.Result.Products)

	totals, ok := report.Result.Totals("Ada")
	require.True(t, ok)
	assert.True(t, totals.TotalBoxes.Equal(totals.Quantity("Thin Mints").Add(totals.Quantity("Samoas"))))
	assert.Equal(t, "4", totals.TotalBoxes.String())
}

func TestLogisticsService_ProcessErrors(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.Process(context.Background(), nil, "orders.csv")
	assert.ErrorIs(t, err, ErrEmptyUpload)

	_, err = svc.Process(context.Background(), []byte("Girl Name,Thin Mints\nAda,1\n"), "orders.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, dataprocessing.ErrMissingChannelColumn)
	stage, ok := dataprocessing.StageOf(err)
	require.True(t, ok)
	assert.Equal(t, dataprocessing.StageResolve, stage)
}

func TestLogisticsService_Render(t *testing.T) {
	svc := newTestService(nil)
	report := mustProcess(t, svc)

	tests := []struct {
		name         string
		req          DocumentRequest
		wantFilename string
		wantType     string
	}{
		{
			name:         "troop summary csv",
			req:          DocumentRequest{Kind: domain.DocumentTroopSummary, Format: domain.FormatCSV},
			wantFilename: "troop-summary.csv",
			wantType:     "text/csv; charset=utf-8",
		},
		{
			name:         "pick list xlsx",
			req:          DocumentRequest{Kind: domain.DocumentPickList, Format: domain.FormatXLSX},
			wantFilename: "pick-list.xlsx",
			wantType:     exporter.ContentType(domain.FormatXLSX),
		},
		{
			name:         "packing slips html",
			req:          DocumentRequest{Kind: domain.DocumentPackingSlips, Format: domain.FormatHTML},
			wantFilename: "packing-slips.html",
			wantType:     exporter.ContentType(domain.FormatHTML),
		},
		{
			name:         "packet",
			req:          DocumentRequest{Kind: domain.DocumentPacket, Format: domain.FormatHTML, Recipient: "Ada"},
			wantFilename: "packet-Ada.html",
			wantType:     exporter.ContentType(domain.FormatHTML),
		},
		{
			name:         "archive",
			req:          DocumentRequest{Kind: domain.DocumentArchive, Format: domain.FormatCSV},
			wantFilename: "packets-csv.zip",
			wantType:     exporter.ArchiveContentType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := svc.Render(context.Background(), report, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.req.Kind, doc.Kind)
			assert.Equal(t, tt.wantFilename, doc.Filename)
			assert.Equal(t, tt.wantType, doc.ContentType)
			assert.NotEmpty(t, doc.Data)
		})
	}
}

func TestLogisticsService_RenderTroopSummaryContent(t *testing.T) {
	svc := newTestService(nil)
	doc, err := svc.Render(context.Background(), mustProcess(t, svc),
		DocumentRequest{Kind: domain.DocumentTroopSummary, Format: domain.FormatCSV})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(doc.Data, []byte("\ufeff")))).ReadAll()
	require.NoError(t, err)
	assert.Contains(t, records, []string{"Thin Mints", "3"})
	assert.Contains(t, records, []string{"Samoas", "1"})
}

func TestLogisticsService_RenderArchive(t *testing.T) {
	svc := newTestService(nil)
	doc, err := svc.Render(context.Background(), mustProcess(t, svc),
		DocumentRequest{Kind: domain.DocumentArchive, Format: domain.FormatHTML})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "Ada.html", zr.File[0].Name)
}

func TestLogisticsService_RenderErrors(t *testing.T) {
	svc := newTestService(nil)
	report := mustProcess(t, svc)

	tests := []struct {
		name    string
		req     DocumentRequest
		wantErr error
	}{
		{
			name:    "unknown kind",
			req:     DocumentRequest{Kind: "flyer", Format: domain.FormatCSV},
			wantErr: ErrUnknownDocumentKind,
		},
		{
			name:    "packet without recipient",
			req:     DocumentRequest{Kind: domain.DocumentPacket, Format: domain.FormatCSV},
			wantErr: ErrRecipientRequired,
		},
		{
			name:    "packet for unknown recipient",
			req:     DocumentRequest{Kind: domain.DocumentPacket, Format: domain.FormatCSV, Recipient: "Bea"},
			wantErr: ErrRecipientNotFound,
		},
		{
			name:    "unsupported format",
			req:     DocumentRequest{Kind: domain.DocumentPickList, Format: "docx"},
			wantErr: exporter.ErrUnsupportedFormat,
		},
		{
			name:    "pdf disabled",
			req:     DocumentRequest{Kind: domain.DocumentPickList, Format: domain.FormatPDF},
			wantErr: exporter.ErrFormatDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := svc.Render(context.Background(), report, tt.req)
			assert.Nil(t, doc)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLogisticsService_RenderCancelled(t *testing.T) {
	svc := newTestService(nil)
	report := mustProcess(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Render(ctx, report, DocumentRequest{Kind: domain.DocumentPickList, Format: domain.FormatCSV})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	stage, ok := dataprocessing.StageOf(err)
	require.True(t, ok)
	assert.Equal(t, dataprocessing.StageRender, stage)
}

func TestLogisticsService_RenderAll(t *testing.T) {
	svc := newTestService(nil)
	docs, err := svc.RenderAll(context.Background(), mustProcess(t, svc), domain.FormatCSV)
	require.NoError(t, err)

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Filename
	}
	assert.Equal(t, []string{"troop-summary.csv", "pick-list.csv", "packing-slips.csv", "packets-csv.zip"}, names)
}

func TestLogisticsService_Metrics(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(config.TelemetryConfig{
		ServiceName:    "trooplogistics-test",
		MetricsEnabled: true,
	}, "test", testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	svc := newTestService(metrics)
	report := mustProcess(t, svc)
	_, err = svc.Render(context.Background(), report, DocumentRequest{Kind: domain.DocumentArchive, Format: domain.FormatCSV})
	require.NoError(t, err)
	_, err = svc.Process(context.Background(), []byte("Girl Name,Thin Mints\nAda,1\n"), "orders.csv")
	require.Error(t, err)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, "uploads_total")
	assert.Contains(t, body, "pipeline_stage_duration_seconds")
	assert.Contains(t, body, `error_code="MISSING_CHANNEL_COLUMN"`)
	assert.Contains(t, body, "documents_rendered_total")
	assert.Contains(t, body, "archive_entries")
}

func TestLogisticsService_RenderersAreReused(t *testing.T) {
	svc := newTestService(nil)

	first, err := svc.renderer(domain.FormatHTML)
	require.NoError(t, err)
	second, err := svc.renderer(domain.FormatHTML)
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = svc.renderer(domain.FormatPDF)
	assert.ErrorIs(t, err, exporter.ErrFormatDisabled)
	_, err = svc.renderer(domain.DocumentFormat("docx"))
	assert.ErrorIs(t, err, exporter.ErrUnsupportedFormat)
}

func TestLogisticsService_VocabularyAndReady(t *testing.T) {
	svc := newTestService(nil)
	info := svc.Vocabulary()
	assert.Len(t, info.Products, 3)
	assert.Equal(t, domain.DefaultLabels(), info.Labels)
	assert.NoError(t, svc.Ready(context.Background()))

	empty := NewLogisticsService(domain.Vocabulary{}, domain.DefaultLabels(), LogisticsConfig{}, nil, testLogger())
	assert.Error(t, empty.Ready(context.Background()))
}

func TestDocumentFilename(t *testing.T) {
	assert.Equal(t, "packet-Bea__Troop_7.pdf",
		documentFilename(domain.DocumentPacket, domain.FormatPDF, "Bea / Troop 7"))
	assert.Equal(t, "packets-xlsx.zip", documentFilename(domain.DocumentArchive, domain.FormatXLSX, ""))
	assert.Equal(t, "pick-list.html", documentFilename(domain.DocumentPickList, domain.FormatHTML, ""))
}
