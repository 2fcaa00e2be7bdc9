package app

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trooplogistics/internal/config"
)

const exportCSV = "Order Number,Girl Name,Customer Name,Delivery Method,Thin Mints,Samoas,Amount Due\n" +
	"1001,Ada,Pat Doe,Girl Delivery,2,1,$18.00\n" +
	"1002,Bea,Sam Roe,Shipped,5,,$30.00\n" +
	"1003,Carla,Lee Poe,In-Person,1,,$6.00\n"

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	a, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.OTelProviders.Shutdown(context.Background()) })
	return a
}

func uploadRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(a *Application, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestApplication_Analyze(t *testing.T) {
	a := newTestApp(t, testConfig())

	rec := serve(a, uploadRequest(t, "/api/orders/analyze", "orders.csv", exportCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{"Ada", "Carla"}, body["recipients"])
	assert.Equal(t, float64(3), body["source_rows"])
	assert.Equal(t, float64(2), body["retained_orders"])
}

func TestApplication_DownloadArchive(t *testing.T) {
	a := newTestApp(t, testConfig())

	rec := serve(a, uploadRequest(t, "/api/documents/archive?format=csv", "orders.csv", exportCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="packets-csv.zip"`, rec.Header().Get("Content-Disposition"))

	data := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := make([]string, len(zr.File))
	for i, f := range zr.File {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"Ada.csv", "Carla.csv"}, names)
}

func TestApplication_PipelineErrorIsProblem(t *testing.T) {
	a := newTestApp(t, testConfig())

	rec := serve(a, uploadRequest(t, "/api/orders/analyze", "orders.csv", "Girl Name,Thin Mints\nAda,1\n"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "MISSING_CHANNEL_COLUMN", body["error_code"])
	assert.Equal(t, "resolve", body["stage"])
}

func TestApplication_UploadTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Limits.MaxUploadBytes = 512
	a := newTestApp(t, cfg)

	big := exportCSV + strings.Repeat("1004,Dee,Kim Loe,Girl Delivery,1,,$6.00\n", 200)
	rec := serve(a, uploadRequest(t, "/api/orders/analyze", "orders.csv", big))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestApplication_RoutesAndProbes(t *testing.T) {
	a := newTestApp(t, testConfig())

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK},
		{name: "live", method: http.MethodGet, path: "/api/health/live", wantStatus: http.StatusOK},
		{name: "ready", method: http.MethodGet, path: "/api/health/ready", wantStatus: http.StatusOK},
		{name: "version", method: http.MethodGet, path: "/api/version", wantStatus: http.StatusOK},
		{name: "vocabulary", method: http.MethodGet, path: "/api/vocabulary", wantStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/api/nope", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodGet, path: "/api/orders/analyze", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(a, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestApplication_Metrics(t *testing.T) {
	a := newTestApp(t, testConfig())

	serve(a, uploadRequest(t, "/api/orders/analyze", "orders.csv", exportCSV))
	rec := serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, `route="/api/orders/analyze"`)
	assert.Contains(t, body, "uploads_total")
}

func TestApplication_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit.RPS = 1
	cfg.Security.RateLimit.Burst = 1
	a := newTestApp(t, cfg)

	first := serve(a, httptest.NewRequest(http.MethodGet, "/api/vocabulary", nil))
	second := serve(a, httptest.NewRequest(http.MethodGet, "/api/vocabulary", nil))
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	probe := serve(a, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))
	assert.Equal(t, http.StatusOK, probe.Code, "probes are not rate limited")
}

func TestApplication_RunStopsOnCancel(t *testing.T) {
	a := newTestApp(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestNew_InvalidVocabulary(t *testing.T) {
	cfg := testConfig()
	cfg.Vocabulary.File = t.TempDir() + "/missing.yaml"

	_, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load vocabulary")
}
