package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthService_HealthCheck(t *testing.T) {
	hs := NewHealthService("1.2.3", "", testLogger())
	status := hs.HealthCheck(context.Background())

	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.False(t, status.Timestamp.IsZero())
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		probes     []ReadinessProbe
		wantStatus string
		wantProbes map[string]ServiceHealth
	}{
		{
			name:       "no probes",
			wantStatus: "ready",
			wantProbes: map[string]ServiceHealth{},
		},
		{
			name: "all pass",
			probes: []ReadinessProbe{
				{Name: "vocabulary", Check: func(context.Context) error { return nil }},
			},
			wantStatus: "ready",
			wantProbes: map[string]ServiceHealth{"vocabulary": {Status: "ready"}},
		},
		{
			name: "one fails",
			probes: []ReadinessProbe{
				{Name: "vocabulary", Check: func(context.Context) error { return nil }},
				{Name: "renderer", Check: func(context.Context) error { return errors.New("browser missing") }},
			},
			wantStatus: "not_ready",
			wantProbes: map[string]ServiceHealth{
				"vocabulary": {Status: "ready"},
				"renderer":   {Status: "not_ready", Message: "browser missing"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService("test", "", testLogger(), tt.probes...)
			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.wantProbes, status.Services)
		})
	}
}

func TestHealthService_ReadinessUsesLogisticsService(t *testing.T) {
	svc := newTestService(nil)
	hs := NewHealthService("test", "", testLogger(), ReadinessProbe{Name: "logistics", Check: svc.Ready})
	assert.Equal(t, "ready", hs.ReadinessCheck(context.Background()).Status)
}

func TestHealthService_LivenessCheck(t *testing.T) {
	hs := NewHealthService("test", "", testLogger())
	start := hs.startTime
	hs.now = func() time.Time { return start.Add(90 * time.Second) }

	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	require.Contains(t, status.Runtime, "uptime")
	assert.InDelta(t, 90.0, status.Runtime["uptime"], 0.001)
	assert.Contains(t, status.Runtime, "goroutines")
}

func TestHealthService_Version(t *testing.T) {
	hs := NewHealthService("1.2.3", "2026-10-01T00:00:00Z", testLogger())
	info := hs.Version()

	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "2026-10-01T00:00:00Z", info["build_time"])
	assert.Contains(t, info, "go_version")

	noBuild := NewHealthService("dev", "", testLogger()).Version()
	assert.NotContains(t, noBuild, "build_time")
}
