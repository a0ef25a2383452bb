package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTel_PrometheusEndpoint(t *testing.T) {
	cfg := &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: "test",
		Environment:    "test",
		EnableMetrics:  true,
		SampleRatio:    1,
		Registry:       promclient.NewRegistry(),
	}

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordUpload(ctx, "csv")
	metrics.RecordOperation(ctx, "remove_duplicates", "success")
	metrics.RecordIssues(ctx, map[string]int{"high": 2, "low": 0})
	metrics.RecordSessionsRemoved(ctx, 1, true)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "uploads_total")
	assert.Contains(t, body, "cleaning_operations_total")
	assert.Contains(t, body, `severity="high"`)
	assert.NotContains(t, body, `severity="low"`)
	assert.Contains(t, body, "sessions_expired_total")
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{ServiceName: ServiceName}, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	require.NotNil(t, providers.Meter)
	require.NotNil(t, providers.Tracer)

	_, err = CreateBusinessMetrics(providers.Meter)
	assert.NoError(t, err)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnknownExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{EnableTracing: true, TraceExporter: "zipkin"}, discardLogger())
	assert.Error(t, err)
}

func TestBusinessMetrics_NilSafe(t *testing.T) {
	var m *BusinessMetrics
	assert.NotPanics(t, func() {
		m.RecordUpload(context.Background(), "csv")
		m.RecordOperation(context.Background(), "x", "failed")
		m.RecordIssues(context.Background(), map[string]int{"high": 1})
		m.RecordSessionsRemoved(context.Background(), 3, false)
	})
	assert.NotNil(t, NoopBusinessMetrics())
}
