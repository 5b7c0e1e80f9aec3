package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/ticket-report/internal/auth"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics("test")
	m.RecordRequest("/reports/:client_id/generate", "POST", 200, 20*time.Millisecond)
	m.RecordRequest("/reports/:client_id/generate", "POST", 200, 30*time.Millisecond)
	m.RecordError("/reports/preview", "POST", "VALIDATION_FAILED")
	m.RecordReport(OutcomeGenerated, 12, time.Second)
	m.RecordReport(OutcomeFailed, 0, 0)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/reports/:client_id/generate", "POST", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/reports/preview", "POST", "VALIDATION_FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reports.WithLabelValues(OutcomeGenerated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reports.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordReport(OutcomeGenerated, 1, time.Millisecond)
		m.RecordCacheLookup(true)
	})
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a := NewMetrics("svc")
	b := NewMetrics("svc")
	a.RecordCacheLookup(true)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.cacheLookups.WithLabelValues("hit")))
}

func TestRequestLogger_RecordsRoutePattern(t *testing.T) {
	m := NewMetrics("test")
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/reports/:client_id/runs", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/reports/42/runs", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/reports/:client_id/runs", "GET", "200")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("test")
	m.RecordReport(OutcomeGenerated, 3, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_reports_total{outcome="generated"} 1`)
}

func TestRequestLogger_LogsCallerKind(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), nil))
	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendString("ok") })
	api := app.Group("/api/v1", auth.NewAPIKeyMiddleware("").Handle)
	api.Get("/reports/latest", func(c *fiber.Ctx) error { return c.SendString("ok") })

	_, err := app.Test(httptest.NewRequest("GET", "/api/v1/reports/latest", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/health/live", nil))
	require.NoError(t, err)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "anonymous", entries[0].ContextMap()["auth"])
	_, ok := entries[1].ContextMap()["auth"]
	assert.False(t, ok)
}
