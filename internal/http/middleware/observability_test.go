package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"sulytrack/internal/metrics"
	"sulytrack/internal/testutil"
)

func TestObservability_UsesRoutePatternForLabels(t *testing.T) {
	t.Parallel()

	m := metrics.NewHTTP()
	rec := testutil.NewRecorder()

	pattern := "/api/admin/drivers/{id}"
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(Observability(rec.Logger(), m))
	r.Get(pattern, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/drivers/123", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	require.Equal(t, 1.0, promtestutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, pattern, "204")))
	require.Equal(t, uint64(1), histogramCount(t, m.RequestDuration, http.MethodGet, pattern, "204"))

	e, ok := rec.Find("info", "http request")
	require.True(t, ok)
	path, _ := e.Field("path")
	require.Equal(t, pattern, path)
	id, _ := e.Field("request_id")
	require.NotEmpty(t, id)
}

func TestObservability_UnmatchedRouteAndImplicitOK(t *testing.T) {
	t.Parallel()

	m := metrics.NewHTTP()
	h := Observability(testutil.NewRecorder().Logger(), m)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/random/42", nil))

	require.Equal(t, 1.0, promtestutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "200")))
}

func TestObservability_NilMetrics(t *testing.T) {
	t.Parallel()

	h := Observability(testutil.NewRecorder().Logger(), nil)(http.NotFoundHandler())
	rr := httptest.NewRecorder()
	require.NotPanics(t, func() { h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil)) })
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func histogramCount(t *testing.T, hv *prometheus.HistogramVec, method, path, status string) uint64 {
	t.Helper()

	obs, err := hv.GetMetricWithLabelValues(method, path, status)
	require.NoError(t, err)

	metric, ok := obs.(prometheus.Metric)
	require.True(t, ok, "must implement prometheus.Metric")

	m := &dto.Metric{}
	require.NoError(t, metric.Write(m))

	h := m.GetHistogram()
	require.NotNil(t, h)
	return h.GetSampleCount()
}
