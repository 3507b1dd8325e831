package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cronograma-api/internal/scheduler"
)

func TestMetricsServicePlannerCounters(t *testing.T) {
	m := NewMetricsService()

	m.ObserveFeasibility(scheduler.FeasibilityResult{Status: scheduler.StatusFeasible, IsFeasible: true}, time.Millisecond)
	m.ObserveFeasibility(scheduler.FeasibilityResult{Status: scheduler.StatusInfeasible, Deficit: 4}, time.Millisecond)
	m.ObserveDistribution(scheduler.DistributionAnalysis{MaxConsecutiveSubject: 2}, scheduler.QualityReport{Score: 90}, time.Millisecond)
	m.ObserveDistribution(scheduler.DistributionAnalysis{MaxConsecutiveSubject: 4}, scheduler.QualityReport{Score: 70}, time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.feasibility.WithLabelValues(string(scheduler.StatusInfeasible))))

	snapshot := m.Snapshot()
	assert.Equal(t, uint64(2), snapshot.FeasibilityChecks)
	assert.Equal(t, uint64(1), snapshot.InfeasiblePlans)
	assert.Equal(t, uint64(2), snapshot.Distributions)
	assert.InDelta(t, 80.0, snapshot.AverageQualityScore, 1e-9)
}

func TestMetricsServiceHandlerServesRegistry(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/planner/feasibility", http.StatusOK, 5*time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
	assert.Contains(t, w.Body.String(), "planner_operation_duration_seconds")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.ObserveFeasibility(scheduler.FeasibilityResult{}, time.Millisecond)
	assert.Equal(t, uint64(0), m.Snapshot().RequestsTotal)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
