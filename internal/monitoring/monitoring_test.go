package monitoring

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecordHorizon tests per-horizon gauges and counters
func TestRecordHorizon(t *testing.T) {
	result := montecarlo.HorizonResult{
		HorizonMonths:        36,
		SimulationCount:      1000,
		Percentiles:          montecarlo.Percentiles{Median: 25000},
		BreakEvenProbability: 81.5,
	}

	before := testutil.ToFloat64(trajectoriesTotal.WithLabelValues("36"))
	RecordHorizon("BTCUSDT", result, 250*time.Millisecond)

	assert.Equal(t, before+1000, testutil.ToFloat64(trajectoriesTotal.WithLabelValues("36")))
	assert.Equal(t, 25000.0, testutil.ToFloat64(medianFinalValue.WithLabelValues("BTCUSDT", "36")))
	assert.Equal(t, 81.5, testutil.ToFloat64(breakEvenProbability.WithLabelValues("BTCUSDT", "36")))
}

// TestRecordCounters tests the run, calibration and fallback counters
func TestRecordCounters(t *testing.T) {
	runs := testutil.ToFloat64(runsTotal.WithLabelValues("success"))
	cals := testutil.ToFloat64(calibrationsTotal.WithLabelValues("synthetic"))
	fallbacks := testutil.ToFloat64(quoteFallbacksTotal)
	errs := testutil.ToFloat64(errorsTotal.WithLabelValues("NETWORK"))

	RecordRun("success")
	RecordCalibration("synthetic")
	RecordQuoteFallback()
	RecordError("NETWORK")
	UpdatePrice("BTCUSDT", 107000)

	assert.Equal(t, runs+1, testutil.ToFloat64(runsTotal.WithLabelValues("success")))
	assert.Equal(t, cals+1, testutil.ToFloat64(calibrationsTotal.WithLabelValues("synthetic")))
	assert.Equal(t, fallbacks+1, testutil.ToFloat64(quoteFallbacksTotal))
	assert.Equal(t, errs+1, testutil.ToFloat64(errorsTotal.WithLabelValues("NETWORK")))
	assert.Equal(t, 107000.0, testutil.ToFloat64(currentPrice.WithLabelValues("BTCUSDT")))
}

// TestMetricsHandler tests that the endpoint exposes registered metrics
func TestMetricsHandler(t *testing.T) {
	RecordRun("success")

	rec := httptest.NewRecorder()
	NewMetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dca_mc_runs_total")
}

// TestHealthChecker tests the status transitions
func TestHealthChecker(t *testing.T) {
	h := NewHealthChecker(time.Hour)

	status, code := h.Status()
	assert.Equal(t, "starting", status.Status)
	assert.Equal(t, http.StatusOK, code)

	h.RecordSuccess(107000)
	status, code = h.Status()
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, status.Runs)

	h.RecordFailure(errors.New("quote unavailable"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "quote unavailable", body.Error)

	h.RecordSuccess(108000)
	status, _ = h.Status()
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, 108000.0, status.LastPrice)
}

// TestHealthChecker_Degraded tests the stale run detection
func TestHealthChecker_Degraded(t *testing.T) {
	h := NewHealthChecker(time.Nanosecond)
	h.RecordSuccess(1)
	time.Sleep(time.Millisecond)

	status, code := h.Status()
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
