package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var startTime = time.Now()

var (
	// Simulation metrics
	trajectoriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dca_mc_trajectories_total",
			Help: "Total number of simulated DCA trajectories",
		},
		[]string{"horizon_months"},
	)

	horizonDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dca_mc_horizon_duration_seconds",
			Help:    "Time spent simulating one horizon",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"horizon_months"},
	)

	medianFinalValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dca_mc_median_final_value",
			Help: "Median final portfolio value of the last run",
		},
		[]string{"symbol", "horizon_months"},
	)

	breakEvenProbability = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dca_mc_break_even_probability",
			Help: "Percentage of trajectories ending in profit in the last run",
		},
		[]string{"symbol", "horizon_months"},
	)

	// Market data metrics
	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dca_mc_current_price",
			Help: "Starting price used by the last calibration",
		},
		[]string{"symbol"},
	)

	calibrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dca_mc_calibrations_total",
			Help: "Total number of calibrations by history source",
		},
		[]string{"source"},
	)

	quoteFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dca_mc_quote_fallbacks_total",
			Help: "Total number of times the baseline price replaced a live quote",
		},
	)

	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dca_mc_runs_total",
			Help: "Total number of simulation runs by status",
		},
		[]string{"status"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dca_mc_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(trajectoriesTotal)
	prometheus.MustRegister(horizonDuration)
	prometheus.MustRegister(medianFinalValue)
	prometheus.MustRegister(breakEvenProbability)
	prometheus.MustRegister(currentPrice)
	prometheus.MustRegister(calibrationsTotal)
	prometheus.MustRegister(quoteFallbacksTotal)
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordHorizon records the outcome of one simulated horizon
func RecordHorizon(symbol string, result montecarlo.HorizonResult, duration time.Duration) {
	horizon := strconv.Itoa(result.HorizonMonths)
	trajectoriesTotal.WithLabelValues(horizon).Add(float64(result.SimulationCount))
	horizonDuration.WithLabelValues(horizon).Observe(duration.Seconds())
	medianFinalValue.WithLabelValues(symbol, horizon).Set(result.Percentiles.Median)
	breakEvenProbability.WithLabelValues(symbol, horizon).Set(result.BreakEvenProbability)
}

// UpdatePrice updates the current price metric
func UpdatePrice(symbol string, price float64) {
	currentPrice.WithLabelValues(symbol).Set(price)
}

// RecordCalibration counts a calibration from source ("synthetic", "csv", "bybit")
func RecordCalibration(source string) {
	calibrationsTotal.WithLabelValues(source).Inc()
}

// RecordQuoteFallback counts a failed quote replaced by the baseline price
func RecordQuoteFallback() {
	quoteFallbacksTotal.Inc()
}

// RecordRun counts a finished run ("success", "failed", "canceled")
func RecordRun(status string) {
	runsTotal.WithLabelValues(status).Inc()
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
