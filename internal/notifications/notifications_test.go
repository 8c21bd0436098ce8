package notifications

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ducminhle1904/dca-montecarlo/internal/calibration"
	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTelegramNotifier_SendAlert tests the sendMessage request
func TestTelegramNotifier_SendAlert(t *testing.T) {
	var path, chatID, text string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		path = r.URL.Path
		chatID = r.PostForm.Get("chat_id")
		text = r.PostForm.Get("text")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewTelegramNotifier("TOKEN", "42").WithBaseURL(server.URL + "/")
	require.NoError(t, notifier.SendAlert(LevelSuccess, "median €12,345.00"))

	assert.Equal(t, "/botTOKEN/sendMessage", path)
	assert.Equal(t, "42", chatID)
	assert.Equal(t, "✅ *DCA Monte Carlo*\n\nmedian €12,345.00", text)
}

// TestTelegramNotifier_SendAlert_Error tests non-200 responses
func TestTelegramNotifier_SendAlert_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	err := NewTelegramNotifier("bad", "42").WithBaseURL(server.URL).SendAlert(LevelError, "boom")
	assert.EqualError(t, err, "telegram API returned status 401")

	assert.NoError(t, NoopNotifier{}.SendAlert(LevelError, "boom"))
}

// TestRunSummary tests the alert text of a finished run
func TestRunSummary(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	run := &orchestrator.RunResult{
		ID:                "run-1",
		Symbol:            "BTCUSDT",
		MonthlyInvestment: 350,
		SimulationCount:   10000,
		StartedAt:         start,
		FinishedAt:        start.Add(time.Second),
		Calibration: &orchestrator.Calibration{
			Stats:  calibration.ReturnStatistics{CurrentPrice: 107000},
			Source: "Synthetic (CAGR 99.05%, vol 149.87%)",
		},
		Horizons: []montecarlo.HorizonResult{{
			HorizonMonths:        36,
			TotalInvested:        12600,
			Percentiles:          montecarlo.Percentiles{P5: 5000, Median: 25000, P95: 90000},
			MedianROI:            98.41,
			BreakEvenProbability: 71.25,
		}},
	}

	summary := RunSummary(run, "€")
	assert.Contains(t, summary, "BTCUSDT: €350.00 per month, 10000 paths")
	assert.Contains(t, summary, "Start price €107,000.00 (Synthetic (CAGR 99.05%, vol 149.87%))")
	assert.Contains(t, summary, "3 years: investing €350.00/month (€12,600.00 total)")
	assert.NotContains(t, summary, "\n\n\n")
}
