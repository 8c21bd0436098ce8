package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	simerrors "github.com/ducminhle1904/dca-montecarlo/internal/errors"
	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
	"github.com/ducminhle1904/dca-montecarlo/internal/random"
	"github.com/ducminhle1904/dca-montecarlo/pkg/data"
	"github.com/ducminhle1904/dca-montecarlo/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingQuote struct{}

func (failingQuote) GetName() string { return "Failing" }

func (failingQuote) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	return 0, errors.New("connection refused")
}

type stubHistory struct {
	prices []float64
	err    error
	source string
}

func (h *stubHistory) GetName() string { return "Stub" }

func (h *stubHistory) LoadHistory(ctx context.Context, source string) (types.PriceSeries, error) {
	h.source = source
	if h.err != nil {
		return types.PriceSeries{}, h.err
	}
	return types.NewMonthlySeries(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), h.prices)
}

func options() CalibratorOptions {
	return CalibratorOptions{Symbol: "BTCUSDT", HistorySource: "BTCUSDT", HistoryName: "Bybit"}
}

// TestCalibrator_SyntheticAnchoredAtQuote tests the synthetic fallback without history
func TestCalibrator_SyntheticAnchoredAtQuote(t *testing.T) {
	c := NewCalibrator(data.StaticQuote{Price: 95000}, nil, random.SeededFactory(1), options())

	cal, err := c.Calibrate(context.Background())
	require.NoError(t, err)

	assert.True(t, cal.Synthetic)
	assert.False(t, cal.QuoteFallback)
	assert.Equal(t, 95000.0, cal.QuotePrice)
	assert.Equal(t, 95000.0, cal.StartPrice())
	assert.Equal(t, 156, cal.Stats.SampleCount)
	assert.Contains(t, cal.Source, "Synthetic")
}

// TestCalibrator_QuoteFallback tests the baseline price on quote failure
func TestCalibrator_QuoteFallback(t *testing.T) {
	c := NewCalibrator(failingQuote{}, nil, random.SeededFactory(1), options())

	cal, err := c.Calibrate(context.Background())
	require.NoError(t, err)

	assert.True(t, cal.QuoteFallback)
	assert.Equal(t, DefaultBaselinePrice, cal.QuotePrice)
	assert.Equal(t, DefaultBaselinePrice, cal.StartPrice())

	c = NewCalibrator(nil, nil, random.SeededFactory(1), CalibratorOptions{FallbackPrice: 50000})
	cal, err = c.Calibrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50000.0, cal.StartPrice())
}

// TestCalibrator_History tests calibration from a provider
func TestCalibrator_History(t *testing.T) {
	history := &stubHistory{prices: []float64{40000, 44000, 48400}}
	c := NewCalibrator(data.StaticQuote{Price: 95000}, history, random.SeededFactory(1), options())

	cal, err := c.Calibrate(context.Background())
	require.NoError(t, err)

	assert.False(t, cal.Synthetic)
	assert.Equal(t, "BTCUSDT", history.source)
	assert.Equal(t, "Bybit BTCUSDT monthly closes (3 months)", cal.Source)
	assert.Equal(t, 95000.0, cal.QuotePrice)
	assert.Equal(t, 95000.0, cal.StartPrice())
	assert.Equal(t, 48400.0, cal.Stats.CurrentPrice)
	assert.InDelta(t, 0.0, cal.Stats.StdPeriodReturn, 1e-12)
}

// TestCalibrator_HistoryQuoteFallback tests that history runs start from the baseline when the quote fails
func TestCalibrator_HistoryQuoteFallback(t *testing.T) {
	history := &stubHistory{prices: []float64{40000, 44000, 48400}}
	c := NewCalibrator(failingQuote{}, history, random.SeededFactory(1), options())

	cal, err := c.Calibrate(context.Background())
	require.NoError(t, err)

	assert.False(t, cal.Synthetic)
	assert.True(t, cal.QuoteFallback)
	assert.Equal(t, DefaultBaselinePrice, cal.StartPrice())
}

// TestStartPrice_NoQuote tests the last close when a calibration carries no quote
func TestStartPrice_NoQuote(t *testing.T) {
	cal := &Calibration{}
	cal.Stats.CurrentPrice = 48400
	assert.Equal(t, 48400.0, cal.StartPrice())
}

// TestCalibrator_RefreshHistory tests that a cached provider is reloaded on every calibration
func TestCalibrator_RefreshHistory(t *testing.T) {
	history := &stubHistory{prices: []float64{40000, 44000, 48400}}

	opts := options()
	opts.RefreshHistory = true
	c := NewCalibrator(data.StaticQuote{Price: 95000}, data.NewCachedProvider(history), random.SeededFactory(1), opts)

	first, err := c.Calibrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, first.Series.Len())
	assert.Equal(t, 48400.0, first.Stats.CurrentPrice)

	history.prices = []float64{40000, 44000, 48400, 53240}
	second, err := c.Calibrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, second.Series.Len())
	assert.Equal(t, 53240.0, second.Stats.CurrentPrice)
	assert.Equal(t, "Bybit BTCUSDT monthly closes (4 months)", second.Source)
}

// TestCalibrator_CachedHistory tests that a one-shot calibrator keeps the cached series
func TestCalibrator_CachedHistory(t *testing.T) {
	history := &stubHistory{prices: []float64{40000, 44000, 48400}}
	c := NewCalibrator(data.StaticQuote{Price: 95000}, data.NewCachedProvider(history), random.SeededFactory(1), options())

	_, err := c.Calibrate(context.Background())
	require.NoError(t, err)

	history.prices = []float64{40000, 44000, 48400, 53240}
	again, err := c.Calibrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, again.Series.Len())
}

// TestCalibrator_HistoryFallback tests synthetic history when the provider fails or is too short
func TestCalibrator_HistoryFallback(t *testing.T) {
	for _, history := range []*stubHistory{
		{err: errors.New("file not found")},
		{prices: []float64{40000}},
	} {
		c := NewCalibrator(data.StaticQuote{Price: 95000}, history, random.SeededFactory(1), options())
		cal, err := c.Calibrate(context.Background())
		require.NoError(t, err)
		assert.True(t, cal.Synthetic)
		assert.Equal(t, 95000.0, cal.StartPrice())
	}
}

// TestCalibrator_Deterministic tests that a seeded factory reproduces the calibration
func TestCalibrator_Deterministic(t *testing.T) {
	a, err := NewCalibrator(data.StaticQuote{Price: 95000}, nil, random.SeededFactory(3), options()).Calibrate(context.Background())
	require.NoError(t, err)
	b, err := NewCalibrator(data.StaticQuote{Price: 95000}, nil, random.SeededFactory(3), options()).Calibrate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Stats, b.Stats)
	assert.Equal(t, a.Series.Prices(), b.Series.Prices())
}

// TestCalibrator_Canceled tests that cancellation is not swallowed by fallbacks
func TestCalibrator_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCalibrator(data.StaticQuote{Price: 95000}, nil, random.SeededFactory(1), options())
	_, err := c.Calibrate(ctx)
	assert.True(t, simerrors.IsCanceled(err))
}

func testCalibration(t *testing.T) *Calibration {
	t.Helper()
	cal, err := NewCalibrator(data.StaticQuote{Price: 107000}, nil, random.SeededFactory(1), options()).
		Calibrate(context.Background())
	require.NoError(t, err)
	return cal
}

// TestRunner_RunHorizons tests ordering, callbacks and reproducibility
func TestRunner_RunHorizons(t *testing.T) {
	cal := testCalibration(t)

	var calls int32
	opts := RunnerOptions{
		MonthlyInvestment: 350,
		SimulationCount:   300,
		Workers:           2,
		OnHorizon: func(result montecarlo.HorizonResult, d time.Duration) {
			atomic.AddInt32(&calls, 1)
		},
	}

	results, err := NewRunner(random.SeededFactory(8), opts).RunHorizons(context.Background(), cal, []int{12, 36, 60})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	for i, months := range []int{12, 36, 60} {
		assert.Equal(t, months, results[i].HorizonMonths)
		assert.Equal(t, 300, results[i].SimulationCount)
		assert.Equal(t, 350*float64(months), results[i].TotalInvested)
	}

	again, err := NewRunner(random.SeededFactory(8), opts).RunHorizons(context.Background(), cal, []int{12, 36, 60})
	require.NoError(t, err)
	assert.Equal(t, results, again)
}

// TestRunner_RunHorizons_Error tests that an invalid horizon fails the run
func TestRunner_RunHorizons_Error(t *testing.T) {
	cal := testCalibration(t)

	_, err := NewRunner(random.SeededFactory(8), RunnerOptions{MonthlyInvestment: 350, SimulationCount: 100}).
		RunHorizons(context.Background(), cal, []int{12, 0})
	assert.True(t, simerrors.IsInvalidHorizon(err))
}

// TestOrchestrator_Simulate_MissingCalibration tests simulating before calibrating
func TestOrchestrator_Simulate_MissingCalibration(t *testing.T) {
	o := NewOrchestrator(NewCalibrator(nil, nil, random.SeededFactory(1), options()),
		NewRunner(random.SeededFactory(1), RunnerOptions{MonthlyInvestment: 350, SimulationCount: 100}))

	_, err := o.Simulate(context.Background(), RunRequest{Horizons: []int{12}})
	assert.True(t, simerrors.IsMissingCalibration(err))
	assert.Nil(t, o.LastCalibration())
}

// TestOrchestrator_Run tests a complete run and calibration replacement
func TestOrchestrator_Run(t *testing.T) {
	o := NewOrchestrator(
		NewCalibrator(data.StaticQuote{Price: 107000}, nil, random.SeededFactory(1), options()),
		NewRunner(random.SeededFactory(1), RunnerOptions{MonthlyInvestment: 350, SimulationCount: 200}),
	)

	req := RunRequest{Symbol: "BTCUSDT", MonthlyInvestment: 350, SimulationCount: 200, Horizons: []int{36, 60}}
	result, err := o.Run(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Len(t, result.Horizons, 2)
	assert.Same(t, o.LastCalibration(), result.Calibration)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))

	second, err := o.Run(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, result.ID, second.ID)
	assert.Same(t, o.LastCalibration(), second.Calibration)
	assert.NotSame(t, result.Calibration, second.Calibration)
}
