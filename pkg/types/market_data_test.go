package types

import (
	"testing"
	"time"

	simerrors "github.com/ducminhle1904/dca-montecarlo/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewMonthlySeries tests month labelling and accessors
func TestNewMonthlySeries(t *testing.T) {
	series, err := NewMonthlySeries(time.Date(2012, 1, 15, 0, 0, 0, 0, time.UTC), []float64{7, 8, 9})
	require.NoError(t, err)

	assert.Equal(t, 3, series.Len())
	assert.Equal(t, "2012-01", series.At(0).Period.Format("2006-01"))
	assert.Equal(t, "2012-03", series.At(2).Period.Format("2006-01"))
	assert.Equal(t, []float64{7, 8, 9}, series.Prices())

	last, ok := series.Last()
	require.True(t, ok)
	assert.Equal(t, 9.0, last.Price)
}

// TestNewPriceSeries_RejectsNonPositivePrice tests the positive price invariant
func TestNewPriceSeries_RejectsNonPositivePrice(t *testing.T) {
	_, err := NewMonthlySeries(time.Now(), []float64{10, 0, 12})
	require.Error(t, err)
	assert.True(t, simerrors.IsInvalidParameter(err))
}

// TestNewPriceSeries_RejectsUnorderedPeriods tests the ordering invariant
func TestNewPriceSeries_RejectsUnorderedPeriods(t *testing.T) {
	now := time.Now()
	_, err := NewPriceSeries([]PricePoint{
		{Period: now, Price: 1},
		{Period: now, Price: 2},
	})
	require.Error(t, err)
	assert.True(t, simerrors.IsInvalidParameter(err))
}

// TestPriceSeries_Immutable tests that callers cannot mutate the series
func TestPriceSeries_Immutable(t *testing.T) {
	prices := []float64{1, 2, 3}
	series, err := NewMonthlySeries(time.Now(), prices)
	require.NoError(t, err)

	out := series.Prices()
	out[0] = 100
	assert.Equal(t, 1.0, series.At(0).Price)

	points := series.Points()
	points[1].Price = 100
	assert.Equal(t, 2.0, series.At(1).Price)
}

// TestPriceSeries_Tail tests the trailing window
func TestPriceSeries_Tail(t *testing.T) {
	series, err := NewMonthlySeries(time.Now(), []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	assert.Equal(t, []float64{4, 5}, series.Tail(2).Prices())
	assert.Equal(t, 5, series.Tail(60).Len())
	assert.Equal(t, 0, series.Tail(0).Len())

	_, ok := series.Tail(0).Last()
	assert.False(t, ok)
}

// TestPriceSeriesFromCandles tests conversion of candle closes
func TestPriceSeriesFromCandles(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := []OHLCV{
		{Close: 40000, Timestamp: start},
		{Close: 42000, Timestamp: start.AddDate(0, 1, 0)},
	}

	series, err := PriceSeriesFromCandles(candles)
	require.NoError(t, err)
	assert.Equal(t, []float64{40000, 42000}, series.Prices())
}
