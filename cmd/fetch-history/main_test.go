package main

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/ducminhle1904/dca-montecarlo/internal/exchange/bybit"
	"github.com/ducminhle1904/dca-montecarlo/internal/safety"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pagedFetcher struct {
	klines []bybit.Kline
	calls  int
}

// GetKlines serves klines inside [Start, End], newest MaxKlineLimit of them
func (f *pagedFetcher) GetKlines(ctx context.Context, params bybit.KlineParams) ([]bybit.Kline, error) {
	f.calls++
	var in []bybit.Kline
	for _, k := range f.klines {
		if !k.StartTime.Before(*params.Start) && !k.StartTime.After(*params.End) {
			in = append(in, k)
		}
	}
	if len(in) > params.Limit {
		in = in[len(in)-params.Limit:]
	}
	return in, nil
}

func dailyKlines(from time.Time, days int) []bybit.Kline {
	klines := make([]bybit.Kline, days)
	for i := range klines {
		klines[i] = bybit.Kline{StartTime: from.AddDate(0, 0, i), ClosePrice: float64(1000 + i)}
	}
	return klines
}

// TestFetchKlines_Pages tests backward pagination over more than one page
func TestFetchKlines_Pages(t *testing.T) {
	cli.Out = io.Discard
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &pagedFetcher{klines: dailyKlines(end.AddDate(-5, 0, 0), 5*366)}

	limiter := safety.NewRateLimiter("test", 10, 100)
	klines, err := fetchKlines(context.Background(), fetcher, limiter, "BTCUSDT", bybit.Interval1d, 48, end)
	require.NoError(t, err)

	start := end.AddDate(0, -48, 0)
	require.NotEmpty(t, klines)
	assert.False(t, klines[0].StartTime.Before(start))
	assert.False(t, klines[len(klines)-1].StartTime.After(end))
	assert.Equal(t, 2, fetcher.calls)
	for i := 1; i < len(klines); i++ {
		assert.True(t, klines[i].StartTime.After(klines[i-1].StartTime))
	}
}

// TestSplitSymbols tests symbol list parsing
func TestSplitSymbols(t *testing.T) {
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, splitSymbols(" btcusdt, ,ETHUSDT"))
	assert.Empty(t, splitSymbols(" , "))
}
