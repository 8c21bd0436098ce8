package data

import (
	"fmt"
	"sort"
	"time"

	"github.com/ducminhle1904/dca-montecarlo/pkg/types"
)

// DefaultDataFilter implements DataFilter for common filtering operations
type DefaultDataFilter struct{}

// NewDefaultDataFilter creates a new default data filter
func NewDefaultDataFilter() *DefaultDataFilter {
	return &DefaultDataFilter{}
}

// ValidateTimeSequence ensures data is in chronological order
func (f *DefaultDataFilter) ValidateTimeSequence(data []types.OHLCV) error {
	for i := 1; i < len(data); i++ {
		if data[i].Timestamp.Before(data[i-1].Timestamp) {
			return fmt.Errorf("data not in chronological order at index %d: %s comes after %s",
				i, data[i].Timestamp.Format(time.RFC3339), data[i-1].Timestamp.Format(time.RFC3339))
		}

		if data[i].Timestamp.Equal(data[i-1].Timestamp) {
			return fmt.Errorf("duplicate timestamp at index %d: %s",
				i, data[i].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// SortByTimestamp returns a copy of data sorted by timestamp (ascending order)
func (f *DefaultDataFilter) SortByTimestamp(data []types.OHLCV) []types.OHLCV {
	sorted := make([]types.OHLCV, len(data))
	copy(sorted, data)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// RemoveDuplicates removes duplicate timestamps, keeping the first occurrence
func (f *DefaultDataFilter) RemoveDuplicates(data []types.OHLCV) []types.OHLCV {
	if len(data) <= 1 {
		return data
	}

	var filtered []types.OHLCV
	seen := make(map[int64]bool)

	for _, candle := range data {
		timestamp := candle.Timestamp.UnixMilli()
		if !seen[timestamp] {
			seen[timestamp] = true
			filtered = append(filtered, candle)
		}
	}
	return filtered
}

// ResampleMonthly keeps the last candle of every calendar month (UTC) and
// stamps it with the first day of that month. data must be sorted.
func (f *DefaultDataFilter) ResampleMonthly(data []types.OHLCV) []types.OHLCV {
	var monthly []types.OHLCV

	for _, candle := range data {
		ts := candle.Timestamp.UTC()
		month := time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)

		candle.Timestamp = month
		if n := len(monthly); n > 0 && monthly[n-1].Timestamp.Equal(month) {
			monthly[n-1] = candle
			continue
		}
		monthly = append(monthly, candle)
	}
	return monthly
}
