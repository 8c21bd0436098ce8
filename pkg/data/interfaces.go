package data

import (
	"context"

	"github.com/ducminhle1904/dca-montecarlo/pkg/types"
)

// HistoryProvider loads a monthly price history from a source.
// The meaning of source depends on the provider: a file path for CSV,
// a symbol for an exchange.
type HistoryProvider interface {
	// LoadHistory loads an ordered monthly close series
	LoadHistory(ctx context.Context, source string) (types.PriceSeries, error)

	// GetName returns the name of the data provider
	GetName() string
}

// QuoteProvider returns the current price of an asset
type QuoteProvider interface {
	// LatestPrice returns the most recent price for symbol
	LatestPrice(ctx context.Context, symbol string) (float64, error)

	// GetName returns the name of the quote provider
	GetName() string
}

// DataCache interface for caching loaded series
type DataCache interface {
	// Get retrieves data from cache if available
	Get(key string) (types.PriceSeries, bool)

	// Set stores data in cache
	Set(key string, series types.PriceSeries)

	// Clear removes all cached data
	Clear()

	// Size returns the number of cached entries
	Size() int
}

// DataFilter interface for filtering and transforming candles
type DataFilter interface {
	// SortByTimestamp returns a copy sorted by timestamp
	SortByTimestamp(data []types.OHLCV) []types.OHLCV

	// RemoveDuplicates keeps the first candle of every timestamp
	RemoveDuplicates(data []types.OHLCV) []types.OHLCV

	// ValidateTimeSequence ensures data is in chronological order
	ValidateTimeSequence(data []types.OHLCV) error

	// ResampleMonthly keeps the last candle of every calendar month
	ResampleMonthly(data []types.OHLCV) []types.OHLCV
}

// CSVColumnMapping defines the column positions for different CSV formats.
// A negative column index marks a column the format does not carry.
type CSVColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int
	DateFormat   string
}

// Predefined CSV formats
var (
	DefaultCSVFormat = CSVColumnMapping{
		TimestampCol: 0,
		OpenCol:      1,
		HighCol:      2,
		LowCol:       3,
		CloseCol:     4,
		VolumeCol:    5,
		MinColumns:   6,
		DateFormat:   "2006-01-02 15:04:05",
	}

	// CloseOnlyCSVFormat reads "date,close" files
	CloseOnlyCSVFormat = CSVColumnMapping{
		TimestampCol: 0,
		OpenCol:      -1,
		HighCol:      -1,
		LowCol:       -1,
		CloseCol:     1,
		VolumeCol:    -1,
		MinColumns:   2,
		DateFormat:   "2006-01-02",
	}
)

// FileLocator interface for finding data files
type FileLocator interface {
	// FindDataFile attempts to locate a candle file for an exchange and symbol
	FindDataFile(dataRoot, exchange, symbol, interval string) string
}
