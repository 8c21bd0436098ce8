package data

import (
	"fmt"
	"strings"

	"github.com/ducminhle1904/dca-montecarlo/internal/exchange/bybit"
)

// History source names
const (
	SourceSynthetic = "synthetic"
	SourceCSV       = "csv"
	SourceBybit     = "bybit"
)

// ProviderOptions selects and configures a history provider
type ProviderOptions struct {
	Source   string // synthetic, csv or bybit
	DataRoot string // searched for candles when no file is given
	Months   int    // Bybit history length
}

// NewHistoryProvider builds the history provider for opts.Source.
// The synthetic source has no provider: it returns nil, nil.
func NewHistoryProvider(opts ProviderOptions, client *bybit.Client) (HistoryProvider, error) {
	switch strings.ToLower(opts.Source) {
	case "", SourceSynthetic:
		return nil, nil
	case SourceCSV:
		return NewCachedProvider(NewCSVProvider()), nil
	case SourceBybit:
		if client == nil {
			return nil, fmt.Errorf("bybit history requires a client")
		}
		return NewCachedProvider(NewBybitProvider(client, opts.Months)), nil
	default:
		return nil, fmt.Errorf("unknown history source %q (expected %s, %s or %s)",
			opts.Source, SourceSynthetic, SourceCSV, SourceBybit)
	}
}

// ResolveHistorySource returns what LoadHistory should be called with:
// the data file (or a located candle file) for CSV, the symbol otherwise.
func ResolveHistorySource(opts ProviderOptions, dataFile, symbol string, locator FileLocator) string {
	if strings.ToLower(opts.Source) != SourceCSV {
		return symbol
	}
	if dataFile != "" {
		return dataFile
	}
	if locator == nil {
		locator = NewDefaultFileLocator()
	}
	if path := locator.FindDataFile(opts.DataRoot, "bybit", symbol, "M"); path != "" {
		return path
	}
	return locator.FindDataFile(opts.DataRoot, "bybit", symbol, "D")
}
