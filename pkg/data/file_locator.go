package data

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileLocator implements FileLocator for standard file system operations
type DefaultFileLocator struct{}

// NewDefaultFileLocator creates a new default file locator
func NewDefaultFileLocator() *DefaultFileLocator {
	return &DefaultFileLocator{}
}

// FindDataFile attempts to locate a candle file for an exchange.
// Structure: data/{exchange}/{category}/{symbol}/{interval}/candles.csv
// Returns empty string if no file is found
func (f *DefaultFileLocator) FindDataFile(dataRoot, exchange, symbol, interval string) string {
	symbol = strings.ToUpper(symbol)

	var categories []string
	switch strings.ToLower(exchange) {
	case "bybit":
		categories = []string{"spot", "linear", "inverse"}
	case "binance":
		categories = []string{"spot", "futures"}
	default:
		categories = []string{"spot", "futures", "linear", "inverse"}
	}

	var attemptedPaths []string
	for _, category := range categories {
		path := filepath.Join(dataRoot, exchange, category, symbol, interval, "candles.csv")
		attemptedPaths = append(attemptedPaths, path)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	log.Printf("⚠️ No data file found for %s %s %s in:", exchange, symbol, interval)
	for _, path := range attemptedPaths {
		log.Printf("   - %s", path)
	}

	return ""
}
