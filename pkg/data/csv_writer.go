package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ducminhle1904/dca-montecarlo/pkg/types"
)

// CandlePath returns where FindDataFile looks for a candle file:
// {dataRoot}/{exchange}/{category}/{SYMBOL}/{interval}/candles.csv
func CandlePath(dataRoot, exchange, category, symbol, interval string) string {
	return filepath.Join(dataRoot, strings.ToLower(exchange), strings.ToLower(category),
		strings.ToUpper(symbol), interval, "candles.csv")
}

// WriteCandlesCSV writes candles in DefaultCSVFormat, creating parent directories
func WriteCandlesCSV(path string, candles []types.OHLCV) error {
	if len(candles) == 0 {
		return fmt.Errorf("no candles to write")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, c := range candles {
		record := []string{
			c.Timestamp.UTC().Format(DefaultCSVFormat.DateFormat),
			format(c.Open),
			format(c.High),
			format(c.Low),
			format(c.Close),
			format(c.Volume),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
