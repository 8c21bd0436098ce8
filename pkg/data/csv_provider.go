package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/dca-montecarlo/pkg/types"
)

// fallbackDateFormats are tried when a timestamp does not match the format
var fallbackDateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01",
}

// CSVProvider implements HistoryProvider for CSV files
type CSVProvider struct {
	filter DataFilter
}

// NewCSVProvider creates a CSV provider that detects the format from the header
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{filter: NewDefaultDataFilter()}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadHistory loads candles from a CSV file and resamples them to month-end closes
func (p *CSVProvider) LoadHistory(ctx context.Context, source string) (types.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return types.PriceSeries{}, err
	}

	candles, err := p.LoadCandles(source)
	if err != nil {
		return types.PriceSeries{}, err
	}

	candles = p.filter.RemoveDuplicates(p.filter.SortByTimestamp(candles))
	if err := p.ValidateData(candles); err != nil {
		return types.PriceSeries{}, fmt.Errorf("invalid data in %s: %w", source, err)
	}

	return types.PriceSeriesFromCandles(p.filter.ResampleMonthly(candles))
}

// LoadCandles reads every valid row of filename. Invalid rows are skipped with a warning.
func (p *CSVProvider) LoadCandles(filename string) ([]types.OHLCV, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("history file %s is empty", filename)
		}
		return nil, err
	}

	format := DetectCSVFormat(header)

	var data []types.OHLCV

	lineNum := 1 // Start from 1 since we already read header
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}
		lineNum++

		if len(record) < format.MinColumns {
			log.Printf("⚠️ Insufficient columns at line %d (expected %d, got %d), skipping", lineNum, format.MinColumns, len(record))
			continue
		}

		candle, err := parseRecord(record, format)
		if err != nil {
			log.Printf("⚠️ %v at line %d, skipping", err, lineNum)
			continue
		}

		data = append(data, candle)
	}

	return data, nil
}

// DetectCSVFormat picks the close-only format for two-column files
func DetectCSVFormat(header []string) CSVColumnMapping {
	if len(header) == 2 {
		return CloseOnlyCSVFormat
	}
	return DefaultCSVFormat
}

func parseRecord(record []string, format CSVColumnMapping) (types.OHLCV, error) {
	timestamp, err := parseTimestamp(strings.TrimSpace(record[format.TimestampCol]), format.DateFormat)
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid timestamp '%s'", record[format.TimestampCol])
	}

	closePrice, err := parseColumn(record, format.CloseCol, 0)
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid close price: %v", err)
	}
	open, err := parseColumn(record, format.OpenCol, closePrice)
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid open price: %v", err)
	}
	high, err := parseColumn(record, format.HighCol, closePrice)
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid high price: %v", err)
	}
	low, err := parseColumn(record, format.LowCol, closePrice)
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid low price: %v", err)
	}
	volume, err := parseColumn(record, format.VolumeCol, 0)
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid volume: %v", err)
	}

	if open <= 0 || high <= 0 || low <= 0 || closePrice <= 0 {
		return types.OHLCV{}, fmt.Errorf("invalid price data (negative or zero)")
	}
	if high < open || high < closePrice || high < low {
		return types.OHLCV{}, fmt.Errorf("high price is lower than other prices")
	}
	if low > open || low > closePrice {
		return types.OHLCV{}, fmt.Errorf("low price is higher than other prices")
	}

	return types.OHLCV{
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, nil
}

// parseColumn parses column col, returning def when the format lacks it
func parseColumn(record []string, col int, def float64) (float64, error) {
	if col < 0 || col >= len(record) {
		return def, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
}

func parseTimestamp(value, layout string) (time.Time, error) {
	if ts, err := time.Parse(layout, value); err == nil {
		return ts, nil
	}
	for _, fallback := range fallbackDateFormats {
		if ts, err := time.Parse(fallback, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// ValidateData validates the integrity of loaded data
func (p *CSVProvider) ValidateData(data []types.OHLCV) error {
	if len(data) == 0 {
		return fmt.Errorf("no data provided")
	}

	for i, candle := range data {
		if candle.Close <= 0 {
			return fmt.Errorf("invalid price data at index %d: close must be positive", i)
		}

		if candle.High < candle.Low {
			return fmt.Errorf("invalid price data at index %d: high (%.4f) cannot be less than low (%.4f)",
				i, candle.High, candle.Low)
		}
	}

	return p.filter.ValidateTimeSequence(data)
}
