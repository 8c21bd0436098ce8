package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// KlineInterval represents the time interval for kline data
type KlineInterval string

const (
	Interval1d KlineInterval = "D"
	Interval1w KlineInterval = "W"
	Interval1M KlineInterval = "M"
)

// MaxKlineLimit is the largest page Bybit returns for one kline request
const MaxKlineLimit = 1000

// Kline represents a single kline/candlestick data point
type Kline struct {
	StartTime  time.Time
	OpenPrice  float64
	HighPrice  float64
	LowPrice   float64
	ClosePrice float64
	Volume     float64
	Turnover   float64
}

// KlineParams holds parameters for fetching kline data
type KlineParams struct {
	Category string        // "spot", "linear", "inverse"
	Symbol   string        // Trading pair symbol (e.g., "BTCUSDT")
	Interval KlineInterval // Time interval
	Start    *time.Time    // Start time (optional)
	End      *time.Time    // End time (optional)
	Limit    int           // Number of records to return (max 1000, default 200)
}

// GetKlines fetches kline data from Bybit, oldest first
func (c *Client) GetKlines(ctx context.Context, params KlineParams) ([]Kline, error) {
	if params.Category == "" {
		params.Category = c.category
	}
	if params.Limit == 0 {
		params.Limit = 200
	}
	if params.Limit > MaxKlineLimit {
		params.Limit = MaxKlineLimit
	}

	reqParams := map[string]interface{}{
		"category": params.Category,
		"symbol":   params.Symbol,
		"interval": string(params.Interval),
		"limit":    params.Limit,
	}
	if params.Start != nil {
		reqParams["start"] = params.Start.UnixMilli()
	}
	if params.End != nil {
		reqParams["end"] = params.End.UnixMilli()
	}

	var klines []Kline
	err := c.Retry(ctx, func() error {
		result, err := c.httpClient.NewUtaBybitServiceWithParams(reqParams).GetMarketKline(ctx)
		if err != nil {
			return err
		}
		resultBytes, err := decodeResult(result)
		if err != nil {
			return err
		}
		klines, err = parseKlineList(resultBytes)
		return err
	})
	if err != nil {
		return nil, WrapAPIError("GetKlines", fmt.Errorf("failed to get klines for %s: %w", params.Symbol, err))
	}

	return klines, nil
}

// GetMonthlyCloses returns up to months monthly candles for symbol, oldest first
func (c *Client) GetMonthlyCloses(ctx context.Context, symbol string, months int) ([]Kline, error) {
	if months <= 0 || months > MaxKlineLimit {
		months = MaxKlineLimit
	}
	return c.GetKlines(ctx, KlineParams{
		Symbol:   symbol,
		Interval: Interval1M,
		Limit:    months,
	})
}

// GetLatestPrice gets the latest traded price for a symbol
func (c *Client) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	params := map[string]interface{}{
		"category": c.category,
		"symbol":   symbol,
	}

	var price float64
	err := c.Retry(ctx, func() error {
		result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
		if err != nil {
			return err
		}
		resultBytes, err := decodeResult(result)
		if err != nil {
			return err
		}
		price, err = parseLastPrice(resultBytes, symbol)
		return err
	})
	if err != nil {
		return 0, WrapAPIError("GetLatestPrice", fmt.Errorf("failed to get latest price for %s: %w", symbol, err))
	}

	return price, nil
}

// parseKlineList decodes a kline result and sorts it by start time.
// Bybit kline format: [startTime, openPrice, highPrice, lowPrice, closePrice, volume, turnover]
func parseKlineList(data []byte) ([]Kline, error) {
	var result klineResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kline result: %w", err)
	}

	klines := make([]Kline, 0, len(result.List))
	for _, item := range result.List {
		if len(item) < 7 {
			continue // Skip incomplete data
		}
		kline := Kline{
			StartTime:  parseTimestamp(item[0]),
			OpenPrice:  parseFloat64(item[1]),
			HighPrice:  parseFloat64(item[2]),
			LowPrice:   parseFloat64(item[3]),
			ClosePrice: parseFloat64(item[4]),
			Volume:     parseFloat64(item[5]),
			Turnover:   parseFloat64(item[6]),
		}
		if kline.ClosePrice <= 0 {
			continue
		}
		klines = append(klines, kline)
	}

	// Bybit returns newest first
	sort.Slice(klines, func(i, j int) bool {
		return klines[i].StartTime.Before(klines[j].StartTime)
	})

	return klines, nil
}

// parseLastPrice extracts the last price of symbol from a ticker result
func parseLastPrice(data []byte, symbol string) (float64, error) {
	var result tickerResult
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ticker result: %w", err)
	}

	for _, t := range result.List {
		if symbol != "" && t.Symbol != symbol {
			continue
		}
		price := parseFloat64(t.LastPrice)
		if price <= 0 {
			return 0, fmt.Errorf("invalid last price %q for %s", t.LastPrice, t.Symbol)
		}
		return price, nil
	}

	return 0, fmt.Errorf("no ticker data found for %s", symbol)
}
