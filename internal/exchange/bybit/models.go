package bybit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// klineResult is the "result" object of /v5/market/kline
type klineResult struct {
	Symbol   string     `json:"symbol"`
	Category string     `json:"category"`
	List     [][]string `json:"list"`
}

// tickerResult is the "result" object of /v5/market/tickers
type tickerResult struct {
	Category string `json:"category"`
	List     []struct {
		Symbol       string `json:"symbol"`
		LastPrice    string `json:"lastPrice"`
		Bid1Price    string `json:"bid1Price"`
		Ask1Price    string `json:"ask1Price"`
		HighPrice24h string `json:"highPrice24h"`
		LowPrice24h  string `json:"lowPrice24h"`
	} `json:"list"`
}

// decodeResult unwraps a ServerResponse and returns its result as raw JSON
func decodeResult(response interface{}) ([]byte, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok || serverResp == nil {
		return nil, fmt.Errorf("invalid response type %T", response)
	}

	if err := ParseAPIError(serverResp.RetCode, serverResp.RetMsg); err != nil {
		return nil, err
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return resultBytes, nil
}

// Helper functions for parsing string numbers
func parseFloat64(s string) float64 {
	if s == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseInt64(s string) int64 {
	if s == "" {
		return 0
	}
	i, _ := strconv.ParseInt(s, 10, 64)
	return i
}

// parseTimestamp converts milliseconds timestamp to time.Time in UTC
func parseTimestamp(ts string) time.Time {
	if ts == "" {
		return time.Time{}
	}
	return time.UnixMilli(parseInt64(ts)).UTC()
}
