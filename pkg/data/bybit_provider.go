package data

import (
	"context"
	"fmt"
	"math"

	"github.com/ducminhle1904/dca-montecarlo/internal/exchange/bybit"
	"github.com/ducminhle1904/dca-montecarlo/pkg/types"
)

// MonthlyCloseFetcher is the part of the Bybit client used for history
type MonthlyCloseFetcher interface {
	GetMonthlyCloses(ctx context.Context, symbol string, months int) ([]bybit.Kline, error)
}

// PriceFetcher is the part of the Bybit client used for quotes
type PriceFetcher interface {
	GetLatestPrice(ctx context.Context, symbol string) (float64, error)
}

// BybitProvider implements HistoryProvider with monthly Bybit klines
type BybitProvider struct {
	client MonthlyCloseFetcher
	months int
}

// NewBybitProvider creates a provider fetching up to months monthly candles
func NewBybitProvider(client MonthlyCloseFetcher, months int) *BybitProvider {
	return &BybitProvider{client: client, months: months}
}

// GetName returns the name of the data provider
func (p *BybitProvider) GetName() string {
	return "Bybit Provider"
}

// LoadHistory fetches monthly closes for the symbol given as source
func (p *BybitProvider) LoadHistory(ctx context.Context, source string) (types.PriceSeries, error) {
	klines, err := p.client.GetMonthlyCloses(ctx, source, p.months)
	if err != nil {
		return types.PriceSeries{}, err
	}

	series, err := types.PriceSeriesFromCandles(CandlesFromKlines(klines))
	if err != nil {
		return types.PriceSeries{}, fmt.Errorf("invalid Bybit history for %s: %w", source, err)
	}
	return series, nil
}

// CandlesFromKlines converts Bybit klines to candles, keeping their order
func CandlesFromKlines(klines []bybit.Kline) []types.OHLCV {
	candles := make([]types.OHLCV, len(klines))
	for i, k := range klines {
		candles[i] = types.OHLCV{
			Timestamp: k.StartTime,
			Open:      k.OpenPrice,
			High:      k.HighPrice,
			Low:       k.LowPrice,
			Close:     k.ClosePrice,
			Volume:    k.Volume,
		}
	}
	return candles
}

// BybitQuoteProvider implements QuoteProvider with the Bybit ticker
type BybitQuoteProvider struct {
	client PriceFetcher
}

// NewBybitQuoteProvider creates a quote provider backed by client
func NewBybitQuoteProvider(client PriceFetcher) *BybitQuoteProvider {
	return &BybitQuoteProvider{client: client}
}

// GetName returns the name of the quote provider
func (p *BybitQuoteProvider) GetName() string {
	return "Bybit Ticker"
}

// LatestPrice returns the last traded price of symbol
func (p *BybitQuoteProvider) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	return p.client.GetLatestPrice(ctx, symbol)
}

// StaticQuote is a QuoteProvider returning a fixed price
type StaticQuote struct {
	Price float64
}

// GetName returns the name of the quote provider
func (q StaticQuote) GetName() string {
	return "Static Quote"
}

// LatestPrice returns the configured price, or an error when it is not a positive number
func (q StaticQuote) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !(q.Price > 0) || math.IsInf(q.Price, 0) {
		return 0, fmt.Errorf("static quote for %s is not a positive price: %v", symbol, q.Price)
	}
	return q.Price, nil
}
