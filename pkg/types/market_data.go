package types

import (
	"fmt"
	"time"

	simerrors "github.com/ducminhle1904/dca-montecarlo/internal/errors"
)

// OHLCV is a raw candle as loaded from CSV files or the exchange
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// PricePoint is a single labelled price of a PriceSeries
type PricePoint struct {
	Period time.Time `json:"period"`
	Price  float64   `json:"price"`
}

// PriceSeries is an immutable, strictly ordered sequence of positive prices.
// Build it with NewPriceSeries or NewMonthlySeries.
type PriceSeries struct {
	points []PricePoint
}

// NewPriceSeries validates and copies points into a PriceSeries
func NewPriceSeries(points []PricePoint) (PriceSeries, error) {
	copied := make([]PricePoint, len(points))
	for i, p := range points {
		if !(p.Price > 0) {
			return PriceSeries{}, simerrors.NewInvalidParameterError("types", "NewPriceSeries",
				fmt.Sprintf("price at index %d must be positive, got %v", i, p.Price))
		}
		if i > 0 && !p.Period.After(points[i-1].Period) {
			return PriceSeries{}, simerrors.NewInvalidParameterError("types", "NewPriceSeries",
				fmt.Sprintf("period at index %d (%s) is not after %s", i,
					p.Period.Format("2006-01"), points[i-1].Period.Format("2006-01")))
		}
		copied[i] = p
	}
	return PriceSeries{points: copied}, nil
}

// NewMonthlySeries labels prices with consecutive months starting at start
func NewMonthlySeries(start time.Time, prices []float64) (PriceSeries, error) {
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	points := make([]PricePoint, len(prices))
	for i, price := range prices {
		points[i] = PricePoint{Period: first.AddDate(0, i, 0), Price: price}
	}
	return NewPriceSeries(points)
}

// PriceSeriesFromCandles builds a series from candle closes
func PriceSeriesFromCandles(candles []OHLCV) (PriceSeries, error) {
	points := make([]PricePoint, len(candles))
	for i, c := range candles {
		points[i] = PricePoint{Period: c.Timestamp, Price: c.Close}
	}
	return NewPriceSeries(points)
}

// Len returns the number of points
func (s PriceSeries) Len() int {
	return len(s.points)
}

// At returns the i-th point
func (s PriceSeries) At(i int) PricePoint {
	return s.points[i]
}

// Last returns the most recent point; ok is false on an empty series
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s.points) == 0 {
		return PricePoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// Prices returns a copy of the prices in order
func (s PriceSeries) Prices() []float64 {
	prices := make([]float64, len(s.points))
	for i, p := range s.points {
		prices[i] = p.Price
	}
	return prices
}

// Points returns a copy of the points in order
func (s PriceSeries) Points() []PricePoint {
	out := make([]PricePoint, len(s.points))
	copy(out, s.points)
	return out
}

// Tail returns the last n points as a new series
func (s PriceSeries) Tail(n int) PriceSeries {
	if n >= len(s.points) {
		return s
	}
	if n <= 0 {
		return PriceSeries{}
	}
	out := make([]PricePoint, n)
	copy(out, s.points[len(s.points)-n:])
	return PriceSeries{points: out}
}
