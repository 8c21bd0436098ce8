package orchestrator

import (
	"context"
	"time"

	"github.com/ducminhle1904/dca-montecarlo/internal/calibration"
	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
	"github.com/ducminhle1904/dca-montecarlo/pkg/types"
)

// DefaultBaselinePrice is the starting price used when no quote is available
const DefaultBaselinePrice = 107000.0

// Calibrator produces the return statistics a run is simulated from
type Calibrator interface {
	// Calibrate fetches a quote and a history and estimates the statistics
	Calibrate(ctx context.Context) (*Calibration, error)
}

// HorizonRunner simulates several horizons from one calibration
type HorizonRunner interface {
	// RunHorizons returns one result per horizon, in the order given
	RunHorizons(ctx context.Context, cal *Calibration, horizons []int) ([]montecarlo.HorizonResult, error)
}

// Calibration is the outcome of one calibration step
type Calibration struct {
	Stats         calibration.ReturnStatistics `json:"stats"`
	Series        types.PriceSeries            `json:"-"`
	Source        string                       `json:"source"`
	Synthetic     bool                         `json:"synthetic"`
	QuotePrice    float64                      `json:"quote_price"`
	QuoteFallback bool                         `json:"quote_fallback"`
}

// StartPrice is the price every simulated path starts from: the quote (or
// baseline) price, falling back to the last close of the series
func (c *Calibration) StartPrice() float64 {
	if c.QuotePrice > 0 {
		return c.QuotePrice
	}
	return c.Stats.CurrentPrice
}

// RunResult holds everything produced by one simulation run
type RunResult struct {
	ID                string                     `json:"id"`
	Symbol            string                     `json:"symbol"`
	MonthlyInvestment float64                    `json:"monthly_investment"`
	SimulationCount   int                        `json:"simulation_count"`
	Seed              *uint64                    `json:"seed,omitempty"`
	StartedAt         time.Time                  `json:"started_at"`
	FinishedAt        time.Time                  `json:"finished_at"`
	Calibration       *Calibration               `json:"calibration"`
	Horizons          []montecarlo.HorizonResult `json:"horizons"`
}

// Duration returns the wall time of the run
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
