package orchestrator

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/ducminhle1904/dca-montecarlo/internal/calibration"
	simerrors "github.com/ducminhle1904/dca-montecarlo/internal/errors"
	"github.com/ducminhle1904/dca-montecarlo/internal/random"
	"github.com/ducminhle1904/dca-montecarlo/pkg/data"
)

// syntheticStream is the random stream reserved for synthetic history,
// far away from the streams used by trajectory chunks
const syntheticStream = math.MaxUint64

// DefaultCalibrator sequences quote, history and estimation
type DefaultCalibrator struct {
	quotes        data.QuoteProvider
	history       data.HistoryProvider
	historySource string
	historyName   string
	symbol        string
	fallbackPrice float64
	synthetic     func(anchor float64) calibration.SyntheticParams
	factory       random.Factory
	refresh       bool
}

// cacheClearer is implemented by history providers that keep loaded series
type cacheClearer interface {
	ClearCache()
}

// CalibratorOptions configures a DefaultCalibrator
type CalibratorOptions struct {
	Symbol        string
	FallbackPrice float64
	// HistorySource is passed to the history provider (file path or symbol)
	HistorySource string
	// HistoryName labels the source in reports (e.g. "bybit")
	HistoryName string
	// Synthetic builds the fallback generator parameters for an anchor price
	Synthetic func(anchor float64) calibration.SyntheticParams
	// RefreshHistory drops cached history before every calibration so each
	// one sees the latest closes (watch mode)
	RefreshHistory bool
}

// NewCalibrator creates a calibrator. quotes may be nil (baseline price is
// used) and history may be nil (synthetic history is used).
func NewCalibrator(quotes data.QuoteProvider, history data.HistoryProvider, factory random.Factory, opts CalibratorOptions) *DefaultCalibrator {
	if opts.FallbackPrice <= 0 {
		opts.FallbackPrice = DefaultBaselinePrice
	}
	if opts.Synthetic == nil {
		opts.Synthetic = calibration.DefaultSyntheticParams
	}
	if factory == nil {
		factory = random.EntropyFactory()
	}
	return &DefaultCalibrator{
		quotes:        quotes,
		history:       history,
		historySource: opts.HistorySource,
		historyName:   opts.HistoryName,
		symbol:        opts.Symbol,
		fallbackPrice: opts.FallbackPrice,
		synthetic:     opts.Synthetic,
		factory:       factory,
		refresh:       opts.RefreshHistory,
	}
}

// Calibrate runs the three steps in order: quote, then history, then
// estimation. Quote and history failures fall back; estimation failures and
// cancellation are returned.
func (c *DefaultCalibrator) Calibrate(ctx context.Context) (*Calibration, error) {
	cal := &Calibration{}

	price, err := c.quote(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, simerrors.NewCanceledError("orchestrator", "Calibrate", ctx.Err())
		}
		log.Printf("⚠️  Quote unavailable (%v), using baseline price %.2f", err, c.fallbackPrice)
		price = c.fallbackPrice
		cal.QuoteFallback = true
	}
	cal.QuotePrice = price

	if c.history != nil {
		if cc, ok := c.history.(cacheClearer); ok && c.refresh {
			cc.ClearCache()
		}
		series, err := c.history.LoadHistory(ctx, c.historySource)
		switch {
		case err == nil && series.Len() >= 2:
			cal.Series = series
			cal.Source = c.describeHistory(series.Len())
		case ctx.Err() != nil:
			return nil, simerrors.NewCanceledError("orchestrator", "Calibrate", ctx.Err())
		case err != nil:
			log.Printf("⚠️  History unavailable from %s (%v), using synthetic history", c.history.GetName(), err)
		default:
			log.Printf("⚠️  History from %s has only %d points, using synthetic history", c.history.GetName(), series.Len())
		}
	}

	if cal.Series.Len() == 0 {
		params := c.synthetic(price)
		series, err := calibration.Generate(c.factory(syntheticStream), params)
		if err != nil {
			return nil, err
		}
		cal.Series = series
		cal.Source = params.Describe()
		cal.Synthetic = true
	}

	stats, err := calibration.Estimate(cal.Series)
	if err != nil {
		return nil, err
	}
	cal.Stats = stats

	return cal, nil
}

func (c *DefaultCalibrator) quote(ctx context.Context) (float64, error) {
	if c.quotes == nil {
		return 0, fmt.Errorf("no quote provider configured")
	}
	price, err := c.quotes.LatestPrice(ctx, c.symbol)
	if err != nil {
		return 0, err
	}
	if !(price > 0) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("quote for %s is not a positive price: %v", c.symbol, price)
	}
	return price, nil
}

func (c *DefaultCalibrator) describeHistory(points int) string {
	name := c.historyName
	if name == "" {
		name = c.history.GetName()
	}
	return fmt.Sprintf("%s %s monthly closes (%d months)", name, c.symbol, points)
}
