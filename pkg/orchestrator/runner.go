package orchestrator

import (
	"context"
	"time"

	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
	"github.com/ducminhle1904/dca-montecarlo/internal/random"
	"golang.org/x/sync/errgroup"
)

// RunnerOptions configures the aggregators built for every horizon
type RunnerOptions struct {
	MonthlyInvestment float64
	SimulationCount   int
	Workers           int
	FloorPrice        float64
	HistogramBuckets  int
	CurrencySymbol    string
	Progress          *montecarlo.ProgressTracker
	// OnHorizon is called after each horizon finishes, possibly concurrently
	OnHorizon func(result montecarlo.HorizonResult, duration time.Duration)
}

// DefaultRunner runs every horizon concurrently
type DefaultRunner struct {
	factory random.Factory
	opts    RunnerOptions
}

// NewRunner creates a runner drawing its random streams from factory
func NewRunner(factory random.Factory, opts RunnerOptions) *DefaultRunner {
	if factory == nil {
		factory = random.EntropyFactory()
	}
	return &DefaultRunner{factory: factory, opts: opts}
}

// RunHorizons simulates all horizons from cal. The first failure cancels the
// remaining horizons and is returned.
func (r *DefaultRunner) RunHorizons(ctx context.Context, cal *Calibration, horizons []int) ([]montecarlo.HorizonResult, error) {
	var (
		dist       = cal.Stats.Distribution()
		startPrice = cal.StartPrice()
		results    = make([]montecarlo.HorizonResult, len(horizons))
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, months := range horizons {
		g.Go(func() error {
			started := time.Now()
			result, err := r.aggregator(months).Aggregate(gctx, months, r.opts.SimulationCount,
				r.opts.MonthlyInvestment, startPrice, &dist)
			if err != nil {
				return err
			}
			results[i] = result
			if r.opts.OnHorizon != nil {
				r.opts.OnHorizon(result, time.Since(started))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// aggregator builds an aggregator whose streams are disjoint per horizon
func (r *DefaultRunner) aggregator(months int) *montecarlo.Aggregator {
	base := r.factory
	factory := func(stream uint64) random.Source {
		return base(uint64(months)<<32 | stream)
	}

	opts := []montecarlo.Option{
		montecarlo.WithWorkers(r.opts.Workers),
		montecarlo.WithProgressTracker(r.opts.Progress),
	}
	if r.opts.FloorPrice > 0 {
		opts = append(opts, montecarlo.WithFloorPrice(r.opts.FloorPrice))
	}
	if r.opts.HistogramBuckets > 0 {
		opts = append(opts, montecarlo.WithHistogramBuckets(r.opts.HistogramBuckets))
	}
	if r.opts.CurrencySymbol != "" {
		opts = append(opts, montecarlo.WithCurrencySymbol(r.opts.CurrencySymbol))
	}
	return montecarlo.NewAggregator(factory, opts...)
}
