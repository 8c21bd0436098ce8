package montecarlo

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/ducminhle1904/dca-montecarlo/internal/calibration"
	simerrors "github.com/ducminhle1904/dca-montecarlo/internal/errors"
	"github.com/ducminhle1904/dca-montecarlo/internal/random"
)

const (
	// MinStableSimulations is the count below which percentiles are noisy
	MinStableSimulations = 100

	// DefaultChunkSize is the number of trajectories sharing one random stream
	DefaultChunkSize = 256
)

// Aggregator runs many independent DCA paths for a horizon and summarizes them
type Aggregator struct {
	factory    random.Factory
	workers    int
	chunkSize  int
	floorPrice float64
	buckets    int
	currency   string
	progress   *ProgressTracker
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithWorkers sets the number of parallel workers (<= 0 means NumCPU)
func WithWorkers(n int) Option {
	return func(a *Aggregator) { a.workers = n }
}

// WithChunkSize sets how many trajectories share one random stream
func WithChunkSize(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.chunkSize = n
		}
	}
}

// WithFloorPrice sets the minimum simulated price
func WithFloorPrice(p float64) Option {
	return func(a *Aggregator) { a.floorPrice = p }
}

// WithHistogramBuckets sets the number of histogram bins
func WithHistogramBuckets(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.buckets = n
		}
	}
}

// WithCurrencySymbol sets the histogram label prefix
func WithCurrencySymbol(symbol string) Option {
	return func(a *Aggregator) { a.currency = symbol }
}

// WithProgressTracker reports every simulated trajectory to tracker
func WithProgressTracker(tracker *ProgressTracker) Option {
	return func(a *Aggregator) { a.progress = tracker }
}

// NewAggregator creates an aggregator drawing its random streams from factory.
// A nil factory falls back to system entropy.
func NewAggregator(factory random.Factory, opts ...Option) *Aggregator {
	if factory == nil {
		factory = random.EntropyFactory()
	}
	a := &Aggregator{
		factory:    factory,
		chunkSize:  DefaultChunkSize,
		floorPrice: DefaultFloorPrice,
		buckets:    DefaultHistogramBuckets,
		currency:   DefaultCurrencySymbol,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate simulates simulationCount DCA paths over horizonMonths and
// returns percentile statistics, the break-even probability and a histogram.
// It fails fast, before any simulation, when the calibration is missing.
// Canceling ctx aborts the run without a partial result.
func (a *Aggregator) Aggregate(ctx context.Context, horizonMonths, simulationCount int, amount, startPrice float64,
	dist *calibration.DistributionParams) (HorizonResult, error) {

	if dist == nil {
		return HorizonResult{}, simerrors.NewMissingCalibrationError("montecarlo", "Aggregate",
			"distribution parameters are not available")
	}
	if !(startPrice > 0) || math.IsInf(startPrice, 0) {
		return HorizonResult{}, simerrors.NewMissingCalibrationError("montecarlo", "Aggregate",
			fmt.Sprintf("starting price is missing or invalid: %v", startPrice))
	}
	if math.IsNaN(dist.MeanPeriodReturn) || math.IsNaN(dist.StdPeriodReturn) || dist.StdPeriodReturn < 0 {
		return HorizonResult{}, simerrors.NewMissingCalibrationError("montecarlo", "Aggregate",
			fmt.Sprintf("distribution parameters are invalid (mean %v, std %v)", dist.MeanPeriodReturn, dist.StdPeriodReturn))
	}
	if simulationCount < 1 {
		return HorizonResult{}, simerrors.NewInvalidParameterError("montecarlo", "Aggregate",
			fmt.Sprintf("simulation count must be at least 1, got %d", simulationCount))
	}

	spec := PathSpec{
		HorizonMonths: horizonMonths,
		Amount:        amount,
		StartPrice:    startPrice,
		Distribution:  *dist,
		FloorPrice:    a.floorPrice,
	}
	if err := spec.Validate(); err != nil {
		return HorizonResult{}, err
	}

	if simulationCount < MinStableSimulations {
		log.Printf("⚠️  Only %d simulations for %d months: percentile estimates will be unstable", simulationCount, horizonMonths)
	}

	trajectories, err := a.runTrajectories(ctx, spec, simulationCount)
	if err != nil {
		return HorizonResult{}, err
	}

	return a.summarize(spec, trajectories)
}

// runTrajectories fans the simulation out over a worker pool. Chunk i always
// draws from stream i, so the output does not depend on scheduling.
func (a *Aggregator) runTrajectories(ctx context.Context, spec PathSpec, n int) ([]Trajectory, error) {
	chunks := (n + a.chunkSize - 1) / a.chunkSize

	pool := NewWorkerPool(ctx, a.workers, chunks).WithProgress(a.progress)
	pool.Start()

	for chunk := 0; chunk < chunks; chunk++ {
		offset := chunk * a.chunkSize
		count := a.chunkSize
		if offset+count > n {
			count = n - offset
		}
		job := TrajectoryJob{
			Chunk:  chunk,
			Offset: offset,
			Count:  count,
			Spec:   spec,
			Source: a.factory(uint64(chunk)),
		}
		if err := pool.SubmitJob(job); err != nil {
			break
		}
	}
	pool.Stop()

	trajectories := make([]Trajectory, n)
	completed := 0
	for result := range pool.GetResults() {
		if result.Error != nil {
			continue
		}
		copy(trajectories[result.Offset:], result.Trajectories)
		completed += len(result.Trajectories)
	}

	if err := ctx.Err(); err != nil {
		return nil, simerrors.NewCanceledError("montecarlo", "Aggregate", err)
	}
	if completed != n {
		return nil, simerrors.NewCanceledError("montecarlo", "Aggregate",
			fmt.Errorf("only %d of %d trajectories completed", completed, n))
	}
	return trajectories, nil
}

func (a *Aggregator) summarize(spec PathSpec, trajectories []Trajectory) (HorizonResult, error) {
	n := len(trajectories)

	sort.SliceStable(trajectories, func(i, j int) bool {
		return trajectories[i].FinalValue < trajectories[j].FinalValue
	})

	finalValues := make([]float64, n)
	rois := make([]float64, n)
	annualized := make([]float64, n)
	breakEven := 0
	for i, t := range trajectories {
		if math.IsNaN(t.FinalValue) || math.IsInf(t.FinalValue, 0) {
			return HorizonResult{}, simerrors.NewInvalidParameterError("montecarlo", "Aggregate",
				"simulation produced a non-finite portfolio value")
		}
		finalValues[i] = t.FinalValue
		rois[i] = t.ROI
		annualized[i] = t.AnnualizedReturn
		if t.ROI > 0 {
			breakEven++
		}
	}

	// ROI and annualized return get their own order; their medians need not
	// belong to the median-value trajectory.
	sort.Float64s(rois)
	sort.Float64s(annualized)

	sample := trajectories[n/2]

	return HorizonResult{
		HorizonMonths:   spec.HorizonMonths,
		HorizonYears:    float64(spec.HorizonMonths) / 12,
		SimulationCount: n,
		TotalInvested:   spec.Amount * float64(spec.HorizonMonths),
		MedianUnits:     sample.TotalUnits,
		Percentiles: Percentiles{
			P5:     Percentile(finalValues, 0.05),
			P25:    Percentile(finalValues, 0.25),
			Median: Percentile(finalValues, 0.5),
			P75:    Percentile(finalValues, 0.75),
			P95:    Percentile(finalValues, 0.95),
		},
		MedianROI:              Percentile(rois, 0.5),
		MedianAnnualizedReturn: Percentile(annualized, 0.5),
		BreakEvenProbability:   float64(breakEven) / float64(n) * 100,
		Histogram:              BuildHistogram(finalValues, a.buckets, a.currency),
		SamplePath:             sample,
	}, nil
}

// Percentile returns the nearest-rank order statistic sorted[floor(len*p)],
// without interpolation. sorted must be ascending and non-empty.
func Percentile(sorted []float64, p float64) float64 {
	idx := int(math.Floor(float64(len(sorted)) * p))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}
