package orchestrator

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	simerrors "github.com/ducminhle1904/dca-montecarlo/internal/errors"
	"github.com/ducminhle1904/dca-montecarlo/internal/monitoring"
	"github.com/google/uuid"
)

// RunRequest describes one simulation run
type RunRequest struct {
	Symbol            string
	MonthlyInvestment float64
	SimulationCount   int
	Seed              *uint64
	Horizons          []int
}

// Orchestrator coordinates calibration and simulation. It keeps the last
// calibration; every recalibration replaces it.
type Orchestrator struct {
	calibrator Calibrator
	runner     HorizonRunner

	mu   sync.RWMutex
	last *Calibration
}

// NewOrchestrator creates a new orchestrator with the given components
func NewOrchestrator(calibrator Calibrator, runner HorizonRunner) *Orchestrator {
	return &Orchestrator{
		calibrator: calibrator,
		runner:     runner,
	}
}

// Recalibrate calibrates and replaces the stored calibration on success
func (o *Orchestrator) Recalibrate(ctx context.Context) (*Calibration, error) {
	cal, err := o.calibrator.Calibrate(ctx)
	if err != nil {
		recordFailure(err)
		return nil, err
	}

	o.mu.Lock()
	o.last = cal
	o.mu.Unlock()

	if cal.QuoteFallback {
		monitoring.RecordQuoteFallback()
	}
	monitoring.RecordCalibration(calibrationLabel(cal))

	log.Printf("📊 Calibrated from %s: mean %.4f, std %.4f per month, start price %.2f (last close %.2f)",
		cal.Source, cal.Stats.MeanPeriodReturn, cal.Stats.StdPeriodReturn, cal.StartPrice(), cal.Stats.CurrentPrice)
	return cal, nil
}

// LastCalibration returns the stored calibration, or nil before the first one
func (o *Orchestrator) LastCalibration() *Calibration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.last
}

// Simulate runs every horizon of req from the stored calibration
func (o *Orchestrator) Simulate(ctx context.Context, req RunRequest) (*RunResult, error) {
	cal := o.LastCalibration()
	if cal == nil {
		err := simerrors.NewMissingCalibrationError("orchestrator", "Simulate",
			"no calibration available, calibrate before simulating")
		recordFailure(err)
		return nil, err
	}

	result := &RunResult{
		ID:                uuid.NewString(),
		Symbol:            req.Symbol,
		MonthlyInvestment: req.MonthlyInvestment,
		SimulationCount:   req.SimulationCount,
		Seed:              req.Seed,
		StartedAt:         time.Now(),
		Calibration:       cal,
	}

	log.Printf("🚀 Simulating %d paths for horizons %v (%.2f per month)",
		req.SimulationCount, req.Horizons, req.MonthlyInvestment)

	horizons, err := o.runner.RunHorizons(ctx, cal, req.Horizons)
	if err != nil {
		recordFailure(err)
		return nil, err
	}

	result.Horizons = horizons
	result.FinishedAt = time.Now()

	monitoring.UpdatePrice(req.Symbol, cal.StartPrice())
	monitoring.RecordRun("success")
	log.Printf("✅ Run %s completed in %v", result.ID, result.Duration().Round(time.Millisecond))
	return result, nil
}

// Run recalibrates, then simulates
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if _, err := o.Recalibrate(ctx); err != nil {
		return nil, err
	}
	return o.Simulate(ctx, req)
}

func calibrationLabel(cal *Calibration) string {
	if cal.Synthetic {
		return "synthetic"
	}
	if i := strings.IndexByte(cal.Source, ' '); i > 0 {
		return strings.ToLower(cal.Source[:i])
	}
	return "history"
}

func recordFailure(err error) {
	simErr := simerrors.CategorizeError(err, "orchestrator", "Run")
	monitoring.RecordError(string(simErr.Category))
	if simErr.Category == simerrors.ErrorCategoryCanceled {
		monitoring.RecordRun("canceled")
		return
	}
	monitoring.RecordRun("failed")
}
