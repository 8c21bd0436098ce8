package recorder

import (
	"time"

	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"
)

// RunSummary is a stored run with its per-horizon results.
type RunSummary struct {
	ID                string
	Timestamp         time.Time
	Symbol            string
	MonthlyInvestment float64
	SimulationCount   int
	Seed              *uint64
	StartPrice        float64
	Source            string
	Synthetic         bool
	Horizons          []HorizonSummary
}

// HorizonSummary holds the stored statistics of one horizon.
type HorizonSummary struct {
	HorizonMonths        int
	TotalInvested        float64
	P5                   float64
	Median               float64
	P95                  float64
	MedianROI            float64
	BreakEvenProbability float64
}

// Recorder persists simulation runs for later comparison.
type Recorder interface {
	RecordRun(run *orchestrator.RunResult) error
	RecentRuns(limit int) ([]RunSummary, error)
	Close() error
}
