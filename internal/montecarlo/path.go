package montecarlo

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/dca-montecarlo/internal/calibration"
	simerrors "github.com/ducminhle1904/dca-montecarlo/internal/errors"
	"github.com/ducminhle1904/dca-montecarlo/internal/random"
)

// DefaultFloorPrice keeps simulated prices away from zero
const DefaultFloorPrice = 100.0

// PathSpec describes one DCA path: a fixed amount bought every month
type PathSpec struct {
	HorizonMonths int
	Amount        float64
	StartPrice    float64
	Distribution  calibration.DistributionParams
	FloorPrice    float64
}

// Validate checks the path preconditions
func (s PathSpec) Validate() error {
	if s.HorizonMonths < 1 {
		return simerrors.NewInvalidHorizonError("montecarlo", "SimulatePath", s.HorizonMonths)
	}
	if !(s.Amount > 0) || math.IsInf(s.Amount, 0) {
		return simerrors.NewInvalidParameterError("montecarlo", "SimulatePath",
			fmt.Sprintf("periodic investment must be positive, got %v", s.Amount))
	}
	if !(s.StartPrice > 0) || math.IsInf(s.StartPrice, 0) {
		return simerrors.NewInvalidParameterError("montecarlo", "SimulatePath",
			fmt.Sprintf("starting price must be positive, got %v", s.StartPrice))
	}
	// the floor may exceed the start price; prices are clamped after each step
	if s.FloorPrice < 0 || math.IsNaN(s.FloorPrice) || math.IsInf(s.FloorPrice, 0) {
		return simerrors.NewInvalidParameterError("montecarlo", "SimulatePath",
			fmt.Sprintf("floor price must be a non-negative number, got %v", s.FloorPrice))
	}
	d := s.Distribution
	if math.IsNaN(d.MeanPeriodReturn) || math.IsInf(d.MeanPeriodReturn, 0) ||
		math.IsNaN(d.StdPeriodReturn) || math.IsInf(d.StdPeriodReturn, 0) || d.StdPeriodReturn < 0 {
		return simerrors.NewInvalidParameterError("montecarlo", "SimulatePath",
			fmt.Sprintf("invalid distribution (mean %v, std %v)", d.MeanPeriodReturn, d.StdPeriodReturn))
	}
	return nil
}

// SimulatePath validates spec and simulates one trajectory drawing from src
func SimulatePath(src random.Source, spec PathSpec) (Trajectory, error) {
	if err := spec.Validate(); err != nil {
		return Trajectory{}, err
	}
	return simulatePath(src, spec), nil
}

// simulatePath runs the monthly loop; spec must already be valid
func simulatePath(src random.Source, spec PathSpec) Trajectory {
	months := spec.HorizonMonths
	traj := Trajectory{
		UnitHistory:  make([]float64, 0, months),
		ValueHistory: make([]float64, 0, months),
		PriceHistory: make([]float64, 0, months),
	}

	price := spec.StartPrice
	for month := 1; month <= months; month++ {
		periodReturn := spec.Distribution.MeanPeriodReturn + spec.Distribution.StdPeriodReturn*random.StandardNormal(src)
		price = math.Max(spec.FloorPrice, price*math.Exp(periodReturn))

		traj.TotalUnits += spec.Amount / price
		traj.TotalInvested = spec.Amount * float64(month)

		traj.UnitHistory = append(traj.UnitHistory, traj.TotalUnits)
		traj.ValueHistory = append(traj.ValueHistory, traj.TotalUnits*price)
		traj.PriceHistory = append(traj.PriceHistory, price)
	}

	traj.FinalValue = traj.ValueHistory[months-1]
	traj.ROI = (traj.FinalValue - traj.TotalInvested) / traj.TotalInvested * 100
	traj.AnnualizedReturn = (math.Pow(traj.FinalValue/traj.TotalInvested, 12/float64(months)) - 1) * 100

	return traj
}
