package montecarlo

import (
	"math"
	"testing"

	"github.com/ducminhle1904/dca-montecarlo/internal/calibration"
	simerrors "github.com/ducminhle1904/dca-montecarlo/internal/errors"
	"github.com/ducminhle1904/dca-montecarlo/internal/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func btcSpec(months int) PathSpec {
	return PathSpec{
		HorizonMonths: months,
		Amount:        350,
		StartPrice:    107000,
		Distribution:  calibration.DistributionParams{MeanPeriodReturn: 0.0574, StdPeriodReturn: 0.4326},
		FloorPrice:    DefaultFloorPrice,
	}
}

// TestSimulatePath_ZeroVolatility tests a flat price path (350/month at 107000 for 12 months)
func TestSimulatePath_ZeroVolatility(t *testing.T) {
	spec := btcSpec(12)
	spec.Distribution = calibration.DistributionParams{}

	traj, err := SimulatePath(random.NewSource(1, 1), spec)
	require.NoError(t, err)

	for _, p := range traj.PriceHistory {
		assert.Equal(t, 107000.0, p)
	}
	assert.Equal(t, 4200.0, traj.TotalInvested)
	assert.InDelta(t, 4200.0, traj.FinalValue, 1e-9)
	assert.InDelta(t, 0.0, traj.ROI, 1e-9)
	assert.InDelta(t, 0.0, traj.AnnualizedReturn, 1e-9)
	assert.InDelta(t, 12*350.0/107000, traj.TotalUnits, 1e-15)
}

// TestSimulatePath_InvalidHorizon tests that a zero horizon yields no trajectory
func TestSimulatePath_InvalidHorizon(t *testing.T) {
	traj, err := SimulatePath(random.NewSource(1, 1), btcSpec(0))
	require.Error(t, err)
	assert.True(t, simerrors.IsInvalidHorizon(err))
	assert.Empty(t, traj.ValueHistory)

	_, err = SimulatePath(random.NewSource(1, 1), btcSpec(-3))
	assert.True(t, simerrors.IsInvalidHorizon(err))
}

// TestSimulatePath_InvalidParameters tests amount, price and distribution checks
func TestSimulatePath_InvalidParameters(t *testing.T) {
	src := random.NewSource(1, 1)

	spec := btcSpec(12)
	spec.Amount = 0
	_, err := SimulatePath(src, spec)
	assert.True(t, simerrors.IsInvalidParameter(err))

	spec = btcSpec(12)
	spec.StartPrice = -1
	_, err = SimulatePath(src, spec)
	assert.True(t, simerrors.IsInvalidParameter(err))

	spec = btcSpec(12)
	spec.Distribution.StdPeriodReturn = math.NaN()
	_, err = SimulatePath(src, spec)
	assert.True(t, simerrors.IsInvalidParameter(err))

	spec = btcSpec(12)
	spec.FloorPrice = -1
	_, err = SimulatePath(src, spec)
	assert.True(t, simerrors.IsInvalidParameter(err))
}

// TestSimulatePath_StartBelowFloor tests that a start price under the floor is clamped, not rejected
func TestSimulatePath_StartBelowFloor(t *testing.T) {
	spec := btcSpec(6)
	spec.StartPrice = 50

	traj, err := SimulatePath(random.NewSource(5, 5), spec)
	require.NoError(t, err)
	for _, p := range traj.PriceHistory {
		assert.GreaterOrEqual(t, p, DefaultFloorPrice)
	}
}

// TestSimulatePath_Invariants tests history lengths, exact investment and non-decreasing units
func TestSimulatePath_Invariants(t *testing.T) {
	for _, months := range []int{1, 2, 36, 60, 120} {
		for seed := uint64(0); seed < 20; seed++ {
			traj, err := SimulatePath(random.NewSource(seed, 9), btcSpec(months))
			require.NoError(t, err)

			assert.Len(t, traj.UnitHistory, months)
			assert.Len(t, traj.ValueHistory, months)
			assert.Len(t, traj.PriceHistory, months)
			assert.Equal(t, 350*float64(months), traj.TotalInvested)
			assert.Equal(t, traj.ValueHistory[months-1], traj.FinalValue)

			for i := 1; i < months; i++ {
				assert.GreaterOrEqual(t, traj.UnitHistory[i], traj.UnitHistory[i-1])
			}
			for _, p := range traj.PriceHistory {
				assert.GreaterOrEqual(t, p, DefaultFloorPrice)
			}
		}
	}
}

// TestSimulatePath_FloorPrice tests that a crash is clamped at the floor
func TestSimulatePath_FloorPrice(t *testing.T) {
	spec := btcSpec(3)
	spec.Distribution = calibration.DistributionParams{MeanPeriodReturn: -50}

	traj, err := SimulatePath(random.NewSource(3, 3), spec)
	require.NoError(t, err)

	for _, p := range traj.PriceHistory {
		assert.Equal(t, DefaultFloorPrice, p)
	}
	assert.InDelta(t, 3*350/DefaultFloorPrice, traj.TotalUnits, 1e-12)
}

// TestSimulatePath_KnownDraw tests a single month with an injected variate
func TestSimulatePath_KnownDraw(t *testing.T) {
	spec := btcSpec(1)
	spec.Distribution = calibration.DistributionParams{MeanPeriodReturn: 0.1, StdPeriodReturn: 0.2}

	// z = -1 from u1 = e^-0.5, u2 = 0.5
	traj, err := SimulatePath(random.NewSequence(math.Exp(-0.5), 0.5), spec)
	require.NoError(t, err)

	price := 107000 * math.Exp(0.1-0.2)
	assert.InDelta(t, price, traj.PriceHistory[0], 1e-6)
	assert.InDelta(t, 350.0, traj.FinalValue, 1e-9)
	assert.InDelta(t, 350/price, traj.TotalUnits, 1e-15)
}
