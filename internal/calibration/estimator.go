package calibration

import (
	"math"

	simerrors "github.com/ducminhle1904/dca-montecarlo/internal/errors"
	"github.com/ducminhle1904/dca-montecarlo/pkg/types"
)

// DefaultPeriodsPerYear converts monthly statistics to annual figures
const DefaultPeriodsPerYear = 12

// Below this deviation the standardized moments are reported as zero
const minStdForMoments = 1e-10

// ReturnStatistics summarizes the log-return distribution of a price history
type ReturnStatistics struct {
	MeanPeriodReturn     float64 `json:"mean_period_return"`
	StdPeriodReturn      float64 `json:"std_period_return"`
	AnnualizedReturn     float64 `json:"annualized_return_pct"`
	AnnualizedVolatility float64 `json:"annualized_volatility_pct"`
	Skewness             float64 `json:"skewness"`
	Kurtosis             float64 `json:"kurtosis"`
	CurrentPrice         float64 `json:"current_price"`
	SampleCount          int     `json:"sample_count"`
}

// DistributionParams parameterizes the per-period return draw of a path
type DistributionParams struct {
	MeanPeriodReturn float64 `json:"mean_period_return"`
	StdPeriodReturn  float64 `json:"std_period_return"`
}

// Distribution returns the parameters the path simulator draws from
func (s ReturnStatistics) Distribution() DistributionParams {
	return DistributionParams{
		MeanPeriodReturn: s.MeanPeriodReturn,
		StdPeriodReturn:  s.StdPeriodReturn,
	}
}

// Estimate computes monthly return statistics of series
func Estimate(series types.PriceSeries) (ReturnStatistics, error) {
	return EstimateWithPeriods(series, DefaultPeriodsPerYear)
}

// EstimateWithPeriods computes return statistics annualized with periodsPerYear
func EstimateWithPeriods(series types.PriceSeries, periodsPerYear int) (ReturnStatistics, error) {
	if series.Len() < 2 {
		return ReturnStatistics{}, simerrors.NewInsufficientDataError("calibration", "Estimate", series.Len())
	}
	if periodsPerYear <= 0 {
		return ReturnStatistics{}, simerrors.NewInvalidParameterError("calibration", "Estimate",
			"periods per year must be positive")
	}

	returns := LogReturns(series)
	n := float64(len(returns))

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= n

	// Population variance (divide by N)
	variance := 0.0
	for _, r := range returns {
		variance += math.Pow(r-mean, 2)
	}
	variance /= n
	std := math.Sqrt(variance)

	skewness, kurtosis := 0.0, 0.0
	if std >= minStdForMoments {
		for _, r := range returns {
			standardized := (r - mean) / std
			skewness += math.Pow(standardized, 3)
			kurtosis += math.Pow(standardized, 4)
		}
		skewness /= n
		kurtosis /= n
	}

	last, _ := series.Last()
	periods := float64(periodsPerYear)

	return ReturnStatistics{
		MeanPeriodReturn:     mean,
		StdPeriodReturn:      std,
		AnnualizedReturn:     (math.Exp(mean*periods) - 1) * 100,
		AnnualizedVolatility: std * math.Sqrt(periods) * 100,
		Skewness:             skewness,
		Kurtosis:             kurtosis,
		CurrentPrice:         last.Price,
		SampleCount:          series.Len(),
	}, nil
}

// LogReturns returns ln(p[i]/p[i-1]) for each consecutive pair
func LogReturns(series types.PriceSeries) []float64 {
	if series.Len() < 2 {
		return nil
	}
	prices := series.Prices()
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns = append(returns, math.Log(prices[i]/prices[i-1]))
	}
	return returns
}
