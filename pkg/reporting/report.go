package reporting

import (
	"time"

	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"
	"github.com/shopspring/decimal"
)

// PriceWindowMonths is how many recent closes the reports show
const PriceWindowMonths = 60

// RunReport is the exported form of a run, with money rounded to cents
type RunReport struct {
	ID                string            `json:"id"`
	Symbol            string            `json:"symbol"`
	GeneratedAt       time.Time         `json:"generated_at"`
	MonthlyInvestment decimal.Decimal   `json:"monthly_investment"`
	SimulationCount   int               `json:"simulation_count"`
	Seed              *uint64           `json:"seed,omitempty"`
	DurationMs        int64             `json:"duration_ms"`
	Calibration       CalibrationReport `json:"calibration"`
	Horizons          []HorizonReport   `json:"horizons"`
	Insights          []string          `json:"insights"`
}

// CalibrationReport describes the statistics the run was simulated from
type CalibrationReport struct {
	Source                  string          `json:"source"`
	Synthetic               bool            `json:"synthetic"`
	StartPrice              decimal.Decimal `json:"start_price"`
	QuotePrice              decimal.Decimal `json:"quote_price"`
	QuoteFallback           bool            `json:"quote_fallback"`
	MeanPeriodReturn        float64         `json:"mean_period_return"`
	StdPeriodReturn         float64         `json:"std_period_return"`
	AnnualizedReturnPct     decimal.Decimal `json:"annualized_return_pct"`
	AnnualizedVolatilityPct decimal.Decimal `json:"annualized_volatility_pct"`
	Skewness                float64         `json:"skewness"`
	Kurtosis                float64         `json:"kurtosis"`
	HistoryMonths           int             `json:"history_months"`
	RecentCloses            []PricePoint    `json:"recent_closes,omitempty"`
}

// PricePoint is one monthly close
type PricePoint struct {
	Date  string          `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// HorizonReport summarizes one horizon
type HorizonReport struct {
	HorizonMonths           int                          `json:"horizon_months"`
	HorizonYears            float64                      `json:"horizon_years"`
	TotalInvested           decimal.Decimal              `json:"total_invested"`
	P5                      decimal.Decimal              `json:"p5"`
	P25                     decimal.Decimal              `json:"p25"`
	Median                  decimal.Decimal              `json:"median"`
	P75                     decimal.Decimal              `json:"p75"`
	P95                     decimal.Decimal              `json:"p95"`
	MedianUnits             float64                      `json:"median_units"`
	MedianROIPct            decimal.Decimal              `json:"median_roi_pct"`
	MedianAnnualizedPct     decimal.Decimal              `json:"median_annualized_return_pct"`
	BreakEvenProbabilityPct decimal.Decimal              `json:"break_even_probability_pct"`
	Histogram               []montecarlo.HistogramBucket `json:"histogram"`
	SamplePath              []SamplePoint                `json:"sample_path"`
}

// SamplePoint is one month of the median trajectory
type SamplePoint struct {
	Month int             `json:"month"`
	Price decimal.Decimal `json:"price"`
	Units float64         `json:"units"`
	Value decimal.Decimal `json:"value"`
}

// NewRunReport converts a run into its exported form
func NewRunReport(run *orchestrator.RunResult, currency string) *RunReport {
	report := &RunReport{
		ID:                run.ID,
		Symbol:            run.Symbol,
		GeneratedAt:       run.FinishedAt,
		MonthlyInvestment: Money(run.MonthlyInvestment),
		SimulationCount:   run.SimulationCount,
		Seed:              run.Seed,
		DurationMs:        run.Duration().Milliseconds(),
		Horizons:          make([]HorizonReport, 0, len(run.Horizons)),
		Insights:          Insights(run, currency),
	}

	if cal := run.Calibration; cal != nil {
		report.Calibration = CalibrationReport{
			Source:                  cal.Source,
			Synthetic:               cal.Synthetic,
			StartPrice:              Money(cal.StartPrice()),
			QuotePrice:              Money(cal.QuotePrice),
			QuoteFallback:           cal.QuoteFallback,
			MeanPeriodReturn:        cal.Stats.MeanPeriodReturn,
			StdPeriodReturn:         cal.Stats.StdPeriodReturn,
			AnnualizedReturnPct:     Pct(cal.Stats.AnnualizedReturn),
			AnnualizedVolatilityPct: Pct(cal.Stats.AnnualizedVolatility),
			Skewness:                cal.Stats.Skewness,
			Kurtosis:                cal.Stats.Kurtosis,
			HistoryMonths:           cal.Series.Len(),
		}
		for _, p := range cal.Series.Tail(PriceWindowMonths).Points() {
			report.Calibration.RecentCloses = append(report.Calibration.RecentCloses, PricePoint{
				Date:  p.Period.Format("2006-01"),
				Close: Money(p.Price),
			})
		}
	}

	for _, h := range run.Horizons {
		report.Horizons = append(report.Horizons, newHorizonReport(h))
	}
	return report
}

func newHorizonReport(h montecarlo.HorizonResult) HorizonReport {
	hr := HorizonReport{
		HorizonMonths:           h.HorizonMonths,
		HorizonYears:            h.HorizonYears,
		TotalInvested:           Money(h.TotalInvested),
		P5:                      Money(h.Percentiles.P5),
		P25:                     Money(h.Percentiles.P25),
		Median:                  Money(h.Percentiles.Median),
		P75:                     Money(h.Percentiles.P75),
		P95:                     Money(h.Percentiles.P95),
		MedianUnits:             h.MedianUnits,
		MedianROIPct:            Pct(h.MedianROI),
		MedianAnnualizedPct:     Pct(h.MedianAnnualizedReturn),
		BreakEvenProbabilityPct: Pct(h.BreakEvenProbability),
		Histogram:               h.Histogram,
		SamplePath:              make([]SamplePoint, 0, len(h.SamplePath.ValueHistory)),
	}

	path := h.SamplePath
	for i := range path.ValueHistory {
		hr.SamplePath = append(hr.SamplePath, SamplePoint{
			Month: i + 1,
			Price: Money(path.PriceHistory[i]),
			Units: path.UnitHistory[i],
			Value: Money(path.ValueHistory[i]),
		})
	}
	return hr
}
