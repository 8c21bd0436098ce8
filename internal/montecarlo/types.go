package montecarlo

// Trajectory is the outcome of one simulated DCA path.
// The history slices hold one entry per simulated month.
type Trajectory struct {
	TotalUnits       float64   `json:"total_units"`
	TotalInvested    float64   `json:"total_invested"`
	FinalValue       float64   `json:"final_value"`
	ROI              float64   `json:"roi_pct"`
	AnnualizedReturn float64   `json:"annualized_return_pct"`
	UnitHistory      []float64 `json:"unit_history"`
	ValueHistory     []float64 `json:"value_history"`
	PriceHistory     []float64 `json:"price_history"`
}

// Percentiles of the final portfolio value
type Percentiles struct {
	P5     float64 `json:"p5"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	P95    float64 `json:"p95"`
}

// HistogramBucket is one equal-width bin of final values, covering [Lower, Upper)
// except for the last bucket, which also holds the maximum.
type HistogramBucket struct {
	Lower               float64 `json:"lower"`
	Upper               float64 `json:"upper"`
	RepresentativeValue float64 `json:"value"`
	Count               int     `json:"count"`
	Label               string  `json:"label"`
}

// HorizonResult aggregates all trajectories simulated for one horizon
type HorizonResult struct {
	HorizonMonths          int               `json:"horizon_months"`
	HorizonYears           float64           `json:"horizon_years"`
	SimulationCount        int               `json:"simulation_count"`
	TotalInvested          float64           `json:"total_invested"`
	MedianUnits            float64           `json:"median_units"`
	Percentiles            Percentiles       `json:"percentiles"`
	MedianROI              float64           `json:"median_roi_pct"`
	MedianAnnualizedReturn float64           `json:"median_annualized_return_pct"`
	BreakEvenProbability   float64           `json:"break_even_probability_pct"`
	Histogram              []HistogramBucket `json:"histogram"`
	SamplePath             Trajectory        `json:"sample_path"`
}
