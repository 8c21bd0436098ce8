package config

import (
	"github.com/ducminhle1904/dca-montecarlo/internal/calibration"
	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
)

// SimulationConfig holds all configuration for a simulation run
type SimulationConfig struct {
	Symbol             string  `json:"symbol" yaml:"symbol"`
	Category           string  `json:"category" yaml:"category"`
	MonthlyInvestment  float64 `json:"monthly_investment" yaml:"monthly_investment"`
	HorizonsMonths     []int   `json:"horizons_months" yaml:"horizons_months"`
	SimulationCount    int     `json:"simulation_count" yaml:"simulation_count"`
	Seed               *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	Workers            int     `json:"workers" yaml:"workers"`
	MinSimulationPrice float64 `json:"min_simulation_price" yaml:"min_simulation_price"`
	HistogramBuckets   int     `json:"histogram_buckets" yaml:"histogram_buckets"`
	CurrencySymbol     string  `json:"currency_symbol" yaml:"currency_symbol"`
	FallbackPrice      float64 `json:"fallback_price" yaml:"fallback_price"`
	// Price overrides the live quote when positive
	Price float64 `json:"price,omitempty" yaml:"price,omitempty"`

	History  HistoryConfig  `json:"history" yaml:"history"`
	Output   OutputConfig   `json:"output" yaml:"output"`
	Recorder RecorderConfig `json:"recorder" yaml:"recorder"`
	Watch    WatchConfig    `json:"watch" yaml:"watch"`

	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"`
}

// HistoryConfig selects the calibration history and the synthetic fallback
type HistoryConfig struct {
	Source           string  `json:"source" yaml:"source"` // synthetic, csv or bybit
	CSVFile          string  `json:"csv_file,omitempty" yaml:"csv_file,omitempty"`
	DataRoot         string  `json:"data_root" yaml:"data_root"`
	Months           int     `json:"months" yaml:"months"`
	AnnualDrift      float64 `json:"annual_drift" yaml:"annual_drift"`
	AnnualVolatility float64 `json:"annual_volatility" yaml:"annual_volatility"`
	JumpProbability  float64 `json:"jump_probability" yaml:"jump_probability"`
	JumpMagnitude    float64 `json:"jump_magnitude" yaml:"jump_magnitude"`
}

// OutputConfig controls report generation
type OutputConfig struct {
	Directory   string `json:"directory" yaml:"directory"`
	Excel       bool   `json:"excel" yaml:"excel"`
	CSV         bool   `json:"csv" yaml:"csv"`
	JSON        bool   `json:"json" yaml:"json"`
	ConsoleOnly bool   `json:"console_only" yaml:"console_only"`
}

// RecorderConfig controls run history persistence
type RecorderConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path"`
}

// WatchConfig controls periodic re-runs
type WatchConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Cron    string `json:"cron" yaml:"cron"`
}

// NewDefaultSimulationConfig creates a configuration with default values
func NewDefaultSimulationConfig() *SimulationConfig {
	horizons := make([]int, len(DefaultHorizonsMonths))
	copy(horizons, DefaultHorizonsMonths)

	return &SimulationConfig{
		Symbol:             DefaultSymbol,
		Category:           DefaultCategory,
		MonthlyInvestment:  DefaultMonthlyInvestment,
		HorizonsMonths:     horizons,
		SimulationCount:    DefaultSimulationCount,
		MinSimulationPrice: montecarlo.DefaultFloorPrice,
		HistogramBuckets:   montecarlo.DefaultHistogramBuckets,
		CurrencySymbol:     DefaultCurrencySymbol,
		FallbackPrice:      DefaultFallbackPrice,
		History: HistoryConfig{
			Source:           "synthetic",
			DataRoot:         DefaultDataRoot,
			Months:           calibration.DefaultHistoryMonths,
			AnnualDrift:      calibration.DefaultAnnualDrift,
			AnnualVolatility: calibration.DefaultAnnualVolatility,
			JumpProbability:  calibration.DefaultJumpProbability,
			JumpMagnitude:    calibration.DefaultJumpMagnitude,
		},
		Output: OutputConfig{
			Directory: ResultsDir,
		},
		Recorder: RecorderConfig{
			SQLitePath: DefaultSQLitePath,
		},
		Watch: WatchConfig{
			Cron: DefaultWatchCron,
		},
		MetricsAddr: DefaultMetricsAddr,
	}
}

// SyntheticParams returns the synthetic history parameters anchored at anchor
func (c *SimulationConfig) SyntheticParams(anchor float64) calibration.SyntheticParams {
	params := calibration.DefaultSyntheticParams(anchor)
	params.Months = c.History.Months
	params.AnnualDrift = c.History.AnnualDrift
	params.AnnualVolatility = c.History.AnnualVolatility
	params.JumpProbability = c.History.JumpProbability
	params.JumpMagnitude = c.History.JumpMagnitude
	return params
}
