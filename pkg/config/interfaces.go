package config

// Package config provides configuration management for the DCA simulator

// ConfigManager handles loading, validation and saving of configurations
type ConfigManager interface {
	// Load loads configuration from defaults, an optional file and the environment
	Load(configFile string) (*SimulationConfig, error)

	// Validate validates a configuration
	Validate(cfg *SimulationConfig) error

	// Save saves configuration to file
	Save(cfg *SimulationConfig, path string) error
}

// Validator interface for configuration validation
type Validator interface {
	Validate(cfg *SimulationConfig) error
}

// Common configuration constants
const (
	// Default parameter values
	DefaultSymbol            = "BTCUSDT"
	DefaultCategory          = "spot"
	DefaultMonthlyInvestment = 350.0
	DefaultSimulationCount   = 10000
	DefaultFallbackPrice     = 107000.0 // Used when no live quote is available
	DefaultCurrencySymbol    = "€"

	// Validation limits
	MinSimulationCount = 1
	MaxSimulationCount = 1_000_000
	MaxHorizonMonths   = 1200
	MaxBybitMonths     = 1000

	// File and directory constants
	DefaultDataRoot    = "data"
	DefaultExchange    = "bybit" // Default exchange for data
	ResultsDir         = "results"
	DefaultSQLitePath  = "data/dca_montecarlo.db"
	DefaultWatchCron   = "0 0 9 1 * *" // 09:00 on the first day of every month
	DefaultMetricsAddr = ":9090"

	// Environment variable prefix for overrides
	EnvPrefix = "DCA_"
)

// DefaultHorizonsMonths are 3, 5 and 10 years
var DefaultHorizonsMonths = []int{36, 60, 120}
