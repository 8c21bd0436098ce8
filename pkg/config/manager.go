package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SimulationConfigManager implements ConfigManager for simulation configurations
type SimulationConfigManager struct {
	validator Validator
}

// NewSimulationConfigManager creates a new configuration manager
func NewSimulationConfigManager() *SimulationConfigManager {
	return &SimulationConfigManager{
		validator: NewSimulationValidator(),
	}
}

// Load builds a configuration from defaults, then configFile (YAML or JSON
// by extension, skipped when empty), then DCA_* environment variables,
// and validates the result.
func (m *SimulationConfigManager) Load(configFile string) (*SimulationConfig, error) {
	cfg := NewDefaultSimulationConfig()

	if configFile != "" {
		if err := m.loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := m.Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile decodes configFile over cfg so unset fields keep their defaults
func (m *SimulationConfigManager) loadFromFile(configFile string, cfg *SimulationConfig) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("could not parse YAML config: %w", err)
		}
	case ".json", "":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("could not parse JSON config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q (use .json, .yaml or .yml)", filepath.Ext(configFile))
	}

	return nil
}

// Validate validates a configuration
func (m *SimulationConfigManager) Validate(cfg *SimulationConfig) error {
	return m.validator.Validate(cfg)
}

// Save saves configuration to file as YAML or JSON by extension
func (m *SimulationConfigManager) Save(cfg *SimulationConfig, path string) error {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnvOverrides applies DCA_* environment variables to cfg
func ApplyEnvOverrides(cfg *SimulationConfig) error {
	if v := getenv("SYMBOL"); v != "" {
		cfg.Symbol = strings.ToUpper(v)
	}
	if v := getenv("CATEGORY"); v != "" {
		cfg.Category = v
	}
	if v := getenv("MONTHLY_INVESTMENT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sMONTHLY_INVESTMENT: %w", EnvPrefix, err)
		}
		cfg.MonthlyInvestment = f
	}
	if v := getenv("HORIZONS"); v != "" {
		horizons, err := ParseHorizons(v)
		if err != nil {
			return fmt.Errorf("%sHORIZONS: %w", EnvPrefix, err)
		}
		cfg.HorizonsMonths = horizons
	}
	if v := getenv("SIMULATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSIMULATIONS: %w", EnvPrefix, err)
		}
		cfg.SimulationCount = n
	}
	if v := getenv("SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", EnvPrefix, err)
		}
		cfg.Seed = &seed
	}
	if v := getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", EnvPrefix, err)
		}
		cfg.Workers = n
	}
	if v := getenv("PRICE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sPRICE: %w", EnvPrefix, err)
		}
		cfg.Price = f
	}
	if v := getenv("FALLBACK_PRICE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sFALLBACK_PRICE: %w", EnvPrefix, err)
		}
		cfg.FallbackPrice = f
	}
	if v := getenv("HISTORY_SOURCE"); v != "" {
		cfg.History.Source = strings.ToLower(v)
	}
	if v := getenv("DATA_FILE"); v != "" {
		cfg.History.CSVFile = v
	}
	if v := getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Directory = v
	}
	if v := getenv("SQLITE_PATH"); v != "" {
		cfg.Recorder.SQLitePath = v
	}
	if v := getenv("WATCH_CRON"); v != "" {
		cfg.Watch.Cron = v
	}
	if v := getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	return nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}

// ParseHorizons parses a comma separated list of month counts ("36,60,120")
func ParseHorizons(value string) ([]int, error) {
	var horizons []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		months, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid horizon %q: %w", part, err)
		}
		horizons = append(horizons, months)
	}
	if len(horizons) == 0 {
		return nil, fmt.Errorf("no horizons in %q", value)
	}
	return horizons, nil
}
