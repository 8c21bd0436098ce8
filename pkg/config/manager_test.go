package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewDefaultSimulationConfig tests the documented defaults
func TestNewDefaultSimulationConfig(t *testing.T) {
	cfg := NewDefaultSimulationConfig()

	assert.Equal(t, 350.0, cfg.MonthlyInvestment)
	assert.Equal(t, []int{36, 60, 120}, cfg.HorizonsMonths)
	assert.Equal(t, 10000, cfg.SimulationCount)
	assert.Equal(t, 107000.0, cfg.FallbackPrice)
	assert.Equal(t, 30, cfg.HistogramBuckets)
	assert.Equal(t, 100.0, cfg.MinSimulationPrice)
	assert.Equal(t, "synthetic", cfg.History.Source)
	assert.Equal(t, 156, cfg.History.Months)
	assert.Nil(t, cfg.Seed)
	require.NoError(t, NewSimulationValidator().Validate(cfg))

	// Defaults must not share the package-level slice
	cfg.HorizonsMonths[0] = 1
	assert.Equal(t, 36, DefaultHorizonsMonths[0])
}

// TestSimulationValidator_Validate tests field validation
func TestSimulationValidator_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SimulationConfig)
	}{
		{"empty symbol", func(c *SimulationConfig) { c.Symbol = " " }},
		{"zero investment", func(c *SimulationConfig) { c.MonthlyInvestment = 0 }},
		{"no horizons", func(c *SimulationConfig) { c.HorizonsMonths = nil }},
		{"zero horizon", func(c *SimulationConfig) { c.HorizonsMonths = []int{0} }},
		{"duplicate horizon", func(c *SimulationConfig) { c.HorizonsMonths = []int{36, 36} }},
		{"zero simulations", func(c *SimulationConfig) { c.SimulationCount = 0 }},
		{"too many simulations", func(c *SimulationConfig) { c.SimulationCount = MaxSimulationCount + 1 }},
		{"negative workers", func(c *SimulationConfig) { c.Workers = -1 }},
		{"zero buckets", func(c *SimulationConfig) { c.HistogramBuckets = 0 }},
		{"zero fallback", func(c *SimulationConfig) { c.FallbackPrice = 0 }},
		{"unknown source", func(c *SimulationConfig) { c.History.Source = "coingecko" }},
		{"short history", func(c *SimulationConfig) { c.History.Months = 1 }},
		{"bad jump probability", func(c *SimulationConfig) { c.History.JumpProbability = 1.5 }},
		{"recorder without path", func(c *SimulationConfig) {
			c.Recorder.Enabled = true
			c.Recorder.SQLitePath = ""
		}},
		{"bad cron", func(c *SimulationConfig) {
			c.Watch.Enabled = true
			c.Watch.Cron = "every month"
		}},
	}

	v := NewSimulationValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultSimulationConfig()
			tt.mutate(cfg)
			assert.Error(t, v.Validate(cfg))
		})
	}

	assert.Error(t, v.Validate(nil))
}

// TestSimulationConfigManager_Load_YAML tests file values over defaults
func TestSimulationConfigManager_Load_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
symbol: ETHUSDT
monthly_investment: 500
horizons_months: [12, 24]
seed: 42
history:
  source: csv
  csv_file: data/eth.csv
`), 0644))

	cfg, err := NewSimulationConfigManager().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.Equal(t, 500.0, cfg.MonthlyInvestment)
	assert.Equal(t, []int{12, 24}, cfg.HorizonsMonths)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(42), *cfg.Seed)
	assert.Equal(t, "csv", cfg.History.Source)
	assert.Equal(t, "data/eth.csv", cfg.History.CSVFile)
	// untouched fields keep defaults
	assert.Equal(t, 10000, cfg.SimulationCount)
	assert.Equal(t, 156, cfg.History.Months)
}

// TestSimulationConfigManager_Load_EnvOverrides tests that the environment wins over the file
func TestSimulationConfigManager_Load_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"monthly_investment": 200, "simulation_count": 500}`), 0644))

	t.Setenv("DCA_MONTHLY_INVESTMENT", "250")
	t.Setenv("DCA_HORIZONS", "12, 48")
	t.Setenv("DCA_SEED", "7")
	t.Setenv("DCA_SYMBOL", "btcusdt")

	cfg, err := NewSimulationConfigManager().Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250.0, cfg.MonthlyInvestment)
	assert.Equal(t, 500, cfg.SimulationCount)
	assert.Equal(t, []int{12, 48}, cfg.HorizonsMonths)
	assert.Equal(t, uint64(7), *cfg.Seed)
	assert.Equal(t, "BTCUSDT", cfg.Symbol)
}

// TestSimulationConfigManager_Load_Errors tests unreadable, malformed and invalid inputs
func TestSimulationConfigManager_Load_Errors(t *testing.T) {
	m := NewSimulationConfigManager()
	dir := t.TempDir()

	_, err := m.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = m.Load(bad)
	assert.Error(t, err)

	unsupported := filepath.Join(dir, "sim.toml")
	require.NoError(t, os.WriteFile(unsupported, []byte("a = 1"), 0644))
	_, err = m.Load(unsupported)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("simulation_count: 0\n"), 0644))
	_, err = m.Load(invalid)
	assert.Error(t, err)

	t.Setenv("DCA_SIMULATIONS", "lots")
	_, err = m.Load("")
	assert.Error(t, err)
}

// TestSimulationConfigManager_SaveRoundTrip tests that saved YAML loads back unchanged
func TestSimulationConfigManager_SaveRoundTrip(t *testing.T) {
	m := NewSimulationConfigManager()
	cfg := NewDefaultSimulationConfig()
	seed := uint64(99)
	cfg.Seed = &seed
	cfg.HorizonsMonths = []int{24}

	path := filepath.Join(t.TempDir(), "nested", "saved.yaml")
	require.NoError(t, m.Save(cfg, path))

	loaded, err := m.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

// TestParseHorizons tests the horizon list parser
func TestParseHorizons(t *testing.T) {
	h, err := ParseHorizons("36,60, 120,")
	require.NoError(t, err)
	assert.Equal(t, []int{36, 60, 120}, h)

	_, err = ParseHorizons("36,five")
	assert.Error(t, err)

	_, err = ParseHorizons(" , ")
	assert.Error(t, err)
}
