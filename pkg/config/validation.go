package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/robfig/cron/v3"
)

// SimulationValidator implements validation for simulation configurations
type SimulationValidator struct{}

// NewSimulationValidator creates a new simulation validator
func NewSimulationValidator() *SimulationValidator {
	return &SimulationValidator{}
}

// Validate checks every field and returns the first violation found
func (v *SimulationValidator) Validate(cfg *SimulationConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if strings.TrimSpace(cfg.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}

	if !isPositive(cfg.MonthlyInvestment) {
		return fmt.Errorf("monthly investment must be positive, got: %.2f", cfg.MonthlyInvestment)
	}

	if len(cfg.HorizonsMonths) == 0 {
		return fmt.Errorf("at least one horizon is required")
	}
	seen := make(map[int]bool)
	for _, h := range cfg.HorizonsMonths {
		if h < 1 || h > MaxHorizonMonths {
			return fmt.Errorf("horizon must be between 1 and %d months, got: %d", MaxHorizonMonths, h)
		}
		if seen[h] {
			return fmt.Errorf("duplicate horizon: %d months", h)
		}
		seen[h] = true
	}

	if cfg.SimulationCount < MinSimulationCount || cfg.SimulationCount > MaxSimulationCount {
		return fmt.Errorf("simulation count must be between %d and %d, got: %d",
			MinSimulationCount, MaxSimulationCount, cfg.SimulationCount)
	}

	if cfg.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got: %d", cfg.Workers)
	}

	if cfg.MinSimulationPrice < 0 || math.IsNaN(cfg.MinSimulationPrice) {
		return fmt.Errorf("minimum simulation price must be non-negative, got: %.2f", cfg.MinSimulationPrice)
	}

	if cfg.HistogramBuckets < 1 {
		return fmt.Errorf("histogram buckets must be positive, got: %d", cfg.HistogramBuckets)
	}

	if !isPositive(cfg.FallbackPrice) {
		return fmt.Errorf("fallback price must be positive, got: %.2f", cfg.FallbackPrice)
	}

	if cfg.Price < 0 || math.IsNaN(cfg.Price) {
		return fmt.Errorf("price override must be non-negative, got: %.2f", cfg.Price)
	}

	if err := v.validateHistory(cfg.History); err != nil {
		return err
	}

	if cfg.Recorder.Enabled && strings.TrimSpace(cfg.Recorder.SQLitePath) == "" {
		return fmt.Errorf("recorder.sqlite_path is required when recording is enabled")
	}

	if cfg.Watch.Enabled {
		if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).
			Parse(cfg.Watch.Cron); err != nil {
			return fmt.Errorf("watch.cron %q is invalid: %w", cfg.Watch.Cron, err)
		}
	}

	return nil
}

// validateHistory validates the history source and synthetic parameters
func (v *SimulationValidator) validateHistory(h HistoryConfig) error {
	switch strings.ToLower(h.Source) {
	case "synthetic", "csv", "bybit":
	default:
		return fmt.Errorf("history.source must be synthetic, csv or bybit, got: %q", h.Source)
	}

	if h.Months < 2 {
		return fmt.Errorf("history.months must be at least 2, got: %d", h.Months)
	}
	if strings.ToLower(h.Source) == "bybit" && h.Months > MaxBybitMonths {
		return fmt.Errorf("history.months must be at most %d for bybit, got: %d", MaxBybitMonths, h.Months)
	}

	if h.AnnualDrift <= -1 {
		return fmt.Errorf("history.annual_drift must be greater than -1, got: %.4f", h.AnnualDrift)
	}
	if h.AnnualVolatility < 0 {
		return fmt.Errorf("history.annual_volatility must be non-negative, got: %.4f", h.AnnualVolatility)
	}
	if h.JumpProbability < 0 || h.JumpProbability > 1 {
		return fmt.Errorf("history.jump_probability must be between 0 and 1, got: %.4f", h.JumpProbability)
	}
	if h.JumpMagnitude < 0 {
		return fmt.Errorf("history.jump_magnitude must be non-negative, got: %.4f", h.JumpMagnitude)
	}

	return nil
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
