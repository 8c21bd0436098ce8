package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Report file names inside the output directory
const (
	ExcelFileName     = "simulation.xlsx"
	HorizonsFileName  = "horizons.csv"
	HistogramFileName = "histogram.csv"
	JSONFileName      = "run.json"
)

// DefaultPathManager implements path management functionality
type DefaultPathManager struct{}

// NewDefaultPathManager creates a new path manager
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// GetDefaultOutputDir returns results/<SYMBOL>_montecarlo
func (p *DefaultPathManager) GetDefaultOutputDir(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		s = "UNKNOWN"
	}
	return filepath.Join("results", fmt.Sprintf("%s_montecarlo", s))
}

// EnsureDirectoryExists creates the parent directory of path if it doesn't exist
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// Package-level convenience function
func DefaultOutputDir(symbol string) string {
	return NewDefaultPathManager().GetDefaultOutputDir(symbol)
}
