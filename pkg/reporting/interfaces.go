package reporting

import (
	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"
	"github.com/ducminhle1904/dca-montecarlo/pkg/types"
)

// Package reporting renders simulation runs to the console and to files

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	OutputRun(run *orchestrator.RunResult)
	OutputHistogram(result montecarlo.HorizonResult)
	OutputPriceWindow(series types.PriceSeries, months int)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteRunCSV(run *orchestrator.RunResult, path string) error
	WriteHistogramCSV(run *orchestrator.RunResult, path string) error
	WriteRunXLSX(run *orchestrator.RunResult, path string) error
	WriteRunJSON(run *orchestrator.RunResult, path string) error
}

// PathManager defines interface for output path management
type PathManager interface {
	GetDefaultOutputDir(symbol string) string
	EnsureDirectoryExists(path string) error
}

// Reporter combines all reporting interfaces
type Reporter interface {
	ConsoleReporter
	FileReporter
	PathManager
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle   int
	CurrencyStyle int
	PercentStyle  int
	NumberStyle   int
	BaseStyle     int
	LabelStyle    int
}

// ReportingConfig holds configuration for reporting
type ReportingConfig struct {
	EnableConsole   bool
	EnableFiles     bool
	OutputDirectory string
	ExcelEnabled    bool
	CSVEnabled      bool
	JSONEnabled     bool
	ShowHistogram   bool
	CurrencySymbol  string
}
