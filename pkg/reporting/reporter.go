package reporting

import (
	"path/filepath"

	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"
	"github.com/ducminhle1904/dca-montecarlo/pkg/types"
)

// DefaultReporter implements the complete Reporter interface
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	json    *DefaultJSONFormatter
	paths   *DefaultPathManager
}

// NewDefaultReporter creates a new default reporter with all functionality
func NewDefaultReporter(currency string) *DefaultReporter {
	return &DefaultReporter{
		console: NewDefaultConsoleReporter(currency),
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(currency),
		json:    NewDefaultJSONFormatter(currency),
		paths:   NewDefaultPathManager(),
	}
}

// Console output methods
func (r *DefaultReporter) OutputRun(run *orchestrator.RunResult) {
	r.console.OutputRun(run)
}

func (r *DefaultReporter) OutputHistogram(result montecarlo.HorizonResult) {
	r.console.OutputHistogram(result)
}

func (r *DefaultReporter) OutputPriceWindow(series types.PriceSeries, months int) {
	r.console.OutputPriceWindow(series, months)
}

// File output methods
func (r *DefaultReporter) WriteRunCSV(run *orchestrator.RunResult, path string) error {
	return r.csv.WriteRunCSV(run, path)
}

func (r *DefaultReporter) WriteHistogramCSV(run *orchestrator.RunResult, path string) error {
	return r.csv.WriteHistogramCSV(run, path)
}

func (r *DefaultReporter) WriteRunXLSX(run *orchestrator.RunResult, path string) error {
	return r.excel.WriteRunXLSX(run, path)
}

func (r *DefaultReporter) WriteRunJSON(run *orchestrator.RunResult, path string) error {
	return r.json.WriteRunJSON(run, path)
}

// Path management methods
func (r *DefaultReporter) GetDefaultOutputDir(symbol string) string {
	return r.paths.GetDefaultOutputDir(symbol)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}

// ReportingManager provides a high-level interface for all reporting needs
type ReportingManager struct {
	reporter Reporter
	config   ReportingConfig
}

// NewReportingManager creates a new reporting manager with configuration
func NewReportingManager(config ReportingConfig) *ReportingManager {
	return &ReportingManager{
		reporter: NewDefaultReporter(config.CurrencySymbol),
		config:   config,
	}
}

// NewReportingManagerWithReporter creates a manager around a custom reporter
func NewReportingManagerWithReporter(reporter Reporter, config ReportingConfig) *ReportingManager {
	return &ReportingManager{reporter: reporter, config: config}
}

// ReportRun outputs a run according to configuration and returns the written files
func (m *ReportingManager) ReportRun(run *orchestrator.RunResult) ([]string, error) {
	if m.config.EnableConsole {
		if run.Calibration != nil {
			m.reporter.OutputPriceWindow(run.Calibration.Series, PriceWindowMonths)
		}
		m.reporter.OutputRun(run)
		if m.config.ShowHistogram {
			for _, h := range run.Horizons {
				m.reporter.OutputHistogram(h)
			}
		}
	}

	if !m.config.EnableFiles {
		return nil, nil
	}

	outputDir := m.config.OutputDirectory
	if outputDir == "" {
		outputDir = m.reporter.GetDefaultOutputDir(run.Symbol)
	}

	var written []string
	write := func(enabled bool, name string, fn func(*orchestrator.RunResult, string) error) error {
		if !enabled {
			return nil
		}
		path := filepath.Join(outputDir, name)
		if err := fn(run, path); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if err := write(m.config.CSVEnabled, HorizonsFileName, m.reporter.WriteRunCSV); err != nil {
		return written, err
	}
	if err := write(m.config.CSVEnabled, HistogramFileName, m.reporter.WriteHistogramCSV); err != nil {
		return written, err
	}
	if err := write(m.config.ExcelEnabled, ExcelFileName, m.reporter.WriteRunXLSX); err != nil {
		return written, err
	}
	if err := write(m.config.JSONEnabled, JSONFileName, m.reporter.WriteRunJSON); err != nil {
		return written, err
	}

	return written, nil
}
