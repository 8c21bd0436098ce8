package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteRunCSV writes one row per horizon. A .xlsx path is delegated to the Excel writer.
func (r *DefaultCSVReporter) WriteRunCSV(run *orchestrator.RunResult, path string) error {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return WriteRunXLSX(run, path)
	}

	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{
			"Horizon_Months",
			"Horizon_Years",
			"Total_Invested",
			"P5",
			"P25",
			"Median",
			"P75",
			"P95",
			"Median_Units",
			"Median_ROI_%",
			"Median_Annualized_%",
			"Break_Even_%",
		}); err != nil {
			return err
		}

		for _, h := range NewRunReport(run, "").Horizons {
			row := []string{
				strconv.Itoa(h.HorizonMonths),
				strconv.FormatFloat(h.HorizonYears, 'f', 2, 64),
				h.TotalInvested.StringFixed(2),
				h.P5.StringFixed(2),
				h.P25.StringFixed(2),
				h.Median.StringFixed(2),
				h.P75.StringFixed(2),
				h.P95.StringFixed(2),
				strconv.FormatFloat(h.MedianUnits, 'f', 8, 64),
				h.MedianROIPct.StringFixed(2),
				h.MedianAnnualizedPct.StringFixed(2),
				h.BreakEvenProbabilityPct.StringFixed(2),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}

		source := ""
		if run.Calibration != nil {
			source = run.Calibration.Source
		}
		summary := fmt.Sprintf("SUMMARY: run=%s; symbol=%s; monthly=%s; simulations=%d; source=%s",
			run.ID, run.Symbol, Money(run.MonthlyInvestment).StringFixed(2), run.SimulationCount, source)

		summaryRow := make([]string, 12)
		summaryRow[11] = summary
		return w.Write(summaryRow)
	})
}

// WriteHistogramCSV writes the histogram of every horizon in long format
func (r *DefaultCSVReporter) WriteHistogramCSV(run *orchestrator.RunResult, path string) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"Horizon_Months", "Bucket", "Label", "Lower", "Upper", "Value", "Count"}); err != nil {
			return err
		}
		for _, h := range run.Horizons {
			for i, b := range h.Histogram {
				row := []string{
					strconv.Itoa(h.HorizonMonths),
					strconv.Itoa(i + 1),
					b.Label,
					Money(b.Lower).StringFixed(2),
					Money(b.Upper).StringFixed(2),
					Money(b.RepresentativeValue).StringFixed(2),
					strconv.Itoa(b.Count),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func writeCSV(path string, write func(*csv.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := write(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// Package-level convenience function
func WriteRunCSV(run *orchestrator.RunResult, path string) error {
	return NewDefaultCSVReporter().WriteRunCSV(run, path)
}
