package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet     = "Summary"
	histogramSheet   = "Histogram"
	samplePathSheet  = "Sample Path"
	calibrationSheet = "Calibration"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct {
	currency string
}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter(currency string) *DefaultExcelReporter {
	if currency == "" {
		currency = montecarlo.DefaultCurrencySymbol
	}
	return &DefaultExcelReporter{currency: currency}
}

// WriteRunXLSX writes a workbook with Summary, Histogram, Sample Path and Calibration sheets
func (r *DefaultExcelReporter) WriteRunXLSX(run *orchestrator.RunResult, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	for _, sheet := range []string{histogramSheet, samplePathSheet, calibrationSheet} {
		if _, err := fx.NewSheet(sheet); err != nil {
			return err
		}
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeSummarySheet(fx, run, styles); err != nil {
		return err
	}
	if err := r.writeHistogramSheet(fx, run, styles); err != nil {
		return err
	}
	if err := r.writeSamplePathSheet(fx, run, styles); err != nil {
		return err
	}
	if err := r.writeCalibrationSheet(fx, run, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}

	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	currencyFmt := fmt.Sprintf(`"%s"#,##0.00`, r.currency)
	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &currencyFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       border,
	})
	if err != nil {
		return styles, err
	}

	// Percentages are stored as fractions
	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	unitsFmt := "0.00000000"
	styles.NumberStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &unitsFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       border,
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.LabelStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "2F4F4F"},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"F0F8FF"},
			Pattern: 1,
		},
		Border: border,
	})
	if err != nil {
		return styles, err
	}

	return styles, nil
}

func (r *DefaultExcelReporter) writeHeader(fx *excelize.File, sheet string, headers []string, styles ExcelStyles) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := fx.SetCellStyle(sheet, "A1", last, styles.HeaderStyle); err != nil {
		return err
	}
	return fx.SetRowHeight(sheet, 1, 30)
}

// writeRow writes values starting at column A and applies one style per column
func writeRow(fx *excelize.File, sheet string, row int, values []interface{}, columnStyles []int) error {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := fx.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
		if i < len(columnStyles) {
			if err := fx.SetCellStyle(sheet, cell, cell, columnStyles[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, run *orchestrator.RunResult, styles ExcelStyles) error {
	headers := []string{
		"Horizon (months)", "Years", "Total Invested",
		"P5", "P25", "Median", "P75", "P95",
		"Median ROI", "Median Annualized", "Break-even", "Median Units",
	}
	if err := r.writeHeader(fx, summarySheet, headers, styles); err != nil {
		return err
	}

	cur, pct := styles.CurrencyStyle, styles.PercentStyle
	columnStyles := []int{styles.BaseStyle, styles.BaseStyle, cur, cur, cur, cur, cur, cur, pct, pct, pct, styles.NumberStyle}

	for i, h := range run.Horizons {
		p := h.Percentiles
		values := []interface{}{
			h.HorizonMonths,
			h.HorizonYears,
			Money(h.TotalInvested).InexactFloat64(),
			Money(p.P5).InexactFloat64(),
			Money(p.P25).InexactFloat64(),
			Money(p.Median).InexactFloat64(),
			Money(p.P75).InexactFloat64(),
			Money(p.P95).InexactFloat64(),
			h.MedianROI / 100,
			h.MedianAnnualizedReturn / 100,
			h.BreakEvenProbability / 100,
			h.MedianUnits,
		}
		if err := writeRow(fx, summarySheet, i+2, values, columnStyles); err != nil {
			return err
		}
	}

	// Insights below the table
	row := len(run.Horizons) + 3
	for _, line := range Insights(run, r.currency) {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := fx.SetCellValue(summarySheet, cell, line); err != nil {
			return err
		}
		row++
	}

	fx.SetColWidth(summarySheet, "A", "B", 14)
	fx.SetColWidth(summarySheet, "C", "H", 16)
	fx.SetColWidth(summarySheet, "I", "L", 15)
	return fx.SetPanes(summarySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// writeHistogramSheet lists every horizon's buckets and adds one column chart per horizon
func (r *DefaultExcelReporter) writeHistogramSheet(fx *excelize.File, run *orchestrator.RunResult, styles ExcelStyles) error {
	headers := []string{"Horizon (months)", "Bucket", "Label", "Lower", "Upper", "Value", "Count"}
	if err := r.writeHeader(fx, histogramSheet, headers, styles); err != nil {
		return err
	}

	cur := styles.CurrencyStyle
	columnStyles := []int{styles.BaseStyle, styles.BaseStyle, styles.BaseStyle, cur, cur, cur, styles.BaseStyle}

	row := 2
	chartRow := 2
	for _, h := range run.Horizons {
		if len(h.Histogram) == 0 {
			continue
		}
		first := row
		for i, b := range h.Histogram {
			values := []interface{}{
				h.HorizonMonths,
				i + 1,
				b.Label,
				Money(b.Lower).InexactFloat64(),
				Money(b.Upper).InexactFloat64(),
				Money(b.RepresentativeValue).InexactFloat64(),
				b.Count,
			}
			if err := writeRow(fx, histogramSheet, row, values, columnStyles); err != nil {
				return err
			}
			row++
		}
		last := row - 1

		anchor, _ := excelize.CoordinatesToCellName(9, chartRow)
		if err := fx.AddChart(histogramSheet, anchor, &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%d months", h.HorizonMonths),
				Categories: fmt.Sprintf("'%s'!$C$%d:$C$%d", histogramSheet, first, last),
				Values:     fmt.Sprintf("'%s'!$G$%d:$G$%d", histogramSheet, first, last),
			}},
			Title:  []excelize.RichTextRun{{Text: fmt.Sprintf("Final value distribution, %s", horizonLabel(h))}},
			Legend: excelize.ChartLegend{Position: "none"},
		}); err != nil {
			return err
		}
		chartRow += 16
	}

	return fx.SetColWidth(histogramSheet, "A", "G", 14)
}

// writeSamplePathSheet lists the month-by-month median trajectory of every horizon
func (r *DefaultExcelReporter) writeSamplePathSheet(fx *excelize.File, run *orchestrator.RunResult, styles ExcelStyles) error {
	headers := []string{"Horizon (months)", "Month", "Price", "Units Held", "Invested", "Value"}
	if err := r.writeHeader(fx, samplePathSheet, headers, styles); err != nil {
		return err
	}

	cur := styles.CurrencyStyle
	columnStyles := []int{styles.BaseStyle, styles.BaseStyle, cur, styles.NumberStyle, cur, cur}

	row := 2
	for _, h := range run.Horizons {
		path := h.SamplePath
		for i := range path.ValueHistory {
			values := []interface{}{
				h.HorizonMonths,
				i + 1,
				Money(path.PriceHistory[i]).InexactFloat64(),
				path.UnitHistory[i],
				Money(run.MonthlyInvestment * float64(i+1)).InexactFloat64(),
				Money(path.ValueHistory[i]).InexactFloat64(),
			}
			if err := writeRow(fx, samplePathSheet, row, values, columnStyles); err != nil {
				return err
			}
			row++
		}
	}

	return fx.SetColWidth(samplePathSheet, "A", "F", 16)
}

func (r *DefaultExcelReporter) writeCalibrationSheet(fx *excelize.File, run *orchestrator.RunResult, styles ExcelStyles) error {
	if err := r.writeHeader(fx, calibrationSheet, []string{"Parameter", "Value"}, styles); err != nil {
		return err
	}

	seed := "random"
	if run.Seed != nil {
		seed = fmt.Sprintf("%d", *run.Seed)
	}

	rows := [][]interface{}{
		{"Run ID", run.ID},
		{"Symbol", run.Symbol},
		{"Monthly Investment", Money(run.MonthlyInvestment).InexactFloat64()},
		{"Simulations per Horizon", run.SimulationCount},
		{"Seed", seed},
		{"Finished", run.FinishedAt.Format("2006-01-02 15:04:05")},
	}
	if cal := run.Calibration; cal != nil {
		rows = append(rows,
			[]interface{}{"Data Source", cal.Source},
			[]interface{}{"Synthetic History", cal.Synthetic},
			[]interface{}{"Start Price", Money(cal.StartPrice()).InexactFloat64()},
			[]interface{}{"Live Quote", Money(cal.QuotePrice).InexactFloat64()},
			[]interface{}{"Quote Fallback", cal.QuoteFallback},
			[]interface{}{"Mean Monthly Log Return", cal.Stats.MeanPeriodReturn},
			[]interface{}{"Std Monthly Log Return", cal.Stats.StdPeriodReturn},
			[]interface{}{"Annualized Return %", cal.Stats.AnnualizedReturn},
			[]interface{}{"Annualized Volatility %", cal.Stats.AnnualizedVolatility},
			[]interface{}{"Skewness", cal.Stats.Skewness},
			[]interface{}{"Excess Kurtosis", cal.Stats.Kurtosis},
			[]interface{}{"History Months", cal.Series.Len()},
		)
	}

	for i, values := range rows {
		if err := writeRow(fx, calibrationSheet, i+2, values, []int{styles.LabelStyle, styles.BaseStyle}); err != nil {
			return err
		}
	}

	// Recent closes next to the parameters
	if cal := run.Calibration; cal != nil && cal.Series.Len() > 0 {
		fx.SetCellValue(calibrationSheet, "D1", "Month")
		fx.SetCellValue(calibrationSheet, "E1", "Close")
		fx.SetCellStyle(calibrationSheet, "D1", "E1", styles.HeaderStyle)
		for i, p := range cal.Series.Tail(PriceWindowMonths).Points() {
			values := []interface{}{p.Period.Format("2006-01"), Money(p.Price).InexactFloat64()}
			for j, v := range values {
				cell, _ := excelize.CoordinatesToCellName(4+j, i+2)
				if err := fx.SetCellValue(calibrationSheet, cell, v); err != nil {
					return err
				}
			}
			closeCell, _ := excelize.CoordinatesToCellName(5, i+2)
			fx.SetCellStyle(calibrationSheet, closeCell, closeCell, styles.CurrencyStyle)
		}
		fx.SetColWidth(calibrationSheet, "D", "E", 14)
	}

	return fx.SetColWidth(calibrationSheet, "A", "B", 28)
}

// Package-level convenience function
func WriteRunXLSX(run *orchestrator.RunResult, path string) error {
	return NewDefaultExcelReporter("").WriteRunXLSX(run, path)
}
