package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"
	"github.com/ducminhle1904/dca-montecarlo/pkg/types"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const histogramBarWidth = 40

// DefaultConsoleReporter implements console output functionality
type DefaultConsoleReporter struct {
	out      io.Writer
	currency string
}

// NewDefaultConsoleReporter creates a console reporter writing to stdout
func NewDefaultConsoleReporter(currency string) *DefaultConsoleReporter {
	return NewConsoleReporterWithWriter(os.Stdout, currency)
}

// NewConsoleReporterWithWriter creates a console reporter writing to w
func NewConsoleReporterWithWriter(w io.Writer, currency string) *DefaultConsoleReporter {
	if currency == "" {
		currency = montecarlo.DefaultCurrencySymbol
	}
	return &DefaultConsoleReporter{out: w, currency: currency}
}

// OutputRun prints the setup, the per-horizon table and the insights of a run
func (r *DefaultConsoleReporter) OutputRun(run *orchestrator.RunResult) {
	r.outputSetup(run)
	r.outputHorizons(run)

	fmt.Fprintln(r.out, "💡 INSIGHTS")
	for _, line := range Insights(run, r.currency) {
		fmt.Fprintf(r.out, "  • %s\n", line)
	}
	fmt.Fprintln(r.out)
}

func (r *DefaultConsoleReporter) outputSetup(run *orchestrator.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("MONTE CARLO SETUP")
	t.SetStyle(table.StyleRounded)

	seed := "random"
	if run.Seed != nil {
		seed = fmt.Sprintf("%d", *run.Seed)
	}

	t.AppendRows([]table.Row{
		{"📊 Symbol", run.Symbol},
		{"💵 Monthly Investment", FormatMoney(r.currency, run.MonthlyInvestment)},
		{"🎲 Simulations", fmt.Sprintf("%d per horizon", run.SimulationCount)},
		{"🌱 Seed", seed},
	})

	if cal := run.Calibration; cal != nil {
		quote := FormatMoney(r.currency, cal.QuotePrice)
		if cal.QuoteFallback {
			quote += " (baseline, quote unavailable)"
		}

		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"📚 Data Source", cal.Source},
			{"💰 Start Price", FormatMoney(r.currency, cal.StartPrice())},
			{"🏷️ Live Quote", quote},
			{"📈 Annualized Return", FormatPercent(cal.Stats.AnnualizedReturn)},
			{"🌊 Annualized Volatility", Pct(cal.Stats.AnnualizedVolatility).StringFixed(2) + "%"},
		})
	}

	t.AppendSeparator()
	t.AppendRow(table.Row{"⏱️ Duration", run.Duration().String()})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 26, WidthMax: 26, Align: text.AlignLeft},
		{Number: 2, WidthMin: 30, WidthMax: 60, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Fprintln(r.out)
}

func (r *DefaultConsoleReporter) outputHorizons(run *orchestrator.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("SIMULATED PORTFOLIO VALUE")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Horizon", "Invested", "P5", "P25", "Median", "P75", "P95", "Median ROI", "Annualized", "Break-even"})
	for _, h := range run.Horizons {
		p := h.Percentiles
		t.AppendRow(table.Row{
			horizonLabel(h),
			FormatMoney(r.currency, h.TotalInvested),
			FormatMoney(r.currency, p.P5),
			FormatMoney(r.currency, p.P25),
			FormatMoney(r.currency, p.Median),
			FormatMoney(r.currency, p.P75),
			FormatMoney(r.currency, p.P95),
			FormatPercent(h.MedianROI),
			FormatPercent(h.MedianAnnualizedReturn),
			Pct(h.BreakEvenProbability).StringFixed(1) + "%",
		})
	}

	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft}}
	for col := 2; col <= 10; col++ {
		configs = append(configs, table.ColumnConfig{Number: col, Align: text.AlignRight})
	}
	t.SetColumnConfigs(configs)

	t.Render()
	fmt.Fprintln(r.out)
}

// OutputHistogram prints the final value distribution of a horizon as bars
func (r *DefaultConsoleReporter) OutputHistogram(result montecarlo.HorizonResult) {
	fmt.Fprintf(r.out, "📊 FINAL VALUE DISTRIBUTION (%s)\n", horizonLabel(result))

	maxCount := 0
	for _, b := range result.Histogram {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	if maxCount == 0 {
		fmt.Fprintln(r.out, "  (no data)")
		return
	}

	for _, b := range result.Histogram {
		bar := strings.Repeat("█", b.Count*histogramBarWidth/maxCount)
		fmt.Fprintf(r.out, "  %8s │%-*s %d\n", b.Label, histogramBarWidth, bar, b.Count)
	}
	fmt.Fprintln(r.out)
}

// OutputPriceWindow prints a compact summary of the last months of history
func (r *DefaultConsoleReporter) OutputPriceWindow(series types.PriceSeries, months int) {
	window := series.Tail(months)
	if window.Len() == 0 {
		return
	}

	prices := window.Prices()
	low, high := prices[0], prices[0]
	for _, p := range prices {
		if p < low {
			low = p
		}
		if p > high {
			high = p
		}
	}
	first := window.At(0)
	last, _ := window.Last()

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(fmt.Sprintf("LAST %d MONTHS", window.Len()))
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"📅 Period", fmt.Sprintf("%s → %s", first.Period.Format("2006-01"), last.Period.Format("2006-01"))},
		{"🔻 Low", FormatMoney(r.currency, low)},
		{"🔺 High", FormatMoney(r.currency, high)},
		{"💰 Last Close", FormatMoney(r.currency, last.Price)},
		{"📈 Change", FormatPercent((last.Price/first.Price - 1) * 100)},
	})
	t.Render()
	fmt.Fprintln(r.out)
}
