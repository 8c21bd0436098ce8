package notifications

import (
	"fmt"
	"strings"

	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"
	"github.com/ducminhle1904/dca-montecarlo/pkg/reporting"
)

// RunSummary renders a short per-horizon message for a finished run
func RunSummary(run *orchestrator.RunResult, currency string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s per month, %d paths\n", run.Symbol,
		reporting.FormatMoney(currency, run.MonthlyInvestment), run.SimulationCount)
	if run.Calibration != nil {
		fmt.Fprintf(&b, "Start price %s (%s)\n",
			reporting.FormatMoney(currency, run.Calibration.StartPrice()), run.Calibration.Source)
	}

	for _, insight := range reporting.Insights(run, currency) {
		fmt.Fprintf(&b, "\n%s\n", insight)
	}
	return strings.TrimRight(b.String(), "\n")
}
