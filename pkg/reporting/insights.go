package reporting

import (
	"fmt"

	"github.com/ducminhle1904/dca-montecarlo/internal/montecarlo"
	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"
)

// Insights returns one plain-language summary line per horizon
func Insights(run *orchestrator.RunResult, currency string) []string {
	insights := make([]string, 0, len(run.Horizons))
	for _, h := range run.Horizons {
		insights = append(insights, HorizonInsight(h, run.MonthlyInvestment, currency))
	}
	return insights
}

// HorizonInsight summarizes invested amount, median outcome, the p5-p95 range
// and the share of profitable paths of one horizon
func HorizonInsight(h montecarlo.HorizonResult, monthly float64, currency string) string {
	return fmt.Sprintf(
		"%s: investing %s/month (%s total), the median outcome is %s (%s). "+
			"90%% of outcomes fall between %s and %s; %s%% of simulations end in profit.",
		horizonLabel(h),
		FormatMoney(currency, monthly),
		FormatMoney(currency, h.TotalInvested),
		FormatMoney(currency, h.Percentiles.Median),
		FormatPercent(h.MedianROI),
		FormatMoney(currency, h.Percentiles.P5),
		FormatMoney(currency, h.Percentiles.P95),
		Pct(h.BreakEvenProbability).StringFixed(1),
	)
}

func horizonLabel(h montecarlo.HorizonResult) string {
	if h.HorizonMonths%12 == 0 {
		years := h.HorizonMonths / 12
		if years == 1 {
			return "1 year"
		}
		return fmt.Sprintf("%d years", years)
	}
	return fmt.Sprintf("%d months", h.HorizonMonths)
}
