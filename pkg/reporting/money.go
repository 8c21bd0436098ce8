package reporting

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money rounds a monetary amount to cents
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Pct rounds a percentage to two decimals
func Pct(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// FormatMoney renders v with the currency symbol and thousands separators,
// e.g. "€12,345.67" or "-€1,000.00"
func FormatMoney(symbol string, v float64) string {
	d := Money(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	s := d.Abs().StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-3:]
	return sign + symbol + groupThousands(whole) + frac
}

// FormatPercent renders a percentage with a sign, e.g. "+42.86%"
func FormatPercent(v float64) string {
	d := Pct(v)
	if d.IsPositive() {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
