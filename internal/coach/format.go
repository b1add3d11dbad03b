package coach

import (
	"math"
	"strconv"
	"strings"
)

// formatPct renders an adherence value the way the dashboard shows it:
// whole numbers without a decimal point, fractions as-is.
func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatMoney renders an amount with es-CL thousand separators.
func formatMoney(v float64) string {
	whole := strconv.FormatInt(int64(math.Round(v)), 10)
	negative := strings.HasPrefix(whole, "-")
	if negative {
		whole = whole[1:]
	}

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// plural picks the singular form when n is exactly one.
func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}
