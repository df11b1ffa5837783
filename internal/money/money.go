// Package money holds the small numeric and calendar helpers every billing
// computation goes through: 2-digit rounding, month arithmetic, public ids
// and the Brazilian display formats used in outbound messages.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Cents is the number of fractional digits stored for currency values.
const Cents = 2

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Cents)
}

// Sum adds values and rounds the result.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return Round2(total)
}

// FormatBRL renders a value as "R$1.234,56".
func FormatBRL(d decimal.Decimal) string {
	s := Round2(d).StringFixed(Cents)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "R$" + b.String() + "," + frac
	if neg {
		return "-" + out
	}
	return out
}
