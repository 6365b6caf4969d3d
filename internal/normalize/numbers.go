package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

var amountCleaner = strings.NewReplacer("$", "", ",", "", " ", "", "\t", "", "USD", "", "usd", "")

// ParseAmount coerces source text to a decimal. Currency symbols, thousands
// separators and whitespace are ignored; a value wrapped in parentheses is
// negative. Anything unparseable is zero.
func ParseAmount(s string) decimal.Decimal {
	s = amountCleaner.Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if neg {
		d = d.Neg()
	}
	return d
}

// ParseInt coerces source text to an int, truncating any fraction.
func ParseInt(s string) int {
	return int(ParseAmount(s).IntPart())
}

// money rounds to cents and converts for the canonical shapes.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
