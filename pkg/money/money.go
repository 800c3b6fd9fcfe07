package money

import (
	"fmt"
	"strings"
)

// Monetary amounts are carried as int64 cents everywhere inside the engine.
// Summation therefore stays exact; formatting back to a two-decimal string
// happens only at the API boundary.

// Parse converts a decimal string such as "50.25" into cents. It rejects
// negative values, more than two fractional digits and anything that is not
// a plain decimal number.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, fmt.Errorf("amount must be an unsigned decimal: %q", s)
	}

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" || len(frac) > 2 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	var cents int64
	for _, c := range whole {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents = cents*10 + int64(c-'0')
		if cents > 1<<53 {
			return 0, fmt.Errorf("amount %q is out of range", s)
		}
	}
	cents *= 100

	for i, c := range frac {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		if i == 0 {
			cents += int64(c-'0') * 10
		} else {
			cents += int64(c - '0')
		}
	}
	return cents, nil
}

// Format renders cents as a two-decimal string, e.g. 5025 -> "50.25".
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
