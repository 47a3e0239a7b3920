package display

import (
	"strings"
	"time"
	"unicode/utf8"

	"fic-expenses/internal/schedule"
	"github.com/shopspring/decimal"
)

// Money formats an amount as euros with thousands separators: €1,234.56.
func Money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	s := d.StringFixed(schedule.AmountPlaces)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + "€" + b.String() + "." + frac
}

// Date formats a calendar date, "-" when unset.
func Date(t time.Time) string {
	return schedule.FormatDate(t)
}

// DatePtr formats an optional date, "-" when nil.
func DatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return schedule.FormatDate(*t)
}

// Truncate shortens s to at most n runes followed by "...". Blank
// strings become "-".
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

// MaskToken hides all but the first and last four characters of a secret.
func MaskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", 8) + token[len(token)-4:]
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
