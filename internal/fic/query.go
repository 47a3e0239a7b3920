package fic

import (
	"strings"
	"time"

	"fic-expenses/internal/schedule"
)

// Filter narrows an expense listing on the server side.
type Filter struct {
	Supplier string    // substring match on the supplier name
	From     time.Time // inclusive, zero for no lower bound
	To       time.Time // inclusive, zero for no upper bound
}

// IsZero reports whether the filter has no conditions.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Supplier) == "" && f.From.IsZero() && f.To.IsZero()
}

// Query renders the filter in the API's q syntax, e.g.
//
//	entity.name LIKE '%acme%' AND date >= '2025-01-01'
func (f Filter) Query() string {
	var parts []string

	if s := strings.TrimSpace(f.Supplier); s != "" {
		parts = append(parts, "entity.name LIKE '%"+quote(s)+"%'")
	}
	if !f.From.IsZero() {
		parts = append(parts, "date >= '"+schedule.FormatDate(f.From)+"'")
	}
	if !f.To.IsZero() {
		parts = append(parts, "date <= '"+schedule.FormatDate(f.To)+"'")
	}

	return strings.Join(parts, " AND ")
}

// quote doubles single quotes so user input cannot close the literal.
func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
