package expenses

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"fic-expenses/internal/schedule"
	"fic-expenses/pkg/models"
	"github.com/shopspring/decimal"
)

// StatusFilter selects expenses by payment state.
type StatusFilter int

const (
	FilterAll StatusFilter = iota
	FilterPaid
	FilterUnpaid
)

// String implements fmt.Stringer.
func (f StatusFilter) String() string {
	switch f {
	case FilterPaid:
		return "paid"
	case FilterUnpaid:
		return "unpaid"
	default:
		return "all"
	}
}

// Next cycles all -> paid -> unpaid -> all.
func (f StatusFilter) Next() StatusFilter {
	return (f + 1) % 3
}

// ParseStatusFilter parses "all", "paid" or "unpaid".
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "paid":
		return FilterPaid, nil
	case "unpaid":
		return FilterUnpaid, nil
	}
	return FilterAll, fmt.Errorf("unknown status filter %q (use all, paid or unpaid)", s)
}

// IsPaid reports whether e has nothing left to pay. The installment list is
// used when present, otherwise the server computed next due date.
func IsPaid(e models.Expense) bool {
	return StatusOf(e).IsPaid()
}

// StatusOf summarizes an expense from whatever the API returned for it.
func StatusOf(e models.Expense) schedule.Summary {
	if e.HasSchedule() {
		return schedule.Summarize(e.Installments)
	}
	return schedule.SummarizeListing(e.NextDueDate)
}

// FilterByStatus returns the expenses matching f, preserving order.
func FilterByStatus(expenses []models.Expense, f StatusFilter) []models.Expense {
	if f == FilterAll {
		return expenses
	}

	out := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if IsPaid(e) == (f == FilterPaid) {
			out = append(out, e)
		}
	}
	return out
}

// SupplierTotal is the gross spent with one supplier.
type SupplierTotal struct {
	Name  string
	Total decimal.Decimal
	Count int
}

// Stats aggregates a list of expenses.
type Stats struct {
	Count      int
	TotalGross decimal.Decimal

	PaidCount   int
	PaidTotal   decimal.Decimal
	UnpaidCount int
	UnpaidTotal decimal.Decimal

	OverdueCount int
	OverdueTotal decimal.Decimal

	// Zero when no expense carries a date
	FirstDate time.Time
	LastDate  time.Time

	Suppliers int

	ThisMonth    decimal.Decimal
	LastMonth    decimal.Decimal
	YearToDate   decimal.Decimal
	MonthlyAvg   decimal.Decimal
	TopSuppliers []SupplierTotal // at most 3, by total descending
}

const topSuppliers = 3

// ComputeStats aggregates expenses relative to today. The monthly average
// covers months that have expenses, excluding the current one.
func ComputeStats(expenses []models.Expense, today time.Time) Stats {
	today = schedule.Truncate(today)
	thisMonthStart := schedule.Day(today.Year(), today.Month(), 1)
	lastMonthStart := schedule.AddMonths(thisMonthStart, -1)
	yearStart := schedule.Day(today.Year(), time.January, 1)

	st := Stats{
		Count:        len(expenses),
		TotalGross:   decimal.Zero,
		PaidTotal:    decimal.Zero,
		UnpaidTotal:  decimal.Zero,
		OverdueTotal: decimal.Zero,
		ThisMonth:    decimal.Zero,
		LastMonth:    decimal.Zero,
		YearToDate:   decimal.Zero,
		MonthlyAvg:   decimal.Zero,
	}

	type monthKey struct {
		year  int
		month time.Month
	}
	monthly := make(map[monthKey]decimal.Decimal)
	suppliers := make(map[string]*SupplierTotal)

	for _, e := range expenses {
		gross := e.AmountGross()
		st.TotalGross = st.TotalGross.Add(gross)

		sum := StatusOf(e)
		if sum.IsPaid() {
			st.PaidCount++
			st.PaidTotal = st.PaidTotal.Add(gross)
		} else {
			st.UnpaidCount++
			st.UnpaidTotal = st.UnpaidTotal.Add(gross)
			if schedule.IsOverdue(sum.NextDue, today) {
				st.OverdueCount++
				st.OverdueTotal = st.OverdueTotal.Add(gross)
			}
		}

		name := strings.TrimSpace(e.SupplierName)
		if name == "" {
			name = "Unknown"
		}
		s, ok := suppliers[name]
		if !ok {
			s = &SupplierTotal{Name: name, Total: decimal.Zero}
			suppliers[name] = s
		}
		s.Total = s.Total.Add(gross)
		s.Count++

		if e.ExpenseDate.IsZero() {
			continue
		}
		d := schedule.Truncate(e.ExpenseDate)
		if st.FirstDate.IsZero() || d.Before(st.FirstDate) {
			st.FirstDate = d
		}
		if d.After(st.LastDate) {
			st.LastDate = d
		}

		if !d.Before(thisMonthStart) {
			st.ThisMonth = st.ThisMonth.Add(gross)
		}
		if !d.Before(lastMonthStart) && d.Before(thisMonthStart) {
			st.LastMonth = st.LastMonth.Add(gross)
		}
		if !d.Before(yearStart) {
			st.YearToDate = st.YearToDate.Add(gross)
		}

		k := monthKey{d.Year(), d.Month()}
		monthly[k] = monthly[k].Add(gross)
	}

	st.Suppliers = len(suppliers)

	completed := decimal.Zero
	months := 0
	for k, total := range monthly {
		if k.year == today.Year() && k.month == today.Month() {
			continue
		}
		completed = completed.Add(total)
		months++
	}
	if months > 0 {
		st.MonthlyAvg = completed.Div(decimal.NewFromInt(int64(months))).Round(schedule.AmountPlaces)
	}

	ranked := make([]SupplierTotal, 0, len(suppliers))
	for _, s := range suppliers {
		ranked = append(ranked, *s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].Total.Cmp(ranked[j].Total); c != 0 {
			return c > 0
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > topSuppliers {
		ranked = ranked[:topSuppliers]
	}
	st.TopSuppliers = ranked

	return st
}
