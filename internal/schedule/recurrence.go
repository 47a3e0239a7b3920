package schedule

import (
	"strconv"
	"strings"
	"time"
)

// Recurrence limits.
const (
	MaxOccurrences  = 36
	MaxInstallments = 120
)

// Period is a named recurrence interval in months.
type Period int

// Named recurrence intervals.
const (
	Monthly    Period = 1
	Bimonthly  Period = 2
	Quarterly  Period = 3
	Biannual   Period = 6
	Yearly     Period = 12
	noInterval Period = 0
)

var periodNames = map[string]Period{
	"monthly":    Monthly,
	"bimonthly":  Bimonthly,
	"quarterly":  Quarterly,
	"biannual":   Biannual,
	"semiannual": Biannual,
	"yearly":     Yearly,
	"annual":     Yearly,
}

// Months returns the interval length.
func (p Period) Months() int {
	return int(p)
}

// String returns the period name, or "every N months" for unnamed intervals.
func (p Period) String() string {
	switch p {
	case Monthly:
		return "monthly"
	case Bimonthly:
		return "bimonthly"
	case Quarterly:
		return "quarterly"
	case Biannual:
		return "biannual"
	case Yearly:
		return "yearly"
	case noInterval:
		return "none"
	}
	return "every " + strconv.Itoa(int(p)) + " months"
}

// ParsePeriod resolves a recurrence name such as "quarterly".
func ParsePeriod(name string) (Period, error) {
	if p, ok := periodNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p, nil
	}
	return noInterval, newError("ParsePeriod", ErrInvalidRecurrence,
		"unknown recurrence %q (use monthly, bimonthly, quarterly, biannual or yearly)", name)
}

// Occurrence holds the shifted dates of one repetition of a recurring expense.
type Occurrence struct {
	Index        int // 0-based
	ExpenseDate  time.Time
	FirstDueDate time.Time
}

// Expand shifts a base expense date and first due date forward by multiples of
// everyMonths. Occurrence i is base + i*everyMonths months; occurrence 0 is the
// base itself. Each date is computed from the base so clamping never accumulates.
func Expand(baseExpenseDate, baseFirstDue time.Time, everyMonths, occurrences int) ([]Occurrence, error) {
	const op = "Expand"

	if everyMonths < 1 {
		return nil, newError(op, ErrInvalidRecurrence, "interval must be at least 1 month, got %d", everyMonths)
	}
	if occurrences < 1 || occurrences > MaxOccurrences {
		return nil, newError(op, ErrInvalidRecurrence, "occurrences must be between 1 and %d, got %d", MaxOccurrences, occurrences)
	}
	if baseExpenseDate.IsZero() || baseFirstDue.IsZero() {
		return nil, newError(op, ErrInvalidRecurrence, "base expense date and first due date are required")
	}

	baseExpenseDate = Truncate(baseExpenseDate)
	baseFirstDue = Truncate(baseFirstDue)

	out := make([]Occurrence, occurrences)
	for i := range out {
		shift := i * everyMonths
		out[i] = Occurrence{
			Index:        i,
			ExpenseDate:  AddMonths(baseExpenseDate, shift),
			FirstDueDate: AddMonths(baseFirstDue, shift),
		}
	}

	return out, nil
}
