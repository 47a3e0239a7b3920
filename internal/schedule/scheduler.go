// Package schedule builds and reconciles multi-installment payment schedules.
//
// It covers three pure operations used by the expense commands:
//   - Schedule splits a gross amount into installments with due dates
//   - Expand shifts a base expense into recurring occurrences
//   - ApplyPayment and Summarize reconcile and aggregate payment status
//
// Amounts are shopspring decimals with two fractional digits, rounded half-up
// (half away from zero). Dates are calendar dates at midnight UTC. Nothing in
// this package performs I/O or logging, and no function mutates its inputs.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"fic-expenses/pkg/models"
	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits kept for money amounts.
const AmountPlaces = 2

// Stepping selects how installment due dates advance month over month.
type Stepping int

const (
	// EndOfMonth puts installment i (1-indexed) on the last day of the month
	// i months after the anchor. The anchor month itself is never used.
	EndOfMonth Stepping = iota + 1

	// SameDay puts installment i (0-indexed) on the anchor shifted by i months,
	// clamped to the target month's last day.
	SameDay
)

// String returns the flag/config spelling of the stepping.
func (s Stepping) String() string {
	switch s {
	case EndOfMonth:
		return "end-of-month"
	case SameDay:
		return "same-day"
	default:
		return fmt.Sprintf("stepping(%d)", int(s))
	}
}

// IsValid reports whether s is a known stepping mode.
func (s Stepping) IsValid() bool {
	return s == EndOfMonth || s == SameDay
}

// ParseStepping parses a stepping name as accepted on the command line and in
// FIC_SCHEDULE_STEPPING.
func ParseStepping(s string) (Stepping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "end-of-month", "end_of_month", "eom":
		return EndOfMonth, nil
	case "same-day", "same_day":
		return SameDay, nil
	}
	return 0, newError("ParseStepping", ErrInvalidScheduleInput,
		"unknown stepping %q (use end-of-month or same-day)", s)
}

// DueDates returns count due dates starting from anchor under the given stepping.
func DueDates(anchor time.Time, count int, stepping Stepping) ([]time.Time, error) {
	const op = "DueDates"

	if count < 1 {
		return nil, newError(op, ErrInvalidScheduleInput, "count must be at least 1, got %d", count)
	}
	if anchor.IsZero() {
		return nil, newError(op, ErrInvalidScheduleInput, "anchor date is required")
	}

	anchor = Truncate(anchor)
	dates := make([]time.Time, 0, count)

	switch stepping {
	case EndOfMonth:
		monthStart := Day(anchor.Year(), anchor.Month(), 1)
		for i := 1; i <= count; i++ {
			dates = append(dates, LastDayOfMonth(AddMonths(monthStart, i)))
		}
	case SameDay:
		// Always shift from the anchor so a clamped month does not drag later days down
		for i := 0; i < count; i++ {
			dates = append(dates, AddMonths(anchor, i))
		}
	default:
		return nil, newError(op, ErrInvalidScheduleInput, "unknown stepping %d", int(stepping))
	}

	return dates, nil
}

// SplitAmount divides total into count parts. Every part but the last is
// round(total/count, 2); the last is total minus the others, recomputed from
// total so the parts always add up to total exactly. Every part is at least
// one cent.
func SplitAmount(total decimal.Decimal, count int) ([]decimal.Decimal, error) {
	const op = "SplitAmount"

	if count < 1 {
		return nil, newError(op, ErrInvalidScheduleInput, "count must be at least 1, got %d", count)
	}
	if !total.IsPositive() {
		return nil, newError(op, ErrInvalidScheduleInput, "total must be positive, got %s", total)
	}
	if !total.Equal(total.Round(AmountPlaces)) {
		return nil, newError(op, ErrInvalidScheduleInput, "total %s has more than %d decimal places", total, AmountPlaces)
	}

	n := decimal.NewFromInt(int64(count))
	base := total.Div(n).Round(AmountPlaces)
	last := total.Sub(base.Mul(n.Sub(decimal.NewFromInt(1))))
	if !base.IsPositive() || !last.IsPositive() {
		return nil, newError(op, ErrInvalidScheduleInput,
			"total %s is too small to split into %d installments", total.StringFixed(AmountPlaces), count)
	}

	parts := make([]decimal.Decimal, count)
	for i := 0; i < count-1; i++ {
		parts[i] = base
	}
	parts[count-1] = last

	return parts, nil
}

// Schedule builds count not-paid installments whose amounts sum to total and
// whose due dates follow stepping from anchor.
func Schedule(total decimal.Decimal, count int, anchor time.Time, stepping Stepping) ([]models.Installment, error) {
	const op = "Schedule"

	amounts, err := SplitAmount(total, count)
	if err != nil {
		return nil, wrapOp(op, err)
	}
	dates, err := DueDates(anchor, count, stepping)
	if err != nil {
		return nil, wrapOp(op, err)
	}

	installments := make([]models.Installment, count)
	for i := range installments {
		installments[i] = models.Installment{
			Amount:  amounts[i],
			DueDate: dates[i],
			Status:  models.InstallmentNotPaid,
		}
	}

	return installments, nil
}

// wrapOp re-labels a ScheduleError raised by a helper with the public operation.
func wrapOp(op string, err error) error {
	if se, ok := err.(*ScheduleError); ok {
		return &ScheduleError{Op: op, Err: se.Err, Details: se.Details}
	}
	return &ScheduleError{Op: op, Err: err}
}
