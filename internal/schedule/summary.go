package schedule

import (
	"fmt"
	"time"

	"fic-expenses/pkg/models"
	"github.com/shopspring/decimal"
)

// Status is the aggregate payment state of an expense.
type Status int

const (
	// StatusNoSchedule means the expense has no installment list.
	StatusNoSchedule Status = iota
	StatusUnpaid
	StatusPartial
	StatusPaid
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusPaid:
		return "paid"
	case StatusPartial:
		return "partial"
	case StatusUnpaid:
		return "unpaid"
	default:
		return "no schedule"
	}
}

// Summary aggregates an installment list for display and filtering.
type Summary struct {
	Status Status
	Paid   int
	Total  int

	// Earliest due date among unpaid installments; nil when nothing is due
	NextDue *time.Time

	PaidAmount   decimal.Decimal
	UnpaidAmount decimal.Decimal

	Label string
}

// IsPaid reports whether nothing is left to pay.
func (s Summary) IsPaid() bool {
	return s.Status == StatusPaid
}

// Summarize computes the aggregate status of a schedule.
func Summarize(installments []models.Installment) Summary {
	sum := Summary{
		Total:        len(installments),
		PaidAmount:   decimal.Zero,
		UnpaidAmount: decimal.Zero,
	}

	if len(installments) == 0 {
		sum.Status = StatusNoSchedule
		sum.Label = "No payments"
		return sum
	}

	for _, inst := range installments {
		if inst.Status.IsPaid() {
			sum.Paid++
			sum.PaidAmount = sum.PaidAmount.Add(inst.Amount)
			continue
		}
		sum.UnpaidAmount = sum.UnpaidAmount.Add(inst.Amount)
		if inst.DueDate.IsZero() {
			continue
		}
		if sum.NextDue == nil || inst.DueDate.Before(*sum.NextDue) {
			due := inst.DueDate
			sum.NextDue = &due
		}
	}

	switch {
	case sum.Paid == sum.Total:
		sum.Status = StatusPaid
		sum.Label = "Paid"
	case sum.Paid == 0:
		sum.Status = StatusUnpaid
	default:
		sum.Status = StatusPartial
	}

	if sum.Status != StatusPaid {
		if sum.Total == 1 {
			sum.Label = "Unpaid"
		} else {
			sum.Label = fmt.Sprintf("%d/%d paid", sum.Paid, sum.Total)
		}
	}

	return sum
}

// SummarizeListing derives the status from the next due date alone, which is
// all the remote list endpoint reports. A nil date means fully paid.
func SummarizeListing(nextDue *time.Time) Summary {
	if nextDue == nil {
		return Summary{Status: StatusPaid, Label: "Paid"}
	}
	due := Truncate(*nextDue)
	return Summary{Status: StatusUnpaid, NextDue: &due, Label: "Unpaid"}
}

// IsOverdue reports whether nextDue is strictly before today.
func IsOverdue(nextDue *time.Time, today time.Time) bool {
	if nextDue == nil {
		return false
	}
	return Truncate(*nextDue).Before(Truncate(today))
}
