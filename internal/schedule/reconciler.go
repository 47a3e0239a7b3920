package schedule

import (
	"fmt"
	"time"

	"fic-expenses/pkg/models"
)

// Target selects which installments a payment applies to.
type Target struct {
	all    bool
	number int // 1-indexed
}

// AllInstallments targets every installment that is not paid yet.
var AllInstallments = Target{all: true}

// Installment targets the k-th installment (1-indexed, in due-date order).
func Installment(k int) Target {
	return Target{number: k}
}

// IsAll reports whether the target covers every unpaid installment.
func (t Target) IsAll() bool {
	return t.all
}

// Number returns the 1-indexed installment number, or 0 for AllInstallments.
func (t Target) Number() int {
	return t.number
}

// String implements fmt.Stringer.
func (t Target) String() string {
	if t.IsAll() {
		return "all"
	}
	return fmt.Sprintf("installment %d", t.number)
}

// ResolvePaidDate returns the date a payment is booked on: the explicit date
// when set, else the installment's due date, else the fallback.
func ResolvePaidDate(explicit time.Time, inst models.Installment, fallback time.Time) time.Time {
	switch {
	case !explicit.IsZero():
		return Truncate(explicit)
	case !inst.DueDate.IsZero():
		return Truncate(inst.DueDate)
	default:
		return Truncate(fallback)
	}
}

// ApplyPayment marks the targeted installments as paid on accountID and returns
// the updated schedule. The input slice is never modified. Either every
// targeted installment is updated or an error is returned and nothing is.
//
// With AllInstallments, installments already paid are left untouched, so
// applying the same payment twice gives the same result as applying it once.
// Targeting a single installment that is already paid is an error.
func ApplyPayment(installments []models.Installment, target Target, paidDate, fallback time.Time, accountID int64) ([]models.Installment, error) {
	const op = "ApplyPayment"

	if len(installments) == 0 {
		return nil, newError(op, ErrNoPaymentSchedule, "nothing to pay for %s", target)
	}
	if accountID == 0 {
		return nil, newError(op, ErrMissingPaymentAccount, "a payment account is required to mark %s as paid", target)
	}
	if !target.IsAll() {
		k := target.Number()
		if k < 1 || k > len(installments) {
			return nil, newError(op, ErrInstallmentOutOfRange, "installment %d requested, schedule has %d", k, len(installments))
		}
		if installments[k-1].Status.IsPaid() {
			return nil, newError(op, ErrInstallmentAlreadyPaid, "installment %d was paid on %s", k, FormatDate(installments[k-1].PaidDate))
		}
	}

	updated := make([]models.Installment, len(installments))
	copy(updated, installments)

	for i := range updated {
		if target.IsAll() {
			if updated[i].Status.IsPaid() {
				continue
			}
		} else if i != target.Number()-1 {
			continue
		}

		updated[i].Status = models.InstallmentPaid
		updated[i].PaidDate = ResolvePaidDate(paidDate, updated[i], fallback)
		updated[i].PaymentAccountID = accountID
	}

	return updated, nil
}

// UnpaidCount returns the number of installments still to be paid.
func UnpaidCount(installments []models.Installment) int {
	n := 0
	for _, inst := range installments {
		if !inst.Status.IsPaid() {
			n++
		}
	}
	return n
}
