package schedule

import (
	"errors"
	"fmt"
)

// Scheduling and reconciliation errors
var (
	// ErrInvalidScheduleInput is returned when a schedule cannot be built from
	// the given total, count, anchor date or stepping.
	ErrInvalidScheduleInput = errors.New("invalid schedule input")

	// ErrInvalidRecurrence is returned when a recurrence has a non-positive
	// interval or occurrence count, or a missing base date.
	ErrInvalidRecurrence = errors.New("invalid recurrence")

	// ErrNoPaymentSchedule is returned when a payment targets an expense
	// that has no installments.
	ErrNoPaymentSchedule = errors.New("expense has no payment schedule")

	// ErrMissingPaymentAccount is returned when a paid transition is requested
	// without a payment account. The API silently ignores such updates.
	ErrMissingPaymentAccount = errors.New("missing payment account")

	// ErrInstallmentOutOfRange is returned when a targeted installment number
	// does not exist in the schedule.
	ErrInstallmentOutOfRange = errors.New("installment number out of range")

	// ErrInstallmentAlreadyPaid is returned when a specific installment that is
	// already paid is targeted again.
	ErrInstallmentAlreadyPaid = errors.New("installment already paid")
)

// ScheduleError wraps errors with the operation that produced them.
type ScheduleError struct {
	// Op is the operation that failed (e.g., "Schedule", "ApplyPayment").
	Op string

	// Err is the underlying sentinel error.
	Err error

	// Details describes the offending input.
	Details string
}

// Error implements the error interface.
func (e *ScheduleError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("schedule: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("schedule: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ScheduleError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ScheduleError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newError(op string, err error, format string, args ...interface{}) *ScheduleError {
	return &ScheduleError{
		Op:      op,
		Err:     err,
		Details: fmt.Sprintf(format, args...),
	}
}
