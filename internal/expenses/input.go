package expenses

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fic-expenses/internal/schedule"
	"github.com/shopspring/decimal"
)

// ErrInvalidInput is matched by every ValidationError.
var ErrInvalidInput = errors.New("invalid expense input")

// Input defaults.
var (
	DefaultVATRate       = decimal.NewFromInt(22)
	DefaultDeductibility = decimal.NewFromInt(100)
)

const defaultInstallmentCount = 1

var hundred = decimal.NewFromInt(100)

// ValidationError represents an invalid field of an expense request.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Input is a request to create one expense, optionally split into
// installments and repeated on a recurrence.
type Input struct {
	Supplier    string
	Description string
	Category    string

	AmountNet decimal.Decimal
	VATRate   decimal.Decimal // percent, 0-100

	ExpenseDate time.Time

	Installments int
	FirstDue     time.Time // optional anchor for the schedule
	Stepping     schedule.Stepping

	// EveryMonths is the recurrence interval; 0 means a single expense.
	EveryMonths int
	Occurrences int

	TaxDeductibility decimal.Decimal
	VATDeductibility decimal.Decimal
}

// NewInput returns an Input with the defaults used by the CLI and the wizard.
func NewInput(today time.Time, stepping schedule.Stepping) Input {
	return Input{
		VATRate:          DefaultVATRate,
		ExpenseDate:      schedule.Truncate(today),
		Installments:     defaultInstallmentCount,
		Stepping:         stepping,
		Occurrences:      1,
		TaxDeductibility: DefaultDeductibility,
		VATDeductibility: DefaultDeductibility,
	}
}

// VAT returns round(net * rate / 100, 2).
func (in Input) VAT() decimal.Decimal {
	return in.AmountNet.Mul(in.VATRate).Div(hundred).Round(schedule.AmountPlaces)
}

// Gross returns net + VAT.
func (in Input) Gross() decimal.Decimal {
	return in.AmountNet.Add(in.VAT())
}

// Anchor is the date the installment schedule starts from. End-of-month
// stepping skips the anchor month, so a first due date is moved back one
// month to keep the first installment at the end of its own month.
func (in Input) Anchor() time.Time {
	if in.FirstDue.IsZero() {
		return in.ExpenseDate
	}
	if in.Stepping == schedule.EndOfMonth {
		return schedule.AddMonths(in.FirstDue, -1)
	}
	return in.FirstDue
}

// IsRecurring reports whether more than one expense will be created.
func (in Input) IsRecurring() bool {
	return in.Occurrences > 1
}

// Validate checks the request before anything is computed or sent.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Supplier) == "" {
		return NewValidationError("supplier", in.Supplier, "supplier name is required")
	}
	if !in.AmountNet.IsPositive() {
		return NewValidationError("amount_net", in.AmountNet.String(), "net amount must be positive")
	}
	if !in.AmountNet.Equal(in.AmountNet.Round(schedule.AmountPlaces)) {
		return NewValidationError("amount_net", in.AmountNet.String(), "net amount has more than 2 decimal places")
	}
	if in.VATRate.IsNegative() || in.VATRate.GreaterThan(hundred) {
		return NewValidationError("vat_rate", in.VATRate.String(), "VAT rate must be between 0 and 100")
	}
	if in.ExpenseDate.IsZero() {
		return NewValidationError("date", "", "expense date is required")
	}
	if in.Installments < 1 || in.Installments > schedule.MaxInstallments {
		return NewValidationError("installments", in.Installments,
			fmt.Sprintf("installments must be between 1 and %d", schedule.MaxInstallments))
	}
	if !in.Stepping.IsValid() {
		return NewValidationError("stepping", in.Stepping.String(), "unknown stepping")
	}
	if in.Occurrences < 1 || in.Occurrences > schedule.MaxOccurrences {
		return NewValidationError("occurrences", in.Occurrences,
			fmt.Sprintf("occurrences must be between 1 and %d", schedule.MaxOccurrences))
	}
	if in.EveryMonths < 0 {
		return NewValidationError("every", in.EveryMonths, "recurrence interval cannot be negative")
	}
	if in.Occurrences > 1 && in.EveryMonths < 1 {
		return NewValidationError("recurrence", in.EveryMonths, "a recurrence is required for more than one occurrence")
	}
	for field, v := range map[string]decimal.Decimal{
		"tax_deductibility": in.TaxDeductibility,
		"vat_deductibility": in.VATDeductibility,
	} {
		if v.IsNegative() || v.GreaterThan(hundred) {
			return NewValidationError(field, v.String(), "percentage must be between 0 and 100")
		}
	}
	return nil
}
