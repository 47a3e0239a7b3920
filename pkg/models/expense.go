package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatus is the payment state of a single installment.
type InstallmentStatus string

const (
	InstallmentNotPaid InstallmentStatus = "not_paid"
	InstallmentPaid    InstallmentStatus = "paid"
)

// IsPaid reports whether the status is paid.
func (s InstallmentStatus) IsPaid() bool {
	return s == InstallmentPaid
}

// Installment is one scheduled payment of an expense.
type Installment struct {
	Amount  decimal.Decimal   // 2 fractional digits, > 0
	DueDate time.Time         // Scadenza
	Status  InstallmentStatus // not_paid or paid

	// Set only when Status is paid
	PaidDate         time.Time
	PaymentAccountID int64
}

// Expense is a received document of type "expense".
type Expense struct {
	// Assigned by the remote system on creation, 0 before
	ID int64

	SupplierName string
	Description  string
	Category     string

	AmountNet decimal.Decimal
	AmountVAT decimal.Decimal

	ExpenseDate time.Time

	// Ordered by due date; empty means a single lump payment
	Installments []Installment

	// Informational percentages (0-100)
	TaxDeductibility decimal.Decimal
	VATDeductibility decimal.Decimal

	// Server computed: nil when fully paid. Only reliable on list responses.
	NextDueDate *time.Time

	// Document is the payload as last fetched from the API. Updates are
	// merged onto it so fields not modelled here are sent back unchanged.
	Document json.RawMessage
}

// AmountGross returns net + VAT.
func (e Expense) AmountGross() decimal.Decimal {
	return e.AmountNet.Add(e.AmountVAT)
}

// HasSchedule reports whether the expense carries an installment list.
func (e Expense) HasSchedule() bool {
	return len(e.Installments) > 0
}

// PaymentAccount is a bank account, card or cash register payments are booked on.
type PaymentAccount struct {
	ID   int64
	Name string
	Type string
}
