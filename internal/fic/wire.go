package fic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"fic-expenses/internal/schedule"
	"fic-expenses/pkg/models"
	"github.com/shopspring/decimal"
)

const documentTypeExpense = "expense"

// apiAmount is a money value sent as a bare JSON number with two decimals.
type apiAmount decimal.Decimal

func (a apiAmount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).StringFixed(schedule.AmountPlaces)), nil
}

func (a *apiAmount) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*a = apiAmount(d)
	return nil
}

func (a apiAmount) value() decimal.Decimal {
	return decimal.Decimal(a)
}

// amountPtr returns nil for zero so unset percentages are left to the server.
func amountPtr(d decimal.Decimal) *apiAmount {
	if d.IsZero() {
		return nil
	}
	a := apiAmount(d)
	return &a
}

// apiDate is a YYYY-MM-DD calendar date. JSON null decodes to the zero time.
type apiDate time.Time

func (d apiDate) MarshalJSON() ([]byte, error) {
	t := time.Time(d)
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(schedule.DateLayout) + `"`), nil
}

func (d *apiDate) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*d = apiDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	// Some endpoints return full timestamps
	if len(s) > len(schedule.DateLayout) {
		s = s[:len(schedule.DateLayout)]
	}
	t, err := schedule.ParseDate(s)
	if err != nil {
		return fmt.Errorf("date %q: %w", s, err)
	}
	*d = apiDate(t)
	return nil
}

func (d *apiDate) value() time.Time {
	if d == nil {
		return time.Time{}
	}
	return time.Time(*d)
}

func datePtr(t time.Time) *apiDate {
	if t.IsZero() {
		return nil
	}
	d := apiDate(schedule.Truncate(t))
	return &d
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

type listEnvelope[T any] struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	Data        []T `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

type wireEntity struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

type wirePaymentAccount struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

type wirePayment struct {
	Amount         apiAmount           `json:"amount"`
	DueDate        *apiDate            `json:"due_date,omitempty"`
	PaidDate       *apiDate            `json:"paid_date,omitempty"`
	Status         string              `json:"status"`
	PaymentAccount *wirePaymentAccount `json:"payment_account,omitempty"`
}

type wireExpense struct {
	ID               int64         `json:"id,omitempty"`
	Type             string        `json:"type"`
	Entity           wireEntity    `json:"entity"`
	Date             *apiDate      `json:"date,omitempty"`
	Category         string        `json:"category,omitempty"`
	Description      string        `json:"description,omitempty"`
	AmountNet        apiAmount     `json:"amount_net"`
	AmountVAT        apiAmount     `json:"amount_vat"`
	AmountGross      *apiAmount    `json:"amount_gross,omitempty"`
	TaxDeductibility *apiAmount    `json:"tax_deductibility,omitempty"`
	VATDeductibility *apiAmount    `json:"vat_deductibility,omitempty"`
	NextDueDate      *apiDate      `json:"next_due_date,omitempty"`
	PaymentsList     []wirePayment `json:"payments_list,omitempty"`
}

func (w wireExpense) toModel() models.Expense {
	e := models.Expense{
		ID:           w.ID,
		SupplierName: w.Entity.Name,
		Description:  w.Description,
		Category:     w.Category,
		AmountNet:    w.AmountNet.value(),
		AmountVAT:    w.AmountVAT.value(),
		ExpenseDate:  w.Date.value(),
	}
	if w.TaxDeductibility != nil {
		e.TaxDeductibility = w.TaxDeductibility.value()
	}
	if w.VATDeductibility != nil {
		e.VATDeductibility = w.VATDeductibility.value()
	}
	if due := w.NextDueDate.value(); !due.IsZero() {
		e.NextDueDate = &due
	}

	for _, p := range w.PaymentsList {
		inst := models.Installment{
			Amount:   p.Amount.value(),
			DueDate:  p.DueDate.value(),
			Status:   models.InstallmentStatus(p.Status),
			PaidDate: p.PaidDate.value(),
		}
		if inst.Status == "" {
			inst.Status = models.InstallmentNotPaid
		}
		if p.PaymentAccount != nil {
			inst.PaymentAccountID = p.PaymentAccount.ID
		}
		e.Installments = append(e.Installments, inst)
	}

	return e
}

// fromModel builds the request payload. Server computed fields are left out.
func fromModel(e models.Expense) wireExpense {
	w := wireExpense{
		ID:               e.ID,
		Type:             documentTypeExpense,
		Entity:           wireEntity{Name: e.SupplierName},
		Date:             datePtr(e.ExpenseDate),
		Category:         e.Category,
		Description:      e.Description,
		AmountNet:        apiAmount(e.AmountNet),
		AmountVAT:        apiAmount(e.AmountVAT),
		TaxDeductibility: amountPtr(e.TaxDeductibility),
		VATDeductibility: amountPtr(e.VATDeductibility),
	}

	for _, inst := range e.Installments {
		p := wirePayment{
			Amount:  apiAmount(inst.Amount),
			DueDate: datePtr(inst.DueDate),
			Status:  string(inst.Status),
		}
		if inst.Status.IsPaid() {
			p.PaidDate = datePtr(inst.PaidDate)
			if inst.PaymentAccountID != 0 {
				p.PaymentAccount = &wirePaymentAccount{ID: inst.PaymentAccountID}
			}
		}
		w.PaymentsList = append(w.PaymentsList, p)
	}

	return w
}

func (w wirePaymentAccount) toModel() models.PaymentAccount {
	return models.PaymentAccount{ID: w.ID, Name: w.Name, Type: w.Type}
}
