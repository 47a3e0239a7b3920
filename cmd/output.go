package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"fic-expenses/internal/expenses"
	"fic-expenses/internal/schedule"
	"fic-expenses/pkg/models"
	"github.com/shopspring/decimal"
)

// InstallmentOutput is the JSON form of one installment.
type InstallmentOutput struct {
	Number    int             `json:"number"`
	Amount    decimal.Decimal `json:"amount"`
	DueDate   string          `json:"due_date"`
	Status    string          `json:"status"`
	PaidDate  string          `json:"paid_date,omitempty"`
	AccountID int64           `json:"payment_account_id,omitempty"`
}

// ExpenseOutput is the JSON form of an expense printed by --json.
type ExpenseOutput struct {
	ID           int64               `json:"id"`
	Date         string              `json:"date"`
	Supplier     string              `json:"supplier"`
	Description  string              `json:"description,omitempty"`
	Category     string              `json:"category,omitempty"`
	AmountNet    decimal.Decimal     `json:"amount_net"`
	AmountVAT    decimal.Decimal     `json:"amount_vat"`
	AmountGross  decimal.Decimal     `json:"amount_gross"`
	Status       string              `json:"status"`
	NextDueDate  string              `json:"next_due_date,omitempty"`
	Installments []InstallmentOutput `json:"installments,omitempty"`
}

func newExpenseOutput(e models.Expense) ExpenseOutput {
	out := ExpenseOutput{
		ID:          e.ID,
		Date:        schedule.FormatDate(e.ExpenseDate),
		Supplier:    e.SupplierName,
		Description: e.Description,
		Category:    e.Category,
		AmountNet:   e.AmountNet,
		AmountVAT:   e.AmountVAT,
		AmountGross: e.AmountGross(),
		Status:      expenses.StatusOf(e).Status.String(),
	}
	if e.NextDueDate != nil {
		out.NextDueDate = schedule.FormatDate(*e.NextDueDate)
	}
	for i, inst := range e.Installments {
		item := InstallmentOutput{
			Number:  i + 1,
			Amount:  inst.Amount,
			DueDate: schedule.FormatDate(inst.DueDate),
			Status:  string(inst.Status),
		}
		if inst.Status.IsPaid() {
			item.PaidDate = schedule.FormatDate(inst.PaidDate)
			item.AccountID = inst.PaymentAccountID
		}
		out.Installments = append(out.Installments, item)
	}
	return out
}

func newExpenseOutputs(list []models.Expense) []ExpenseOutput {
	out := make([]ExpenseOutput, 0, len(list))
	for _, e := range list {
		out = append(out, newExpenseOutput(e))
	}
	return out
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
