package sheets

import (
	"strconv"
	"time"

	"fic-expenses/internal/expenses"
	"fic-expenses/internal/schedule"
	"fic-expenses/pkg/models"
)

// Headers are the worksheet column titles, A to O.
var Headers = []string{
	"ID", "Date", "Supplier", "Description", "Category",
	"Net", "VAT", "Gross",
	"Installment", "Due", "Amount", "Status", "Paid on", "Account",
	"Exported",
}

// Row is one exported line: an expense installment, or the expense itself
// when it has no schedule.
type Row struct {
	ExpenseID   int64
	Date        string
	Supplier    string
	Description string
	Category    string
	Net         float64
	VAT         float64
	Gross       float64
	Installment string
	DueDate     string
	Amount      float64
	Status      string
	PaidDate    string
	AccountID   string
	ExportedAt  string
}

// BuildRows flattens expenses into export rows, one per installment.
func BuildRows(list []models.Expense, exportedAt time.Time) []Row {
	stamp := formatExportedAt(exportedAt)
	rows := make([]Row, 0, len(list))

	for _, e := range list {
		base := Row{
			ExpenseID:   e.ID,
			Date:        dateCell(e.ExpenseDate),
			Supplier:    e.SupplierName,
			Description: e.Description,
			Category:    e.Category,
			Net:         e.AmountNet.InexactFloat64(),
			VAT:         e.AmountVAT.InexactFloat64(),
			Gross:       e.AmountGross().InexactFloat64(),
			ExportedAt:  stamp,
		}

		if !e.HasSchedule() {
			sum := expenses.StatusOf(e)
			base.Amount = base.Gross
			base.Status = sum.Status.String()
			if sum.NextDue != nil {
				base.DueDate = dateCell(*sum.NextDue)
			}
			rows = append(rows, base)
			continue
		}

		for i, inst := range e.Installments {
			row := base
			row.Installment = strconv.Itoa(i+1) + "/" + strconv.Itoa(len(e.Installments))
			row.DueDate = dateCell(inst.DueDate)
			row.Amount = inst.Amount.InexactFloat64()
			row.Status = string(inst.Status)
			if inst.Status.IsPaid() {
				row.PaidDate = dateCell(inst.PaidDate)
				if inst.PaymentAccountID != 0 {
					row.AccountID = strconv.FormatInt(inst.PaymentAccountID, 10)
				}
			}
			rows = append(rows, row)
		}
	}

	return rows
}

// Values converts the row for the Sheets API, in Headers order.
func (r Row) Values() []interface{} {
	return []interface{}{
		r.ExpenseID,   // A
		r.Date,        // B
		r.Supplier,    // C
		r.Description, // D
		r.Category,    // E
		r.Net,         // F
		r.VAT,         // G
		r.Gross,       // H
		r.Installment, // I
		r.DueDate,     // J
		r.Amount,      // K
		r.Status,      // L
		r.PaidDate,    // M
		r.AccountID,   // N
		r.ExportedAt,  // O
	}
}

func dateCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return schedule.FormatDate(t)
}

// lastColumn returns the letter of the last header column.
func lastColumn() string {
	return columnName(len(Headers))
}

// columnName converts a 1-based column index to its A1 letters.
func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
