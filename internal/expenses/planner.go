// Package expenses turns creation requests into installment plans and applies
// payments to remote expenses through a Store.
package expenses

import (
	"fmt"

	"fic-expenses/internal/schedule"
	"fic-expenses/pkg/models"
)

// Plan expands in into the expenses to create: one per occurrence, each with
// its own installment schedule for the full gross amount. Occurrence dates are
// shifted from the expense date and the schedule anchor; amounts never change.
func Plan(in Input) ([]models.Expense, error) {
	const op = "Plan"

	if err := in.Validate(); err != nil {
		return nil, err
	}

	every := in.EveryMonths
	if every < 1 {
		every = 1
	}

	occurrences, err := schedule.Expand(in.ExpenseDate, in.Anchor(), every, in.Occurrences)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	vat := in.VAT()
	gross := in.AmountNet.Add(vat)

	drafts := make([]models.Expense, 0, len(occurrences))
	for _, occ := range occurrences {
		installments, err := schedule.Schedule(gross, in.Installments, occ.FirstDueDate, in.Stepping)
		if err != nil {
			return nil, fmt.Errorf("%s: occurrence %d: %w", op, occ.Index+1, err)
		}

		drafts = append(drafts, models.Expense{
			SupplierName:     in.Supplier,
			Description:      in.Description,
			Category:         in.Category,
			AmountNet:        in.AmountNet,
			AmountVAT:        vat,
			ExpenseDate:      occ.ExpenseDate,
			Installments:     installments,
			TaxDeductibility: in.TaxDeductibility,
			VATDeductibility: in.VATDeductibility,
		})
	}

	return drafts, nil
}
