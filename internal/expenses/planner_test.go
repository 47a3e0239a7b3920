package expenses

import (
	"testing"
	"time"

	"fic-expenses/internal/schedule"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	in := NewInput(schedule.Day(2025, 1, 10), schedule.EndOfMonth)
	in.Supplier = "Enel"
	in.Description = "Electricity"
	in.AmountNet = decimal.RequireFromString("500.00")
	return in
}

func TestInput_VATAndGross(t *testing.T) {
	tests := []struct {
		net, rate  string
		vat, gross string
	}{
		{"500.00", "22", "110.00", "610.00"},
		{"99.99", "22", "22.00", "121.99"},
		{"10.05", "10", "1.01", "11.06"},
		{"10.00", "0", "0.00", "10.00"},
		{"0.10", "4", "0.00", "0.10"},
	}

	for _, tt := range tests {
		t.Run(tt.net+"@"+tt.rate, func(t *testing.T) {
			in := validInput()
			in.AmountNet = decimal.RequireFromString(tt.net)
			in.VATRate = decimal.RequireFromString(tt.rate)

			assert.Equal(t, tt.vat, in.VAT().StringFixed(2))
			assert.Equal(t, tt.gross, in.Gross().StringFixed(2))
		})
	}
}

func TestInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"ok", func(*Input) {}, ""},
		{"blank supplier", func(in *Input) { in.Supplier = "  " }, "supplier"},
		{"zero net", func(in *Input) { in.AmountNet = decimal.Zero }, "amount_net"},
		{"negative net", func(in *Input) { in.AmountNet = decimal.NewFromInt(-5) }, "amount_net"},
		{"sub-cent net", func(in *Input) { in.AmountNet = decimal.RequireFromString("1.005") }, "amount_net"},
		{"vat over 100", func(in *Input) { in.VATRate = decimal.NewFromInt(101) }, "vat_rate"},
		{"no date", func(in *Input) { in.ExpenseDate = time.Time{} }, "date"},
		{"zero installments", func(in *Input) { in.Installments = 0 }, "installments"},
		{"too many installments", func(in *Input) { in.Installments = schedule.MaxInstallments + 1 }, "installments"},
		{"bad stepping", func(in *Input) { in.Stepping = 0 }, "stepping"},
		{"zero occurrences", func(in *Input) { in.Occurrences = 0 }, "occurrences"},
		{"too many occurrences", func(in *Input) { in.Occurrences = schedule.MaxOccurrences + 1; in.EveryMonths = 1 }, "occurrences"},
		{"occurrences without interval", func(in *Input) { in.Occurrences = 2 }, "recurrence"},
		{"negative interval", func(in *Input) { in.EveryMonths = -1 }, "every"},
		{"deductibility over 100", func(in *Input) { in.VATDeductibility = decimal.NewFromInt(120) }, "vat_deductibility"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := in.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestPlan_Single(t *testing.T) {
	in := validInput()
	in.Installments = 5

	drafts, err := Plan(in)
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	e := drafts[0]
	assert.Zero(t, e.ID)
	assert.Equal(t, "Enel", e.SupplierName)
	assert.Equal(t, "110.00", e.AmountVAT.StringFixed(2))
	assert.Equal(t, schedule.Day(2025, 1, 10), e.ExpenseDate)
	assert.Equal(t, "100", e.TaxDeductibility.String())

	var dates, amounts []string
	for _, inst := range e.Installments {
		dates = append(dates, schedule.FormatDate(inst.DueDate))
		amounts = append(amounts, inst.Amount.StringFixed(2))
	}
	assert.Equal(t, []string{"2025-02-28", "2025-03-31", "2025-04-30", "2025-05-31", "2025-06-30"}, dates)
	assert.Equal(t, []string{"122.00", "122.00", "122.00", "122.00", "122.00"}, amounts)
}

func TestPlan_FirstDueAnchorsSchedule(t *testing.T) {
	in := validInput()
	in.Installments = 3
	in.Stepping = schedule.SameDay
	in.FirstDue = schedule.Day(2025, 1, 31)

	drafts, err := Plan(in)
	require.NoError(t, err)

	var dates []string
	for _, inst := range drafts[0].Installments {
		dates = append(dates, schedule.FormatDate(inst.DueDate))
	}
	assert.Equal(t, []string{"2025-01-31", "2025-02-28", "2025-03-31"}, dates)
}

func TestPlan_FirstDueEndOfMonth(t *testing.T) {
	tests := []struct {
		name      string
		firstDue  time.Time
		every     int
		occ       int
		wantFirst []string
		wantLast  string
	}{
		{"mid-month first due", schedule.Day(2025, 2, 15), 0, 1, []string{"2025-02-28"}, "2025-03-31"},
		{"first due on month end", schedule.Day(2025, 1, 31), 0, 1, []string{"2025-01-31"}, "2025-02-28"},
		{"recurring monthly", schedule.Day(2025, 2, 15), 1, 3, []string{"2025-02-28", "2025-03-31", "2025-04-30"}, "2025-05-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Stepping = schedule.EndOfMonth
			in.Installments = 2
			in.FirstDue = tt.firstDue
			in.EveryMonths = tt.every
			in.Occurrences = tt.occ

			drafts, err := Plan(in)
			require.NoError(t, err)
			require.Len(t, drafts, len(tt.wantFirst))

			for i, d := range drafts {
				require.Len(t, d.Installments, 2)
				assert.Equal(t, tt.wantFirst[i], schedule.FormatDate(d.Installments[0].DueDate))
			}
			last := drafts[len(drafts)-1]
			assert.Equal(t, tt.wantLast, schedule.FormatDate(last.Installments[1].DueDate))
		})
	}
}

func TestPlan_Recurring(t *testing.T) {
	in := validInput()
	in.ExpenseDate = schedule.Day(2025, 1, 15)
	in.FirstDue = schedule.Day(2025, 2, 28)
	in.Stepping = schedule.SameDay
	in.Installments = 2
	in.EveryMonths = schedule.Quarterly.Months()
	in.Occurrences = 4

	drafts, err := Plan(in)
	require.NoError(t, err)
	require.Len(t, drafts, 4)

	wantDates := []string{"2025-01-15", "2025-04-15", "2025-07-15", "2025-10-15"}
	wantFirstDue := []string{"2025-02-28", "2025-05-28", "2025-08-28", "2025-11-28"}

	for i, d := range drafts {
		assert.Equal(t, wantDates[i], schedule.FormatDate(d.ExpenseDate))
		require.Len(t, d.Installments, 2)
		assert.Equal(t, wantFirstDue[i], schedule.FormatDate(d.Installments[0].DueDate))

		total := d.Installments[0].Amount.Add(d.Installments[1].Amount)
		assert.True(t, total.Equal(in.Gross()), "occurrence %d total %s", i, total)
		assert.True(t, d.AmountNet.Equal(in.AmountNet))
	}
}

func TestPlan_InvalidInput(t *testing.T) {
	in := validInput()
	in.Supplier = ""

	_, err := Plan(in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
