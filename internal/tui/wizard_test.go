package tui

import (
	"testing"

	"fic-expenses/internal/expenses"
	"fic-expenses/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wizardToday = schedule.Day(2025, 1, 10)

func submit(t *testing.T, w Wizard, values map[string]string) Wizard {
	t.Helper()
	next, err := w.Submit(values)
	require.NoError(t, err)
	return next
}

func completeWizard(t *testing.T) Wizard {
	t.Helper()
	w := NewWizard(wizardToday, schedule.EndOfMonth)
	w = submit(t, w, map[string]string{"supplier": "Enel", "description": "Power"})
	w = submit(t, w, map[string]string{"amount_net": "100", "vat_rate": "22"})
	w = submit(t, w, map[string]string{"installments": "2"})
	w = submit(t, w, map[string]string{"recurrence": "quarterly", "occurrences": "3"})
	return w
}

func TestWizard_HappyPath(t *testing.T) {
	w := completeWizard(t)

	assert.Equal(t, StepConfirm, w.Step())
	preview := w.Preview()
	require.Len(t, preview, 3)

	assert.Equal(t, "2025-01-10", schedule.FormatDate(preview[0].ExpenseDate))
	assert.Equal(t, "2025-04-10", schedule.FormatDate(preview[1].ExpenseDate))
	assert.Equal(t, "2025-07-10", schedule.FormatDate(preview[2].ExpenseDate))

	for _, d := range preview {
		require.Len(t, d.Installments, 2)
		assert.Equal(t, "61.00", d.Installments[0].Amount.StringFixed(2))
	}
	assert.Equal(t, "2025-02-28", schedule.FormatDate(preview[0].Installments[0].DueDate))

	in := w.Input()
	assert.Equal(t, 3, in.EveryMonths)
	assert.Equal(t, 3, in.Occurrences)
	assert.Equal(t, "Power", in.Description)
}

func TestWizard_PreviewMatchesPlan(t *testing.T) {
	w := completeWizard(t)

	drafts, err := expenses.Plan(w.Input())
	require.NoError(t, err)
	assert.Equal(t, drafts, w.Preview())
}

func TestWizard_InvalidStepDoesNotAdvance(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) Wizard
		values map[string]string
		field  string
	}{
		{
			name:   "missing supplier",
			setup:  func(*testing.T) Wizard { return NewWizard(wizardToday, schedule.EndOfMonth) },
			values: map[string]string{"supplier": "  "},
			field:  "supplier",
		},
		{
			name: "bad amount",
			setup: func(t *testing.T) Wizard {
				return submit(t, NewWizard(wizardToday, schedule.EndOfMonth), map[string]string{"supplier": "A"})
			},
			values: map[string]string{"amount_net": "abc"},
			field:  "amount_net",
		},
		{
			name: "sub-cent amount",
			setup: func(t *testing.T) Wizard {
				return submit(t, NewWizard(wizardToday, schedule.EndOfMonth), map[string]string{"supplier": "A"})
			},
			values: map[string]string{"amount_net": "1.005"},
			field:  "amount_net",
		},
		{
			name: "vat over 100",
			setup: func(t *testing.T) Wizard {
				return submit(t, NewWizard(wizardToday, schedule.EndOfMonth), map[string]string{"supplier": "A"})
			},
			values: map[string]string{"amount_net": "10", "vat_rate": "150"},
			field:  "vat_rate",
		},
		{
			name: "too many installments",
			setup: func(t *testing.T) Wizard {
				w := submit(t, NewWizard(wizardToday, schedule.EndOfMonth), map[string]string{"supplier": "A"})
				return submit(t, w, map[string]string{"amount_net": "10"})
			},
			values: map[string]string{"installments": "121"},
			field:  "installments",
		},
		{
			name: "unknown recurrence",
			setup: func(t *testing.T) Wizard {
				w := submit(t, NewWizard(wizardToday, schedule.EndOfMonth), map[string]string{"supplier": "A"})
				w = submit(t, w, map[string]string{"amount_net": "10"})
				return submit(t, w, map[string]string{})
			},
			values: map[string]string{"recurrence": "weekly"},
			field:  "recurrence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.setup(t)
			next, err := w.Submit(tt.values)

			require.Error(t, err)
			var ve *expenses.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, w, next)
		})
	}
}

func TestWizard_BackKeepsSnapshots(t *testing.T) {
	w := completeWizard(t)

	back, ok := w.Back()
	require.True(t, ok)
	assert.Equal(t, StepRecurrence, back.Step())
	assert.Empty(t, back.Preview())
	assert.Equal(t, "quarterly", back.Values(StepRecurrence)["recurrence"])

	back, _ = back.Back()
	back, _ = back.Back()
	assert.Equal(t, StepAmounts, back.Step())
	assert.Equal(t, "100.00", back.Values(StepAmounts)["amount_net"])

	// Changing the amount leaves the later snapshots untouched
	changed := submit(t, back, map[string]string{"amount_net": "200", "vat_rate": "0"})
	assert.Equal(t, StepPayment, changed.Step())
	assert.Equal(t, 2, changed.Payment().Installments)
	assert.Equal(t, schedule.Quarterly, changed.Recurrence().Period)
	assert.Equal(t, "Enel", changed.Basics().Supplier)

	// and the original wizard still holds its own
	assert.Equal(t, "100", w.Amounts().Net.String())
	assert.Equal(t, StepConfirm, w.Step())

	_, ok = NewWizard(wizardToday, schedule.EndOfMonth).Back()
	assert.False(t, ok)
}

func TestWizard_Defaults(t *testing.T) {
	w := NewWizard(wizardToday, schedule.SameDay)
	w = submit(t, w, map[string]string{"supplier": "A"})
	w = submit(t, w, map[string]string{"amount_net": "10,50"})

	assert.Equal(t, "22", w.Amounts().VATRate.String())
	assert.Equal(t, wizardToday, w.Amounts().Date)
	assert.Equal(t, "10.5", w.Amounts().Net.String())

	w = submit(t, w, map[string]string{"first_due": "2025-01-31"})
	assert.Equal(t, schedule.SameDay, w.Payment().Stepping)
	assert.Equal(t, 1, w.Payment().Installments)

	w = submit(t, w, map[string]string{"recurrence": "none"})
	require.Len(t, w.Preview(), 1)
	assert.Equal(t, "2025-01-31", schedule.FormatDate(w.Preview()[0].Installments[0].DueDate))

	_, err := w.Submit(nil)
	assert.Error(t, err)
}

func TestWizard_RecurrenceDefaultOccurrences(t *testing.T) {
	w := NewWizard(wizardToday, schedule.EndOfMonth)
	w = submit(t, w, map[string]string{"supplier": "A"})
	w = submit(t, w, map[string]string{"amount_net": "10"})
	w = submit(t, w, nil)
	w = submit(t, w, map[string]string{"recurrence": "monthly"})

	assert.Len(t, w.Preview(), defaultOccurrences)
}

func TestVATPreview(t *testing.T) {
	tests := []struct {
		name       string
		values     map[string]string
		vat, gross string
		ok         bool
	}{
		{"dot decimal", map[string]string{"amount_net": "99.99"}, "22.00", "121.99", true},
		{"comma decimal", map[string]string{"amount_net": "99,90"}, "21.98", "121.88", true},
		{"comma rate", map[string]string{"amount_net": "100", "vat_rate": "10,5"}, "10.50", "110.50", true},
		{"empty amount", map[string]string{"amount_net": ""}, "", "", false},
		{"bad rate", map[string]string{"amount_net": "10", "vat_rate": "x"}, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vat, gross, ok := VATPreview(tt.values)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.vat, vat.StringFixed(2))
			assert.Equal(t, tt.gross, gross.StringFixed(2))
		})
	}
}

func TestVATPreview_MatchesSubmittedAmounts(t *testing.T) {
	values := map[string]string{"amount_net": "99,90", "vat_rate": "22"}

	vat, gross, ok := VATPreview(values)
	require.True(t, ok)

	amounts, err := parseAmounts(values, schedule.Day(2025, 1, 10))
	require.NoError(t, err)
	in := expenses.Input{AmountNet: amounts.Net, VATRate: amounts.VATRate}
	assert.True(t, vat.Equal(in.VAT()))
	assert.True(t, gross.Equal(in.Gross()))
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "Basics", StepBasics.String())
	assert.Equal(t, "Review", StepConfirm.String())
	assert.Equal(t, "unknown", Step(9).String())
}
