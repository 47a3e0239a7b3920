package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_Shift(t *testing.T) {
	got, err := Expand(date("2025-01-15"), date("2025-02-28"), 3, 4)
	require.NoError(t, err)
	require.Len(t, got, 4)

	var expenseDates, firstDues []string
	for i, occ := range got {
		assert.Equal(t, i, occ.Index)
		expenseDates = append(expenseDates, FormatDate(occ.ExpenseDate))
		firstDues = append(firstDues, FormatDate(occ.FirstDueDate))
	}

	assert.Equal(t, []string{"2025-01-15", "2025-04-15", "2025-07-15", "2025-10-15"}, expenseDates)
	assert.Equal(t, []string{"2025-02-28", "2025-05-28", "2025-08-28", "2025-11-28"}, firstDues)
}

func TestExpand_Identity(t *testing.T) {
	cases := []struct {
		expense string
		due     string
		every   int
		n       int
	}{
		{"2025-01-15", "2025-02-28", 1, 1},
		{"2025-01-31", "2025-01-31", 1, 12},
		{"2024-02-29", "2024-03-31", 12, 3},
		{"2025-06-30", "2025-07-31", 6, 36},
	}

	for _, c := range cases {
		got, err := Expand(date(c.expense), date(c.due), c.every, c.n)
		require.NoError(t, err)
		require.Len(t, got, c.n)
		assert.Equal(t, date(c.expense), got[0].ExpenseDate)
		assert.Equal(t, date(c.due), got[0].FirstDueDate)
	}
}

func TestExpand_ClampingDoesNotAccumulate(t *testing.T) {
	got, err := Expand(date("2025-01-31"), date("2025-01-31"), 1, 4)
	require.NoError(t, err)

	var dates []string
	for _, occ := range got {
		dates = append(dates, FormatDate(occ.ExpenseDate))
	}
	assert.Equal(t, []string{"2025-01-31", "2025-02-28", "2025-03-31", "2025-04-30"}, dates)
}

func TestExpand_Yearly(t *testing.T) {
	got, err := Expand(date("2024-02-29"), date("2024-03-31"), Yearly.Months(), 3)
	require.NoError(t, err)

	assert.Equal(t, "2025-02-28", FormatDate(got[1].ExpenseDate))
	assert.Equal(t, "2026-02-28", FormatDate(got[2].ExpenseDate))
}

func TestExpand_Invalid(t *testing.T) {
	d := date("2025-01-15")

	tests := []struct {
		name        string
		expense     time.Time
		due         time.Time
		every       int
		occurrences int
	}{
		{"zero interval", d, d, 0, 3},
		{"negative interval", d, d, -1, 3},
		{"zero occurrences", d, d, 1, 0},
		{"too many occurrences", d, d, 1, MaxOccurrences + 1},
		{"missing expense date", time.Time{}, d, 1, 2},
		{"missing first due", d, time.Time{}, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expand(tt.expense, tt.due, tt.every, tt.occurrences)
			assert.ErrorIs(t, err, ErrInvalidRecurrence)
		})
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
	}{
		{"monthly", Monthly},
		{"Bimonthly", Bimonthly},
		{"quarterly", Quarterly},
		{"biannual", Biannual},
		{"yearly", Yearly},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePeriod("weekly")
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	assert.Equal(t, 6, Biannual.Months())
	assert.Equal(t, "quarterly", Quarterly.String())
	assert.Equal(t, "every 4 months", Period(4).String())
}
