// Package display renders expenses, schedules and API quota for the console.
// Every function returns a string; callers decide where it is printed.
package display

import (
	"fmt"
	"strconv"
	"strings"

	"fic-expenses/internal/expenses"
	"fic-expenses/internal/schedule"
	"fic-expenses/pkg/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// DescriptionWidth is the number of description characters shown in tables.
const DescriptionWidth = 30

// QuotaWarnRatio is the usage share above which the quota is highlighted.
const QuotaWarnRatio = 0.9

var (
	green  = lipgloss.Color("#22C55E")
	red    = lipgloss.Color("#EF4444")
	yellow = lipgloss.Color("#EAB308")
	cyan   = lipgloss.Color("#06B6D4")
	grey   = lipgloss.Color("#6B7280")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(cyan)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(cyan).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(grey)
	boldStyle   = lipgloss.NewStyle().Bold(true)
	paidStyle   = lipgloss.NewStyle().Foreground(green)
	unpaidStyle = lipgloss.NewStyle().Foreground(red)
	partStyle   = lipgloss.NewStyle().Foreground(yellow)
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(red)
)

// StatusText is the table label for a summary, "Paid ✓" when settled.
func StatusText(sum schedule.Summary) string {
	if sum.IsPaid() {
		return sum.Label + " ✓"
	}
	return sum.Label
}

// StatusStyle colors a summary label by state.
func StatusStyle(sum schedule.Summary) lipgloss.Style {
	switch sum.Status {
	case schedule.StatusPaid:
		return paidStyle
	case schedule.StatusUnpaid:
		return unpaidStyle
	default:
		return partStyle
	}
}

// ExpenseRow returns the table cells for one expense.
func ExpenseRow(e models.Expense) []string {
	sum := expenses.StatusOf(e)
	return []string{
		strconv.FormatInt(e.ID, 10),
		Date(e.ExpenseDate),
		orDash(e.SupplierName),
		Truncate(e.Description, DescriptionWidth),
		Money(e.AmountGross()),
		StatusText(sum),
		DatePtr(sum.NextDue),
	}
}

// ExpenseHeaders are the column titles matching ExpenseRow.
var ExpenseHeaders = []string{"ID", "Date", "Supplier", "Description", "Gross", "Status", "Next Due"}

// ExpensesTable renders the expense list.
func ExpensesTable(list []models.Expense) string {
	if len(list) == 0 {
		return partStyle.Render("No expenses found.")
	}

	rows := make([][]string, 0, len(list))
	sums := make([]schedule.Summary, 0, len(list))
	for _, e := range list {
		rows = append(rows, ExpenseRow(e))
		sums = append(sums, expenses.StatusOf(e))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(ExpenseHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			switch col {
			case 0:
				return cellStyle.Foreground(grey).Align(lipgloss.Right)
			case 2:
				return cellStyle.Bold(true)
			case 4:
				return cellStyle.Align(lipgloss.Right)
			case 5:
				if row >= 0 && row < len(sums) {
					return cellStyle.Inherit(StatusStyle(sums[row]))
				}
			}
			return cellStyle
		})

	return titleStyle.Render("Expenses") + "\n" + t.Render()
}

// StatsFooter renders the aggregate lines printed under the table.
func StatsFooter(st expenses.Stats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  •  %s\n",
		boldStyle.Render(fmt.Sprintf("Total: %d expense(s)", st.Count)),
		Money(st.TotalGross))

	fmt.Fprintf(&b, "├─ %s  •  %s\n",
		paidStyle.Render(fmt.Sprintf("Paid: %d (%s)", st.PaidCount, Money(st.PaidTotal))),
		unpaidStyle.Render(fmt.Sprintf("Unpaid: %d (%s)", st.UnpaidCount, Money(st.UnpaidTotal))))

	if st.OverdueCount > 0 {
		fmt.Fprintf(&b, "├─ %s\n", alertStyle.Render(fmt.Sprintf("Overdue: %d (%s)", st.OverdueCount, Money(st.OverdueTotal))))
	}

	fmt.Fprintf(&b, "├─ This month: %s  •  Last month: %s  •  Year to date: %s  •  Monthly avg: %s\n",
		Money(st.ThisMonth), Money(st.LastMonth), Money(st.YearToDate), Money(st.MonthlyAvg))

	if len(st.TopSuppliers) > 0 {
		top := make([]string, 0, len(st.TopSuppliers))
		for _, s := range st.TopSuppliers {
			top = append(top, fmt.Sprintf("%s %s", s.Name, Money(s.Total)))
		}
		fmt.Fprintf(&b, "├─ Top suppliers: %s\n", strings.Join(top, ", "))
	}

	var period []string
	switch {
	case st.FirstDate.IsZero():
	case st.FirstDate.Equal(st.LastDate):
		period = append(period, "Date: "+Date(st.FirstDate))
	default:
		period = append(period, fmt.Sprintf("Period: %s → %s", Date(st.FirstDate), Date(st.LastDate)))
	}
	period = append(period, fmt.Sprintf("Suppliers: %d", st.Suppliers))
	fmt.Fprintf(&b, "└─ %s", dimStyle.Render(strings.Join(period, " • ")))

	return b.String()
}

// ExpenseDetail renders one expense with its payment schedule.
func ExpenseDetail(e models.Expense) string {
	var b strings.Builder

	title := "Expense"
	if e.ID != 0 {
		title = fmt.Sprintf("Expense #%d", e.ID)
	}
	b.WriteString(lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cyan).
		Padding(0, 1).
		Bold(true).
		Render(title))
	b.WriteString("\n")

	label := dimStyle.Width(14)
	line := func(k, v string) {
		b.WriteString(label.Render(k) + v + "\n")
	}
	line("Supplier:", orDash(e.SupplierName))
	line("Date:", Date(e.ExpenseDate))
	line("Description:", orDash(e.Description))
	line("Category:", orDash(e.Category))
	b.WriteString("\n")
	line("Net:", Money(e.AmountNet))
	line("VAT:", Money(e.AmountVAT))
	line("Gross:", boldStyle.Render(Money(e.AmountGross())))

	if e.HasSchedule() {
		b.WriteString("\n")
		b.WriteString(Schedule(e.Installments))
	}

	return b.String()
}

// Schedule renders a payment schedule, one line per installment.
func Schedule(installments []models.Installment) string {
	var b strings.Builder

	b.WriteString(boldStyle.Render("Payment Schedule") + "\n")
	b.WriteString(strings.Repeat("─", 50) + "\n")

	for i, inst := range installments {
		icon := partStyle.Render("○")
		paid := ""
		if inst.Status.IsPaid() {
			icon = paidStyle.Render("✓")
			if !inst.PaidDate.IsZero() {
				paid = " " + dimStyle.Render("(paid "+Date(inst.PaidDate)+")")
			}
		}
		fmt.Fprintf(&b, "  %s Installment %d: %s - due %s%s\n", icon, i+1, Money(inst.Amount), Date(inst.DueDate), paid)
	}

	sum := schedule.Summarize(installments)
	fmt.Fprintf(&b, "  %s", StatusStyle(sum).Render(fmt.Sprintf("%s • %s left", StatusText(sum), Money(sum.UnpaidAmount))))

	return b.String()
}

// Plan renders the expenses a create request will produce.
func Plan(drafts []models.Expense) string {
	if len(drafts) == 0 {
		return ""
	}

	var b strings.Builder
	first := drafts[0]

	fmt.Fprintf(&b, "%s\n", titleStyle.Render("New expense"))
	fmt.Fprintf(&b, "  Supplier:     %s\n", orDash(first.SupplierName))
	fmt.Fprintf(&b, "  Description:  %s\n", orDash(first.Description))
	fmt.Fprintf(&b, "  Net / VAT:    %s / %s\n", Money(first.AmountNet), Money(first.AmountVAT))
	fmt.Fprintf(&b, "  Gross:        %s\n", boldStyle.Render(Money(first.AmountGross())))

	if len(drafts) > 1 {
		fmt.Fprintf(&b, "  Occurrences:  %d (%s → %s)\n", len(drafts),
			Date(first.ExpenseDate), Date(drafts[len(drafts)-1].ExpenseDate))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("#", "Expense date", "Installment", "Due", "Amount").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 4 {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})

	for i, d := range drafts {
		for k, inst := range d.Installments {
			t.Row(
				strconv.Itoa(i+1),
				Date(d.ExpenseDate),
				fmt.Sprintf("%d/%d", k+1, len(d.Installments)),
				Date(inst.DueDate),
				Money(inst.Amount),
			)
		}
	}

	b.WriteString(t.Render())
	return b.String()
}

// AccountsTable renders the company's payment accounts, marking the default.
func AccountsTable(accounts []models.PaymentAccount, defaultID int64) string {
	if len(accounts) == 0 {
		return partStyle.Render("No payment accounts found.")
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("ID", "Name", "Type", "Default").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, a := range accounts {
		mark := ""
		if a.ID == defaultID {
			mark = "✓"
		}
		t.Row(strconv.FormatInt(a.ID, 10), orDash(a.Name), orDash(a.Type), mark)
	}

	return titleStyle.Render("Payment accounts") + "\n" + t.Render()
}

// PayResults renders the outcome of a batch payment.
func PayResults(results []expenses.PayResult) string {
	var b strings.Builder
	ok, failed := 0, 0

	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(&b, "%s #%d: %v\n", unpaidStyle.Render("✗"), r.ExpenseID, r.Err)
		case r.Paid == 0:
			ok++
			fmt.Fprintf(&b, "%s #%d: already paid\n", dimStyle.Render("="), r.ExpenseID)
		default:
			ok++
			fmt.Fprintf(&b, "%s #%d: %d installment(s) paid\n", paidStyle.Render("✓"), r.ExpenseID, r.Paid)
		}
	}

	fmt.Fprintf(&b, "%d succeeded, %d failed", ok, failed)
	return b.String()
}

// Quota renders "API: used/limit h used/limit m", highlighting either part
// once usage reaches QuotaWarnRatio.
func Quota(q models.Quota) string {
	if q.IsZero() {
		return dimStyle.Render("API: --/--h --/--m")
	}

	part := func(used, limit int, ratio float64, unit string) string {
		s := fmt.Sprintf("%d/%d%s", used, limit, unit)
		if ratio >= QuotaWarnRatio {
			return alertStyle.Render(s)
		}
		return s
	}

	return "API: " +
		part(q.HourlyUsed(), q.HourlyLimit, q.HourlyPercent(), "h") + " " +
		part(q.MonthlyUsed(), q.MonthlyLimit, q.MonthlyPercent(), "m")
}
