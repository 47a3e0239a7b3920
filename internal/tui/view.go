package tui

import (
	"fmt"
	"strings"

	"fic-expenses/internal/display"
	"fic-expenses/internal/expenses"
	"fic-expenses/internal/schedule"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.Color("#06B6D4")
	muted  = lipgloss.Color("#6B7280")
	danger = lipgloss.Color("#EF4444")
	good   = lipgloss.Color("#22C55E")

	appTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(accent).Padding(0, 1)
	helpStyle     = lipgloss.NewStyle().Foreground(muted)
	errorStyle    = lipgloss.NewStyle().Foreground(danger).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(good)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(1, 2)
	activeTab     = lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true)
	doneTab       = lipgloss.NewStyle().Foreground(good)
	pendingTab    = lipgloss.NewStyle().Foreground(muted)
	labelStyle    = lipgloss.NewStyle().Foreground(muted).Width(20)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(muted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#000000")).
		Background(accent).
		Bold(false)
	return s
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")

	switch m.screen {
	case screenDetail:
		b.WriteString(m.detailView())
	case screenPay:
		b.WriteString(m.payView())
	case screenWizard:
		b.WriteString(m.wizardView())
	default:
		b.WriteString(m.listView())
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	b.WriteString(helpStyle.Render(m.help()))

	return b.String()
}

func (m model) header() string {
	title := appTitleStyle.Render("Fatture in Cloud · Expenses")
	quota := display.Quota(m.quota)

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(quota)
	if gap < 2 {
		gap = 2
	}
	return title + strings.Repeat(" ", gap) + quota
}

func (m model) listView() string {
	if m.loading && len(m.all) == 0 {
		return "Loading expenses..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Filter: %s", activeTab.Render(m.filter.String()))
	if n := len(m.selected); n > 0 {
		fmt.Fprintf(&b, "  •  %d selected", n)
	}
	if m.loading {
		b.WriteString("  •  refreshing...")
	}
	b.WriteString("\n")

	if len(m.visible) == 0 {
		b.WriteString("\nNo expenses found.\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	b.WriteString(m.statsLine())
	return b.String()
}

func (m model) statsLine() string {
	st := expenses.ComputeStats(m.visible, m.today())
	line := fmt.Sprintf("%d expense(s) • %s • paid %d (%s) • unpaid %d (%s)",
		st.Count, display.Money(st.TotalGross),
		st.PaidCount, display.Money(st.PaidTotal),
		st.UnpaidCount, display.Money(st.UnpaidTotal))
	if st.OverdueCount > 0 {
		line += " • " + errorStyle.Render(fmt.Sprintf("overdue %d (%s)", st.OverdueCount, display.Money(st.OverdueTotal)))
	}
	line += fmt.Sprintf("\nthis month %s • last month %s • YTD %s • avg/month %s",
		display.Money(st.ThisMonth), display.Money(st.LastMonth),
		display.Money(st.YearToDate), display.Money(st.MonthlyAvg))
	return helpStyle.Render(line)
}

func (m model) detailView() string {
	if !m.detailOK {
		return fmt.Sprintf("Loading expense #%d...", m.detail.ID)
	}
	out := display.ExpenseDetail(m.detail)
	if !m.detail.HasSchedule() {
		out += "\n" + helpStyle.Render("No payment schedule; 'p' records a single payment of the gross amount.")
	}
	return out
}

func (m model) payView() string {
	var what string
	switch {
	case len(m.pay.ids) > 1:
		what = fmt.Sprintf("all installments of %d expenses", len(m.pay.ids))
	case m.pay.target.IsAll():
		what = fmt.Sprintf("all installments of expense #%d", m.pay.ids[0])
	default:
		what = fmt.Sprintf("%s of expense #%d", m.pay.target, m.pay.ids[0])
	}

	body := fmt.Sprintf("Mark %s as paid\n\n%s%d\n%s%s",
		what,
		labelStyle.Render("Payment account:"), m.opts.AccountID,
		labelStyle.Render("Paid on:"), m.pay.date.View())
	if m.pay.running {
		body += "\n\nSaving..."
	}
	return boxStyle.Render(body)
}

func (m model) wizardView() string {
	var b strings.Builder

	tabs := make([]string, 0, int(StepConfirm)+1)
	for s := StepBasics; s <= StepConfirm; s++ {
		label := fmt.Sprintf("%d %s", int(s)+1, s)
		switch {
		case s == m.wizard.Step():
			tabs = append(tabs, activeTab.Render(label))
		case s < m.wizard.Step():
			tabs = append(tabs, doneTab.Render("✓ "+label))
		default:
			tabs = append(tabs, pendingTab.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, "  ›  "))
	b.WriteString("\n\n")

	if m.wizard.Step() == StepConfirm {
		b.WriteString(display.Plan(m.wizard.Preview()))
		if m.creating {
			b.WriteString("\n\nCreating...")
		}
		return boxStyle.Render(b.String())
	}

	for i, f := range Fields(m.wizard.Step()) {
		b.WriteString(labelStyle.Render(f.Label))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}

	if m.wizard.Step() == StepAmounts {
		if vat, gross, ok := VATPreview(m.inputValues()); ok {
			fmt.Fprintf(&b, "\n%s%s\n%s%s\n",
				labelStyle.Render("VAT:"), display.Money(vat),
				labelStyle.Render("Gross:"), display.Money(gross))
		}
	}
	if m.wizard.Step() == StepPayment {
		b.WriteString("\n" + m.installmentPreview())
	}

	return boxStyle.Render(b.String())
}

// installmentPreview schedules the gross amount with the values typed so
// far, using the same planner as the final review.
func (m model) installmentPreview() string {
	p, err := parsePayment(m.inputValues(), m.opts.Stepping)
	if err != nil {
		return helpStyle.Render(err.Error())
	}
	w := m.wizard
	w.payment = p
	in := w.Input()
	in.EveryMonths, in.Occurrences = 0, 1

	drafts, err := expenses.Plan(in)
	if err != nil || len(drafts) == 0 {
		return ""
	}

	var b strings.Builder
	for i, inst := range drafts[0].Installments {
		if i == 6 && len(drafts[0].Installments) > 7 {
			fmt.Fprintf(&b, "  ... %d more\n", len(drafts[0].Installments)-i)
			break
		}
		fmt.Fprintf(&b, "  %d. %s  %s\n", i+1, schedule.FormatDate(inst.DueDate), display.Money(inst.Amount))
	}
	return helpStyle.Render(b.String())
}

func (m model) help() string {
	switch m.screen {
	case screenDetail:
		return "p pay all • 1-9 pay installment • r reload • esc back"
	case screenPay:
		return "enter confirm • esc cancel"
	case screenWizard:
		if m.wizard.Step() == StepConfirm {
			return "enter create • esc back"
		}
		return "tab/↑↓ move • enter next • esc back"
	}
	return "↑↓ move • enter details • space select • p pay • n new • f filter • r reload • q quit"
}
