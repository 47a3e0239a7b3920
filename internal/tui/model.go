// Package tui is the interactive terminal interface: an expense list with
// status filters, a detail screen with the payment schedule, a pay dialog
// and the create wizard.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fic-expenses/internal/display"
	"fic-expenses/internal/expenses"
	"fic-expenses/internal/schedule"
	"fic-expenses/pkg/models"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Options configures the terminal UI.
type Options struct {
	Backend Backend
	Service *expenses.Service

	// AccountID is recorded on payments; 0 disables paying.
	AccountID int64
	Stepping  schedule.Stepping

	// Query and Limit are passed to every list request.
	Query string
	Limit int

	// Today defaults to time.Now.
	Today func() time.Time

	// StartInWizard opens the create wizard instead of the list.
	StartInWizard bool
}

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

type screen int

const (
	screenList screen = iota
	screenDetail
	screenPay
	screenWizard
)

type payDialog struct {
	ids      []int64
	target   schedule.Target
	date     textinput.Model
	returnTo screen
	running  bool
}

type model struct {
	ctx  context.Context
	opts Options

	screen        screen
	width, height int

	all      []models.Expense
	visible  []models.Expense
	filter   expenses.StatusFilter
	selected map[int64]bool
	table    table.Model
	loading  bool

	detail   models.Expense
	detailOK bool

	pay payDialog

	wizard   Wizard
	inputs   []textinput.Model
	focus    int
	creating bool

	// Latest API usage, taken from whichever response arrived last
	quota models.Quota

	status string
	err    error
}

func newModel(ctx context.Context, opts Options) model {
	if opts.Today == nil {
		opts.Today = time.Now
	}
	if !opts.Stepping.IsValid() {
		opts.Stepping = schedule.EndOfMonth
	}

	t := table.New(
		table.WithColumns(listColumns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	m := model{
		ctx:      ctx,
		opts:     opts,
		selected: make(map[int64]bool),
		table:    t,
		loading:  true,
	}
	if opts.StartInWizard {
		m = m.openWizard()
	}
	return m
}

func (m model) today() time.Time {
	return schedule.Truncate(m.opts.Today())
}

func (m model) Init() tea.Cmd {
	if m.screen == screenWizard {
		return tea.Batch(textinput.Blink, m.loadExpensesCmd())
	}
	return m.loadExpensesCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenDetail:
			return m.updateDetail(msg)
		case screenPay:
			return m.updatePay(msg)
		case screenWizard:
			return m.updateWizard(msg)
		}
		return m.updateList(msg)

	case expensesLoadedMsg:
		m.loading = false
		m.quota = m.quota.Merge(msg.quota)
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.all = msg.list
		m = m.applyFilter()
		return m, nil

	case expenseLoadedMsg:
		m.quota = m.quota.Merge(msg.quota)
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if m.detail.ID == msg.expense.ID {
			m.detail = msg.expense
			m.detailOK = true
		}
		return m, nil

	case paidMsg:
		return m.finishPay(msg)

	case createdMsg:
		m.creating = false
		m.quota = m.quota.Merge(msg.quota)
		if msg.err != nil {
			m.err = msg.err
			if len(msg.created) == 0 {
				return m, nil
			}
		} else {
			m.err = nil
		}
		m.status = fmt.Sprintf("Created %d expense(s)", len(msg.created))
		m.screen = screenList
		m.loading = true
		return m, m.loadExpensesCmd()
	}

	return m, nil
}

// List screen

var listColumns = []table.Column{
	{Title: " ", Width: 1},
	{Title: "ID", Width: 10},
	{Title: "Date", Width: 10},
	{Title: "Supplier", Width: 22},
	{Title: "Description", Width: display.DescriptionWidth + 3},
	{Title: "Gross", Width: 12},
	{Title: "Status", Width: 10},
	{Title: "Next Due", Width: 10},
}

func (m model) applyFilter() model {
	m.visible = expenses.FilterByStatus(m.all, m.filter)

	rows := make([]table.Row, 0, len(m.visible))
	for _, e := range m.visible {
		mark := " "
		if m.selected[e.ID] {
			mark = "●"
		}
		rows = append(rows, append(table.Row{mark}, display.ExpenseRow(e)...))
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
	return m
}

func (m model) current() (models.Expense, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.visible) {
		return models.Expense{}, false
	}
	return m.visible[c], true
}

// selectedIDs returns the marked expenses, or the one under the cursor.
func (m model) selectedIDs() []int64 {
	var ids []int64
	for _, e := range m.visible {
		if m.selected[e.ID] {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		if e, ok := m.current(); ok {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "x":
		return m, tea.Quit

	case "f":
		m.filter = m.filter.Next()
		m = m.applyFilter()
		return m, nil

	case "r":
		m.loading = true
		m.err = nil
		return m, m.loadExpensesCmd()

	case " ":
		if e, ok := m.current(); ok {
			if m.selected[e.ID] {
				delete(m.selected, e.ID)
			} else {
				m.selected[e.ID] = true
			}
			m = m.applyFilter()
		}
		return m, nil

	case "enter":
		e, ok := m.current()
		if !ok {
			return m, nil
		}
		m.screen = screenDetail
		m.detail = e
		m.detailOK = false
		m.err = nil
		return m, m.loadExpenseCmd(e.ID)

	case "p":
		ids := m.selectedIDs()
		if len(ids) == 0 {
			return m, nil
		}
		return m.openPay(ids, schedule.AllInstallments, screenList)

	case "n":
		m = m.openWizard()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Detail screen

func (m model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc", "backspace", "q":
		m.screen = screenList
		m.err = nil
		return m, nil

	case "r":
		m.detailOK = false
		return m, m.loadExpenseCmd(m.detail.ID)

	case "p":
		return m.openPay([]int64{m.detail.ID}, schedule.AllInstallments, screenDetail)
	}

	if k, err := strconv.Atoi(key); err == nil && k >= 1 && k <= 9 {
		if !m.detailOK {
			return m, nil
		}
		if k > len(m.detail.Installments) {
			m.err = fmt.Errorf("expense #%d has no installment %d", m.detail.ID, k)
			return m, nil
		}
		if m.detail.Installments[k-1].Status.IsPaid() {
			m.err = fmt.Errorf("installment %d is already paid", k)
			return m, nil
		}
		return m.openPay([]int64{m.detail.ID}, schedule.Installment(k), screenDetail)
	}

	return m, nil
}

// Pay dialog

func (m model) openPay(ids []int64, target schedule.Target, from screen) (tea.Model, tea.Cmd) {
	if m.opts.AccountID == 0 {
		m.err = fmt.Errorf("no default payment account: run 'fic-expenses configs --default-account <id>'")
		return m, nil
	}

	in := textinput.New()
	in.Placeholder = "YYYY-MM-DD (empty = each due date)"
	in.CharLimit = len(schedule.DateLayout)
	in.Width = 36
	cmd := in.Focus()

	m.pay = payDialog{ids: ids, target: target, date: in, returnTo: from}
	m.screen = screenPay
	m.err = nil
	return m, cmd
}

func (m model) updatePay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pay.running {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.screen = m.pay.returnTo
		m.err = nil
		return m, nil

	case "enter":
		var paidDate time.Time
		if s := strings.TrimSpace(m.pay.date.Value()); s != "" {
			d, err := schedule.ParseDate(s)
			if err != nil {
				m.err = fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
				return m, nil
			}
			paidDate = d
		}
		m.pay.running = true
		m.err = nil
		return m, m.payCmd(m.pay.ids, expenses.PayRequest{
			Target:    m.pay.target,
			PaidDate:  paidDate,
			AccountID: m.opts.AccountID,
		})
	}

	var cmd tea.Cmd
	m.pay.date, cmd = m.pay.date.Update(msg)
	return m, cmd
}

func (m model) finishPay(msg paidMsg) (tea.Model, tea.Cmd) {
	m.pay.running = false
	m.quota = m.quota.Merge(msg.quota)
	m.screen = m.pay.returnTo

	paid, failed := 0, 0
	var firstErr error
	for _, r := range msg.results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}
		paid += r.Paid
		delete(m.selected, r.ExpenseID)
		if m.screen == screenDetail && r.ExpenseID == m.detail.ID && r.Expense.ID != 0 {
			m.detail = r.Expense
			m.detailOK = true
		}
	}

	m.err = msg.err
	if m.err == nil {
		m.err = firstErr
	}
	m.status = fmt.Sprintf("Marked %d installment(s) paid", paid)
	if failed > 0 {
		m.status += fmt.Sprintf(", %d expense(s) failed", failed)
	}

	m.loading = true
	return m, m.loadExpensesCmd()
}

// Create wizard

func (m model) openWizard() model {
	m.wizard = NewWizard(m.today(), m.opts.Stepping)
	m.screen = screenWizard
	m.err = nil
	return m.buildInputs()
}

// buildInputs creates the text inputs of the current step, prefilled from
// its snapshot.
func (m model) buildInputs() model {
	fields := Fields(m.wizard.Step())
	values := m.wizard.Values(m.wizard.Step())

	m.inputs = make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.Placeholder = f.Placeholder
		in.Width = 40
		in.SetValue(values[f.Key])
		m.inputs[i] = in
	}
	m.focus = 0
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

func (m model) inputValues() map[string]string {
	fields := Fields(m.wizard.Step())
	values := make(map[string]string, len(fields))
	for i, f := range fields {
		values[f.Key] = m.inputs[i].Value()
	}
	return values
}

func (m model) setFocus(i int) model {
	if len(m.inputs) == 0 {
		return m
	}
	m.inputs[m.focus].Blur()
	m.focus = (i + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

func (m model) updateWizard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.creating {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		prev, ok := m.wizard.Back()
		if !ok {
			m.screen = screenList
			m.err = nil
			return m, nil
		}
		m.wizard = prev
		m.err = nil
		return m.buildInputs(), nil

	case "tab", "down":
		return m.setFocus(m.focus + 1), nil

	case "shift+tab", "up":
		return m.setFocus(m.focus - 1), nil

	case "enter":
		if m.wizard.Step() == StepConfirm {
			m.creating = true
			m.err = nil
			return m, m.createCmd(m.wizard.Preview())
		}
		next, err := m.wizard.Submit(m.inputValues())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.wizard = next
		m.err = nil
		return m.buildInputs(), nil
	}

	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}
