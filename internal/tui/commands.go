package tui

import (
	"context"

	"fic-expenses/internal/expenses"
	"fic-expenses/internal/fic"
	"fic-expenses/pkg/models"
	tea "github.com/charmbracelet/bubbletea"
)

// Backend is the remote API read by the terminal UI. *fic.Client implements it.
type Backend interface {
	ListExpenses(ctx context.Context, opts fic.ListOptions) ([]models.Expense, models.Quota, error)
	GetExpense(ctx context.Context, id int64) (models.Expense, models.Quota, error)
}

type expensesLoadedMsg struct {
	list  []models.Expense
	quota models.Quota
	err   error
}

type expenseLoadedMsg struct {
	expense models.Expense
	quota   models.Quota
	err     error
}

type paidMsg struct {
	results []expenses.PayResult
	quota   models.Quota
	err     error
}

type createdMsg struct {
	created []models.Expense
	quota   models.Quota
	err     error
}

func (m model) loadExpensesCmd() tea.Cmd {
	opts := fic.ListOptions{Query: m.opts.Query, Sort: "-date", Limit: m.opts.Limit}
	return func() tea.Msg {
		list, quota, err := m.opts.Backend.ListExpenses(m.ctx, opts)
		return expensesLoadedMsg{list: list, quota: quota, err: err}
	}
}

func (m model) loadExpenseCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		e, quota, err := m.opts.Backend.GetExpense(m.ctx, id)
		return expenseLoadedMsg{expense: e, quota: quota, err: err}
	}
}

func (m model) payCmd(ids []int64, req expenses.PayRequest) tea.Cmd {
	return func() tea.Msg {
		if len(ids) == 1 {
			res, quota, err := m.opts.Service.MarkPaid(m.ctx, ids[0], req)
			res.Err = err
			return paidMsg{results: []expenses.PayResult{res}, quota: quota}
		}
		results, quota, err := m.opts.Service.MarkPaidBatch(m.ctx, ids, req)
		return paidMsg{results: results, quota: quota, err: err}
	}
}

func (m model) createCmd(drafts []models.Expense) tea.Cmd {
	return func() tea.Msg {
		created, quota, err := m.opts.Service.Create(m.ctx, drafts, nil)
		return createdMsg{created: created, quota: quota, err: err}
	}
}
