package fic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"fic-expenses/pkg/models"
)

// ListOptions controls an expense listing.
type ListOptions struct {
	// Query is a filter in the API's q syntax (see Filter.Query).
	Query string

	// Sort is a field name, prefixed with "-" for descending (e.g. "-date").
	Sort string

	// Limit caps the number of expenses returned; 0 fetches every page.
	Limit int
}

// ListExpenses returns received documents of type expense. A limit up to
// MaxPerPage is served by a single request.
func (c *Client) ListExpenses(ctx context.Context, opts ListOptions) ([]models.Expense, models.Quota, error) {
	const op = "ListExpenses"

	perPage := MaxPerPage
	singlePage := opts.Limit > 0 && opts.Limit <= MaxPerPage
	if singlePage {
		perPage = max(MinPerPage, opts.Limit)
	}

	var (
		quota    models.Quota
		expenses []models.Expense
	)

	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("type", documentTypeExpense)
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(perPage))
		if opts.Query != "" {
			q.Set("q", opts.Query)
		}
		if opts.Sort != "" {
			q.Set("sort", opts.Sort)
		}

		var env listEnvelope[wireExpense]
		pq, err := c.do(ctx, op, http.MethodGet, c.companyPath("/received_documents"), q, nil, &env)
		quota = quota.Merge(pq)
		if err != nil {
			return nil, quota, err
		}

		for _, w := range env.Data {
			expenses = append(expenses, w.toModel())
		}

		if opts.Limit > 0 && len(expenses) >= opts.Limit {
			return expenses[:opts.Limit], quota, nil
		}
		if singlePage || len(env.Data) == 0 || (env.LastPage > 0 && page >= env.LastPage) {
			break
		}
	}

	c.log.Debug().Int("count", len(expenses)).Str("query", opts.Query).Msg("Listed expenses")
	return expenses, quota, nil
}

// GetExpense fetches a single expense with its full payment list.
func (c *Client) GetExpense(ctx context.Context, id int64) (models.Expense, models.Quota, error) {
	const op = "GetExpense"

	var env dataEnvelope[json.RawMessage]
	quota, err := c.do(ctx, op, http.MethodGet, c.companyPath("/received_documents/%d", id), nil, nil, &env)
	if err != nil {
		return models.Expense{}, quota, err
	}
	e, err := decodeDocument(env.Data)
	if err != nil {
		return models.Expense{}, quota, fmt.Errorf("%s: %w", op, err)
	}
	return e, quota, nil
}

// CreateExpense creates e and returns the stored document.
func (c *Client) CreateExpense(ctx context.Context, e models.Expense) (models.Expense, models.Quota, error) {
	const op = "CreateExpense"

	if e.ID != 0 {
		return models.Expense{}, models.Quota{}, fmt.Errorf("%s: expense already has id %d", op, e.ID)
	}

	payload := dataEnvelope[wireExpense]{Data: fromModel(e)}
	var env dataEnvelope[wireExpense]
	quota, err := c.do(ctx, op, http.MethodPost, c.companyPath("/received_documents"), nil, payload, &env)
	if err != nil {
		return models.Expense{}, quota, err
	}

	created := env.Data.toModel()
	c.log.Info().Int64("expense_id", created.ID).Str("supplier", created.SupplierName).Msg("Expense created")
	return created, quota, nil
}

// UpdateExpense replaces the stored expense with e, payment list included.
func (c *Client) UpdateExpense(ctx context.Context, e models.Expense) (models.Expense, models.Quota, error) {
	const op = "UpdateExpense"

	if e.ID == 0 {
		return models.Expense{}, models.Quota{}, fmt.Errorf("%s: expense has no id", op)
	}

	data, err := encodeDocument(e)
	if err != nil {
		return models.Expense{}, models.Quota{}, fmt.Errorf("%s: %w", op, err)
	}

	payload := dataEnvelope[json.RawMessage]{Data: data}
	var env dataEnvelope[json.RawMessage]
	quota, err := c.do(ctx, op, http.MethodPut, c.companyPath("/received_documents/%d", e.ID), nil, payload, &env)
	if err != nil {
		return models.Expense{}, quota, err
	}

	updated, err := decodeDocument(env.Data)
	if err != nil {
		return models.Expense{}, quota, fmt.Errorf("%s: %w", op, err)
	}
	return updated, quota, nil
}
