package fic

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"fic-expenses/pkg/models"
)

// Payment account types understood by the API.
const (
	AccountTypeStandard = "standard"
	AccountTypeBank     = "bank"
)

// ListPaymentAccounts returns the bank accounts, cards and cash registers of the company.
func (c *Client) ListPaymentAccounts(ctx context.Context) ([]models.PaymentAccount, models.Quota, error) {
	const op = "ListPaymentAccounts"

	var env dataEnvelope[[]wirePaymentAccount]
	quota, err := c.do(ctx, op, http.MethodGet, c.companyPath("/info/payment_accounts"), nil, nil, &env)
	if err != nil {
		return nil, quota, err
	}

	accounts := make([]models.PaymentAccount, 0, len(env.Data))
	for _, w := range env.Data {
		accounts = append(accounts, w.toModel())
	}
	return accounts, quota, nil
}

// CreatePaymentAccount adds a standard payment account named name.
func (c *Client) CreatePaymentAccount(ctx context.Context, name string) (models.PaymentAccount, models.Quota, error) {
	const op = "CreatePaymentAccount"

	name = strings.TrimSpace(name)
	if name == "" {
		return models.PaymentAccount{}, models.Quota{}, fmt.Errorf("%s: account name is required", op)
	}

	payload := dataEnvelope[wirePaymentAccount]{Data: wirePaymentAccount{Name: name, Type: AccountTypeStandard}}
	var env dataEnvelope[wirePaymentAccount]
	quota, err := c.do(ctx, op, http.MethodPost, c.companyPath("/settings/payment_accounts"), nil, payload, &env)
	if err != nil {
		return models.PaymentAccount{}, quota, err
	}

	account := env.Data.toModel()
	c.log.Info().Int64("account_id", account.ID).Str("name", account.Name).Msg("Payment account created")
	return account, quota, nil
}
