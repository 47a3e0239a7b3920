package expenses

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fic-expenses/internal/logger"
	"fic-expenses/internal/schedule"
	"fic-expenses/pkg/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel expense updates in a batch payment.
const DefaultConcurrency = 4

// Store is the remote expense storage. *fic.Client implements it.
type Store interface {
	GetExpense(ctx context.Context, id int64) (models.Expense, models.Quota, error)
	CreateExpense(ctx context.Context, e models.Expense) (models.Expense, models.Quota, error)
	UpdateExpense(ctx context.Context, e models.Expense) (models.Expense, models.Quota, error)
}

// Service creates expenses and records their payments.
type Service struct {
	store       Store
	concurrency int
	log         zerolog.Logger
}

// NewService creates a service over store. A concurrency below 1 uses DefaultConcurrency.
func NewService(store Store, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Service{
		store:       store,
		concurrency: concurrency,
		log:         logger.WithComponent("expenses"),
	}
}

// ProgressFunc is called after each expense is created.
type ProgressFunc func(index int, created models.Expense)

// Create stores drafts one at a time, in order. On failure the expenses
// created so far are returned with the error.
func (s *Service) Create(ctx context.Context, drafts []models.Expense, progress ProgressFunc) ([]models.Expense, models.Quota, error) {
	const op = "Create"

	var quota models.Quota
	created := make([]models.Expense, 0, len(drafts))

	for i, draft := range drafts {
		if err := ctx.Err(); err != nil {
			return created, quota, fmt.Errorf("%s: %w", op, err)
		}

		e, q, err := s.store.CreateExpense(ctx, draft)
		quota = quota.Merge(q)
		if err != nil {
			s.log.Error().Err(err).Int("occurrence", i+1).Int("created", len(created)).Msg("Expense creation failed")
			return created, quota, fmt.Errorf("%s: occurrence %d of %d: %w", op, i+1, len(drafts), err)
		}

		created = append(created, e)
		if progress != nil {
			progress(i, e)
		}
	}

	s.log.Info().Int("count", len(created)).Msg("Expenses created")
	return created, quota, nil
}

// PayRequest describes a payment to record.
type PayRequest struct {
	Target schedule.Target

	// PaidDate overrides each installment's due date when set.
	PaidDate time.Time

	AccountID int64
}

// PayResult is the outcome of MarkPaid for one expense.
type PayResult struct {
	ExpenseID int64
	Expense   models.Expense

	// Newly paid installments; 0 when everything was already paid.
	Paid int

	Err error
}

// MarkPaid fetches the current expense, marks the requested installments as
// paid and writes the complete payment list back. Nothing is written when
// every targeted installment was already paid.
func (s *Service) MarkPaid(ctx context.Context, id int64, req PayRequest) (PayResult, models.Quota, error) {
	const op = "MarkPaid"

	result := PayResult{ExpenseID: id}

	if req.AccountID == 0 {
		return result, models.Quota{}, fmt.Errorf("%s: expense %d: %w", op, id, schedule.ErrMissingPaymentAccount)
	}

	e, quota, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return result, quota, fmt.Errorf("%s: fetching expense %d: %w", op, id, err)
	}

	installments := e.Installments
	if len(installments) == 0 && req.Target.IsAll() {
		// Lump payment: treat the whole gross amount as a single installment
		installments = []models.Installment{{
			Amount:  e.AmountGross(),
			DueDate: e.ExpenseDate,
			Status:  models.InstallmentNotPaid,
		}}
	}

	updated, err := schedule.ApplyPayment(installments, req.Target, req.PaidDate, e.ExpenseDate, req.AccountID)
	if err != nil {
		return result, quota, fmt.Errorf("%s: expense %d: %w", op, id, err)
	}

	result.Paid = schedule.UnpaidCount(installments) - schedule.UnpaidCount(updated)
	if result.Paid == 0 {
		result.Expense = e
		s.log.Debug().Int64("expense_id", id).Msg("Nothing to pay")
		return result, quota, nil
	}

	e.Installments = updated
	saved, q, err := s.store.UpdateExpense(ctx, e)
	quota = quota.Merge(q)
	if err != nil {
		return result, quota, fmt.Errorf("%s: updating expense %d: %w", op, id, err)
	}

	result.Expense = saved
	s.log.Info().
		Int64("expense_id", id).
		Str("target", req.Target.String()).
		Int("paid", result.Paid).
		Int64("account_id", req.AccountID).
		Msg("Payment recorded")

	return result, quota, nil
}

// MarkPaidBatch applies req to every distinct id. Expenses are processed
// concurrently, at most one goroutine per id. Each result carries its own
// error; the returned error is only set when ctx is done.
func (s *Service) MarkPaidBatch(ctx context.Context, ids []int64, req PayRequest) ([]PayResult, models.Quota, error) {
	const op = "MarkPaidBatch"

	ids = uniqueIDs(ids)
	results := make([]PayResult, len(ids))

	var (
		mu    sync.Mutex
		quota models.Quota
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			res, q, err := s.MarkPaid(gctx, id, req)
			res.Err = err
			results[i] = res

			mu.Lock()
			quota = quota.Tighter(q)
			mu.Unlock()

			if err != nil && errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, quota, fmt.Errorf("%s: %w", op, err)
	}
	if err := ctx.Err(); err != nil {
		return results, quota, fmt.Errorf("%s: %w", op, err)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.log.Info().Int("expenses", len(ids)).Int("failed", failed).Msg("Batch payment finished")

	return results, quota, nil
}

// Fetch loads the full record, including the payment schedule, of every
// listed expense. Requests run concurrently and results keep the input order.
func (s *Service) Fetch(ctx context.Context, list []models.Expense) ([]models.Expense, models.Quota, error) {
	const op = "Fetch"

	out := make([]models.Expense, len(list))

	var (
		mu    sync.Mutex
		quota models.Quota
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, e := range list {
		g.Go(func() error {
			full, q, err := s.store.GetExpense(gctx, e.ID)

			mu.Lock()
			quota = quota.Tighter(q)
			mu.Unlock()

			if err != nil {
				return fmt.Errorf("expense %d: %w", e.ID, err)
			}
			out[i] = full
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, quota, fmt.Errorf("%s: %w", op, err)
	}
	return out, quota, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
