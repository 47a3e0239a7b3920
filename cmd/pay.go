package cmd

import (
	"fmt"

	"fic-expenses/internal/display"
	"fic-expenses/internal/expenses"
	"fic-expenses/internal/fic"
	"fic-expenses/internal/logger"
	"fic-expenses/internal/schedule"
	"github.com/spf13/cobra"
)

var payCmd = &cobra.Command{
	Use:   "pay [id]",
	Short: "Mark installments as paid",
	Long: `Record payments on one expense or on every unpaid expense matching a filter.

With an id, all unpaid installments are marked paid, or only the one
selected with --installment. Without an id, --supplier, --from or --to
select the expenses to settle in bulk.

Each payment is booked on the default payment account (FIC_DEFAULT_ACCOUNT_ID)
unless --account is given. The paid date is --date, or each installment's
own due date when omitted. Expenses without a schedule are recorded as a
single payment of the gross amount.`,
	Example: `  # Pay everything left on one expense
  fic-expenses pay 123456

  # Pay only the second installment, today
  fic-expenses pay 123456 -i 2 -d 2025-03-01

  # Settle every unpaid expense of a supplier
  fic-expenses pay --supplier Enel --to 2025-06-30`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPay,
}

func init() {
	rootCmd.AddCommand(payCmd)

	addFilterFlags(payCmd)
	payCmd.Flags().IntP("installment", "i", 0, "Installment number to pay (1-based, single expense only)")
	payCmd.Flags().StringP("date", "d", "", "Paid date (YYYY-MM-DD, default each installment's due date)")
	payCmd.Flags().Int64("account", 0, "Payment account id (default FIC_DEFAULT_ACCOUNT_ID)")
	payCmd.Flags().BoolP("yes", "y", false, "Pay without asking for confirmation")
	payCmd.Flags().Bool("json", false, "Output results as JSON")
}

// PayOutput is the JSON form of one payment result.
type PayOutput struct {
	ExpenseID int64          `json:"expense_id"`
	Paid      int            `json:"paid"`
	Error     string         `json:"error,omitempty"`
	Expense   *ExpenseOutput `json:"expense,omitempty"`
}

func runPay(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("pay")

	installment, _ := cmd.Flags().GetInt("installment")
	accountID, _ := cmd.Flags().GetInt64("account")
	yes, _ := cmd.Flags().GetBool("yes")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	paidDate, err := dateFlag(cmd, "date")
	if err != nil {
		return err
	}
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	target := schedule.AllInstallments
	if cmd.Flags().Changed("installment") {
		if len(args) == 0 {
			return fmt.Errorf("--installment needs an expense id")
		}
		if installment < 1 {
			return fmt.Errorf("--installment must be at least 1")
		}
		target = schedule.Installment(installment)
	}
	if len(args) == 0 && filter.IsZero() {
		return fmt.Errorf("give an expense id, or select expenses with --supplier, --from or --to")
	}
	if len(args) == 1 && !filter.IsZero() {
		return fmt.Errorf("filters cannot be combined with an expense id")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if accountID == 0 {
		if err := cfg.RequireDefaultAccount(); err != nil {
			return handleAPIError(err, log)
		}
		accountID = cfg.DefaultAccountID
	}

	client, err := newClient(cfg)
	if err != nil {
		return handleAPIError(err, log)
	}

	ctx, cancel := createContext(defaultTimeout, log)
	defer cancel()

	svc := expenses.NewService(client, cfg.PayConcurrency)
	req := expenses.PayRequest{Target: target, PaidDate: paidDate, AccountID: accountID}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		id, err := parseExpenseID(args[0])
		if err != nil {
			return err
		}

		result, quota, err := svc.MarkPaid(ctx, id, req)
		if err != nil {
			return handleAPIError(err, log)
		}
		if jsonOutput {
			return writeJSON(out, newPayOutput(result))
		}
		if result.Paid == 0 {
			fmt.Fprintf(out, "Expense #%d has nothing left to pay.\n", id)
		} else {
			fmt.Fprintf(out, "✓ Marked %d installment(s) of expense #%d paid\n\n", result.Paid, id)
			fmt.Fprintln(out, display.Schedule(result.Expense.Installments))
		}
		printQuota(cmd.ErrOrStderr(), quota)
		return nil
	}

	list, quota, err := client.ListExpenses(ctx, fic.ListOptions{Query: filter.Query(), Sort: "date"})
	if err != nil {
		return handleAPIError(err, log)
	}
	list = expenses.FilterByStatus(list, expenses.FilterUnpaid)
	if len(list) == 0 {
		fmt.Fprintln(out, "No unpaid expenses match the filter.")
		printQuota(cmd.ErrOrStderr(), quota)
		return nil
	}

	if !jsonOutput {
		fmt.Fprintln(out, display.ExpensesTable(list))
	}
	if !yes && !confirm(out, fmt.Sprintf("Mark all installments of %d expense(s) paid on account %d?", len(list), accountID)) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	ids := make([]int64, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ID)
	}

	results, q, err := svc.MarkPaidBatch(ctx, ids, req)
	quota = quota.Merge(q)
	if jsonOutput {
		outputs := make([]PayOutput, 0, len(results))
		for _, r := range results {
			outputs = append(outputs, newPayOutput(r))
		}
		if werr := writeJSON(out, outputs); werr != nil {
			return werr
		}
	} else {
		fmt.Fprintln(out, display.PayResults(results))
	}
	if err != nil {
		return handleAPIError(err, log)
	}
	printQuota(cmd.ErrOrStderr(), quota)

	if failed := countFailed(results); failed > 0 {
		return fmt.Errorf("%d of %d payment(s) failed", failed, len(results))
	}
	return nil
}

func newPayOutput(r expenses.PayResult) PayOutput {
	out := PayOutput{ExpenseID: r.ExpenseID, Paid: r.Paid}
	if r.Err != nil {
		out.Error = r.Err.Error()
	} else if r.Expense.ID != 0 {
		e := newExpenseOutput(r.Expense)
		out.Expense = &e
	}
	return out
}

func countFailed(results []expenses.PayResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
