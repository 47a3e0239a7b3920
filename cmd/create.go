package cmd

import (
	"fmt"
	"strings"

	"fic-expenses/internal/display"
	"fic-expenses/internal/expenses"
	"fic-expenses/internal/logger"
	"fic-expenses/internal/schedule"
	"fic-expenses/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an expense, optionally in installments and recurring",
	Long: `Create one or more expenses on Fatture in Cloud.

The gross amount (net + VAT) is split into equal installments; the last
one absorbs the rounding remainder. Due dates advance one month per
installment:

  end-of-month  every due date is the last day of its month; the first is
                the end of --first-due's month, or of the month after the
                expense date
  same-day      starts at --first-due (or the expense date), keeping its
                day of month clamped to short months

With --recurrence the expense is repeated, each occurrence shifted by the
interval and scheduled the same way.

Without --supplier the interactive wizard is started instead.`,
	Example: `  # Interactive wizard
  fic-expenses create

  # 100 EUR net + 22% VAT, one payment
  fic-expenses create -s "Enel" -a 100

  # Split in 3 installments, first due on 2025-02-15
  fic-expenses create -s "Studio Rossi" -a 1500 -n 3 --first-due 2025-02-15 --stepping same-day

  # Quarterly for a year, no confirmation
  fic-expenses create -s "Aruba" -D "Hosting" -a 45.90 -r quarterly -o 4 -y`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
	addCreateFlags(createCmd)
}

func addCreateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("supplier", "s", "", "Supplier name")
	cmd.Flags().StringP("description", "D", "", "Description")
	cmd.Flags().StringP("category", "c", "", "Category")
	cmd.Flags().StringP("amount-net", "a", "", "Net amount in EUR (e.g. 100 or 99.90)")
	cmd.Flags().String("vat-rate", expenses.DefaultVATRate.String(), "VAT rate in percent")
	cmd.Flags().StringP("date", "d", "", "Expense date (YYYY-MM-DD, default today)")
	cmd.Flags().IntP("installments", "n", 1, fmt.Sprintf("Number of installments (1-%d)", schedule.MaxInstallments))
	cmd.Flags().String("first-due", "", "First due date (YYYY-MM-DD, default the expense date)")
	cmd.Flags().String("stepping", "", "Due date stepping: end-of-month or same-day (default FIC_SCHEDULE_STEPPING)")
	cmd.Flags().StringP("recurrence", "r", "", "Repeat monthly, bimonthly, quarterly, biannual or yearly")
	cmd.Flags().Int("every", 0, "Repeat every N months (alternative to --recurrence)")
	cmd.Flags().IntP("occurrences", "o", 1, fmt.Sprintf("Number of expenses to create when recurring (1-%d)", schedule.MaxOccurrences))
	cmd.Flags().BoolP("yes", "y", false, "Create without asking for confirmation")
	cmd.Flags().Bool("json", false, "Output created expenses as JSON")

	cmd.MarkFlagsMutuallyExclusive("recurrence", "every")
}

func runCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("create")

	yes, _ := cmd.Flags().GetBool("yes")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	stepping, err := scheduleStepping(cmd, cfg)
	if err != nil {
		return err
	}

	if supplier, _ := cmd.Flags().GetString("supplier"); strings.TrimSpace(supplier) == "" {
		log.Debug().Msg("No supplier given, starting the wizard")
		return runInteractive(cmd, cfg, interactiveOptions{wizard: true})
	}

	in, err := inputFromFlags(cmd, stepping)
	if err != nil {
		return handleAPIError(err, log)
	}
	drafts, err := expenses.Plan(in)
	if err != nil {
		return handleAPIError(err, log)
	}

	out := cmd.OutOrStdout()
	if !jsonOutput {
		fmt.Fprintln(out, display.Plan(drafts))
		fmt.Fprintln(out)
	}

	if !yes && !confirm(out, fmt.Sprintf("Create %d expense(s)?", len(drafts))) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	client, err := newClient(cfg)
	if err != nil {
		return handleAPIError(err, log)
	}

	ctx, cancel := createContext(defaultTimeout, log)
	defer cancel()

	svc := expenses.NewService(client, cfg.PayConcurrency)
	created, quota, err := svc.Create(ctx, drafts, func(i int, e models.Expense) {
		if !jsonOutput {
			fmt.Fprintf(out, "✓ Created expense #%d (%d/%d, %s)\n", e.ID, i+1, len(drafts), schedule.FormatDate(e.ExpenseDate))
		}
	})
	if err != nil {
		if len(created) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d expense(s) were created before the failure\n", len(created), len(drafts))
		}
		return handleAPIError(err, log)
	}

	log.Info().
		Int("count", len(created)).
		Str("supplier", in.Supplier).
		Msg("Expenses created")

	if jsonOutput {
		return writeJSON(out, newExpenseOutputs(created))
	}
	printQuota(cmd.ErrOrStderr(), quota)
	return nil
}

// inputFromFlags builds the create request from command line flags.
func inputFromFlags(cmd *cobra.Command, stepping schedule.Stepping) (expenses.Input, error) {
	in := expenses.NewInput(today(), stepping)

	in.Supplier, _ = cmd.Flags().GetString("supplier")
	in.Supplier = strings.TrimSpace(in.Supplier)
	in.Description, _ = cmd.Flags().GetString("description")
	in.Category, _ = cmd.Flags().GetString("category")

	raw, _ := cmd.Flags().GetString("amount-net")
	if strings.TrimSpace(raw) == "" {
		return in, expenses.NewValidationError("amount_net", raw, "--amount-net is required")
	}
	net, err := parseAmount(raw)
	if err != nil {
		return in, expenses.NewValidationError("amount_net", raw, "not a number")
	}
	in.AmountNet = net

	rawRate, _ := cmd.Flags().GetString("vat-rate")
	rate, err := parseAmount(rawRate)
	if err != nil {
		return in, expenses.NewValidationError("vat_rate", rawRate, "not a number")
	}
	in.VATRate = rate

	date, err := dateFlag(cmd, "date")
	if err != nil {
		return in, err
	}
	if !date.IsZero() {
		in.ExpenseDate = date
	}

	in.Installments, _ = cmd.Flags().GetInt("installments")
	if in.FirstDue, err = dateFlag(cmd, "first-due"); err != nil {
		return in, err
	}

	every, _ := cmd.Flags().GetInt("every")
	if name, _ := cmd.Flags().GetString("recurrence"); strings.TrimSpace(name) != "" && name != "none" {
		period, err := schedule.ParsePeriod(name)
		if err != nil {
			return in, err
		}
		every = period.Months()
	}
	occurrences, _ := cmd.Flags().GetInt("occurrences")

	switch {
	case every > 0:
		in.EveryMonths = every
		in.Occurrences = occurrences
		if !cmd.Flags().Changed("occurrences") {
			in.Occurrences = defaultOccurrences
		}
	case cmd.Flags().Changed("every"):
		return in, expenses.NewValidationError("every", every, "--every must be at least 1")
	case occurrences > 1:
		return in, expenses.NewValidationError("occurrences", occurrences, "--occurrences needs --recurrence or --every")
	}

	return in, in.Validate()
}

// defaultOccurrences is used with --recurrence when --occurrences is omitted.
const defaultOccurrences = 4

// parseAmount accepts a dot or a comma as decimal separator.
func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
}
