package cmd

import (
	"fmt"

	"fic-expenses/internal/display"
	"fic-expenses/internal/expenses"
	"fic-expenses/internal/fic"
	"fic-expenses/internal/logger"
	"github.com/spf13/cobra"
)

const defaultListLimit = 50

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses with their payment status",
	Long: `List received expenses, newest first, with a summary footer.

Status comes from the server computed next due date, so no extra request
is made per expense. Use 'show' to see the installment schedule.`,
	Example: `  # Latest 50 expenses
  fic-expenses list

  # Unpaid expenses of one supplier
  fic-expenses list --unpaid --supplier Enel

  # Everything dated in 2025
  fic-expenses list --all --from 2025-01-01 --to 2025-12-31`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	addStatusFlags(listCmd)
	addFilterFlags(listCmd)
	listCmd.Flags().BoolP("all", "a", false, "Fetch every page instead of stopping at --limit")
	listCmd.Flags().IntP("limit", "l", defaultListLimit, "Maximum number of expenses to fetch")
	listCmd.Flags().Bool("json", false, "Output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("list")

	all, _ := cmd.Flags().GetBool("all")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if limit < 1 && !all {
		return fmt.Errorf("--limit must be at least 1")
	}
	if all {
		limit = 0
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	status := statusFromFlags(cmd)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return handleAPIError(err, log)
	}

	ctx, cancel := createContext(defaultTimeout, log)
	defer cancel()

	log.Debug().
		Str("query", filter.Query()).
		Str("status", status.String()).
		Int("limit", limit).
		Msg("Listing expenses")

	list, quota, err := client.ListExpenses(ctx, fic.ListOptions{
		Query: filter.Query(),
		Sort:  "-date",
		Limit: limit,
	})
	if err != nil {
		return handleAPIError(err, log)
	}
	list = expenses.FilterByStatus(list, status)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, newExpenseOutputs(list))
	}

	fmt.Fprintln(out, display.ExpensesTable(list))
	if len(list) > 0 {
		fmt.Fprintln(out, display.StatsFooter(expenses.ComputeStats(list, today())))
	}
	printQuota(cmd.ErrOrStderr(), quota)
	return nil
}
