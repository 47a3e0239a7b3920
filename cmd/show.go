package cmd

import (
	"fmt"
	"strconv"

	"fic-expenses/internal/display"
	"fic-expenses/internal/logger"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one expense with its installment schedule",
	Example: `  fic-expenses show 123456
  fic-expenses show 123456 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().Bool("json", false, "Output as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("show")

	jsonOutput, _ := cmd.Flags().GetBool("json")

	id, err := parseExpenseID(args[0])
	if err != nil {
		return err
	}

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

	e, quota, err := client.GetExpense(ctx, id)
	if err != nil {
		return handleAPIError(err, log)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, newExpenseOutput(e))
	}

	fmt.Fprintln(out, display.ExpenseDetail(e))
	printQuota(cmd.ErrOrStderr(), quota)
	return nil
}

func parseExpenseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid expense id %q", s)
	}
	return id, nil
}
