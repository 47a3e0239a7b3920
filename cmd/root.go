package cmd

import (
	"fmt"
	"os"

	"fic-expenses/internal/logger"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "fic-expenses",
	Short: "Manage Fatture in Cloud expenses from the terminal",
	Long: `fic-expenses lists, creates and pays received expense documents on
Fatture in Cloud.

Expenses can be split into installments and repeated on a monthly,
bimonthly, quarterly, semiannual or annual recurrence. Installments are
marked paid one at a time or in bulk, and the whole list can be exported
to Google Sheets or browsed in an interactive terminal UI.

Required environment variables (or run 'fic-expenses configs'):
  FIC_ACCESS_TOKEN - Fatture in Cloud API access token
  FIC_COMPANY_ID   - Company the expenses belong to

Optional:
  FIC_DEFAULT_ACCOUNT_ID - Payment account recorded on payments`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
