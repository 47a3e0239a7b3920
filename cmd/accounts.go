package cmd

import (
	"fmt"
	"strings"

	"fic-expenses/internal/config"
	"fic-expenses/internal/display"
	"fic-expenses/internal/logger"
	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the company's payment accounts",
	Long: `List the bank accounts, cards and cash registers payments can be booked on.

The account marked as default is the one 'pay' uses. Change it with
'fic-expenses configs --default-account <id>'.`,
	Args: cobra.NoArgs,
	RunE: runAccounts,
}

var accountsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a payment account",
	Example: `  fic-expenses accounts create "Intesa business"
  fic-expenses accounts create "Cash" --set-default`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAccountsCreate,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.AddCommand(accountsCreateCmd)

	accountsCmd.Flags().Bool("json", false, "Output as JSON")
	accountsCreateCmd.Flags().Bool("set-default", false, "Save the new account as FIC_DEFAULT_ACCOUNT_ID")
}

// AccountOutput is the JSON form of a payment account.
type AccountOutput struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Default bool   `json:"default"`
}

func runAccounts(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("accounts")

	jsonOutput, _ := cmd.Flags().GetBool("json")

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

	accounts, quota, err := client.ListPaymentAccounts(ctx)
	if err != nil {
		return handleAPIError(err, log)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		outputs := make([]AccountOutput, 0, len(accounts))
		for _, a := range accounts {
			outputs = append(outputs, AccountOutput{ID: a.ID, Name: a.Name, Type: a.Type, Default: a.ID == cfg.DefaultAccountID})
		}
		return writeJSON(out, outputs)
	}

	fmt.Fprintln(out, display.AccountsTable(accounts, cfg.DefaultAccountID))
	if cfg.DefaultAccountID == 0 && len(accounts) > 0 {
		fmt.Fprintln(out, "\nNo default account set. Run 'fic-expenses configs --default-account <id>'.")
	}
	printQuota(cmd.ErrOrStderr(), quota)
	return nil
}

func runAccountsCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("accounts")

	setDefault, _ := cmd.Flags().GetBool("set-default")
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return fmt.Errorf("account name is required")
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

	account, quota, err := client.CreatePaymentAccount(ctx, name)
	if err != nil {
		return handleAPIError(err, log)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created payment account #%d (%s)\n", account.ID, account.Name)

	if setDefault {
		if err := saveCredentials(config.Credentials{DefaultAccountID: account.ID}); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Default payment account set to #%d\n", account.ID)
	}
	printQuota(cmd.ErrOrStderr(), quota)
	return nil
}
