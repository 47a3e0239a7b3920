package cmd

import (
	"fmt"
	"io"
	"strings"

	"fic-expenses/internal/config"
	"fic-expenses/internal/display"
	"fic-expenses/internal/fic"
	"fic-expenses/internal/logger"
	"fic-expenses/pkg/models"
	"github.com/spf13/cobra"
)

// envFile is where credentials are saved.
var envFile = config.EnvFile

var configsCmd = &cobra.Command{
	Use:   "configs",
	Short: "Show or save API credentials",
	Long: `Show the current configuration, or save credentials to the .env file.

New credentials are checked against the API before they are written: the
token and company must be able to list payment accounts, and a default
account must be one of them. Other keys in .env are left untouched.`,
	Example: `  # Show the current configuration
  fic-expenses configs

  # Save token and company
  fic-expenses configs --token a/abc... --company-id 123456

  # Choose the account payments are booked on
  fic-expenses configs --default-account 42`,
	Args: cobra.NoArgs,
	RunE: runConfigs,
}

func init() {
	rootCmd.AddCommand(configsCmd)

	configsCmd.Flags().String("token", "", "Fatture in Cloud access token")
	configsCmd.Flags().Int64("company-id", 0, "Company id")
	configsCmd.Flags().Int64("default-account", 0, "Default payment account id")
	configsCmd.Flags().Bool("no-verify", false, "Save without checking the credentials against the API")
}

func runConfigs(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("configs")

	token, _ := cmd.Flags().GetString("token")
	companyID, _ := cmd.Flags().GetInt64("company-id")
	accountID, _ := cmd.Flags().GetInt64("default-account")
	noVerify, _ := cmd.Flags().GetBool("no-verify")

	token = strings.TrimSpace(token)
	if companyID < 0 || accountID < 0 {
		return fmt.Errorf("ids must be positive")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if token == "" && companyID == 0 && accountID == 0 {
		printConfig(out, cfg)
		return nil
	}

	candidate := *cfg
	if token != "" {
		candidate.AccessToken = token
	}
	if companyID != 0 {
		candidate.CompanyID = companyID
	}
	if accountID != 0 {
		candidate.DefaultAccountID = accountID
	}

	if !noVerify {
		if err := verifyCredentials(cmd, &candidate, accountID); err != nil {
			return handleAPIError(err, log)
		}
	}

	creds := config.Credentials{AccessToken: token, CompanyID: companyID, DefaultAccountID: accountID}
	if err := saveCredentials(creds); err != nil {
		return err
	}

	log.Info().
		Bool("token", token != "").
		Int64("company_id", companyID).
		Int64("default_account_id", accountID).
		Msg("Credentials saved")

	fmt.Fprintf(out, "✓ Saved to %s\n\n", envFile)
	printConfig(out, &candidate)
	return nil
}

// verifyCredentials lists payment accounts with the candidate credentials and
// checks that accountID, when set, is among them.
func verifyCredentials(cmd *cobra.Command, cfg *config.Config, accountID int64) error {
	log := logger.WithComponent("configs")

	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := createContext(cfg.HTTPTimeout*2, log)
	defer cancel()

	accounts, quota, err := client.ListPaymentAccounts(ctx)
	if err != nil {
		return err
	}
	printQuota(cmd.ErrOrStderr(), quota)

	if accountID != 0 && !hasAccount(accounts, accountID) {
		return &fic.APIError{
			Op:      "verifyCredentials",
			Err:     fic.ErrNotFound,
			Details: fmt.Sprintf("payment account %d does not exist; see 'fic-expenses accounts'", accountID),
		}
	}
	return nil
}

func hasAccount(accounts []models.PaymentAccount, id int64) bool {
	for _, a := range accounts {
		if a.ID == id {
			return true
		}
	}
	return false
}

func saveCredentials(creds config.Credentials) error {
	if err := config.SaveCredentials(envFile, creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	id := func(v int64) string {
		if v == 0 {
			return "(not set)"
		}
		return fmt.Sprintf("%d", v)
	}

	fmt.Fprintf(out, "%-22s %s\n", "Access token:", display.MaskToken(cfg.AccessToken))
	fmt.Fprintf(out, "%-22s %s\n", "Company id:", id(cfg.CompanyID))
	fmt.Fprintf(out, "%-22s %s\n", "Default account:", id(cfg.DefaultAccountID))
	fmt.Fprintf(out, "%-22s %s\n", "API:", cfg.APIBaseURL)
	fmt.Fprintf(out, "%-22s %s\n", "Schedule stepping:", cfg.ScheduleStepping)
	if cfg.GoogleSheetURL != "" {
		fmt.Fprintf(out, "%-22s %s\n", "Google Sheet:", cfg.GoogleSheetURL)
	}
}
