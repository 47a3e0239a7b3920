package cmd

import (
	"fmt"
	"strings"
	"time"

	"fic-expenses/internal/expenses"
	"fic-expenses/internal/fic"
	"fic-expenses/internal/logger"
	"fic-expenses/internal/sheets"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export expenses to a Google Sheet",
	Long: `Write expenses to a Google Sheets worksheet, one row per installment.

The worksheet is created with a header row when missing. Rows are appended
unless --replace is given, which clears the existing data first.

Listings do not carry installments. --with-schedule loads every expense in
full (one extra request each) so each installment gets its own row;
without it every expense is a single row with its overall status.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_SHEET_URL - Target spreadsheet (or --sheet-url)`,
	Example: `  # Replace the worksheet with every expense of 2025, per installment
  fic-expenses export --from 2025-01-01 --to 2025-12-31 --with-schedule --replace

  # Append unpaid expenses to another worksheet
  fic-expenses export --unpaid --worksheet Unpaid`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	addStatusFlags(exportCmd)
	addFilterFlags(exportCmd)
	exportCmd.Flags().String("sheet-url", "", "Google Sheets URL (default GOOGLE_SHEET_URL)")
	exportCmd.Flags().String("worksheet", "", "Worksheet name (default GOOGLE_SHEET_WORKSHEET or Expenses)")
	exportCmd.Flags().Bool("replace", false, "Clear existing rows before writing")
	exportCmd.Flags().Bool("with-schedule", false, "Load installments and write one row per installment")
	exportCmd.Flags().IntP("limit", "l", 0, "Maximum number of expenses (0 = all)")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")

	sheetURL, _ := cmd.Flags().GetString("sheet-url")
	worksheet, _ := cmd.Flags().GetString("worksheet")
	replace, _ := cmd.Flags().GetBool("replace")
	withSchedule, _ := cmd.Flags().GetBool("with-schedule")
	limit, _ := cmd.Flags().GetInt("limit")

	if limit < 0 {
		return fmt.Errorf("--limit cannot be negative")
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
	if strings.TrimSpace(sheetURL) == "" {
		sheetURL = cfg.GoogleSheetURL
	}
	if strings.TrimSpace(sheetURL) == "" {
		return fmt.Errorf("no spreadsheet given: use --sheet-url or set GOOGLE_SHEET_URL")
	}
	if strings.TrimSpace(worksheet) == "" {
		worksheet = cfg.GoogleSheetWorksheet
	}

	client, err := newClient(cfg)
	if err != nil {
		return handleAPIError(err, log)
	}

	ctx, cancel := createContext(defaultTimeout, log)
	defer cancel()

	sheetsService, err := sheets.NewSheetsService(ctx, sheetURL)
	if err != nil {
		return fmt.Errorf("failed to connect to Google Sheets: %w", err)
	}

	list, quota, err := client.ListExpenses(ctx, fic.ListOptions{
		Query: filter.Query(),
		Sort:  "date",
		Limit: limit,
	})
	if err != nil {
		return handleAPIError(err, log)
	}
	list = expenses.FilterByStatus(list, status)

	if withSchedule && len(list) > 0 {
		svc := expenses.NewService(client, cfg.PayConcurrency)
		full, q, err := svc.Fetch(ctx, list)
		quota = quota.Merge(q)
		if err != nil {
			return handleAPIError(err, log)
		}
		list = full
	}

	rows := sheets.BuildRows(list, time.Now())
	written, err := sheetsService.WriteRows(ctx, rows, sheets.WriteOptions{SheetName: worksheet, Replace: replace})
	if err != nil {
		return fmt.Errorf("failed to export to Google Sheets: %w", err)
	}

	log.Info().
		Int("expenses", len(list)).
		Int("rows", written).
		Str("worksheet", worksheet).
		Msg("Export finished")

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d expense(s) as %d row(s) to worksheet %q\n", len(list), written, worksheet)
	printQuota(cmd.ErrOrStderr(), quota)
	return nil
}
