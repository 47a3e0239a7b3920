package cmd

import (
	"context"
	"fmt"

	"fic-expenses/internal/config"
	"fic-expenses/internal/expenses"
	"fic-expenses/internal/logger"
	"fic-expenses/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse, pay and create expenses interactively",
	Long: `Open the full screen terminal UI.

The list shows the latest expenses with a running summary. Select rows with
space and press p to pay them, enter to open one, n to start the create
wizard, f to cycle the paid/unpaid filter. The API quota is shown in the
top right corner.`,
	Example: `  fic-expenses tui
  fic-expenses tui --supplier Enel --limit 200`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	addFilterFlags(tuiCmd)
	tuiCmd.Flags().IntP("limit", "l", 200, "Maximum number of expenses to load")
}

func runTUI(cmd *cobra.Command, args []string) error {
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 1 {
		return fmt.Errorf("--limit must be at least 1")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return runInteractive(cmd, cfg, interactiveOptions{query: filter.Query(), limit: limit})
}

type interactiveOptions struct {
	wizard bool
	query  string
	limit  int
}

// runInteractive starts the terminal UI. Logging is turned off while it owns
// the screen.
func runInteractive(cmd *cobra.Command, cfg *config.Config, opts interactiveOptions) error {
	log := logger.WithComponent("tui")

	client, err := newClient(cfg)
	if err != nil {
		return handleAPIError(err, log)
	}
	stepping, err := scheduleStepping(cmd, cfg)
	if err != nil {
		return err
	}
	if opts.limit == 0 {
		opts.limit = 200
	}

	log.Debug().Bool("wizard", opts.wizard).Msg("Starting terminal UI")
	logger.Disable()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	err = tui.Run(ctx, tui.Options{
		Backend:       client,
		Service:       expenses.NewService(client, cfg.PayConcurrency),
		AccountID:     cfg.DefaultAccountID,
		Stepping:      stepping,
		Query:         opts.query,
		Limit:         opts.limit,
		StartInWizard: opts.wizard,
	})
	if err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}
