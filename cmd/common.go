package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fic-expenses/internal/config"
	"fic-expenses/internal/display"
	"fic-expenses/internal/expenses"
	"fic-expenses/internal/fic"
	"fic-expenses/internal/schedule"
	"fic-expenses/pkg/models"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// defaultTimeout bounds a whole command, including retries and paging.
const defaultTimeout = 5 * time.Minute

// stdin is read by confirmation prompts; replaced in tests.
var stdin io.Reader = os.Stdin

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClient builds an API client from the configuration.
func newClient(cfg *config.Config) (*fic.Client, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, &fic.APIError{Op: "newClient", Err: fic.ErrMissingCredentials, Details: err.Error()}
	}
	return fic.NewClient(fic.Config{
		BaseURL:           cfg.APIBaseURL,
		AccessToken:       cfg.AccessToken,
		CompanyID:         cfg.CompanyID,
		RequestsPerSecond: cfg.RateLimitRPS,
		Timeout:           cfg.HTTPTimeout,
	})
}

// createContext returns a context canceled on timeout or on SIGINT/SIGTERM.
func createContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// scheduleStepping resolves --stepping, falling back to FIC_SCHEDULE_STEPPING.
func scheduleStepping(cmd *cobra.Command, cfg *config.Config) (schedule.Stepping, error) {
	value := cfg.ScheduleStepping
	if cmd.Flags().Changed("stepping") {
		value, _ = cmd.Flags().GetString("stepping")
	}
	return schedule.ParseStepping(value)
}

// dateFlag parses an optional YYYY-MM-DD flag.
func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	d, err := schedule.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: use YYYY-MM-DD", name, value)
	}
	return d, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("supplier", "s", "", "Filter by supplier name (partial match)")
	cmd.Flags().String("from", "", "Only expenses dated on or after this day (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Only expenses dated on or before this day (YYYY-MM-DD)")
}

// filterFromFlags reads --supplier, --from and --to.
func filterFromFlags(cmd *cobra.Command) (fic.Filter, error) {
	supplier, _ := cmd.Flags().GetString("supplier")
	from, err := dateFlag(cmd, "from")
	if err != nil {
		return fic.Filter{}, err
	}
	to, err := dateFlag(cmd, "to")
	if err != nil {
		return fic.Filter{}, err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return fic.Filter{}, fmt.Errorf("--to %s is before --from %s", schedule.FormatDate(to), schedule.FormatDate(from))
	}
	return fic.Filter{Supplier: strings.TrimSpace(supplier), From: from, To: to}, nil
}

func addStatusFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("paid", false, "Only fully paid expenses")
	cmd.Flags().Bool("unpaid", false, "Only expenses with something left to pay")
	cmd.MarkFlagsMutuallyExclusive("paid", "unpaid")
}

func statusFromFlags(cmd *cobra.Command) expenses.StatusFilter {
	if paid, _ := cmd.Flags().GetBool("paid"); paid {
		return expenses.FilterPaid
	}
	if unpaid, _ := cmd.Flags().GetBool("unpaid"); unpaid {
		return expenses.FilterUnpaid
	}
	return expenses.FilterAll
}

// confirm asks a yes/no question on stdin; anything but y/yes is a no.
func confirm(out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	scanner := bufio.NewScanner(stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

func printQuota(out io.Writer, q models.Quota) {
	if q.IsZero() {
		return
	}
	fmt.Fprintln(out, display.Quota(q))
}

func today() time.Time {
	return schedule.Truncate(time.Now())
}

// handleAPIError turns client and validation errors into actionable messages.
func handleAPIError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Command failed")

	var ve *expenses.ValidationError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("the request timed out. Check your connection and try again")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("operation canceled")
	case errors.Is(err, fic.ErrMissingCredentials):
		return fmt.Errorf("credentials are not configured. Run:\n\n" +
			"  fic-expenses configs --token <access-token> --company-id <id>\n\n" +
			"or set FIC_ACCESS_TOKEN and FIC_COMPANY_ID in .env")
	case errors.Is(err, fic.ErrUnauthorized):
		return fmt.Errorf("the access token was rejected. Generate a new one and run 'fic-expenses configs --token <token>'")
	case errors.Is(err, fic.ErrForbidden):
		return fmt.Errorf("the access token lacks permission for this company or resource. Check FIC_COMPANY_ID and the token scopes")
	case errors.Is(err, fic.ErrRateLimited):
		return fmt.Errorf("API quota exhausted. Wait for the hourly quota to reset and try again")
	case errors.Is(err, fic.ErrNotFound):
		return fmt.Errorf("not found: %w", err)
	case errors.Is(err, config.ErrMissingAccount), errors.Is(err, schedule.ErrMissingPaymentAccount):
		return fmt.Errorf("no payment account configured. List accounts with 'fic-expenses accounts' and run 'fic-expenses configs --default-account <id>'")
	case errors.Is(err, schedule.ErrNoPaymentSchedule):
		return fmt.Errorf("this expense has no payment schedule; pay it without --installment")
	case errors.Is(err, schedule.ErrInstallmentOutOfRange), errors.Is(err, schedule.ErrInstallmentAlreadyPaid):
		return err
	case errors.As(err, &ve):
		return fmt.Errorf("invalid %s: %s", ve.Field, ve.Message)
	case errors.Is(err, fic.ErrInvalidRequest):
		return fmt.Errorf("the API rejected the request: %w", err)
	default:
		return err
	}
}
