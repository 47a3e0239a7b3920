package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"fic-expenses/internal/config"
	"fic-expenses/internal/expenses"
	"fic-expenses/internal/fic"
	"fic-expenses/internal/schedule"
	"fic-expenses/pkg/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// fakeAPI serves the subset of the API the commands use.
type fakeAPI struct {
	mu       sync.Mutex
	list     string
	expenses map[string]string
	accounts string
	updates  map[string][]byte
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	path := strings.TrimPrefix(r.URL.Path, "/c/12345")

	switch {
	case r.Method == http.MethodGet && path == "/received_documents":
		io.WriteString(w, f.list)
	case r.Method == http.MethodGet && path == "/info/payment_accounts":
		io.WriteString(w, f.accounts)
	case strings.HasPrefix(path, "/received_documents/"):
		id := strings.TrimPrefix(path, "/received_documents/")
		body, ok := f.expenses[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"message":"not found"}}`)
			return
		}
		if r.Method == http.MethodPut {
			raw, _ := io.ReadAll(r.Body)
			if f.updates == nil {
				f.updates = map[string][]byte{}
			}
			f.updates[id] = raw
			w.Write(raw)
			return
		}
		io.WriteString(w, body)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func setupAPI(t *testing.T, api *fakeAPI) {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	t.Setenv("FIC_API_BASE_URL", srv.URL)
	t.Setenv(config.KeyAccessToken, "test-token-0123456789")
	t.Setenv(config.KeyCompanyID, "12345")
	t.Setenv(config.KeyDefaultAccountID, "9")
	t.Setenv("FIC_RATE_LIMIT_RPS", "0")
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCommand(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	stdin = strings.NewReader(input)
	t.Cleanup(func() { stdin = os.Stdin })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

const listBody = `{"current_page":1,"last_page":1,"data":[
	{"id":1,"type":"expense","entity":{"name":"Enel"},"date":"2025-01-10","description":"Power","amount_net":100,"amount_vat":22,"next_due_date":"2025-02-28"},
	{"id":2,"type":"expense","entity":{"name":"Aruba"},"date":"2025-01-05","description":"Hosting","amount_net":50,"amount_vat":11}
]}`

const expenseBody = `{"data":{"id":1,"type":"expense","entity":{"name":"Enel"},"date":"2025-01-10","amount_net":100,"amount_vat":22,
	"payments_list":[
		{"amount":61,"due_date":"2025-02-28","status":"not_paid"},
		{"amount":61,"due_date":"2025-03-31","status":"not_paid"}
	]}}`

func TestListCommand(t *testing.T) {
	setupAPI(t, &fakeAPI{list: listBody})

	out, err := runCommand(t, "", "list", "--unpaid")
	require.NoError(t, err)

	assert.Contains(t, out, "Enel")
	assert.NotContains(t, out, "Aruba")
	assert.Contains(t, out, "€122.00")
}

func TestListCommand_JSON(t *testing.T) {
	setupAPI(t, &fakeAPI{list: listBody})

	out, err := runCommand(t, "", "list", "--json")
	require.NoError(t, err)

	var got []ExpenseOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Enel", got[0].Supplier)
	assert.Equal(t, "2025-02-28", got[0].NextDueDate)
	assert.Equal(t, "paid", got[1].Status)
	assert.True(t, got[0].AmountGross.Equal(decimal.NewFromInt(122)))
}

func TestListCommand_MissingCredentials(t *testing.T) {
	t.Setenv(config.KeyAccessToken, "")
	t.Setenv(config.KeyCompanyID, "")

	_, err := runCommand(t, "", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fic-expenses configs")
}

func TestShowCommand(t *testing.T) {
	setupAPI(t, &fakeAPI{expenses: map[string]string{"1": expenseBody}})

	out, err := runCommand(t, "", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Installment 2: €61.00 - due 2025-03-31")

	_, err = runCommand(t, "", "show", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = runCommand(t, "", "show", "abc")
	assert.EqualError(t, err, `invalid expense id "abc"`)
}

func TestPayCommand_SingleInstallment(t *testing.T) {
	api := &fakeAPI{expenses: map[string]string{"1": expenseBody}}
	setupAPI(t, api)

	out, err := runCommand(t, "", "pay", "1", "-i", "2", "-d", "2025-03-05")
	require.NoError(t, err)
	assert.Contains(t, out, "Marked 1 installment(s) of expense #1 paid")

	api.mu.Lock()
	defer api.mu.Unlock()
	var sent struct {
		Data struct {
			PaymentsList []struct {
				Status         string `json:"status"`
				PaidDate       string `json:"paid_date"`
				PaymentAccount *struct {
					ID int64 `json:"id"`
				} `json:"payment_account"`
			} `json:"payments_list"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(api.updates["1"], &sent))
	require.Len(t, sent.Data.PaymentsList, 2)
	assert.Equal(t, "not_paid", sent.Data.PaymentsList[0].Status)
	assert.Equal(t, "paid", sent.Data.PaymentsList[1].Status)
	assert.Equal(t, "2025-03-05", sent.Data.PaymentsList[1].PaidDate)
	require.NotNil(t, sent.Data.PaymentsList[1].PaymentAccount)
	assert.Equal(t, int64(9), sent.Data.PaymentsList[1].PaymentAccount.ID)
}

func TestPayCommand_Batch(t *testing.T) {
	api := &fakeAPI{list: listBody, expenses: map[string]string{"1": expenseBody}}
	setupAPI(t, api)

	out, err := runCommand(t, "n\n", "pay", "--supplier", "Enel")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")
	assert.Empty(t, api.updates)

	out, err = runCommand(t, "y\n", "pay", "--supplier", "Enel")
	require.NoError(t, err)
	assert.Contains(t, out, "1 succeeded, 0 failed")
	assert.Contains(t, api.updates, "1")
}

func TestPayCommand_ArgumentErrors(t *testing.T) {
	setupAPI(t, &fakeAPI{})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"nothing selected", []string{"pay"}, "give an expense id"},
		{"installment without id", []string{"pay", "-i", "1", "-s", "Enel"}, "--installment needs an expense id"},
		{"installment zero", []string{"pay", "1", "-i", "0"}, "--installment must be at least 1"},
		{"id and filter", []string{"pay", "1", "-s", "Enel"}, "cannot be combined"},
		{"bad date", []string{"pay", "1", "-d", "05/03/2025"}, "invalid --date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCommand(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPayCommand_NoDefaultAccount(t *testing.T) {
	setupAPI(t, &fakeAPI{})
	t.Setenv(config.KeyDefaultAccountID, "")

	_, err := runCommand(t, "", "pay", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configs --default-account")
}

func TestConfigsCommand(t *testing.T) {
	setupAPI(t, &fakeAPI{accounts: `{"data":[{"id":1,"name":"Banca","type":"bank"},{"id":2,"name":"Cassa"}]}`})

	envFile = filepath.Join(t.TempDir(), ".env")
	t.Cleanup(func() { envFile = config.EnvFile })

	out, err := runCommand(t, "", "configs", "--token", "new-token-abcdefgh", "--default-account", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved to")
	assert.Contains(t, out, "new-********efgh")

	saved, err := godotenv.Read(envFile)
	require.NoError(t, err)
	assert.Equal(t, "new-token-abcdefgh", saved[config.KeyAccessToken])
	assert.Equal(t, "2", saved[config.KeyDefaultAccountID])
	assert.NotContains(t, saved, config.KeyCompanyID)

	_, err = runCommand(t, "", "configs", "--default-account", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment account 99 does not exist")
}

func TestConfigsCommand_Show(t *testing.T) {
	setupAPI(t, &fakeAPI{})

	out, err := runCommand(t, "", "configs")
	require.NoError(t, err)
	assert.Contains(t, out, "test********6789")
	assert.Contains(t, out, "12345")
}

func TestFilterFromFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    fic.Filter
		wantErr string
	}{
		{
			name: "empty",
			args: nil,
			want: fic.Filter{},
		},
		{
			name: "all set",
			args: []string{"-s", " Enel ", "--from", "2025-01-01", "--to", "2025-03-31"},
			want: fic.Filter{Supplier: "Enel", From: schedule.Day(2025, 1, 1), To: schedule.Day(2025, 3, 31)},
		},
		{
			name:    "reversed range",
			args:    []string{"--from", "2025-02-01", "--to", "2025-01-01"},
			wantErr: "is before",
		},
		{
			name:    "bad date",
			args:    []string{"--to", "2025-13-01"},
			wantErr: "invalid --to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &cobra.Command{}
			addFilterFlags(c)
			require.NoError(t, c.ParseFlags(tt.args))

			got, err := filterFromFlags(c)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInputFromFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		check   func(t *testing.T, in expenses.Input)
		wantErr string
	}{
		{
			name: "defaults",
			args: []string{"-s", "Enel", "-a", "100"},
			check: func(t *testing.T, in expenses.Input) {
				assert.Equal(t, "22", in.VATRate.String())
				assert.Equal(t, 1, in.Installments)
				assert.Equal(t, 1, in.Occurrences)
				assert.Equal(t, 0, in.EveryMonths)
				assert.Equal(t, schedule.EndOfMonth, in.Stepping)
			},
		},
		{
			name: "comma decimal and date",
			args: []string{"-s", "Enel", "-a", "99,90", "--vat-rate", "10", "-d", "2025-01-31"},
			check: func(t *testing.T, in expenses.Input) {
				assert.Equal(t, "99.9", in.AmountNet.String())
				assert.Equal(t, "10", in.VATRate.String())
				assert.Equal(t, schedule.Day(2025, 1, 31), in.ExpenseDate)
			},
		},
		{
			name: "named recurrence uses default occurrences",
			args: []string{"-s", "Enel", "-a", "10", "-r", "quarterly"},
			check: func(t *testing.T, in expenses.Input) {
				assert.Equal(t, 3, in.EveryMonths)
				assert.Equal(t, defaultOccurrences, in.Occurrences)
			},
		},
		{
			name: "custom interval",
			args: []string{"-s", "Enel", "-a", "10", "--every", "5", "-o", "2", "-n", "3", "--first-due", "2025-02-15"},
			check: func(t *testing.T, in expenses.Input) {
				assert.Equal(t, 5, in.EveryMonths)
				assert.Equal(t, 2, in.Occurrences)
				assert.Equal(t, 3, in.Installments)
				assert.Equal(t, schedule.Day(2025, 2, 15), in.FirstDue)
			},
		},
		{name: "missing amount", args: []string{"-s", "Enel"}, wantErr: "--amount-net is required"},
		{name: "bad amount", args: []string{"-s", "Enel", "-a", "ten"}, wantErr: "not a number"},
		{name: "sub-cent amount", args: []string{"-s", "Enel", "-a", "1.005"}, wantErr: "more than 2 decimal places"},
		{name: "occurrences without recurrence", args: []string{"-s", "Enel", "-a", "10", "-o", "3"}, wantErr: "needs --recurrence"},
		{name: "zero interval", args: []string{"-s", "Enel", "-a", "10", "--every", "0"}, wantErr: "at least 1"},
		{name: "unknown recurrence", args: []string{"-s", "Enel", "-a", "10", "-r", "weekly"}, wantErr: "unknown recurrence"},
		{name: "too many installments", args: []string{"-s", "Enel", "-a", "10", "-n", "121"}, wantErr: "installments must be between"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &cobra.Command{}
			addCreateFlags(c)
			require.NoError(t, c.ParseFlags(tt.args))

			in, err := inputFromFlags(c, schedule.EndOfMonth)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, in)
		})
	}
}

func TestCreateCommand(t *testing.T) {
	tests := []struct {
		name    string
		extra   []string
		wantDue []string
	}{
		{"due dates follow the expense date", nil, []string{"2025-02-28", "2025-03-31"}},
		{"first due in the expense month", []string{"--first-due", "2025-01-20"}, []string{"2025-01-31", "2025-02-28"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				mu      sync.Mutex
				created []string
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				raw, _ := io.ReadAll(r.Body)

				mu.Lock()
				created = append(created, string(raw))
				id := len(created)
				mu.Unlock()

				w.Header().Set("Content-Type", "application/json")
				fmt.Fprintf(w, `{"data":{"id":%d,"type":"expense","entity":{"name":"Aruba"},"date":"2025-01-10","amount_net":10,"amount_vat":2.2}}`, 100+id)
			}))
			t.Cleanup(srv.Close)
			setupAPI(t, &fakeAPI{})
			t.Setenv("FIC_API_BASE_URL", srv.URL)

			args := append([]string{"create", "-s", "Aruba", "-a", "10", "-d", "2025-01-10", "-r", "monthly", "-o", "2"}, tt.extra...)
			out, err := runCommand(t, "y\n", args...)
			require.NoError(t, err)

			assert.Contains(t, out, "Occurrences:  2")
			assert.Contains(t, out, "Created expense #101 (1/2")
			assert.Contains(t, out, "Created expense #102 (2/2")
			require.Len(t, created, 2)
			assert.Contains(t, created[0], `"date":"2025-01-10"`)
			assert.Contains(t, created[1], `"date":"2025-02-10"`)
			for i, due := range tt.wantDue {
				assert.Contains(t, created[i], `"due_date":"`+due+`"`)
			}
			assert.NotContains(t, created[1], `"due_date":"`+tt.wantDue[0]+`"`)
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	log := zerolog.Nop()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", fmt.Errorf("x: %w", context.DeadlineExceeded), "timed out"},
		{"canceled", context.Canceled, "operation canceled"},
		{"credentials", &fic.APIError{Op: "NewClient", Err: fic.ErrMissingCredentials}, "fic-expenses configs --token"},
		{"unauthorized", fic.NewAPIError("GetExpense", http.StatusUnauthorized, ""), "access token was rejected"},
		{"forbidden", fic.NewAPIError("GetExpense", http.StatusForbidden, ""), "lacks permission"},
		{"rate limited", fic.NewAPIError("ListExpenses", http.StatusTooManyRequests, ""), "quota exhausted"},
		{"no account", config.ErrMissingAccount, "no payment account configured"},
		{"no schedule", fmt.Errorf("MarkPaid: %w", schedule.ErrNoPaymentSchedule), "without --installment"},
		{"validation", expenses.NewValidationError("amount_net", "x", "net amount must be positive"), "invalid amount_net: net amount must be positive"},
		{"other", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handleAPIError(tt.err, log)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{" YES \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			stdin = strings.NewReader(tt.input)
			t.Cleanup(func() { stdin = os.Stdin })

			var out bytes.Buffer
			assert.Equal(t, tt.want, confirm(&out, "Proceed?"))
			assert.Equal(t, "Proceed? [y/N]: ", out.String())
		})
	}
}

func TestNewExpenseOutput(t *testing.T) {
	e := models.Expense{
		ID:           5,
		SupplierName: "Enel",
		AmountNet:    decimal.NewFromInt(100),
		AmountVAT:    decimal.NewFromInt(22),
		ExpenseDate:  schedule.Day(2025, 1, 10),
		Installments: []models.Installment{
			{Amount: decimal.NewFromInt(61), DueDate: schedule.Day(2025, 2, 28), Status: models.InstallmentPaid, PaidDate: schedule.Day(2025, 2, 27), PaymentAccountID: 9},
			{Amount: decimal.NewFromInt(61), DueDate: schedule.Day(2025, 3, 31), Status: models.InstallmentNotPaid},
		},
	}

	out := newExpenseOutput(e)
	assert.Equal(t, "2025-01-10", out.Date)
	assert.Equal(t, "partial", out.Status)
	require.Len(t, out.Installments, 2)
	assert.Equal(t, "2025-02-27", out.Installments[0].PaidDate)
	assert.Equal(t, int64(9), out.Installments[0].AccountID)
	assert.Empty(t, out.Installments[1].PaidDate)
	assert.Equal(t, 2, out.Installments[1].Number)
}
