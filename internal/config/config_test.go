package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	KeyAccessToken, KeyCompanyID, KeyDefaultAccountID,
	"FIC_API_BASE_URL", "FIC_RATE_LIMIT_RPS", "FIC_HTTP_TIMEOUT",
	"FIC_PAY_CONCURRENCY", "FIC_SCHEDULE_STEPPING",
	"GOOGLE_SHEET_URL", "GOOGLE_SHEET_WORKSHEET",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_TIME_FORMAT", "LOG_OUTPUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api-v2.fattureincloud.it", cfg.APIBaseURL)
	assert.Equal(t, 2.0, cfg.RateLimitRPS)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 4, cfg.PayConcurrency)
	assert.Equal(t, "end-of-month", cfg.ScheduleStepping)
	assert.Equal(t, "Expenses", cfg.GoogleSheetWorksheet)
	assert.Equal(t, "stderr", cfg.LogOutput)

	assert.ErrorIs(t, cfg.RequireCredentials(), ErrMissingToken)
	assert.ErrorIs(t, cfg.RequireDefaultAccount(), ErrMissingAccount)
}

func TestLoad_Values(t *testing.T) {
	clearEnv(t)
	t.Setenv(KeyAccessToken, " a/secret ")
	t.Setenv(KeyCompanyID, "12345")
	t.Setenv(KeyDefaultAccountID, "77")
	t.Setenv("FIC_HTTP_TIMEOUT", "5")
	t.Setenv("FIC_PAY_CONCURRENCY", "8")
	t.Setenv("FIC_RATE_LIMIT_RPS", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "a/secret", cfg.AccessToken)
	assert.Equal(t, int64(12345), cfg.CompanyID)
	assert.Equal(t, int64(77), cfg.DefaultAccountID)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 8, cfg.PayConcurrency)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
	assert.NoError(t, cfg.RequireCredentials())
	assert.NoError(t, cfg.RequireDefaultAccount())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{KeyCompanyID, "acme"},
		{KeyCompanyID, "-3"},
		{KeyDefaultAccountID, "1.5"},
		{"FIC_RATE_LIMIT_RPS", "fast"},
		{"FIC_PAY_CONCURRENCY", "0"},
		{"FIC_HTTP_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestRequireCredentials_MissingCompany(t *testing.T) {
	cfg := &Config{AccessToken: "tok"}
	assert.ErrorIs(t, cfg.RequireCredentials(), ErrMissingCompanyID)
}

func TestSaveCredentials(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nFIC_COMPANY_ID=1\n"), 0o600))

	err := SaveCredentials(path, Credentials{AccessToken: "tok", CompanyID: 42})
	require.NoError(t, err)

	values, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", values["LOG_LEVEL"])
	assert.Equal(t, "tok", values[KeyAccessToken])
	assert.Equal(t, "42", values[KeyCompanyID])
	_, ok := values[KeyDefaultAccountID]
	assert.False(t, ok)

	assert.Equal(t, "42", os.Getenv(KeyCompanyID))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSaveCredentials_NewFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")

	require.NoError(t, SaveCredentials(path, Credentials{DefaultAccountID: 9}))

	values, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeyDefaultAccountID: "9"}, values)
}
