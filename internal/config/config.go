package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fic-expenses/internal/logger"
	"github.com/joho/godotenv"
)

// EnvFile is where credentials are persisted by SaveCredentials.
const EnvFile = ".env"

const (
	KeyAccessToken      = "FIC_ACCESS_TOKEN"
	KeyCompanyID        = "FIC_COMPANY_ID"
	KeyDefaultAccountID = "FIC_DEFAULT_ACCOUNT_ID"
)

var (
	ErrMissingToken     = errors.New("FIC_ACCESS_TOKEN is required")
	ErrMissingCompanyID = errors.New("FIC_COMPANY_ID is required")
	ErrMissingAccount   = errors.New("FIC_DEFAULT_ACCOUNT_ID is not set")
)

type Config struct {
	// Fatture in Cloud Configuration
	AccessToken      string
	CompanyID        int64
	DefaultAccountID int64
	APIBaseURL       string

	// Client Behaviour
	RateLimitRPS     float64
	HTTPTimeout      time.Duration
	PayConcurrency   int
	ScheduleStepping string

	// Google Sheets Configuration
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads the configuration from the environment. Only malformed values
// fail here; missing credentials are reported by RequireCredentials so that
// commands like configs can run without them.
func Load() (*Config, error) {
	companyID, err := getEnvInt64(KeyCompanyID, 0)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	accountID, err := getEnvInt64(KeyDefaultAccountID, 0)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	rps, err := getEnvFloat("FIC_RATE_LIMIT_RPS", 2)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	concurrency, err := getEnvInt("FIC_PAY_CONCURRENCY", 4)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	timeout, err := getEnvDuration("FIC_HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	config := &Config{
		AccessToken:          strings.TrimSpace(getEnv(KeyAccessToken, "")),
		CompanyID:            companyID,
		DefaultAccountID:     accountID,
		APIBaseURL:           getEnv("FIC_API_BASE_URL", "https://api-v2.fattureincloud.it"),
		RateLimitRPS:         rps,
		HTTPTimeout:          timeout,
		PayConcurrency:       concurrency,
		ScheduleStepping:     getEnv("FIC_SCHEDULE_STEPPING", "end-of-month"),
		GoogleSheetURL:       getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet: getEnv("GOOGLE_SHEET_WORKSHEET", "Expenses"),
		LogLevel:             getEnv("LOG_LEVEL", "warn"),
		LogFormat:            getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:            getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.CompanyID < 0 {
		return fmt.Errorf("%s must be positive", KeyCompanyID)
	}
	if c.DefaultAccountID < 0 {
		return fmt.Errorf("%s must be positive", KeyDefaultAccountID)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("FIC_RATE_LIMIT_RPS must not be negative")
	}
	if c.PayConcurrency < 1 {
		return fmt.Errorf("FIC_PAY_CONCURRENCY must be at least 1")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("FIC_HTTP_TIMEOUT must be positive")
	}
	return nil
}

// RequireCredentials reports whether the API credentials are present.
func (c *Config) RequireCredentials() error {
	if c.AccessToken == "" {
		return ErrMissingToken
	}
	if c.CompanyID == 0 {
		return ErrMissingCompanyID
	}
	return nil
}

// RequireDefaultAccount reports whether a payment account is configured.
func (c *Config) RequireDefaultAccount() error {
	if c.DefaultAccountID == 0 {
		return ErrMissingAccount
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// Credentials are the values written by SaveCredentials. Zero fields are
// left as they are in the file.
type Credentials struct {
	AccessToken      string
	CompanyID        int64
	DefaultAccountID int64
}

// SaveCredentials merges creds into the env file at path, keeping every
// other key, and updates the process environment.
func SaveCredentials(path string, creds Credentials) error {
	const op = "SaveCredentials"

	values := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		existing, err := godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("%s: failed to read %s: %w", op, path, err)
		}
		values = existing
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	set := func(key, value string) {
		values[key] = value
		os.Setenv(key, value)
	}
	if creds.AccessToken != "" {
		set(KeyAccessToken, strings.TrimSpace(creds.AccessToken))
	}
	if creds.CompanyID != 0 {
		set(KeyCompanyID, strconv.FormatInt(creds.CompanyID, 10))
	}
	if creds.DefaultAccountID != 0 {
		set(KeyDefaultAccountID, strconv.FormatInt(creds.DefaultAccountID, 10))
	}

	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("%s: failed to write %s: %w", op, path, err)
	}
	return os.Chmod(path, 0o600)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %q", key, value)
	}
	return n, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %q", key, value)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %q", key, value)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration or seconds: %q", key, value)
	}
	return d, nil
}
