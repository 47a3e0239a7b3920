// Package fic is a REST client for the Fatture in Cloud v2 API, limited to the
// received documents and payment accounts endpoints used for expenses.
//
// Every method returns the API quota snapshot read from the response headers
// next to its result, so callers can surface it without shared state.
package fic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fic-expenses/internal/logger"
	"fic-expenses/pkg/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api-v2.fattureincloud.it"

// Page size bounds accepted by the list endpoints.
const (
	MinPerPage = 5
	MaxPerPage = 100
)

const userAgent = "fic-expenses/1.0"

// Config holds client settings.
type Config struct {
	BaseURL     string
	AccessToken string
	CompanyID   int64

	// RequestsPerSecond throttles outgoing calls; 0 disables the limiter.
	RequestsPerSecond float64
	Timeout           time.Duration
	Retry             RetryConfig

	// HTTPClient overrides the default transport (tests).
	HTTPClient *http.Client
}

// RetryConfig configures retries of idempotent requests.
type RetryConfig struct {
	MaxRetries int
	RetryDelay time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
	}
}

// Client talks to the API on behalf of one company.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	companyID  int64
	limiter    *rate.Limiter
	retry      RetryConfig
	log        zerolog.Logger
}

// NewClient validates cfg and returns a ready client.
func NewClient(cfg Config) (*Client, error) {
	const op = "NewClient"

	if strings.TrimSpace(cfg.AccessToken) == "" || cfg.CompanyID <= 0 {
		return nil, &APIError{Op: op, Err: ErrMissingCredentials, Details: "set FIC_ACCESS_TOKEN and FIC_COMPANY_ID (run 'fic-expenses configs')"}
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%s: invalid base URL: %w", op, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.Multiplier <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := int(math.Ceil(cfg.RequestsPerSecond))
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.AccessToken,
		companyID:  cfg.CompanyID,
		limiter:    limiter,
		retry:      cfg.Retry,
		log:        logger.WithComponent("fic"),
	}, nil
}

// CompanyID returns the company the client operates on.
func (c *Client) CompanyID() int64 {
	return c.companyID
}

func (c *Client) companyPath(format string, args ...interface{}) string {
	return fmt.Sprintf("/c/%d", c.companyID) + fmt.Sprintf(format, args...)
}

// do performs one API call, decoding the JSON response into out when non-nil.
// GET requests are retried on 429 and 5xx responses with exponential backoff.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out interface{}) (models.Quota, error) {
	var quota models.Quota

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return quota, fmt.Errorf("%s: marshaling request body: %w", op, err)
		}
	}

	requestID := uuid.NewString()
	reqLog := logger.WithRequestID(requestID).With().Str("component", "fic").Logger()

	maxRetries := 0
	if method == http.MethodGet {
		maxRetries = c.retry.MaxRetries
	}

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return quota, fmt.Errorf("%s: waiting for rate limiter: %w", op, err)
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
		if err != nil {
			return quota, fmt.Errorf("%s: creating HTTP request: %w", op, err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("X-Request-Id", requestID)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		if err != nil {
			if ctx.Err() != nil {
				return quota, fmt.Errorf("%s: %w", op, ctx.Err())
			}
			reqLog.Warn().Err(err).Str("method", method).Str("path", path).Int("attempt", attempt+1).Msg("Request failed")
			if attempt < maxRetries {
				if werr := c.sleep(ctx, c.backoff(attempt+1, "")); werr != nil {
					return quota, fmt.Errorf("%s: %w", op, werr)
				}
				continue
			}
			return quota, &APIError{Op: op, Err: ErrRequestFailed, Details: err.Error()}
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		quota = ParseQuota(resp.Header)

		reqLog.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Dur("duration", duration).
			Int("hourly_remaining", quota.HourlyRemaining).
			Msg("API call")

		if readErr != nil {
			return quota, &APIError{Op: op, StatusCode: resp.StatusCode, Err: ErrRequestFailed, Details: readErr.Error()}
		}

		if resp.StatusCode >= http.StatusBadRequest {
			if attempt < maxRetries && retryable(resp.StatusCode) {
				delay := c.backoff(attempt+1, resp.Header.Get("Retry-After"))
				reqLog.Warn().Int("status", resp.StatusCode).Dur("retry_in", delay).Msg("Retrying request")
				if werr := c.sleep(ctx, delay); werr != nil {
					return quota, fmt.Errorf("%s: %w", op, werr)
				}
				continue
			}
			return quota, NewAPIError(op, resp.StatusCode, errorMessage(respBody))
		}

		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return quota, fmt.Errorf("%s: decoding response: %w", op, err)
			}
		}
		return quota, nil
	}
}

// backoff returns the delay before the given retry attempt (1-based). A
// Retry-After header in seconds takes precedence when present.
func (c *Client) backoff(attempt int, retryAfter string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && secs >= 0 {
		d := time.Duration(secs) * time.Second
		if d > c.retry.MaxDelay {
			d = c.retry.MaxDelay
		}
		return d
	}

	delay := float64(c.retry.RetryDelay) * math.Pow(c.retry.Multiplier, float64(attempt-1))
	if delay > float64(c.retry.MaxDelay) {
		delay = float64(c.retry.MaxDelay)
	}
	return time.Duration(delay)
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func errorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Error.Message != "" {
			return env.Error.Message
		}
		if env.Message != "" {
			return env.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}

// IsAuthError reports whether err means the credentials must be fixed.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrMissingCredentials)
}
