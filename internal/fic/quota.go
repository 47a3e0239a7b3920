package fic

import (
	"net/http"
	"strconv"
	"strings"

	"fic-expenses/pkg/models"
)

// Rate limit headers sent with every API response.
const (
	headerHourlyRemaining  = "RateLimit-HourlyRemaining"
	headerHourlyLimit      = "RateLimit-HourlyLimit"
	headerMonthlyRemaining = "RateLimit-MonthlyRemaining"
	headerMonthlyLimit     = "RateLimit-MonthlyLimit"
)

// ParseQuota reads the quota snapshot from response headers. Lookup is case
// insensitive. Missing limits fall back to the documented defaults and missing
// remaining counts fall back to the limit.
func ParseQuota(h http.Header) models.Quota {
	hourlyLimit := headerInt(h, headerHourlyLimit, models.DefaultHourlyLimit)
	monthlyLimit := headerInt(h, headerMonthlyLimit, models.DefaultMonthlyLimit)

	return models.Quota{
		HourlyRemaining:  headerInt(h, headerHourlyRemaining, hourlyLimit),
		HourlyLimit:      hourlyLimit,
		MonthlyRemaining: headerInt(h, headerMonthlyRemaining, monthlyLimit),
		MonthlyLimit:     monthlyLimit,
	}
}

func headerInt(h http.Header, key string, fallback int) int {
	raw := strings.TrimSpace(h.Get(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
