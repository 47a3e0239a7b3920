package models

// Default limits applied when the API omits the rate limit headers.
const (
	DefaultHourlyLimit  = 1000
	DefaultMonthlyLimit = 40000
)

// Quota is the API usage snapshot returned with every remote call.
type Quota struct {
	HourlyRemaining  int
	HourlyLimit      int
	MonthlyRemaining int
	MonthlyLimit     int
}

// IsZero reports whether no quota information was received.
func (q Quota) IsZero() bool {
	return q == Quota{}
}

// HourlyUsed returns the number of requests spent in the current hour.
func (q Quota) HourlyUsed() int {
	return q.HourlyLimit - q.HourlyRemaining
}

// MonthlyUsed returns the number of requests spent in the current month.
func (q Quota) MonthlyUsed() int {
	return q.MonthlyLimit - q.MonthlyRemaining
}

// HourlyPercent returns the used share of the hourly quota in [0,1].
func (q Quota) HourlyPercent() float64 {
	if q.HourlyLimit == 0 {
		return 0
	}
	return float64(q.HourlyUsed()) / float64(q.HourlyLimit)
}

// MonthlyPercent returns the used share of the monthly quota in [0,1].
func (q Quota) MonthlyPercent() float64 {
	if q.MonthlyLimit == 0 {
		return 0
	}
	return float64(q.MonthlyUsed()) / float64(q.MonthlyLimit)
}

// Merge returns the most recent non-empty snapshot.
func (q Quota) Merge(next Quota) Quota {
	if next.IsZero() {
		return q
	}
	return next
}

// Tighter returns the snapshot with fewer hourly requests left. Used when
// calls run concurrently and arrival order says nothing about recency.
func (q Quota) Tighter(other Quota) Quota {
	switch {
	case q.IsZero():
		return other
	case other.IsZero():
		return q
	case other.HourlyRemaining < q.HourlyRemaining:
		return other
	}
	return q
}
