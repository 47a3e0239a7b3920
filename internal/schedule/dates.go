package schedule

import "time"

// DateLayout is the calendar date format used on the wire and on the command line.
const DateLayout = "2006-01-02"

// Day returns the calendar date y-m-d at midnight UTC.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time of day and location, keeping the calendar date.
func Truncate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return Day(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders t as YYYY-MM-DD, or "-" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateLayout)
}

// LastDayOfMonth returns the last calendar day of t's month.
func LastDayOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	// Day 0 of the next month normalises to the last day of this one
	return Day(y, m+1, 0)
}

// AddMonths shifts t by n calendar months. When t's day does not exist in the
// target month the result is clamped to that month's last day, so Jan 31 + 1
// yields Feb 28 (or 29) instead of rolling over into March.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := Day(y, m+time.Month(n), 1)
	if last := LastDayOfMonth(first).Day(); d > last {
		d = last
	}
	return Day(first.Year(), first.Month(), d)
}
