package util

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for civil dates everywhere in the API.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a time as a YYYY-MM-DD civil date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// marketHolidays lists full-day US equity market closures.
// Observed dates, not the nominal holiday dates.
var marketHolidays = map[string]bool{
	"2025-01-01": true, "2025-01-20": true, "2025-02-17": true,
	"2025-04-18": true, "2025-05-26": true, "2025-06-19": true,
	"2025-07-04": true, "2025-09-01": true, "2025-11-27": true,
	"2025-12-25": true,
	"2026-01-01": true, "2026-01-19": true, "2026-02-16": true,
	"2026-04-03": true, "2026-05-25": true, "2026-06-19": true,
	"2026-07-03": true, "2026-09-07": true, "2026-11-26": true,
	"2026-12-25": true,
}

// IsMarketHoliday reports whether the date is a full-day market closure.
func IsMarketHoliday(t time.Time) bool {
	return marketHolidays[FormatDate(t)]
}

// IsTradingDay reports whether the US equity market is open on the date.
func IsTradingDay(t time.Time) bool {
	wd := t.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !IsMarketHoliday(t)
}

// NextTradingDay returns the first trading day strictly after t.
func NextTradingDay(t time.Time) time.Time {
	d := t.AddDate(0, 0, 1)
	for !IsTradingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
