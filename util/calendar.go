package util

import (
	"errors"
	"fmt"
	"time"
)

const Layout = "2006-01-02"

var ErrInvalidDate = errors.New("util: invalid date")

var NYSE = []string{"2024-01-01", "2024-01-15", "2024-02-19", "2024-03-29", "2024-05-27", "2024-06-19", "2024-07-04", "2024-09-02", "2024-11-28", "2024-12-25", "2025-01-01", "2025-01-09", "2025-01-20", "2025-02-17", "2025-04-18", "2025-05-26", "2025-06-19", "2025-07-04", "2025-09-01", "2025-11-27", "2025-12-25", "2026-01-01", "2026-01-19", "2026-02-16", "2026-04-03", "2026-05-25", "2026-06-19", "2026-07-03", "2026-09-07", "2026-11-26", "2026-12-25"}

// Convert holidays from string to time.Time format
func Hols(s []string) ([]time.Time, error) {
	h := make([]time.Time, len(s))
	for i, v := range s {
		d, err := time.Parse(Layout, v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		h[i] = d
	}
	return h, nil
}

func IsHol(d time.Time, hols []time.Time) bool {
	for _, v := range hols {
		if d.Equal(v) {
			return true
		}
	}
	return false
}

func IsWeekday(d time.Time) bool {
	return d.Weekday() > time.Sunday && d.Weekday() < time.Saturday
}

func AdjustFollowing(d time.Time, hols []time.Time) time.Time {
	for IsHol(d, hols) || !IsWeekday(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// Return a list of business days from (and including) a start date to (and including) an end date according to a holiday calendar
func ListBusinessDates(start time.Time, end time.Time, hols []time.Time) ([]time.Time, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s", ErrInvalidDate, end.Format(Layout), start.Format(Layout))
	}
	out := []time.Time{start}
	for {
		start = AdjustFollowing(start.AddDate(0, 0, 1), hols)
		if start.After(end) {
			return out, nil
		}
		out = append(out, start)
	}
}

// DividendPeriods maps ex-dividend dates to lattice periods counted in
// business days from start. A date falling on a holiday or weekend moves
// to the following business day. Dates at or before start, or past the
// last period, are rejected.
func DividendPeriods(start time.Time, exDates []time.Time, periods int, hols []time.Time) ([]int, error) {
	out := make([]int, len(exDates))
	for i, d := range exDates {
		d = AdjustFollowing(d, hols)
		if !d.After(start) {
			return nil, fmt.Errorf("%w: ex-date %s not after %s", ErrInvalidDate, d.Format(Layout), start.Format(Layout))
		}
		days, err := ListBusinessDates(start, d, hols)
		if err != nil {
			return nil, err
		}
		t := len(days) - 1
		if t > periods {
			return nil, fmt.Errorf("%w: ex-date %s is period %d, beyond %d", ErrInvalidDate, d.Format(Layout), t, periods)
		}
		out[i] = t
	}
	return out, nil
}
