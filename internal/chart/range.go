// Package chart loads dashboard series for a time filter with debounce and
// stale-result discard.
package chart

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"adminpanel/pkg/constraints"
)

var (
	ErrMissingCustomRange = errors.New("custom range requires a start and end date")
	ErrInvertedRange      = errors.New("range end is before start")
)

// Filter is what the chart controls select.
type Filter struct {
	Range constraints.TimeRange
	// Month is 1-12; zero means unset.
	Month    int
	Year     int
	Years    []int
	Start    time.Time
	End      time.Time
	Category string
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func monthBounds(year, month int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

func lastDays(now time.Time, n int) (time.Time, time.Time) {
	return startOfDay(now.AddDate(0, 0, -(n - 1))), endOfDay(now)
}

// Resolve turns f into a concrete [start, end] window relative to now.
func Resolve(f Filter, now time.Time) (start, end time.Time, err error) {
	loc := now.Location()
	hasMonth := f.Month >= 1 && f.Month <= 12 && f.Year > 0

	switch f.Range {
	case constraints.RangeDaily, "":
		if hasMonth {
			start, end = monthBounds(f.Year, f.Month, loc)
			return start, end, nil
		}
		start, end = lastDays(now, 7)
		return start, end, nil

	case constraints.RangeWeekly:
		if hasMonth {
			start, end = monthBounds(f.Year, f.Month, loc)
			return start, end, nil
		}
		start, end = lastDays(now, 30)
		return start, end, nil

	case constraints.RangeMonthly:
		lo, hi := now.Year(), now.Year()
		if len(f.Years) > 0 {
			lo, hi = slices.Min(f.Years), slices.Max(f.Years)
		} else if f.Year > 0 {
			lo, hi = f.Year, f.Year
		}
		start = time.Date(lo, time.January, 1, 0, 0, 0, 0, loc)
		end = time.Date(hi, time.December, 31, 0, 0, 0, 0, loc)
		return start, endOfDay(end), nil

	case constraints.RangeCustom:
		if f.Start.IsZero() || f.End.IsZero() {
			return time.Time{}, time.Time{}, ErrMissingCustomRange
		}
		start, end = startOfDay(f.Start), endOfDay(f.End)
		if end.Before(start) {
			return time.Time{}, time.Time{}, ErrInvertedRange
		}
		return start, end, nil

	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown time range %q", f.Range)
	}
}
