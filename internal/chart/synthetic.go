package chart

import (
	"hash/fnv"
	"time"

	v1 "adminpanel/pkg/api/v1"
	"adminpanel/pkg/constraints"
)

type step int

const (
	stepDay step = iota
	stepWeek
	stepMonth
)

func stepFor(f Filter, start, end time.Time) step {
	switch f.Range {
	case constraints.RangeWeekly:
		return stepWeek
	case constraints.RangeMonthly:
		return stepMonth
	case constraints.RangeCustom:
		days := end.Sub(start).Hours() / 24
		switch {
		case days <= 31:
			return stepDay
		case days <= 180:
			return stepWeek
		default:
			return stepMonth
		}
	default:
		return stepDay
	}
}

// Synthetic builds a placeholder series over [start, end]. Values depend only
// on the bucket date and category, so the same window always renders the same.
func Synthetic(f Filter, start, end time.Time) []v1.ChartPoint {
	s := stepFor(f, start, end)
	var points []v1.ChartPoint
	for t := start; !t.After(end); {
		points = append(points, v1.ChartPoint{
			Label:    label(s, t),
			Date:     t,
			Value:    syntheticValue(t, f.Category),
			Category: f.Category,
		})
		switch s {
		case stepWeek:
			t = t.AddDate(0, 0, 7)
		case stepMonth:
			t = t.AddDate(0, 1, 0)
		default:
			t = t.AddDate(0, 0, 1)
		}
	}
	return points
}

func label(s step, t time.Time) string {
	switch s {
	case stepWeek:
		return "Week of " + t.Format("Jan 02")
	case stepMonth:
		return t.Format("Jan 2006")
	default:
		return t.Format("Jan 02")
	}
}

func syntheticValue(t time.Time, category string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(t.Format(time.DateOnly)))
	_, _ = h.Write([]byte(category))
	return float64(100 + h.Sum32()%900)
}
