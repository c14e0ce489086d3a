package aggregate

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/liftcare/internal/model"
)

// PaddedBuckets is how many trailing buckets are always present, zero when empty.
const PaddedBuckets = 6

type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity accepts day, week or month. Empty input means month.
func ParseGranularity(raw string) (Granularity, bool) {
	switch Granularity(strings.ToLower(strings.TrimSpace(raw))) {
	case "", Month:
		return Month, true
	case Week:
		return Week, true
	case Day:
		return Day, true
	}
	return "", false
}

// Key labels the bucket containing t: 2025-01-10, 2025-W02 or Jan 2025.
func (g Granularity) Key(t time.Time) string {
	t = t.UTC()
	switch g {
	case Day:
		return t.Format("2006-01-02")
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return t.Format("Jan 2006")
	}
}

func (g Granularity) floor(t time.Time) time.Time {
	day := dateOnly(t)
	switch g {
	case Day:
		return day
	case Week:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	default:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

func (g Granularity) prev(start time.Time) time.Time {
	switch g {
	case Day:
		return start.AddDate(0, 0, -1)
	case Week:
		return start.AddDate(0, 0, -7)
	default:
		return start.AddDate(0, -1, 0)
	}
}

type bucket[P any] struct {
	start time.Time
	point P
}

// group buckets items dated within the days [from, to]. The most recent
// PaddedBuckets buckets ending at to, clipped to from, exist even when empty.
// Output is chronological.
func group[T, P any](
	items []T,
	from, to time.Time,
	g Granularity,
	at func(T) time.Time,
	init func(key string) P,
	add func(*P, T),
) []P {
	lower := dateOnly(from)
	upper := dateOnly(to).AddDate(0, 0, 1)
	if !lower.Before(upper) {
		return []P{}
	}

	buckets := make(map[string]*bucket[P])
	cursor := g.floor(to)
	first := g.floor(from)
	for i := 0; i < PaddedBuckets && !cursor.Before(first); i++ {
		key := g.Key(cursor)
		buckets[key] = &bucket[P]{start: cursor, point: init(key)}
		cursor = g.prev(cursor)
	}

	for _, item := range items {
		t := at(item).UTC()
		if t.Before(lower) || !t.Before(upper) {
			continue
		}
		start := g.floor(t)
		key := g.Key(start)
		b, ok := buckets[key]
		if !ok {
			b = &bucket[P]{start: start, point: init(key)}
			buckets[key] = b
		}
		add(&b.point, item)
	}

	ordered := make([]*bucket[P], 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sortBy(ordered, func(a, b *bucket[P]) bool { return a.start.Before(b.start) })

	out := make([]P, 0, len(ordered))
	for _, b := range ordered {
		out = append(out, b.point)
	}
	return out
}

// MaintenanceSeries counts tasks per bucket by scheduled date. Immediate
// tasks are reported as emergencies.
func MaintenanceSeries(tasks []model.MaintenanceTask, from, to time.Time, g Granularity) []model.MaintenancePoint {
	return group(tasks, from, to, g,
		func(t model.MaintenanceTask) time.Time { return t.ScheduledDate },
		func(key string) model.MaintenancePoint { return model.MaintenancePoint{Period: key} },
		func(p *model.MaintenancePoint, t model.MaintenanceTask) {
			switch t.Type {
			case model.MaintenanceScheduled:
				p.Scheduled++
			case model.MaintenanceImmediate:
				p.Emergency++
			}
		},
	)
}

// RevenueSeries sums payments per bucket. Forecast entries feed the trend line.
func RevenueSeries(payments []model.Payment, from, to time.Time, g Granularity) []model.RevenuePoint {
	return group(payments, from, to, g,
		func(p model.Payment) time.Time { return p.Date },
		func(key string) model.RevenuePoint {
			return model.RevenuePoint{Period: key, Value: decimal.Zero, Trend: decimal.Zero}
		},
		func(point *model.RevenuePoint, p model.Payment) {
			if p.Type == model.PaymentTypeForecast {
				point.Trend = point.Trend.Add(p.Amount)
				return
			}
			point.Value = point.Value.Add(p.Amount)
		},
	)
}
