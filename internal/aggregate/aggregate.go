// Package aggregate derives dashboard and report summaries from record sets.
// Every function is pure: the same rows and the same now give the same result.
package aggregate

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Count returns how many items satisfy pred. A nil pred counts everything.
func Count[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, item := range items {
		if pred == nil || pred(item) {
			n++
		}
	}
	return n
}

// SumDecimal accumulates value over the items that satisfy pred.
func SumDecimal[T any](items []T, pred func(T) bool, value func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if pred == nil || pred(item) {
			total = total.Add(value(item))
		}
	}
	return total
}

// Filter keeps the items that satisfy pred.
func Filter[T any](items []T, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// Percent is part/total as a rounded integer percentage, 0 when total is 0.
func Percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
