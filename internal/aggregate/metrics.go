package aggregate

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/liftcare/internal/model"
)

const (
	MetricResponseTime = "Average Response Time"
	MetricFirstTimeFix = "First-Time Fix Rate"
	MetricRenewal      = "Contract Renewal Rate"
	MetricRetention    = "Customer Retention"

	// TargetResponseHours is the response time that scores 100%.
	TargetResponseHours = 2.0

	excellentChange = 5.0
	renewalGrace    = 30
)

// PeriodStats holds the raw values of the key metrics for one period.
// Rates are percentages in [0, 100].
type PeriodStats struct {
	ResponseHours    float64
	FirstTimeFixRate float64
	RenewalRate      float64
	RetentionRate    float64
}

// Period is a half-open time window [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) contains(t time.Time) bool {
	return !t.Before(p.From) && t.Before(p.To)
}

// Previous returns the window of equal length immediately before p.
func (p Period) Previous() Period {
	return Period{From: p.From.Add(-p.To.Sub(p.From)), To: p.From}
}

// ComputePeriodStats measures one period:
//   - response time averages request-to-start hours of immediate tasks requested in the period
//   - first-time fix is the share of records leaving the elevator operational
//   - renewal is the share of contracts ending in the period followed by another
//     contract of the same customer starting within 30 days of the end
//   - retention is the share of customers under contract at the period start still
//     under contract at its end
func ComputePeriodStats(p Period, tasks []model.MaintenanceTask, records []model.MaintenanceRecord, contracts []model.Contract) PeriodStats {
	return PeriodStats{
		ResponseHours:    responseHours(p, tasks),
		FirstTimeFixRate: firstTimeFixRate(p, records),
		RenewalRate:      renewalRate(p, contracts),
		RetentionRate:    retentionRate(p, contracts),
	}
}

func responseHours(p Period, tasks []model.MaintenanceTask) float64 {
	var total float64
	n := 0
	for _, t := range tasks {
		if t.Type != model.MaintenanceImmediate || t.StartedAt == nil || !p.contains(t.CreatedAt) {
			continue
		}
		total += t.StartedAt.Sub(t.CreatedAt).Hours()
		n++
	}
	if n == 0 {
		return 0
	}
	return round1(total / float64(n))
}

func firstTimeFixRate(p Period, records []model.MaintenanceRecord) float64 {
	inPeriod := Filter(records, func(r model.MaintenanceRecord) bool { return p.contains(r.MaintenanceDate) })
	fixed := Count(inPeriod, func(r model.MaintenanceRecord) bool {
		return r.ElevatorStatusAfter == model.ElevatorOperational
	})
	return float64(Percent(fixed, len(inPeriod)))
}

func renewalRate(p Period, contracts []model.Contract) float64 {
	ending := Filter(contracts, func(c model.Contract) bool { return p.contains(c.EndDate) })
	renewed := Count(ending, func(c model.Contract) bool {
		for _, next := range contracts {
			if next.ID == c.ID || next.CustomerID != c.CustomerID || next.Status == model.ContractCancelled {
				continue
			}
			lag := dateOnly(next.StartDate).Sub(dateOnly(c.EndDate)).Hours() / 24
			if lag >= -renewalGrace && lag <= renewalGrace {
				return true
			}
		}
		return false
	})
	return float64(Percent(renewed, len(ending)))
}

func retentionRate(p Period, contracts []model.Contract) float64 {
	last := p.To.Add(-time.Nanosecond)
	atStart := customersUnderContract(contracts, p.From)
	atEnd := customersUnderContract(contracts, last)
	kept := 0
	for id := range atStart {
		if atEnd[id] {
			kept++
		}
	}
	return float64(Percent(kept, len(atStart)))
}

func customersUnderContract(contracts []model.Contract, at time.Time) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool)
	for _, c := range contracts {
		if c.Status == model.ContractCancelled || c.Status == model.ContractPending {
			continue
		}
		if !c.StartDate.After(at) && !c.EndDate.Before(at) {
			out[c.CustomerID] = true
		}
	}
	return out
}

// PercentageChange is the relative change from previous to current in percent,
// rounded to one decimal, and 0 when previous is 0.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return round1((current - previous) / previous * 100)
}

// KeyMetrics classifies the current period against the previous one. Response
// time is lower-is-better and reports improved or declined; the rates report
// excellent, on-target or needs-attention.
func KeyMetrics(current, previous PeriodStats) []model.KeyMetric {
	return []model.KeyMetric{
		responseMetric(current.ResponseHours, previous.ResponseHours),
		rateMetric(MetricFirstTimeFix, current.FirstTimeFixRate, previous.FirstTimeFixRate),
		rateMetric(MetricRenewal, current.RenewalRate, previous.RenewalRate),
		rateMetric(MetricRetention, current.RetentionRate, previous.RetentionRate),
	}
}

func responseMetric(current, previous float64) model.KeyMetric {
	change := PercentageChange(current, previous)
	status := model.MetricOnTarget
	switch {
	case change < 0:
		status = model.MetricImproved
	case change > 0:
		status = model.MetricDeclined
	}
	percentage := 0
	if current > 0 {
		percentage = clampPercent(int(math.Round(TargetResponseHours / current * 100)))
	}
	return model.KeyMetric{
		Name:             MetricResponseTime,
		Value:            fmt.Sprintf("%.1f hours", current),
		Current:          current,
		Previous:         previous,
		PercentageChange: change,
		Status:           status,
		Percentage:       percentage,
	}
}

func rateMetric(name string, current, previous float64) model.KeyMetric {
	change := PercentageChange(current, previous)
	status := model.MetricNeedsAttention
	switch {
	case change >= excellentChange:
		status = model.MetricExcellent
	case change >= 0:
		status = model.MetricOnTarget
	}
	percentage := clampPercent(int(math.Round(current)))
	return model.KeyMetric{
		Name:             name,
		Value:            fmt.Sprintf("%d%%", percentage),
		Current:          current,
		Previous:         previous,
		PercentageChange: change,
		Status:           status,
		Percentage:       percentage,
	}
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
