package aggregate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/liftcare/internal/model"
)

func TestPercentageChange(t *testing.T) {
	assert.Equal(t, 0.0, PercentageChange(10, 0))
	assert.Equal(t, 50.0, PercentageChange(15, 10))
	assert.Equal(t, -15.0, PercentageChange(85, 100))
	assert.Equal(t, 33.3, PercentageChange(4, 3))
}

func TestKeyMetricsClassification(t *testing.T) {
	current := PeriodStats{ResponseHours: 2.5, FirstTimeFixRate: 92, RenewalRate: 88, RetentionRate: 95}
	previous := PeriodStats{ResponseHours: 3, FirstTimeFixRate: 90, RenewalRate: 90, RetentionRate: 90}

	metrics := KeyMetrics(current, previous)
	require.Len(t, metrics, 4)

	response := metrics[0]
	assert.Equal(t, MetricResponseTime, response.Name)
	assert.Equal(t, "2.5 hours", response.Value)
	assert.Equal(t, model.MetricImproved, response.Status)
	assert.Equal(t, -16.7, response.PercentageChange)
	assert.Equal(t, 80, response.Percentage)

	fix := metrics[1]
	assert.Equal(t, "92%", fix.Value)
	assert.Equal(t, model.MetricOnTarget, fix.Status)
	assert.Equal(t, 92, fix.Percentage)

	assert.Equal(t, model.MetricNeedsAttention, metrics[2].Status)
	assert.Equal(t, model.MetricExcellent, metrics[3].Status)
}

func TestKeyMetricsResponseDeclined(t *testing.T) {
	metrics := KeyMetrics(PeriodStats{ResponseHours: 1}, PeriodStats{ResponseHours: 0.5})
	assert.Equal(t, model.MetricDeclined, metrics[0].Status)
	assert.Equal(t, 100, metrics[0].Percentage)
}

func TestKeyMetricsWithoutHistory(t *testing.T) {
	metrics := KeyMetrics(PeriodStats{}, PeriodStats{})
	for _, m := range metrics {
		assert.Zero(t, m.PercentageChange)
		assert.Zero(t, m.Percentage)
	}
	assert.Equal(t, model.MetricOnTarget, metrics[0].Status)
	assert.Equal(t, model.MetricOnTarget, metrics[1].Status)
}

func TestComputePeriodStats(t *testing.T) {
	period := Period{From: day(2025, 1, 1), To: day(2025, 2, 1)}
	requested := day(2025, 1, 5).Add(8 * time.Hour)
	startedFast := requested.Add(time.Hour)
	startedSlow := requested.Add(3 * time.Hour)

	tasks := []model.MaintenanceTask{
		{Type: model.MaintenanceImmediate, CreatedAt: requested, StartedAt: &startedFast},
		{Type: model.MaintenanceImmediate, CreatedAt: requested, StartedAt: &startedSlow},
		{Type: model.MaintenanceScheduled, CreatedAt: requested, StartedAt: &startedSlow},
		{Type: model.MaintenanceImmediate, CreatedAt: requested},
	}
	records := []model.MaintenanceRecord{
		{MaintenanceDate: day(2025, 1, 6), ElevatorStatusAfter: model.ElevatorOperational},
		{MaintenanceDate: day(2025, 1, 7), ElevatorStatusAfter: model.ElevatorOperational},
		{MaintenanceDate: day(2025, 1, 8), ElevatorStatusAfter: model.ElevatorMaintenance},
		{MaintenanceDate: day(2025, 1, 9), ElevatorStatusAfter: model.ElevatorOperational},
		{MaintenanceDate: day(2025, 2, 9), ElevatorStatusAfter: model.ElevatorOutOfService},
	}

	loyal := uuid.New()
	leaving := uuid.New()
	contracts := []model.Contract{
		{ID: uuid.New(), CustomerID: loyal, Status: model.ContractExpired, StartDate: day(2024, 1, 15), EndDate: day(2025, 1, 15)},
		{ID: uuid.New(), CustomerID: loyal, Status: model.ContractActive, StartDate: day(2025, 1, 16), EndDate: day(2026, 1, 15)},
		{ID: uuid.New(), CustomerID: leaving, Status: model.ContractExpired, StartDate: day(2024, 1, 20), EndDate: day(2025, 1, 20)},
	}

	stats := ComputePeriodStats(period, tasks, records, contracts)
	assert.Equal(t, 2.0, stats.ResponseHours)
	assert.Equal(t, 75.0, stats.FirstTimeFixRate)
	assert.Equal(t, 50.0, stats.RenewalRate)
	assert.Equal(t, 50.0, stats.RetentionRate)
}

func TestPeriodPrevious(t *testing.T) {
	p := Period{From: day(2025, 1, 11), To: day(2025, 1, 21)}
	prev := p.Previous()
	assert.True(t, prev.From.Equal(day(2025, 1, 1)))
	assert.True(t, prev.To.Equal(p.From))
}
