package aggregate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/liftcare/internal/model"
)

var now = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func contract(status model.ContractStatus, amount int64, end time.Time) model.Contract {
	return model.Contract{
		ID:          uuid.New(),
		CustomerID:  uuid.New(),
		Status:      status,
		TotalAmount: decimal.NewFromInt(amount),
		StartDate:   end.AddDate(-1, 0, 0),
		EndDate:     end,
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(3, 0))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 100, Percent(4, 4))
}

func TestExpiringSoonWindow(t *testing.T) {
	today := dateOnly(now)

	assert.True(t, ExpiringSoon(contract(model.ContractActive, 1, today.AddDate(0, 0, 15)), now, ExpiringWindowDays))
	assert.True(t, ExpiringSoon(contract(model.ContractActive, 1, today), now, ExpiringWindowDays))
	assert.True(t, ExpiringSoon(contract(model.ContractActive, 1, today.AddDate(0, 0, 30)), now, ExpiringWindowDays))
	assert.False(t, ExpiringSoon(contract(model.ContractActive, 1, today.AddDate(0, 0, 31)), now, ExpiringWindowDays))
	assert.False(t, ExpiringSoon(contract(model.ContractActive, 1, today.AddDate(0, 0, -1)), now, ExpiringWindowDays))
	assert.False(t, ExpiringSoon(contract(model.ContractPending, 1, today.AddDate(0, 0, 15)), now, ExpiringWindowDays))
}

func TestContractSummary(t *testing.T) {
	today := dateOnly(now)
	contracts := []model.Contract{
		contract(model.ContractActive, 1200, today.AddDate(0, 0, 15)),
		contract(model.ContractActive, 2400, today.AddDate(0, 6, 0)),
		contract(model.ContractPending, 900, today.AddDate(0, 0, 10)),
		contract(model.ContractExpired, 500, today.AddDate(0, 0, -3)),
	}

	summary := ContractSummary(contracts, now)
	assert.Equal(t, 2, summary.ActiveContracts)
	assert.True(t, decimal.NewFromInt(3600).Equal(summary.TotalValue))
	assert.Equal(t, 1, summary.ExpiringSoon)
	assert.Equal(t, 1, summary.PendingRenewal)
	assert.True(t, decimal.NewFromInt(300).Equal(summary.MonthlyRevenue))
}

func TestMonthlyRevenueSingleContract(t *testing.T) {
	summary := ContractSummary([]model.Contract{contract(model.ContractActive, 1200, now.AddDate(1, 0, 0))}, now)
	assert.True(t, decimal.NewFromInt(100).Equal(summary.MonthlyRevenue))
}

func TestContractSummaryEmpty(t *testing.T) {
	summary := ContractSummary(nil, now)
	assert.Zero(t, summary.ActiveContracts)
	assert.True(t, summary.TotalValue.IsZero())
	assert.True(t, summary.MonthlyRevenue.IsZero())
}

func TestExpiringContracts(t *testing.T) {
	today := dateOnly(now)
	late := contract(model.ContractActive, 1, today.AddDate(0, 0, 20))
	late.Customer = &model.Customer{Name: "Harbor Plaza"}
	soon := contract(model.ContractActive, 1, today.AddDate(0, 0, 2))
	outside := contract(model.ContractActive, 1, today.AddDate(0, 0, 45))

	out := ExpiringContracts([]model.Contract{late, outside, soon}, now, ExpiringWindowDays, 0)
	require.Len(t, out, 2)
	assert.Equal(t, soon.ID, out[0].ID)
	assert.Equal(t, 2, out[0].DaysLeft)
	assert.Equal(t, "Harbor Plaza", out[1].Customer)

	capped := ExpiringContracts([]model.Contract{late, soon}, now, ExpiringWindowDays, 1)
	require.Len(t, capped, 1)
	assert.Equal(t, soon.ID, capped[0].ID)
}

func TestRevenueSeriesMonthScenario(t *testing.T) {
	payments := []model.Payment{
		{Amount: decimal.NewFromInt(100), Date: day(2025, 1, 10)},
		{Amount: decimal.NewFromInt(50), Date: day(2025, 1, 20)},
	}

	series := RevenueSeries(payments, day(2025, 1, 1), day(2025, 1, 31), Month)
	require.Len(t, series, 1)
	assert.Equal(t, "Jan 2025", series[0].Period)
	assert.True(t, decimal.NewFromInt(150).Equal(series[0].Value))
	assert.True(t, series[0].Trend.IsZero())
}

func TestRevenueSeriesForecastTrend(t *testing.T) {
	payments := []model.Payment{
		{Amount: decimal.NewFromInt(100), Date: day(2025, 2, 3)},
		{Amount: decimal.NewFromInt(80), Date: day(2025, 2, 4), Type: model.PaymentTypeForecast},
	}

	series := RevenueSeries(payments, day(2025, 2, 1), day(2025, 2, 28), Month)
	require.Len(t, series, 1)
	assert.True(t, decimal.NewFromInt(100).Equal(series[0].Value))
	assert.True(t, decimal.NewFromInt(80).Equal(series[0].Trend))
}

func TestMaintenanceSeriesPadsSixBuckets(t *testing.T) {
	tasks := []model.MaintenanceTask{
		{ScheduledDate: day(2025, 6, 3), Type: model.MaintenanceScheduled},
		{ScheduledDate: day(2025, 6, 9), Type: model.MaintenanceImmediate},
		{ScheduledDate: day(2025, 6, 9), Type: model.MaintenanceScheduled},
		{ScheduledDate: day(2024, 12, 9), Type: model.MaintenanceScheduled},
	}

	series := MaintenanceSeries(tasks, day(2024, 1, 1), day(2025, 6, 30), Month)
	require.Len(t, series, 7)
	assert.Equal(t, "Dec 2024", series[0].Period)
	assert.Equal(t, 1, series[0].Scheduled)

	want := []string{"Jan 2025", "Feb 2025", "Mar 2025", "Apr 2025", "May 2025", "Jun 2025"}
	for i, key := range want {
		assert.Equal(t, key, series[i+1].Period)
	}
	assert.Equal(t, 0, series[1].Scheduled)
	assert.Equal(t, 2, series[6].Scheduled)
	assert.Equal(t, 1, series[6].Emergency)
}

func TestMaintenanceSeriesIgnoresOutOfRange(t *testing.T) {
	tasks := []model.MaintenanceTask{
		{ScheduledDate: day(2025, 1, 31).Add(23 * time.Hour), Type: model.MaintenanceScheduled},
		{ScheduledDate: day(2025, 2, 1), Type: model.MaintenanceScheduled},
	}

	series := MaintenanceSeries(tasks, day(2025, 1, 1), day(2025, 1, 31), Month)
	require.Len(t, series, 1)
	assert.Equal(t, 1, series[0].Scheduled)

	assert.Empty(t, MaintenanceSeries(tasks, day(2025, 2, 1), day(2025, 1, 1), Month))
}

func TestSeriesKeys(t *testing.T) {
	d := day(2025, 1, 15)
	assert.Equal(t, "2025-01-15", Day.Key(d))
	assert.Equal(t, "2025-W03", Week.Key(d))
	assert.Equal(t, "Jan 2025", Month.Key(d))
	// ISO week 1 of 2025 starts on Monday 2024-12-30
	assert.Equal(t, "2025-W01", Week.Key(day(2024, 12, 30)))
}

func TestWeekSeriesChronological(t *testing.T) {
	tasks := []model.MaintenanceTask{
		{ScheduledDate: day(2025, 1, 15), Type: model.MaintenanceImmediate},
		{ScheduledDate: day(2025, 1, 2), Type: model.MaintenanceScheduled},
	}

	series := MaintenanceSeries(tasks, day(2025, 1, 1), day(2025, 1, 19), Week)
	require.Len(t, series, 3)
	assert.Equal(t, []string{"2025-W01", "2025-W02", "2025-W03"},
		[]string{series[0].Period, series[1].Period, series[2].Period})
	assert.Equal(t, 1, series[0].Scheduled)
	assert.Equal(t, 1, series[2].Emergency)
}

func TestParseGranularity(t *testing.T) {
	g, ok := ParseGranularity("")
	assert.True(t, ok)
	assert.Equal(t, Month, g)

	g, ok = ParseGranularity("Week")
	assert.True(t, ok)
	assert.Equal(t, Week, g)

	_, ok = ParseGranularity("quarter")
	assert.False(t, ok)
}

func TestSatisfactionDistribution(t *testing.T) {
	slices := SatisfactionDistribution([]int{5, 5, 4, 3, 2, 1, 5})
	require.Len(t, slices, 4)
	assert.Equal(t, "Very Satisfied", slices[0].Name)
	assert.Equal(t, 43, slices[0].Value)
	assert.Equal(t, 14, slices[1].Value)
	assert.Equal(t, 14, slices[2].Value)
	assert.Equal(t, 29, slices[3].Value)

	sum := 0
	for _, s := range slices {
		sum += s.Value
	}
	assert.InDelta(t, 100, sum, 4)

	for _, s := range SatisfactionDistribution(nil) {
		assert.Zero(t, s.Value)
	}
	for _, s := range SatisfactionDistribution([]int{0, 9}) {
		assert.Zero(t, s.Value)
	}
}

func TestElevatorStatusDistribution(t *testing.T) {
	slices := ElevatorStatusDistribution([]model.ElevatorStatus{
		model.ElevatorOperational, model.ElevatorOperational, model.ElevatorOutOfService, "retired",
	})
	require.Len(t, slices, 3)
	assert.Equal(t, model.StatusSlice{Name: "Operational", Value: 2, Color: "#9333EA"}, slices[0])
	assert.Equal(t, 0, slices[1].Value)
	assert.Equal(t, 1, slices[2].Value)
}

func TestStockLabel(t *testing.T) {
	assert.Equal(t, LabelLowStock, StockLabel(model.SparePart{QuantityInStock: 5, MinimumStock: 10}))
	assert.Equal(t, LabelInStock, StockLabel(model.SparePart{QuantityInStock: 12, MinimumStock: 10}))
	assert.Equal(t, LabelInStock, StockLabel(model.SparePart{QuantityInStock: 10, MinimumStock: 10}))
}

func TestLowStock(t *testing.T) {
	parts := []model.SparePart{
		{Name: "cable", QuantityInStock: 4, MinimumStock: 5},
		{Name: "belt", QuantityInStock: 1, MinimumStock: 5},
		{Name: "relay", QuantityInStock: 20, MinimumStock: 5},
		{Name: "bulb", QuantityInStock: 2, MinimumStock: 3},
	}

	all := LowStock(parts, 0)
	require.Len(t, all, 3)
	assert.Equal(t, "belt", all[0].Name)
	assert.Equal(t, "bulb", all[1].Name)

	capped := LowStock(parts, 2)
	assert.Len(t, capped, 2)
}

func TestInventorySummary(t *testing.T) {
	restocked := day(2025, 3, 2)
	parts := []model.SparePart{
		{Category: "mechanical", QuantityInStock: 1, MinimumStock: 2, UpdatedAt: day(2025, 3, 1)},
		{Category: "electrical", QuantityInStock: 9, MinimumStock: 2, UpdatedAt: day(2025, 2, 1), LastRestocked: &restocked},
		{Category: "mechanical", QuantityInStock: 3, MinimumStock: 2},
	}

	summary := InventorySummary(parts)
	assert.EqualValues(t, 3, summary.TotalItems)
	assert.Equal(t, 1, summary.LowStockItems)
	assert.Equal(t, 2, summary.Categories)
	assert.True(t, summary.LastUpdated.Equal(restocked))
}

func TestTechnicianLoad(t *testing.T) {
	alice := model.User{ID: uuid.New(), Name: "Alice"}
	bob := model.User{ID: uuid.New(), Name: "Bob"}
	tasks := []model.MaintenanceTask{
		{AssignedTo: &alice.ID, Status: model.TaskCompleted},
		{AssignedTo: &alice.ID, Status: model.TaskAssigned},
		{Status: model.TaskPending},
	}

	load := TechnicianLoad([]model.User{alice, bob}, tasks)
	require.Len(t, load, 2)
	assert.Equal(t, 2, load[0].TasksToday)
	assert.Equal(t, 1, load[0].TasksCompleted)
	assert.Equal(t, 0, load[1].TasksToday)
}
