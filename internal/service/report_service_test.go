package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/liftcare/internal/aggregate"
	"github.com/nurpe/liftcare/internal/model"
)

type memoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = raw
	return nil
}

type stubRenderer struct {
	calls []model.Report
}

func (r *stubRenderer) Generate(report model.Report) ([]byte, error) {
	r.calls = append(r.calls, report)
	return []byte("rendered"), nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newReportService(f *fixture, c *memoryCache, xlsx, pdf ReportRenderer) *ReportService {
	var ttl time.Duration
	if c != nil {
		ttl = time.Minute
	}
	svc := NewReportService(f.maintenanceRepo, f.paymentRepo, f.contractRepo, f.elevatorRepo, nil, ttl, xlsx, pdf)
	if c != nil {
		svc.cache = c
	}
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func (f *fixture) addPayment(t *testing.T, amount int64, at time.Time, kind string) {
	t.Helper()
	require.NoError(t, f.paymentRepo.Create(context.Background(), &model.Payment{
		Amount: decimal.NewFromInt(amount), Date: at, Type: kind,
	}))
}

func TestReportMaintenanceSeries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.addCustomer(t, "acme")
	_, elevator := f.addFleet(t, customer.ID)
	for _, task := range []model.MaintenanceTask{
		{ElevatorID: elevator.ID, ScheduledDate: date(2025, 1, 10), Type: model.MaintenanceScheduled},
		{ElevatorID: elevator.ID, ScheduledDate: date(2025, 1, 20), Type: model.MaintenanceImmediate},
		{ElevatorID: elevator.ID, ScheduledDate: date(2025, 2, 5), Type: model.MaintenanceScheduled},
		{ElevatorID: elevator.ID, ScheduledDate: date(2025, 4, 1), Type: model.MaintenanceScheduled},
	} {
		task := task
		require.NoError(t, f.maintenanceRepo.CreateTask(ctx, &task))
	}

	svc := newReportService(f, nil, nil, nil)
	points, err := svc.Maintenance(ctx, date(2024, 12, 1), date(2025, 2, 28), aggregate.Month)
	require.NoError(t, err)
	assert.Equal(t, []model.MaintenancePoint{
		{Period: "Dec 2024"},
		{Period: "Jan 2025", Scheduled: 1, Emergency: 1},
		{Period: "Feb 2025", Scheduled: 1},
	}, points)

	_, err = svc.Maintenance(ctx, date(2025, 3, 1), date(2025, 2, 1), aggregate.Month)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReportRevenueIsCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPayment(t, 150, date(2025, 1, 15), "payment")
	f.addPayment(t, 200, date(2025, 2, 1), model.PaymentTypeForecast)

	svc := newReportService(f, newMemoryCache(), nil, nil)
	first, err := svc.Revenue(ctx, date(2025, 1, 1), date(2025, 2, 28), aggregate.Month)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "Jan 2025", first[0].Period)
	assert.True(t, first[0].Value.Equal(decimal.NewFromInt(150)))
	assert.True(t, first[1].Trend.Equal(decimal.NewFromInt(200)))

	f.addPayment(t, 999, date(2025, 1, 16), "payment")
	second, err := svc.Revenue(ctx, date(2025, 1, 1), date(2025, 2, 28), aggregate.Month)
	require.NoError(t, err)
	assert.True(t, second[0].Value.Equal(decimal.NewFromInt(150)))

	uncached := newReportService(f, nil, nil, nil)
	fresh, err := uncached.Revenue(ctx, date(2025, 1, 1), date(2025, 2, 28), aggregate.Month)
	require.NoError(t, err)
	assert.True(t, fresh[0].Value.Equal(decimal.NewFromInt(1149)))
}

func TestReportSatisfaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.addCustomer(t, "acme")
	_, elevator := f.addFleet(t, customer.ID)
	for i, rating := range []int{5, 5, 4, 1} {
		task := &model.MaintenanceTask{ElevatorID: elevator.ID, ScheduledDate: date(2025, 3, 1), Type: model.MaintenanceScheduled}
		require.NoError(t, f.maintenanceRepo.CreateTask(ctx, task))
		r := rating
		require.NoError(t, f.db.Create(&model.MaintenanceRecord{
			TaskID:              task.ID,
			ElevatorID:          elevator.ID,
			PerformedBy:         f.admin.UserID,
			MaintenanceDate:     date(2025, 3, 1+i),
			ElevatorStatusAfter: model.ElevatorOperational,
			Rating:              &r,
		}).Error)
	}

	svc := newReportService(f, nil, nil, nil)
	slices, err := svc.Satisfaction(ctx, date(2025, 3, 1), date(2025, 3, 31))
	require.NoError(t, err)
	require.Len(t, slices, 4)
	assert.Equal(t, 50, slices[0].Value)
	assert.Equal(t, 25, slices[1].Value)
	assert.Equal(t, 0, slices[2].Value)
	assert.Equal(t, 25, slices[3].Value)
}

func TestReportMetricsNamesEveryMetric(t *testing.T) {
	f := newFixture(t)
	svc := newReportService(f, nil, nil, nil)
	metrics, err := svc.Metrics(context.Background(), date(2025, 2, 1), date(2025, 2, 28))
	require.NoError(t, err)
	names := make([]string, 0, len(metrics))
	for _, m := range metrics {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{
		aggregate.MetricResponseTime, aggregate.MetricFirstTimeFix, aggregate.MetricRenewal, aggregate.MetricRetention,
	}, names)
}

func TestReportExportFormats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addPayment(t, 150, date(2025, 1, 15), "payment")
	f.addPayment(t, 200, date(2025, 2, 1), model.PaymentTypeForecast)

	xlsx, pdf := &stubRenderer{}, &stubRenderer{}
	svc := newReportService(f, nil, xlsx, pdf)
	req := ReportRequest{Type: model.ReportRevenue, From: date(2025, 1, 1), To: date(2025, 2, 28)}

	file, err := svc.Export(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "revenue-report-2025-02-28.csv", file.FileName)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "Period,Revenue,Forecast\nJan 2025,150.00,0.00\nFeb 2025,0.00,200.00\n", string(file.Content))

	req.Format = model.FormatJSON
	file, err = svc.Export(ctx, req)
	require.NoError(t, err)
	var decoded model.Report
	require.NoError(t, json.Unmarshal(file.Content, &decoded))
	assert.Equal(t, model.ReportRevenue, decoded.Type)
	require.Len(t, decoded.Sections, 1)
	assert.Len(t, decoded.Sections[0].Rows, 2)

	req.Format = model.FormatXLSX
	file, err = svc.Export(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "revenue-report-2025-02-28.xlsx", file.FileName)
	require.Len(t, xlsx.calls, 1)
	assert.Equal(t, "Revenue", xlsx.calls[0].Title)

	req.Format = model.FormatPDF
	file, err = svc.Export(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Len(t, pdf.calls, 1)
}

func TestReportExportRejectsBadRequests(t *testing.T) {
	f := newFixture(t)
	svc := newReportService(f, nil, &stubRenderer{}, &stubRenderer{})
	ctx := context.Background()

	cases := map[string]ReportRequest{
		"format":      {Type: model.ReportRevenue, Format: "docx"},
		"type":        {Type: "weather"},
		"granularity": {Type: model.ReportRevenue, Granularity: "hour"},
		"to":          {Type: model.ReportRevenue, From: date(2025, 3, 1), To: date(2025, 2, 1)},
	}
	for field, req := range cases {
		_, err := svc.Export(ctx, req)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), field)
		assert.Equal(t, []string{field}, verr.Fields, field)
	}
}

func TestReportPerformanceHasTwoSections(t *testing.T) {
	f := newFixture(t)
	customer := f.addCustomer(t, "acme")
	f.addFleet(t, customer.ID)
	svc := newReportService(f, nil, nil, nil)

	report, err := svc.Build(context.Background(), ReportRequest{Type: model.ReportPerformance})
	require.NoError(t, err)
	require.Len(t, report.Sections, 2)
	assert.Len(t, report.Sections[0].Rows, 4)
	assert.Equal(t, "Elevator status", report.Sections[1].Name)
	assert.True(t, report.PeriodEnd.Equal(date(2025, 3, 10)))
	assert.True(t, report.PeriodStart.Equal(date(2024, 9, 10)))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "report", sanitizeFileName("  "))
	assert.Equal(t, "a_b-c", sanitizeFileName("a b/c?"))
}
