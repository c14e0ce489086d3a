package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nurpe/liftcare/internal/aggregate"
	"github.com/nurpe/liftcare/internal/cache"
	"github.com/nurpe/liftcare/internal/model"
)

// ReportRenderer turns a report into a downloadable document.
type ReportRenderer interface {
	Generate(report model.Report) ([]byte, error)
}

type ReportRequest struct {
	Type        model.ReportType   `json:"type"`
	Format      model.ReportFormat `json:"format"`
	From        time.Time          `json:"from"`
	To          time.Time          `json:"to"`
	Granularity string             `json:"granularity"`
}

type ReportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

type ReportService struct {
	maintenance MaintenanceStore
	payments    PaymentStore
	contracts   ContractStore
	elevators   ElevatorStore
	cache       cache.Cache
	ttl         time.Duration
	xlsx        ReportRenderer
	pdf         ReportRenderer
	now         func() time.Time
}

func NewReportService(
	maintenance MaintenanceStore,
	payments PaymentStore,
	contracts ContractStore,
	elevators ElevatorStore,
	c cache.Cache,
	ttl time.Duration,
	xlsx, pdf ReportRenderer,
) *ReportService {
	if c == nil {
		c = cache.Noop{}
	}
	return &ReportService{
		maintenance: maintenance,
		payments:    payments,
		contracts:   contracts,
		elevators:   elevators,
		cache:       c,
		ttl:         ttl,
		xlsx:        xlsx,
		pdf:         pdf,
		now:         utcNow,
	}
}

// Maintenance buckets scheduled and emergency work over the days [from, to].
func (s *ReportService) Maintenance(ctx context.Context, from, to time.Time, g aggregate.Granularity) ([]model.MaintenancePoint, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	key := rangeKey("maintenance", from, to, string(g))
	return cache.Remember(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]model.MaintenancePoint, error) {
		lower, upper := dayBounds(from, to)
		tasks, err := s.maintenance.TasksBetween(ctx, lower, upper)
		if err != nil {
			return nil, err
		}
		return aggregate.MaintenanceSeries(tasks, from, to, g), nil
	})
}

func (s *ReportService) Revenue(ctx context.Context, from, to time.Time, g aggregate.Granularity) ([]model.RevenuePoint, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	key := rangeKey("revenue", from, to, string(g))
	return cache.Remember(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]model.RevenuePoint, error) {
		lower, upper := dayBounds(from, to)
		payments, err := s.payments.Between(ctx, lower, upper)
		if err != nil {
			return nil, err
		}
		return aggregate.RevenueSeries(payments, from, to, g), nil
	})
}

func (s *ReportService) Satisfaction(ctx context.Context, from, to time.Time) ([]model.StatusSlice, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	key := rangeKey("satisfaction", from, to, "")
	return cache.Remember(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]model.StatusSlice, error) {
		lower, upper := dayBounds(from, to)
		ratings, err := s.maintenance.RatingsBetween(ctx, lower, upper)
		if err != nil {
			return nil, err
		}
		return aggregate.SatisfactionDistribution(ratings), nil
	})
}

// Metrics compares the days [from, to] with the window of equal length before it.
func (s *ReportService) Metrics(ctx context.Context, from, to time.Time) ([]model.KeyMetric, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	key := rangeKey("metrics", from, to, "")
	return cache.Remember(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]model.KeyMetric, error) {
		lower, upper := dayBounds(from, to)
		current := aggregate.Period{From: lower, To: upper}
		previous := current.Previous()

		tasks, err := s.maintenance.TasksBetween(ctx, previous.From, current.To)
		if err != nil {
			return nil, err
		}
		records, err := s.maintenance.RecordsBetween(ctx, previous.From, current.To)
		if err != nil {
			return nil, err
		}
		contracts, err := s.contracts.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return aggregate.KeyMetrics(
			aggregate.ComputePeriodStats(current, tasks, records, contracts),
			aggregate.ComputePeriodStats(previous, tasks, records, contracts),
		), nil
	})
}

// ElevatorStatus is the fleet split by operating state. It is not cached.
func (s *ReportService) ElevatorStatus(ctx context.Context) ([]model.StatusSlice, error) {
	statuses, err := s.elevators.Statuses(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.ElevatorStatusDistribution(statuses), nil
}

// Export builds the requested report and renders it in the requested format.
func (s *ReportService) Export(ctx context.Context, req ReportRequest) (*ReportFile, error) {
	if req.Format == "" {
		req.Format = model.FormatCSV
	}
	if !validFormat(req.Format) {
		return nil, invalidFields("format")
	}
	report, err := s.Build(ctx, req)
	if err != nil {
		return nil, err
	}

	baseName := sanitizeFileName(fmt.Sprintf("%s-report-%s", report.Type, report.PeriodEnd.Format("2006-01-02")))
	file := &ReportFile{FileName: fmt.Sprintf("%s.%s", baseName, req.Format)}

	switch req.Format {
	case model.FormatJSON:
		file.ContentType = "application/json"
		file.Content, err = json.MarshalIndent(report, "", "  ")
	case model.FormatXLSX:
		file.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		file.Content, err = s.xlsx.Generate(*report)
	case model.FormatPDF:
		file.ContentType = "application/pdf"
		file.Content, err = s.pdf.Generate(*report)
	default:
		file.ContentType = "text/csv"
		file.Content, err = renderCSV(*report)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", req.Format, err)
	}
	return file, nil
}

// Build assembles the tabular report without rendering it.
func (s *ReportService) Build(ctx context.Context, req ReportRequest) (*model.Report, error) {
	g, ok := aggregate.ParseGranularity(req.Granularity)
	if !ok {
		return nil, invalidFields("granularity")
	}
	to := req.To
	if to.IsZero() {
		to = s.now()
	}
	from := req.From
	if from.IsZero() {
		from = to.AddDate(0, -6, 0)
	}
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	report := &model.Report{Type: req.Type, PeriodStart: dateOnly(from), PeriodEnd: dateOnly(to)}
	switch req.Type {
	case model.ReportMaintenance:
		points, err := s.Maintenance(ctx, from, to, g)
		if err != nil {
			return nil, err
		}
		report.Title = "Maintenance activity"
		section := model.ReportSection{Name: "Maintenance", Headers: []string{"Period", "Scheduled", "Emergency", "Total"}}
		for _, p := range points {
			section.Rows = append(section.Rows, []string{
				p.Period, strconv.Itoa(p.Scheduled), strconv.Itoa(p.Emergency), strconv.Itoa(p.Scheduled + p.Emergency),
			})
		}
		report.Sections = []model.ReportSection{section}
	case model.ReportRevenue:
		points, err := s.Revenue(ctx, from, to, g)
		if err != nil {
			return nil, err
		}
		report.Title = "Revenue"
		section := model.ReportSection{Name: "Revenue", Headers: []string{"Period", "Revenue", "Forecast"}}
		for _, p := range points {
			section.Rows = append(section.Rows, []string{p.Period, p.Value.StringFixed(2), p.Trend.StringFixed(2)})
		}
		report.Sections = []model.ReportSection{section}
	case model.ReportSatisfaction:
		slices, err := s.Satisfaction(ctx, from, to)
		if err != nil {
			return nil, err
		}
		report.Title = "Customer satisfaction"
		report.Sections = []model.ReportSection{sliceSection("Ratings", "Rating", "Share (%)", slices)}
	case model.ReportPerformance:
		metrics, err := s.Metrics(ctx, from, to)
		if err != nil {
			return nil, err
		}
		statuses, err := s.ElevatorStatus(ctx)
		if err != nil {
			return nil, err
		}
		report.Title = "Performance"
		section := model.ReportSection{Name: "Key metrics", Headers: []string{"Metric", "Value", "Previous", "Change (%)", "Status"}}
		for _, m := range metrics {
			section.Rows = append(section.Rows, []string{
				m.Name, m.Value, formatFloat(m.Previous), formatFloat(m.PercentageChange), string(m.Status),
			})
		}
		report.Sections = []model.ReportSection{section, sliceSection("Elevator status", "Status", "Elevators", statuses)}
	default:
		return nil, invalidFields("type")
	}
	return report, nil
}

func sliceSection(name, label, value string, slices []model.StatusSlice) model.ReportSection {
	section := model.ReportSection{Name: name, Headers: []string{label, value}}
	for _, slice := range slices {
		section.Rows = append(section.Rows, []string{slice.Name, strconv.Itoa(slice.Value)})
	}
	return section
}

func renderCSV(report model.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for i, section := range report.Sections {
		if i > 0 {
			if err := w.Write([]string{}); err != nil {
				return nil, err
			}
		}
		if len(report.Sections) > 1 {
			if err := w.Write([]string{section.Name}); err != nil {
				return nil, err
			}
		}
		if err := w.Write(section.Headers); err != nil {
			return nil, err
		}
		if err := w.WriteAll(section.Rows); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func validFormat(f model.ReportFormat) bool {
	switch f {
	case model.FormatCSV, model.FormatJSON, model.FormatXLSX, model.FormatPDF:
		return true
	}
	return false
}

func checkRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return invalidFields("from", "to")
	}
	if dateOnly(from).After(dateOnly(to)) {
		return invalidFields("to")
	}
	return nil
}

// dayBounds turns the inclusive days [from, to] into a half-open instant range.
func dayBounds(from, to time.Time) (time.Time, time.Time) {
	return dateOnly(from), dateOnly(to).AddDate(0, 0, 1)
}

func rangeKey(kind string, from, to time.Time, extra string) string {
	key := fmt.Sprintf("reports:%s:%s:%s", kind, from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02"))
	if extra != "" {
		key += ":" + extra
	}
	return key
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func sanitizeFileName(value string) string {
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
	value = replacer.Replace(strings.TrimSpace(value))
	if value == "" {
		return "report"
	}
	return value
}
