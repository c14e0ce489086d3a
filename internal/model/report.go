package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReportType string

const (
	ReportMaintenance  ReportType = "maintenance"
	ReportRevenue      ReportType = "revenue"
	ReportSatisfaction ReportType = "satisfaction"
	ReportPerformance  ReportType = "performance"
)

type ReportFormat string

const (
	FormatCSV  ReportFormat = "csv"
	FormatJSON ReportFormat = "json"
	FormatXLSX ReportFormat = "xlsx"
	FormatPDF  ReportFormat = "pdf"
)

type MaintenancePoint struct {
	Period    string `json:"month"`
	Scheduled int    `json:"scheduled"`
	Emergency int    `json:"emergency"`
}

type RevenuePoint struct {
	Period string          `json:"month"`
	Value  decimal.Decimal `json:"value"`
	Trend  decimal.Decimal `json:"trend"`
}

type StatusSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type MetricStatus string

const (
	MetricImproved       MetricStatus = "improved"
	MetricDeclined       MetricStatus = "declined"
	MetricOnTarget       MetricStatus = "on-target"
	MetricNeedsAttention MetricStatus = "needs-attention"
	MetricExcellent      MetricStatus = "excellent"
)

type KeyMetric struct {
	Name             string       `json:"name"`
	Value            string       `json:"value"`
	Current          float64      `json:"current"`
	Previous         float64      `json:"previous"`
	PercentageChange float64      `json:"percentage_change"`
	Status           MetricStatus `json:"status"`
	Percentage       int          `json:"percentage"`
}

type ContractSummary struct {
	ActiveContracts int             `json:"active_contracts"`
	TotalValue      decimal.Decimal `json:"total_value"`
	ExpiringSoon    int             `json:"expiring_soon"`
	PendingRenewal  int             `json:"pending_renewal"`
	MonthlyRevenue  decimal.Decimal `json:"monthly_revenue"`
}

type InventorySummary struct {
	TotalItems    int64     `json:"total_items"`
	LowStockItems int       `json:"low_stock_items"`
	Categories    int       `json:"categories"`
	LastUpdated   time.Time `json:"last_updated"`
}

type UserSummary struct {
	TotalUsers      int64 `json:"total_users"`
	ActiveEmployees int64 `json:"active_employees"`
	ActiveCustomers int64 `json:"active_customers"`
}

type DashboardSummary struct {
	TotalElevators   int64 `json:"total_elevators"`
	ActiveContracts  int64 `json:"active_contracts"`
	MaintenanceToday int64 `json:"maintenance_today"`
	PendingRequests  int64 `json:"pending_requests"`
	ActiveCustomers  int64 `json:"active_customers"`
}

type ExpiringContract struct {
	ID             uuid.UUID `json:"id"`
	ContractNumber string    `json:"contract_number"`
	Customer       string    `json:"customer"`
	Expiry         time.Time `json:"expiry"`
	DaysLeft       int       `json:"days_left"`
}

type LowStockItem struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Stock   int       `json:"stock"`
	Minimum int       `json:"minimum"`
}

type TechnicianStatus struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	TasksToday     int       `json:"tasks_today"`
	TasksCompleted int       `json:"tasks_completed"`
}

// Report is the tabular form every export format renders.
type Report struct {
	Type        ReportType      `json:"type"`
	Title       string          `json:"title"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Sections    []ReportSection `json:"sections"`
}

type ReportSection struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}
