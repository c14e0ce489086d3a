package aggregate

import (
	"time"

	"github.com/nurpe/liftcare/internal/model"
)

const (
	LabelLowStock = "Low Stock"
	LabelInStock  = "In Stock"
)

func StockLabel(part model.SparePart) string {
	if part.IsLowStock() {
		return LabelLowStock
	}
	return LabelInStock
}

// LowStock returns parts below their minimum ordered by ascending stock,
// capped to limit when limit > 0.
func LowStock(parts []model.SparePart, limit int) []model.LowStockItem {
	low := Filter(parts, model.SparePart.IsLowStock)
	sortBy(low, func(a, b model.SparePart) bool { return a.QuantityInStock < b.QuantityInStock })
	if limit > 0 && len(low) > limit {
		low = low[:limit]
	}
	out := make([]model.LowStockItem, 0, len(low))
	for _, p := range low {
		out = append(out, model.LowStockItem{
			ID:      p.ID,
			Name:    p.Name,
			Stock:   p.QuantityInStock,
			Minimum: p.MinimumStock,
		})
	}
	return out
}

// InventorySummary reports totals over the full part list. LastUpdated is the
// latest update or restock time seen.
func InventorySummary(parts []model.SparePart) model.InventorySummary {
	categories := make(map[string]struct{})
	var last time.Time
	for _, p := range parts {
		categories[p.Category] = struct{}{}
		if p.UpdatedAt.After(last) {
			last = p.UpdatedAt
		}
		if p.LastRestocked != nil && p.LastRestocked.After(last) {
			last = *p.LastRestocked
		}
	}
	return model.InventorySummary{
		TotalItems:    int64(len(parts)),
		LowStockItems: Count(parts, model.SparePart.IsLowStock),
		Categories:    len(categories),
		LastUpdated:   last,
	}
}

// TechnicianLoad counts each technician's tasks for the day and how many are done.
func TechnicianLoad(technicians []model.User, tasks []model.MaintenanceTask) []model.TechnicianStatus {
	out := make([]model.TechnicianStatus, 0, len(technicians))
	for _, tech := range technicians {
		mine := Filter(tasks, func(t model.MaintenanceTask) bool {
			return t.AssignedTo != nil && *t.AssignedTo == tech.ID
		})
		out = append(out, model.TechnicianStatus{
			ID:         tech.ID,
			Name:       tech.Name,
			TasksToday: len(mine),
			TasksCompleted: Count(mine, func(t model.MaintenanceTask) bool {
				return t.Status == model.TaskCompleted
			}),
		})
	}
	return out
}
