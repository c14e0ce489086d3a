package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/liftcare/internal/model"
)

var sparePartListSpec = listSpec{
	searchColumns: []string{"name", "part_number", "location"},
	filterColumn:  "category",
	orderColumns: map[string]bool{
		"name":              true,
		"category":          true,
		"quantity_in_stock": true,
		"created_at":        true,
	},
	defaultOrder: "name",
}

type SparePartRepository struct {
	db *gorm.DB
}

func NewSparePartRepository(db *gorm.DB) *SparePartRepository {
	return &SparePartRepository{db: db}
}

func (r *SparePartRepository) List(ctx context.Context, params ListParams) ([]model.SparePart, int64, error) {
	return list[model.SparePart](ctx, r.db, "list spare parts", sparePartListSpec, params, nil)
}

func (r *SparePartRepository) Get(ctx context.Context, id uuid.UUID) (*model.SparePart, error) {
	return getByID[model.SparePart](ctx, r.db, "get spare part", id)
}

func (r *SparePartRepository) Create(ctx context.Context, part *model.SparePart) error {
	return create(ctx, r.db, "create spare part", part)
}

func (r *SparePartRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.SparePart, error) {
	return updateFields[model.SparePart](ctx, r.db, "update spare part", id, fields)
}

func (r *SparePartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID[model.SparePart](ctx, r.db, "delete spare part", id)
}

// Restock adds quantity to the stored level in a single statement.
func (r *SparePartRepository) Restock(ctx context.Context, id uuid.UUID, quantity int, at time.Time) (*model.SparePart, error) {
	return updateFields[model.SparePart](ctx, r.db, "restock spare part", id, map[string]interface{}{
		"quantity_in_stock": gorm.Expr("quantity_in_stock + ?", quantity),
		"last_restocked":    at,
		"updated_at":        at,
	})
}

// ListByStock returns every part ordered by ascending stock level.
func (r *SparePartRepository) ListByStock(ctx context.Context) ([]model.SparePart, error) {
	var parts []model.SparePart
	err := r.db.WithContext(ctx).Order("quantity_in_stock ASC").Order("name ASC").Find(&parts).Error
	if err != nil {
		return nil, wrapErr("list spare parts by stock", err)
	}
	return parts, nil
}

func (r *SparePartRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&model.SparePart{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, wrapErr("list spare part categories", err)
	}
	return categories, nil
}
