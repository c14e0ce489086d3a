package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/liftcare/internal/model"
)

var buildingListSpec = listSpec{
	searchColumns: []string{"name", "address", "city"},
	filterColumn:  "building_type",
	orderColumns: map[string]bool{
		"name":       true,
		"created_at": true,
	},
	defaultOrder: "name",
}

type BuildingRepository struct {
	db *gorm.DB
}

func NewBuildingRepository(db *gorm.DB) *BuildingRepository {
	return &BuildingRepository{db: db}
}

func (r *BuildingRepository) List(ctx context.Context, customerID *uuid.UUID, params ListParams) ([]model.Building, int64, error) {
	return list[model.Building](ctx, r.db, "list buildings", buildingListSpec, params, func(q *gorm.DB) *gorm.DB {
		if customerID != nil {
			q = q.Where("customer_id = ?", *customerID)
		}
		return q
	})
}

func (r *BuildingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Building, error) {
	return getByID[model.Building](ctx, r.db, "get building", id)
}

func (r *BuildingRepository) Create(ctx context.Context, building *model.Building) error {
	return create(ctx, r.db, "create building", building)
}

func (r *BuildingRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Building, error) {
	return updateFields[model.Building](ctx, r.db, "update building", id, fields)
}

func (r *BuildingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID[model.Building](ctx, r.db, "delete building", id)
}

func (r *BuildingRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Building, error) {
	var buildings []model.Building
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("name ASC").Find(&buildings).Error
	if err != nil {
		return nil, wrapErr("list buildings by customer", err)
	}
	return buildings, nil
}
