package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/liftcare/internal/model"
)

var elevatorListSpec = listSpec{
	searchColumns: []string{"serial_number", "model", "manufacturer"},
	filterColumn:  "status",
	orderColumns: map[string]bool{
		"serial_number": true,
		"created_at":    true,
	},
	defaultOrder: "created_at",
	defaultDesc:  true,
}

type ElevatorRepository struct {
	db *gorm.DB
}

func NewElevatorRepository(db *gorm.DB) *ElevatorRepository {
	return &ElevatorRepository{db: db}
}

func (r *ElevatorRepository) List(ctx context.Context, buildingID *uuid.UUID, params ListParams) ([]model.Elevator, int64, error) {
	return list[model.Elevator](ctx, r.db, "list elevators", elevatorListSpec, params, func(q *gorm.DB) *gorm.DB {
		if buildingID != nil {
			q = q.Where("building_id = ?", *buildingID)
		}
		return q
	})
}

func (r *ElevatorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Elevator, error) {
	return getByID[model.Elevator](ctx, r.db, "get elevator", id)
}

func (r *ElevatorRepository) Create(ctx context.Context, elevator *model.Elevator) error {
	return create(ctx, r.db, "create elevator", elevator)
}

func (r *ElevatorRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Elevator, error) {
	return updateFields[model.Elevator](ctx, r.db, "update elevator", id, fields)
}

func (r *ElevatorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID[model.Elevator](ctx, r.db, "delete elevator", id)
}

func (r *ElevatorRepository) Count(ctx context.Context) (int64, error) {
	return countWhere[model.Elevator](ctx, r.db, "count elevators", "")
}

func (r *ElevatorRepository) ListByBuildings(ctx context.Context, buildingIDs []uuid.UUID) ([]model.Elevator, error) {
	if len(buildingIDs) == 0 {
		return []model.Elevator{}, nil
	}
	var elevators []model.Elevator
	err := r.db.WithContext(ctx).Where("building_id IN ?", buildingIDs).Order("serial_number ASC").Find(&elevators).Error
	if err != nil {
		return nil, wrapErr("list elevators by building", err)
	}
	return elevators, nil
}

func (r *ElevatorRepository) Statuses(ctx context.Context) ([]model.ElevatorStatus, error) {
	var statuses []model.ElevatorStatus
	if err := r.db.WithContext(ctx).Model(&model.Elevator{}).Pluck("status", &statuses).Error; err != nil {
		return nil, wrapErr("list elevator statuses", err)
	}
	return statuses, nil
}
