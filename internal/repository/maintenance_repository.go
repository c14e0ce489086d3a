package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/liftcare/internal/model"
)

var taskListSpec = listSpec{
	searchColumns: []string{"description", "priority"},
	filterColumn:  "status",
	orderColumns: map[string]bool{
		"scheduled_date": true,
		"created_at":     true,
		"priority":       true,
	},
	defaultOrder: "scheduled_date",
	defaultDesc:  true,
}

// TaskScope narrows a task list to an assignee or a set of elevators.
type TaskScope struct {
	AssignedTo  *uuid.UUID
	ElevatorIDs []uuid.UUID
}

func (s TaskScope) apply(q *gorm.DB) *gorm.DB {
	if s.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *s.AssignedTo)
	}
	if s.ElevatorIDs != nil {
		q = q.Where("elevator_id IN ?", nonEmptyIDs(s.ElevatorIDs))
	}
	return q
}

// CompletedTask is the state written when a technician closes a task.
type CompletedTask struct {
	TaskID uuid.UUID
	Record *model.MaintenanceRecord
	At     time.Time
}

type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) ListTasks(ctx context.Context, scope TaskScope, params ListParams) ([]model.MaintenanceTask, int64, error) {
	return list[model.MaintenanceTask](ctx, r.db, "list maintenance tasks", taskListSpec, params, scope.apply)
}

func (r *MaintenanceRepository) GetTask(ctx context.Context, id uuid.UUID) (*model.MaintenanceTask, error) {
	return getByID[model.MaintenanceTask](ctx, r.db, "get maintenance task", id)
}

func (r *MaintenanceRepository) CreateTask(ctx context.Context, task *model.MaintenanceTask) error {
	return create(ctx, r.db, "create maintenance task", task)
}

func (r *MaintenanceRepository) UpdateTask(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.MaintenanceTask, error) {
	return updateFields[model.MaintenanceTask](ctx, r.db, "update maintenance task", id, fields)
}

// TasksBetween returns tasks scheduled in [from, to).
func (r *MaintenanceRepository) TasksBetween(ctx context.Context, from, to time.Time) ([]model.MaintenanceTask, error) {
	var tasks []model.MaintenanceTask
	err := r.db.WithContext(ctx).
		Where("scheduled_date >= ? AND scheduled_date < ?", from, to).
		Order("scheduled_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, wrapErr("list tasks between", err)
	}
	return tasks, nil
}

// TasksForAssignee returns the tasks of one technician scheduled in [from, to).
func (r *MaintenanceRepository) TasksForAssignee(ctx context.Context, assignee uuid.UUID, from, to time.Time) ([]model.MaintenanceTask, error) {
	var tasks []model.MaintenanceTask
	err := r.db.WithContext(ctx).
		Where("assigned_to = ?", assignee).
		Where("scheduled_date >= ? AND scheduled_date < ?", from, to).
		Order("scheduled_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, wrapErr("list tasks for assignee", err)
	}
	return tasks, nil
}

func (r *MaintenanceRepository) TasksForElevators(ctx context.Context, elevatorIDs []uuid.UUID) ([]model.MaintenanceTask, error) {
	if len(elevatorIDs) == 0 {
		return []model.MaintenanceTask{}, nil
	}
	var tasks []model.MaintenanceTask
	err := r.db.WithContext(ctx).
		Where("elevator_id IN ?", elevatorIDs).
		Order("scheduled_date DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, wrapErr("list tasks for elevators", err)
	}
	return tasks, nil
}

func (r *MaintenanceRepository) CountTasksByStatus(ctx context.Context, status model.MaintenanceStatus) (int64, error) {
	return countWhere[model.MaintenanceTask](ctx, r.db, "count tasks", "status = ?", status)
}

func (r *MaintenanceRepository) CountTasksBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return countWhere[model.MaintenanceTask](ctx, r.db, "count tasks between", "scheduled_date >= ? AND scheduled_date < ?", from, to)
}

// Complete stores the record, closes the task and applies the elevator's new status atomically.
func (r *MaintenanceRepository) Complete(ctx context.Context, input CompletedTask) (*model.MaintenanceRecord, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.MaintenanceTask
		if err := tx.Where("id = ?", input.TaskID).Take(&task).Error; err != nil {
			return err
		}
		input.Record.TaskID = task.ID
		input.Record.ElevatorID = task.ElevatorID
		if err := tx.Create(input.Record).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.MaintenanceTask{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
			"status":     model.TaskCompleted,
			"updated_at": input.At,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&model.Elevator{}).Where("id = ?", task.ElevatorID).Updates(map[string]interface{}{
			"status":     input.Record.ElevatorStatusAfter,
			"updated_at": input.At,
		}).Error
	})
	if err != nil {
		return nil, wrapErr("complete maintenance task", err)
	}
	return input.Record, nil
}

func (r *MaintenanceRepository) GetRecord(ctx context.Context, id uuid.UUID) (*model.MaintenanceRecord, error) {
	return getByID[model.MaintenanceRecord](ctx, r.db, "get maintenance record", id)
}

func (r *MaintenanceRepository) UpdateRecord(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.MaintenanceRecord, error) {
	return updateFields[model.MaintenanceRecord](ctx, r.db, "update maintenance record", id, fields)
}

// RecordsBetween returns records with maintenance_date in [from, to).
func (r *MaintenanceRepository) RecordsBetween(ctx context.Context, from, to time.Time) ([]model.MaintenanceRecord, error) {
	var records []model.MaintenanceRecord
	err := r.db.WithContext(ctx).
		Where("maintenance_date >= ? AND maintenance_date < ?", from, to).
		Order("maintenance_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, wrapErr("list records between", err)
	}
	return records, nil
}

func (r *MaintenanceRepository) RecordsForElevators(ctx context.Context, elevatorIDs []uuid.UUID) ([]model.MaintenanceRecord, error) {
	if len(elevatorIDs) == 0 {
		return []model.MaintenanceRecord{}, nil
	}
	var records []model.MaintenanceRecord
	err := r.db.WithContext(ctx).
		Where("elevator_id IN ?", elevatorIDs).
		Order("maintenance_date DESC").
		Find(&records).Error
	if err != nil {
		return nil, wrapErr("list records for elevators", err)
	}
	return records, nil
}

// RatingsBetween returns the customer ratings left on records in [from, to).
func (r *MaintenanceRepository) RatingsBetween(ctx context.Context, from, to time.Time) ([]int, error) {
	var ratings []int
	err := r.db.WithContext(ctx).
		Model(&model.MaintenanceRecord{}).
		Where("maintenance_date >= ? AND maintenance_date < ?", from, to).
		Where("rating IS NOT NULL").
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, wrapErr("list ratings", err)
	}
	return ratings, nil
}

// nonEmptyIDs keeps an IN clause valid when the caller's set is empty.
func nonEmptyIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return []uuid.UUID{uuid.Nil}
	}
	return ids
}
