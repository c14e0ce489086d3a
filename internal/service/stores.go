package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/repository"
)

type ContractStore interface {
	List(ctx context.Context, params repository.ListParams) ([]model.Contract, int64, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, params repository.ListParams) ([]model.Contract, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	FindByNumber(ctx context.Context, number string) (*model.Contract, error)
	Create(ctx context.Context, contract *model.Contract) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Contract, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]model.Contract, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Contract, error)
	ListExpiring(ctx context.Context, from, to time.Time, limit int) ([]model.Contract, error)
	CountByStatus(ctx context.Context, status model.ContractStatus) (int64, error)
	Statuses(ctx context.Context) ([]string, error)
}

type SparePartStore interface {
	List(ctx context.Context, params repository.ListParams) ([]model.SparePart, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.SparePart, error)
	Create(ctx context.Context, part *model.SparePart) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.SparePart, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Restock(ctx context.Context, id uuid.UUID, quantity int, at time.Time) (*model.SparePart, error)
	ListByStock(ctx context.Context) ([]model.SparePart, error)
	Categories(ctx context.Context) ([]string, error)
}

type UserStore interface {
	List(ctx context.Context, params repository.ListParams) ([]model.User, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.User, error)
	Deactivate(ctx context.Context, id uuid.UUID, at time.Time) error
	CountActive(ctx context.Context, role model.Role) (int64, error)
	ListActiveByRole(ctx context.Context, role model.Role) ([]model.User, error)
	Roles(ctx context.Context) ([]string, error)
}

type CustomerStore interface {
	List(ctx context.Context, params repository.ListParams) ([]model.Customer, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Customer, error)
	Deactivate(ctx context.Context, id uuid.UUID, at time.Time) error
	CountActive(ctx context.Context) (int64, error)
}

type BuildingStore interface {
	List(ctx context.Context, customerID *uuid.UUID, params repository.ListParams) ([]model.Building, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Building, error)
	Create(ctx context.Context, building *model.Building) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Building, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Building, error)
}

type ElevatorStore interface {
	List(ctx context.Context, buildingID *uuid.UUID, params repository.ListParams) ([]model.Elevator, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Elevator, error)
	Create(ctx context.Context, elevator *model.Elevator) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Elevator, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	ListByBuildings(ctx context.Context, buildingIDs []uuid.UUID) ([]model.Elevator, error)
	Statuses(ctx context.Context) ([]model.ElevatorStatus, error)
}

type MaintenanceStore interface {
	ListTasks(ctx context.Context, scope repository.TaskScope, params repository.ListParams) ([]model.MaintenanceTask, int64, error)
	GetTask(ctx context.Context, id uuid.UUID) (*model.MaintenanceTask, error)
	CreateTask(ctx context.Context, task *model.MaintenanceTask) error
	UpdateTask(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.MaintenanceTask, error)
	TasksBetween(ctx context.Context, from, to time.Time) ([]model.MaintenanceTask, error)
	TasksForAssignee(ctx context.Context, assignee uuid.UUID, from, to time.Time) ([]model.MaintenanceTask, error)
	TasksForElevators(ctx context.Context, elevatorIDs []uuid.UUID) ([]model.MaintenanceTask, error)
	CountTasksByStatus(ctx context.Context, status model.MaintenanceStatus) (int64, error)
	CountTasksBetween(ctx context.Context, from, to time.Time) (int64, error)
	Complete(ctx context.Context, input repository.CompletedTask) (*model.MaintenanceRecord, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*model.MaintenanceRecord, error)
	UpdateRecord(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.MaintenanceRecord, error)
	RecordsBetween(ctx context.Context, from, to time.Time) ([]model.MaintenanceRecord, error)
	RecordsForElevators(ctx context.Context, elevatorIDs []uuid.UUID) ([]model.MaintenanceRecord, error)
	RatingsBetween(ctx context.Context, from, to time.Time) ([]int, error)
}

type NotificationStore interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, params repository.ListParams) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}

type ActivityStore interface {
	Append(ctx context.Context, entry *model.ActivityLog) error
	List(ctx context.Context, params repository.ListParams) ([]model.ActivityLog, int64, error)
	Recent(ctx context.Context, limit int) ([]model.ActivityLog, error)
}

type PaymentStore interface {
	Between(ctx context.Context, from, to time.Time) ([]model.Payment, error)
}

func utcNow() time.Time {
	return time.Now().UTC()
}
