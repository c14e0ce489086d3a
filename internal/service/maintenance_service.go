package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/repository"
)

type TaskInput struct {
	ElevatorID    *uuid.UUID `json:"elevator_id" validate:"required"`
	ScheduledDate string     `json:"scheduled_date" validate:"required"`
	Type          string     `json:"type" validate:"required,oneof=scheduled immediate"`
	Priority      string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Description   string     `json:"description"`
	AssignedTo    *uuid.UUID `json:"assigned_to"`
}

type RequestInput struct {
	ElevatorID  *uuid.UUID `json:"elevator_id" validate:"required"`
	Description string     `json:"description" validate:"required"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

type CompletionInput struct {
	Findings            string `json:"findings"`
	ActionsTaken        string `json:"actions_taken" validate:"required"`
	ElevatorStatusAfter string `json:"elevator_status_after" validate:"required,oneof=operational maintenance out_of_service"`
	NextMaintenanceDate string `json:"next_maintenance_date"`
}

type FeedbackInput struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback"`
}

// CustomerHistory is the maintenance trail of a customer's elevators.
type CustomerHistory struct {
	Tasks   []model.MaintenanceTask   `json:"tasks"`
	Records []model.MaintenanceRecord `json:"records"`
}

type MaintenanceService struct {
	repo      MaintenanceStore
	buildings BuildingStore
	elevators ElevatorStore
	users     UserStore
	notifier  Notifier
	activity  ActivityRecorder
	log       zerolog.Logger
	now       func() time.Time
}

func NewMaintenanceService(
	repo MaintenanceStore,
	buildings BuildingStore,
	elevators ElevatorStore,
	users UserStore,
	notifier Notifier,
	activity ActivityRecorder,
	log zerolog.Logger,
) *MaintenanceService {
	return &MaintenanceService{
		repo:      repo,
		buildings: buildings,
		elevators: elevators,
		users:     users,
		notifier:  notifier,
		activity:  activity,
		log:       log,
		now:       utcNow,
	}
}

func (s *MaintenanceService) List(ctx context.Context, scope repository.TaskScope, params repository.ListParams) ([]model.MaintenanceTask, int64, error) {
	return s.repo.ListTasks(ctx, scope, params)
}

func (s *MaintenanceService) Get(ctx context.Context, id uuid.UUID) (*model.MaintenanceTask, error) {
	task, err := s.repo.GetTask(ctx, id)
	return task, translate(err, "maintenance task")
}

// Create schedules a task. A task created with an assignee starts as assigned.
func (s *MaintenanceService) Create(ctx context.Context, actor model.Principal, input TaskInput) (*model.MaintenanceTask, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	dates, err := dateFields(map[string]string{"scheduled_date": input.ScheduledDate})
	if err != nil {
		return nil, err
	}
	if _, err := s.elevators.Get(ctx, *input.ElevatorID); err != nil {
		return nil, translate(err, "elevator")
	}

	task := &model.MaintenanceTask{
		ElevatorID:    *input.ElevatorID,
		RequestedBy:   &actor.UserID,
		ScheduledDate: dates["scheduled_date"],
		Type:          model.MaintenanceType(input.Type),
		Status:        model.TaskPending,
		Priority:      input.Priority,
		Description:   strings.TrimSpace(input.Description),
	}
	if input.AssignedTo != nil {
		if err := s.ensureTechnician(ctx, *input.AssignedTo); err != nil {
			return nil, err
		}
		task.AssignedTo = input.AssignedTo
		task.Status = model.TaskAssigned
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	record(ctx, s.activity, actor, "maintenance.scheduled", task.ID.String())
	if task.AssignedTo != nil {
		s.notifyAssignment(ctx, task)
	}
	return task, nil
}

// RequestMaintenance opens an immediate task for an elevator owned by the
// calling customer and alerts every admin.
func (s *MaintenanceService) RequestMaintenance(ctx context.Context, principal model.Principal, input RequestInput) (*model.MaintenanceTask, error) {
	customerID, err := customerOf(principal)
	if err != nil {
		return nil, err
	}
	input.Description = strings.TrimSpace(input.Description)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if err := s.ensureOwnsElevator(ctx, customerID, *input.ElevatorID); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = "high"
	}
	task := &model.MaintenanceTask{
		ElevatorID:    *input.ElevatorID,
		RequestedBy:   &principal.UserID,
		ScheduledDate: s.now(),
		Type:          model.MaintenanceImmediate,
		Status:        model.TaskPending,
		Priority:      priority,
		Description:   input.Description,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	record(ctx, s.activity, principal, "maintenance.requested", task.ID.String())

	admins, err := s.users.ListActiveByRole(ctx, model.RoleAdmin)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load admins for request notification")
		return task, nil
	}
	for _, admin := range admins {
		s.send(ctx, &model.Notification{
			UserID:     admin.ID,
			Title:      "New maintenance request",
			Message:    input.Description,
			Type:       NotificationRequest,
			EntityType: "maintenance_task",
			EntityID:   &task.ID,
		})
	}
	return task, nil
}

func (s *MaintenanceService) AssignTask(ctx context.Context, actor model.Principal, taskID, technicianID uuid.UUID) (*model.MaintenanceTask, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, translate(err, "maintenance task")
	}
	if task.Status == model.TaskCompleted {
		return nil, fmt.Errorf("%w: task already completed", ErrConflict)
	}
	if err := s.ensureTechnician(ctx, technicianID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"assigned_to": technicianID,
		"updated_at":  s.now(),
	}
	if task.Status == model.TaskPending {
		fields["status"] = model.TaskAssigned
	}
	updated, err := s.repo.UpdateTask(ctx, taskID, fields)
	if err != nil {
		return nil, translate(err, "maintenance task")
	}
	record(ctx, s.activity, actor, "maintenance.assigned", updated.ID.String())
	s.notifyAssignment(ctx, updated)
	return updated, nil
}

// StartTask moves an assigned task of the calling technician to in_progress.
func (s *MaintenanceService) StartTask(ctx context.Context, principal model.Principal, taskID uuid.UUID) (*model.MaintenanceTask, error) {
	task, err := s.ownTask(ctx, principal, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != model.TaskAssigned {
		return nil, fmt.Errorf("%w: task is %s", ErrConflict, task.Status)
	}
	now := s.now()
	updated, err := s.repo.UpdateTask(ctx, taskID, map[string]interface{}{
		"status":     model.TaskInProgress,
		"started_at": now,
		"updated_at": now,
	})
	if err != nil {
		return nil, translate(err, "maintenance task")
	}
	record(ctx, s.activity, principal, "maintenance.started", taskID.String())
	return updated, nil
}

// CompleteTask records the outcome, closes the task and sets the elevator's
// status in one transaction.
func (s *MaintenanceService) CompleteTask(ctx context.Context, principal model.Principal, taskID uuid.UUID, input CompletionInput) (*model.MaintenanceRecord, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	dates, err := dateFields(map[string]string{"next_maintenance_date": input.NextMaintenanceDate})
	if err != nil {
		return nil, err
	}
	task, err := s.ownTask(ctx, principal, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status == model.TaskCompleted {
		return nil, fmt.Errorf("%w: task already completed", ErrConflict)
	}

	now := s.now()
	rec := &model.MaintenanceRecord{
		PerformedBy:         principal.UserID,
		MaintenanceDate:     now,
		CompletionTime:      &now,
		Findings:            strings.TrimSpace(input.Findings),
		ActionsTaken:        strings.TrimSpace(input.ActionsTaken),
		ElevatorStatusAfter: model.ElevatorStatus(input.ElevatorStatusAfter),
		NextMaintenanceDate: optionalDate(dates, "next_maintenance_date"),
	}
	saved, err := s.repo.Complete(ctx, repository.CompletedTask{TaskID: taskID, Record: rec, At: now})
	if err != nil {
		return nil, translate(err, "maintenance task")
	}
	record(ctx, s.activity, principal, "maintenance.completed", taskID.String())
	if task.RequestedBy != nil && *task.RequestedBy != principal.UserID {
		s.send(ctx, &model.Notification{
			UserID:     *task.RequestedBy,
			Title:      "Maintenance completed",
			Message:    saved.ActionsTaken,
			Type:       NotificationTask,
			EntityType: "maintenance_record",
			EntityID:   &saved.ID,
		})
	}
	return saved, nil
}

// Schedule returns the tasks of assignee scheduled on the days [from, to].
func (s *MaintenanceService) Schedule(ctx context.Context, assignee uuid.UUID, from, to time.Time) ([]model.MaintenanceTask, error) {
	start := dateOnly(from)
	end := dateOnly(to).AddDate(0, 0, 1)
	if !start.Before(end) {
		return nil, invalidFields("to")
	}
	return s.repo.TasksForAssignee(ctx, assignee, start, end)
}

// History lists the tasks and records of every elevator the customer owns.
func (s *MaintenanceService) History(ctx context.Context, principal model.Principal) (*CustomerHistory, error) {
	customerID, err := customerOf(principal)
	if err != nil {
		return nil, err
	}
	elevatorIDs, err := s.customerElevators(ctx, customerID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.TasksForElevators(ctx, elevatorIDs)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.RecordsForElevators(ctx, elevatorIDs)
	if err != nil {
		return nil, err
	}
	return &CustomerHistory{Tasks: tasks, Records: records}, nil
}

// RateRecord stores the customer's 1-5 rating for completed work on one of its elevators.
func (s *MaintenanceService) RateRecord(ctx context.Context, principal model.Principal, recordID uuid.UUID, input FeedbackInput) (*model.MaintenanceRecord, error) {
	customerID, err := customerOf(principal)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	rec, err := s.repo.GetRecord(ctx, recordID)
	if err != nil {
		return nil, translate(err, "maintenance record")
	}
	if err := s.ensureOwnsElevator(ctx, customerID, rec.ElevatorID); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateRecord(ctx, recordID, map[string]interface{}{
		"rating":     input.Rating,
		"feedback":   strings.TrimSpace(input.Feedback),
		"updated_at": s.now(),
	})
	if err != nil {
		return nil, translate(err, "maintenance record")
	}
	record(ctx, s.activity, principal, "maintenance.rated", recordID.String())
	return updated, nil
}

func (s *MaintenanceService) ownTask(ctx context.Context, principal model.Principal, taskID uuid.UUID) (*model.MaintenanceTask, error) {
	if !principal.IsEmployee() && !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, translate(err, "maintenance task")
	}
	if principal.IsEmployee() && (task.AssignedTo == nil || *task.AssignedTo != principal.UserID) {
		return nil, fmt.Errorf("%w: task is assigned to another technician", ErrPermissionDenied)
	}
	return task, nil
}

func (s *MaintenanceService) ensureTechnician(ctx context.Context, id uuid.UUID) error {
	user, err := s.users.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return invalidFields("assigned_to")
	}
	if err != nil {
		return err
	}
	if !user.IsActive || user.Role != model.RoleEmployee {
		return invalidFields("assigned_to")
	}
	return nil
}

func (s *MaintenanceService) ensureOwnsElevator(ctx context.Context, customerID, elevatorID uuid.UUID) error {
	elevator, err := s.elevators.Get(ctx, elevatorID)
	if err != nil {
		return translate(err, "elevator")
	}
	building, err := s.buildings.Get(ctx, elevator.BuildingID)
	if err != nil {
		return translate(err, "building")
	}
	if building.CustomerID != customerID {
		return fmt.Errorf("%w: elevator belongs to another customer", ErrPermissionDenied)
	}
	return nil
}

func (s *MaintenanceService) customerElevators(ctx context.Context, customerID uuid.UUID) ([]uuid.UUID, error) {
	buildings, err := s.buildings.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	buildingIDs := make([]uuid.UUID, 0, len(buildings))
	for _, b := range buildings {
		buildingIDs = append(buildingIDs, b.ID)
	}
	elevators, err := s.elevators.ListByBuildings(ctx, buildingIDs)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(elevators))
	for _, e := range elevators {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

func (s *MaintenanceService) notifyAssignment(ctx context.Context, task *model.MaintenanceTask) {
	s.send(ctx, &model.Notification{
		UserID:     *task.AssignedTo,
		Title:      "New task assigned",
		Message:    fmt.Sprintf("%s maintenance on %s", task.Type, task.ScheduledDate.Format("2006-01-02")),
		Type:       NotificationTask,
		EntityType: "maintenance_task",
		EntityID:   &task.ID,
	})
}

func (s *MaintenanceService) send(ctx context.Context, n *model.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("user_id", n.UserID.String()).Msg("failed to store notification")
	}
}
