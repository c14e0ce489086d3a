package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaintenanceType string

const (
	MaintenanceScheduled MaintenanceType = "scheduled"
	MaintenanceImmediate MaintenanceType = "immediate"
)

func (t MaintenanceType) Valid() bool {
	return t == MaintenanceScheduled || t == MaintenanceImmediate
}

type MaintenanceStatus string

const (
	TaskPending    MaintenanceStatus = "pending"
	TaskAssigned   MaintenanceStatus = "assigned"
	TaskInProgress MaintenanceStatus = "in_progress"
	TaskCompleted  MaintenanceStatus = "completed"
)

type MaintenanceTask struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ElevatorID    uuid.UUID         `gorm:"type:uuid;index;not null" json:"elevator_id"`
	AssignedTo    *uuid.UUID        `gorm:"type:uuid;index" json:"assigned_to,omitempty"`
	RequestedBy   *uuid.UUID        `gorm:"type:uuid" json:"requested_by,omitempty"`
	ScheduledDate time.Time         `gorm:"index;not null" json:"scheduled_date"`
	Type          MaintenanceType   `gorm:"not null" json:"type"`
	Status        MaintenanceStatus `gorm:"index;not null;default:'pending'" json:"status"`
	Priority      string            `json:"priority,omitempty"`
	Description   string            `json:"description,omitempty"`
	StartedAt     *time.Time        `json:"started_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (t *MaintenanceTask) BeforeCreate(_ *gorm.DB) error {
	ensureID(&t.ID)
	if t.Status == "" {
		t.Status = TaskPending
	}
	return nil
}

// MaintenanceRecord is the completed outcome of a task.
type MaintenanceRecord struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID              uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"task_id"`
	ElevatorID          uuid.UUID      `gorm:"type:uuid;index;not null" json:"elevator_id"`
	PerformedBy         uuid.UUID      `gorm:"type:uuid;not null" json:"performed_by"`
	MaintenanceDate     time.Time      `gorm:"index;not null" json:"maintenance_date"`
	CompletionTime      *time.Time     `json:"completion_time,omitempty"`
	Findings            string         `json:"findings,omitempty"`
	ActionsTaken        string         `json:"actions_taken,omitempty"`
	ElevatorStatusAfter ElevatorStatus `gorm:"not null" json:"elevator_status_after"`
	NextMaintenanceDate *time.Time     `json:"next_maintenance_date,omitempty"`
	Rating              *int           `json:"rating,omitempty"`
	Feedback            string         `json:"feedback,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

func (r *MaintenanceRecord) BeforeCreate(_ *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
