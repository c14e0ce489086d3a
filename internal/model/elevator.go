package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ElevatorStatus string

const (
	ElevatorOperational  ElevatorStatus = "operational"
	ElevatorMaintenance  ElevatorStatus = "maintenance"
	ElevatorOutOfService ElevatorStatus = "out_of_service"
)

func (s ElevatorStatus) Valid() bool {
	switch s {
	case ElevatorOperational, ElevatorMaintenance, ElevatorOutOfService:
		return true
	}
	return false
}

type Elevator struct {
	ID                      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	BuildingID              uuid.UUID      `gorm:"type:uuid;index;not null" json:"building_id"`
	SerialNumber            string         `gorm:"not null" json:"serial_number"`
	Model                   string         `json:"model,omitempty"`
	Manufacturer            string         `json:"manufacturer,omitempty"`
	Capacity                int            `json:"capacity"`
	FloorsServed            int            `json:"floors_served"`
	InstallationDate        *time.Time     `json:"installation_date,omitempty"`
	LastCertificationDate   *time.Time     `json:"last_certification_date,omitempty"`
	CertificationExpiryDate *time.Time     `json:"certification_expiry_date,omitempty"`
	Status                  ElevatorStatus `gorm:"index;not null;default:'operational'" json:"status"`
	Notes                   string         `json:"notes,omitempty"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
}

func (e *Elevator) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.ID)
	if e.Status == "" {
		e.Status = ElevatorOperational
	}
	return nil
}
