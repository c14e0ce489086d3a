package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ContractStatus string

const (
	ContractActive    ContractStatus = "active"
	ContractPending   ContractStatus = "pending"
	ContractExpired   ContractStatus = "expired"
	ContractCancelled ContractStatus = "cancelled"
)

var ContractStatuses = []ContractStatus{ContractActive, ContractPending, ContractExpired, ContractCancelled}

func (s ContractStatus) Valid() bool {
	for _, status := range ContractStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Contract struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID           uuid.UUID       `gorm:"type:uuid;index;not null" json:"customer_id"`
	ContractNumber       string          `gorm:"uniqueIndex;not null" json:"contract_number"`
	ContractType         string          `gorm:"not null" json:"contract_type"`
	StartDate            time.Time       `gorm:"not null" json:"start_date"`
	EndDate              time.Time       `gorm:"index;not null" json:"end_date"`
	Status               ContractStatus  `gorm:"column:contract_status;index;not null;default:'pending'" json:"contract_status"`
	MaintenanceFrequency string          `json:"maintenance_frequency,omitempty"`
	TotalAmount          decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	PaymentStatus        string          `json:"payment_status"`
	PaymentMethod        string          `json:"payment_method,omitempty"`
	Notes                string          `json:"notes,omitempty"`
	CreatedAt            time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

func (c *Contract) BeforeCreate(_ *gorm.DB) error {
	ensureID(&c.ID)
	if c.Status == "" {
		c.Status = ContractPending
	}
	return nil
}
