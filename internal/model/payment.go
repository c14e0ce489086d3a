package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const PaymentTypeForecast = "forecast"

type Payment struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID *uuid.UUID      `gorm:"type:uuid;index" json:"contract_id,omitempty"`
	Amount     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Date       time.Time       `gorm:"index;not null" json:"date"`
	Type       string          `gorm:"not null;default:'payment'" json:"type"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (p *Payment) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.ID)
	if p.Type == "" {
		p.Type = "payment"
	}
	return nil
}
