package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SparePart is an inventory item. It is low on stock when QuantityInStock < MinimumStock.
type SparePart struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string          `gorm:"index;not null" json:"name"`
	PartNumber      string          `json:"part_number,omitempty"`
	Category        string          `gorm:"index;not null" json:"category"`
	Manufacturer    string          `json:"manufacturer,omitempty"`
	Description     string          `json:"description,omitempty"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"unit_price"`
	QuantityInStock int             `gorm:"not null;default:0" json:"quantity_in_stock"`
	MinimumStock    int             `gorm:"not null;default:0" json:"minimum_stock"`
	Location        string          `json:"location,omitempty"`
	LastRestocked   *time.Time      `json:"last_restocked,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p *SparePart) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

func (p SparePart) IsLowStock() bool {
	return p.QuantityInStock < p.MinimumStock
}
