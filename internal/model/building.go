package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Building struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID   uuid.UUID `gorm:"type:uuid;index;not null" json:"customer_id"`
	Name         string    `gorm:"not null" json:"name"`
	Address      string    `gorm:"not null" json:"address"`
	City         string    `json:"city,omitempty"`
	PostalCode   string    `json:"postal_code,omitempty"`
	FloorsCount  int       `json:"floors_count"`
	BuildingType string    `json:"building_type,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (b *Building) BeforeCreate(_ *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
