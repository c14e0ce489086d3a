package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	Title      string     `gorm:"not null" json:"title"`
	Message    string     `json:"message"`
	Type       string     `json:"type"`
	EntityType string     `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID `gorm:"type:uuid" json:"entity_id,omitempty"`
	IsRead     bool       `gorm:"not null;default:false" json:"is_read"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	ensureID(&n.ID)
	return nil
}

type ActivityLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Action    string    `gorm:"not null" json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
}

func (a *ActivityLog) BeforeCreate(_ *gorm.DB) error {
	ensureID(&a.ID)
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return nil
}
