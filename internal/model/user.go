package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a login-capable profile. Employees and admins are users; customer logins
// point at their Customer through CustomerID.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"index;not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Role         Role       `gorm:"index;not null" json:"role"`
	Position     string     `json:"position,omitempty"`
	Department   string     `json:"department,omitempty"`
	PasswordHash string     `json:"-"`
	CustomerID   *uuid.UUID `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"join_date"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

func (u User) Principal() Principal {
	return Principal{
		UserID:     u.ID,
		Role:       u.Role,
		CustomerID: u.CustomerID,
		Email:      u.Email,
	}
}
