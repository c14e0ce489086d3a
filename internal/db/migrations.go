package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/liftcare/internal/model"
)

// models are created and kept up to date by AutoMigrate, in dependency order.
var models = []interface{}{
	&model.Customer{},
	&model.User{},
	&model.Building{},
	&model.Elevator{},
	&model.Contract{},
	&model.MaintenanceTask{},
	&model.MaintenanceRecord{},
	&model.SparePart{},
	&model.Notification{},
	&model.ActivityLog{},
	&model.Payment{},
}

// migrationStatements add the composite and expression indexes the struct
// tags cannot express. Each one is idempotent and runs on postgres and sqlite.
var migrationStatements = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_users_email_lower ON users (LOWER(email));`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status_end ON contracts (contract_status, end_date);`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_tasks_assignee_date ON maintenance_tasks (assigned_to, scheduled_date);`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_tasks_status ON maintenance_tasks (status);`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications (user_id, is_read);`,
	`CREATE INDEX IF NOT EXISTS idx_payments_type_date ON payments (type, date);`,
}

// Migrate brings the schema up to date.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return runMigrations(db)
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
