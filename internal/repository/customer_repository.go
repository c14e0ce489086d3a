package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/liftcare/internal/model"
)

var customerListSpec = listSpec{
	searchColumns: []string{"name", "contact_person", "email", "phone", "address"},
	orderColumns: map[string]bool{
		"name":       true,
		"created_at": true,
	},
	defaultOrder: "name",
}

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// List returns active customers only.
func (r *CustomerRepository) List(ctx context.Context, params ListParams) ([]model.Customer, int64, error) {
	return list[model.Customer](ctx, r.db, "list customers", customerListSpec, params, activeOnly)
}

func (r *CustomerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return getByID[model.Customer](ctx, r.db, "get customer", id)
}

func (r *CustomerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return create(ctx, r.db, "create customer", customer)
}

func (r *CustomerRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Customer, error) {
	return updateFields[model.Customer](ctx, r.db, "update customer", id, fields)
}

func (r *CustomerRepository) Deactivate(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := updateFields[model.Customer](ctx, r.db, "deactivate customer", id, map[string]interface{}{
		"is_active":  false,
		"updated_at": at,
	})
	return err
}

func (r *CustomerRepository) CountActive(ctx context.Context) (int64, error) {
	return countWhere[model.Customer](ctx, r.db, "count customers", "is_active = ?", true)
}

func (r *CustomerRepository) ListAll(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&customers).Error; err != nil {
		return nil, wrapErr("list all customers", err)
	}
	return customers, nil
}
