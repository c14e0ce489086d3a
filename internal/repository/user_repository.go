package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/liftcare/internal/model"
)

var userListSpec = listSpec{
	searchColumns: []string{"name", "email", "phone"},
	filterColumn:  "role",
	orderColumns: map[string]bool{
		"name":       true,
		"email":      true,
		"created_at": true,
	},
	defaultOrder: "name",
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// List returns active users only.
func (r *UserRepository) List(ctx context.Context, params ListParams) ([]model.User, int64, error) {
	return list[model.User](ctx, r.db, "list users", userListSpec, params, activeOnly)
}

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return getByID[model.User](ctx, r.db, "get user", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).Take(&user).Error; err != nil {
		return nil, wrapErr("find user by email", err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return create(ctx, r.db, "create user", user)
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.User, error) {
	return updateFields[model.User](ctx, r.db, "update user", id, fields)
}

func (r *UserRepository) Deactivate(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := updateFields[model.User](ctx, r.db, "deactivate user", id, map[string]interface{}{
		"is_active":  false,
		"updated_at": at,
	})
	return err
}

func (r *UserRepository) CountActive(ctx context.Context, role model.Role) (int64, error) {
	if role == "" {
		return countWhere[model.User](ctx, r.db, "count users", "is_active = ?", true)
	}
	return countWhere[model.User](ctx, r.db, "count users", "is_active = ? AND role = ?", true, role)
}

func (r *UserRepository) ListActiveByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND role = ?", true, role).
		Order("name ASC").
		Find(&users).Error
	if err != nil {
		return nil, wrapErr("list users by role", err)
	}
	return users, nil
}

func (r *UserRepository) Roles(ctx context.Context) ([]string, error) {
	var roles []string
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Distinct("role").
		Order("role").
		Pluck("role", &roles).Error
	if err != nil {
		return nil, wrapErr("list user roles", err)
	}
	return roles, nil
}

func activeOnly(q *gorm.DB) *gorm.DB {
	return q.Where("is_active = ?", true)
}
