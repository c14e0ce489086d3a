package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/repository"
)

const bcryptCost = 12

type UserInput struct {
	Name       string     `json:"name" validate:"required"`
	Email      string     `json:"email" validate:"required,email"`
	Phone      string     `json:"phone"`
	Role       string     `json:"role" validate:"required,oneof=customer employee admin"`
	Position   string     `json:"position"`
	Department string     `json:"department"`
	Password   string     `json:"password" validate:"omitempty,min=8"`
	CustomerID *uuid.UUID `json:"customer_id"`
}

var userUpdateSchema = updateSchema{
	"name":        {kind: textField, required: true},
	"email":       {kind: textField, required: true},
	"phone":       {kind: textField},
	"role":        {kind: textField, allowed: []string{string(model.RoleCustomer), string(model.RoleEmployee), string(model.RoleAdmin)}},
	"position":    {kind: textField},
	"department":  {kind: textField},
	"customer_id": {kind: uuidField, nullable: true},
}

type UserService struct {
	repo     UserStore
	activity ActivityRecorder
	now      func() time.Time
}

func NewUserService(repo UserStore, activity ActivityRecorder) *UserService {
	return &UserService{repo: repo, activity: activity, now: utcNow}
}

// List returns active users only.
func (s *UserService) List(ctx context.Context, params repository.ListParams) ([]model.User, int64, error) {
	return s.repo.List(ctx, params)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	return user, translate(err, "user")
}

func (s *UserService) Create(ctx context.Context, actor model.Principal, input UserInput) (*model.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	role, _ := model.ParseRole(input.Role)
	if role == model.RoleCustomer && input.CustomerID == nil {
		return nil, invalidFields("customer_id")
	}

	_, err := s.repo.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: email %s already registered", ErrConflict, input.Email)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	user := &model.User{
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Role:       role,
		Position:   input.Position,
		Department: input.Department,
		CustomerID: input.CustomerID,
		IsActive:   true,
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	record(ctx, s.activity, actor, "user.created", user.Email)
	return user, nil
}

func (s *UserService) Update(ctx context.Context, actor model.Principal, id uuid.UUID, partial map[string]interface{}) (*model.User, error) {
	fields, err := userUpdateSchema.build(partial, s.now())
	if err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "user")
	}
	if err := checkUserFields(current, fields); err != nil {
		return nil, err
	}
	if email, ok := fields["email"].(string); ok {
		existing, err := s.repo.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != id:
			return nil, fmt.Errorf("%w: email %s already registered", ErrConflict, email)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}
	user, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, translate(err, "user")
	}
	record(ctx, s.activity, actor, "user.updated", user.Email)
	return user, nil
}

// checkUserFields applies the create rules to the user as it would look
// after the update: a valid email, and a customer link for customer logins.
func checkUserFields(current *model.User, fields map[string]interface{}) error {
	var bad []string
	if email, ok := fields["email"].(string); ok {
		email = strings.ToLower(email)
		fields["email"] = email
		if validate.Var(email, "email") != nil {
			bad = append(bad, "email")
		}
	}

	role := current.Role
	if raw, ok := fields["role"].(string); ok {
		role = model.Role(raw)
	}
	hasCustomer := current.CustomerID != nil
	if raw, ok := fields["customer_id"]; ok {
		hasCustomer = raw != nil
	}
	if role == model.RoleCustomer && !hasCustomer {
		bad = append(bad, "customer_id")
	}

	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

// Deactivate hides the user from lists and blocks sign-in. Users are never deleted.
func (s *UserService) Deactivate(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	if actor.UserID == id {
		return fmt.Errorf("%w: cannot deactivate own account", ErrPermissionDenied)
	}
	if err := s.repo.Deactivate(ctx, id, s.now()); err != nil {
		return translate(err, "user")
	}
	record(ctx, s.activity, actor, "user.deactivated", id.String())
	return nil
}

func (s *UserService) Roles(ctx context.Context) ([]string, error) {
	return s.repo.Roles(ctx)
}

func (s *UserService) Summary(ctx context.Context) (model.UserSummary, error) {
	total, err := s.repo.CountActive(ctx, "")
	if err != nil {
		return model.UserSummary{}, err
	}
	employees, err := s.repo.CountActive(ctx, model.RoleEmployee)
	if err != nil {
		return model.UserSummary{}, err
	}
	customers, err := s.repo.CountActive(ctx, model.RoleCustomer)
	if err != nil {
		return model.UserSummary{}, err
	}
	return model.UserSummary{
		TotalUsers:      total,
		ActiveEmployees: employees,
		ActiveCustomers: customers,
	}, nil
}

func (s *UserService) Technicians(ctx context.Context) ([]model.User, error) {
	return s.repo.ListActiveByRole(ctx, model.RoleEmployee)
}
