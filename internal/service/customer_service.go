package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/repository"
)

type CustomerInput struct {
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

var customerUpdateSchema = updateSchema{
	"name":           {kind: textField, required: true},
	"contact_person": {kind: textField},
	"email":          {kind: textField, required: true},
	"phone":          {kind: textField},
	"address":        {kind: textField},
}

type CustomerService struct {
	repo     CustomerStore
	activity ActivityRecorder
	now      func() time.Time
}

func NewCustomerService(repo CustomerStore, activity ActivityRecorder) *CustomerService {
	return &CustomerService{repo: repo, activity: activity, now: utcNow}
}

// List returns active customers only.
func (s *CustomerService) List(ctx context.Context, params repository.ListParams) ([]model.Customer, int64, error) {
	return s.repo.List(ctx, params)
}

func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, err := s.repo.Get(ctx, id)
	return customer, translate(err, "customer")
}

func (s *CustomerService) Create(ctx context.Context, actor model.Principal, input CustomerInput) (*model.Customer, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	customer := &model.Customer{
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Email:         input.Email,
		Phone:         input.Phone,
		Address:       input.Address,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	record(ctx, s.activity, actor, "customer.created", customer.Name)
	return customer, nil
}

func (s *CustomerService) Update(ctx context.Context, actor model.Principal, id uuid.UUID, partial map[string]interface{}) (*model.Customer, error) {
	fields, err := customerUpdateSchema.build(partial, s.now())
	if err != nil {
		return nil, err
	}
	customer, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, translate(err, "customer")
	}
	record(ctx, s.activity, actor, "customer.updated", customer.Name)
	return customer, nil
}

// Deactivate soft-deletes the customer; its contracts and history are kept.
func (s *CustomerService) Deactivate(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id, s.now()); err != nil {
		return translate(err, "customer")
	}
	record(ctx, s.activity, actor, "customer.deactivated", id.String())
	return nil
}
