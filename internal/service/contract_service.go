package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/liftcare/internal/aggregate"
	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/repository"
)

type ContractInput struct {
	CustomerID           *uuid.UUID       `json:"customer_id" validate:"required"`
	ContractNumber       string           `json:"contract_number" validate:"required"`
	ContractType         string           `json:"contract_type" validate:"required"`
	StartDate            string           `json:"start_date" validate:"required"`
	EndDate              string           `json:"end_date" validate:"required"`
	Status               string           `json:"contract_status" validate:"omitempty,oneof=active pending expired cancelled"`
	MaintenanceFrequency string           `json:"maintenance_frequency"`
	TotalAmount          *decimal.Decimal `json:"total_amount" validate:"required"`
	PaymentStatus        string           `json:"payment_status"`
	PaymentMethod        string           `json:"payment_method"`
	Notes                string           `json:"notes"`
}

func (in *ContractInput) normalize() {
	in.ContractNumber = strings.TrimSpace(in.ContractNumber)
	in.ContractType = strings.TrimSpace(in.ContractType)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = strings.TrimSpace(in.EndDate)
	in.Status = strings.TrimSpace(in.Status)
}

var contractUpdateSchema = updateSchema{
	"customer_id":           {kind: uuidField},
	"contract_number":       {kind: textField, required: true},
	"contract_type":         {kind: textField, required: true},
	"start_date":            {kind: dateField},
	"end_date":              {kind: dateField},
	"contract_status":       {kind: textField, allowed: contractStatusNames()},
	"maintenance_frequency": {kind: textField},
	"total_amount":          {kind: decimalField},
	"payment_status":        {kind: textField},
	"payment_method":        {kind: textField},
	"notes":                 {kind: textField},
}

func contractStatusNames() []string {
	names := make([]string, 0, len(model.ContractStatuses))
	for _, status := range model.ContractStatuses {
		names = append(names, string(status))
	}
	return names
}

type ContractService struct {
	repo           ContractStore
	activity       ActivityRecorder
	expiringWindow int
	now            func() time.Time
}

func NewContractService(repo ContractStore, activity ActivityRecorder, expiringWindowDays int) *ContractService {
	if expiringWindowDays <= 0 {
		expiringWindowDays = aggregate.ExpiringWindowDays
	}
	return &ContractService{
		repo:           repo,
		activity:       activity,
		expiringWindow: expiringWindowDays,
		now:            utcNow,
	}
}

func (s *ContractService) List(ctx context.Context, params repository.ListParams) ([]model.Contract, int64, error) {
	return s.repo.List(ctx, params)
}

// ListForCustomer lists the contracts of the customer the principal belongs to.
func (s *ContractService) ListForCustomer(ctx context.Context, principal model.Principal, params repository.ListParams) ([]model.Contract, int64, error) {
	customerID, err := customerOf(principal)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListForCustomer(ctx, customerID, params)
}

func (s *ContractService) Get(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	contract, err := s.repo.Get(ctx, id)
	return contract, translate(err, "contract")
}

func (s *ContractService) Create(ctx context.Context, actor model.Principal, input ContractInput) (*model.Contract, error) {
	input.normalize()
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	dates, err := dateFields(map[string]string{"start_date": input.StartDate, "end_date": input.EndDate})
	if err != nil {
		return nil, err
	}
	start, end := dates["start_date"], dates["end_date"]
	if !end.After(start) {
		return nil, invalidFields("end_date")
	}
	if err := s.ensureNumberFree(ctx, input.ContractNumber, uuid.Nil); err != nil {
		return nil, err
	}

	contract := &model.Contract{
		CustomerID:           *input.CustomerID,
		ContractNumber:       input.ContractNumber,
		ContractType:         input.ContractType,
		StartDate:            start,
		EndDate:              end,
		Status:               model.ContractStatus(input.Status),
		MaintenanceFrequency: input.MaintenanceFrequency,
		TotalAmount:          *input.TotalAmount,
		PaymentStatus:        input.PaymentStatus,
		PaymentMethod:        input.PaymentMethod,
		Notes:                input.Notes,
	}
	if err := s.repo.Create(ctx, contract); err != nil {
		return nil, err
	}
	record(ctx, s.activity, actor, "contract.created", contract.ContractNumber)
	return contract, nil
}

// Update merges partial into the contract. Date order and number uniqueness
// are checked again when the partial touches them.
func (s *ContractService) Update(ctx context.Context, actor model.Principal, id uuid.UUID, partial map[string]interface{}) (*model.Contract, error) {
	fields, err := contractUpdateSchema.build(partial, s.now())
	if err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "contract")
	}

	start, end := current.StartDate, current.EndDate
	if v, ok := fields["start_date"].(time.Time); ok {
		start = v
	}
	if v, ok := fields["end_date"].(time.Time); ok {
		end = v
	}
	if !end.After(start) {
		return nil, invalidFields("end_date")
	}
	if number, ok := fields["contract_number"].(string); ok && number != current.ContractNumber {
		if err := s.ensureNumberFree(ctx, number, id); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, translate(err, "contract")
	}
	record(ctx, s.activity, actor, "contract.updated", updated.ContractNumber)
	return updated, nil
}

func (s *ContractService) Delete(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err, "contract")
	}
	record(ctx, s.activity, actor, "contract.deleted", id.String())
	return nil
}

func (s *ContractService) Statuses(ctx context.Context) ([]string, error) {
	return s.repo.Statuses(ctx)
}

func (s *ContractService) Summary(ctx context.Context) (model.ContractSummary, error) {
	contracts, err := s.repo.ListAll(ctx)
	if err != nil {
		return model.ContractSummary{}, err
	}
	return aggregate.ContractSummary(contracts, s.now()), nil
}

// Expiring lists active contracts ending within the configured window, soonest first.
func (s *ContractService) Expiring(ctx context.Context, limit int) ([]model.ExpiringContract, error) {
	now := s.now()
	today := dateOnly(now)
	contracts, err := s.repo.ListExpiring(ctx, today, today.AddDate(0, 0, s.expiringWindow+1).Add(-time.Nanosecond), limit)
	if err != nil {
		return nil, err
	}
	return aggregate.ExpiringContracts(contracts, now, s.expiringWindow, limit), nil
}

func (s *ContractService) ensureNumberFree(ctx context.Context, number string, self uuid.UUID) error {
	existing, err := s.repo.FindByNumber(ctx, number)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == self:
		return nil
	}
	return fmt.Errorf("%w: contract number %s already exists", ErrConflict, number)
}

func customerOf(principal model.Principal) (uuid.UUID, error) {
	if !principal.IsCustomer() {
		return uuid.Nil, ErrPermissionDenied
	}
	if principal.CustomerID == nil {
		return uuid.Nil, fmt.Errorf("%w: account is not linked to a customer", ErrPermissionDenied)
	}
	return *principal.CustomerID, nil
}
