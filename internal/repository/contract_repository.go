package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/liftcare/internal/model"
)

var contractListSpec = listSpec{
	searchColumns: []string{"contract_number", "contract_type", "notes"},
	filterColumn:  "contract_status",
	orderColumns: map[string]bool{
		"created_at":      true,
		"start_date":      true,
		"end_date":        true,
		"contract_number": true,
		"total_amount":    true,
	},
	defaultOrder: "created_at",
	defaultDesc:  true,
}

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) List(ctx context.Context, params ListParams) ([]model.Contract, int64, error) {
	return list[model.Contract](ctx, r.db, "list contracts", contractListSpec, params, nil)
}

func (r *ContractRepository) ListForCustomer(ctx context.Context, customerID uuid.UUID, params ListParams) ([]model.Contract, int64, error) {
	return list[model.Contract](ctx, r.db, "list customer contracts", contractListSpec, params, func(q *gorm.DB) *gorm.DB {
		return q.Where("customer_id = ?", customerID)
	})
}

func (r *ContractRepository) Get(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	return getByID[model.Contract](ctx, r.db, "get contract", id)
}

func (r *ContractRepository) FindByNumber(ctx context.Context, number string) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).Where("contract_number = ?", number).Take(&contract).Error
	if err != nil {
		return nil, wrapErr("find contract by number", err)
	}
	return &contract, nil
}

func (r *ContractRepository) Create(ctx context.Context, contract *model.Contract) error {
	return create(ctx, r.db, "create contract", contract)
}

func (r *ContractRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Contract, error) {
	return updateFields[model.Contract](ctx, r.db, "update contract", id, fields)
}

func (r *ContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID[model.Contract](ctx, r.db, "delete contract", id)
}

// ListAll returns the full contract set, unaffected by any list filter.
func (r *ContractRepository) ListAll(ctx context.Context) ([]model.Contract, error) {
	var contracts []model.Contract
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&contracts).Error; err != nil {
		return nil, wrapErr("list all contracts", err)
	}
	return contracts, nil
}

func (r *ContractRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("end_date DESC").
		Find(&contracts).Error
	if err != nil {
		return nil, wrapErr("list contracts by customer", err)
	}
	return contracts, nil
}

// ListExpiring returns active contracts ending within [from, to], soonest first.
func (r *ContractRepository) ListExpiring(ctx context.Context, from, to time.Time, limit int) ([]model.Contract, error) {
	q := r.db.WithContext(ctx).
		Preload("Customer").
		Where("contract_status = ?", model.ContractActive).
		Where("end_date >= ? AND end_date <= ?", from, to).
		Order("end_date ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var contracts []model.Contract
	if err := q.Find(&contracts).Error; err != nil {
		return nil, wrapErr("list expiring contracts", err)
	}
	return contracts, nil
}

func (r *ContractRepository) CountByStatus(ctx context.Context, status model.ContractStatus) (int64, error) {
	return countWhere[model.Contract](ctx, r.db, "count contracts", "contract_status = ?", status)
}

func (r *ContractRepository) Statuses(ctx context.Context) ([]string, error) {
	var statuses []string
	err := r.db.WithContext(ctx).
		Model(&model.Contract{}).
		Distinct("contract_status").
		Order("contract_status").
		Pluck("contract_status", &statuses).Error
	if err != nil {
		return nil, wrapErr("list contract statuses", err)
	}
	return statuses, nil
}
