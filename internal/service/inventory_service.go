package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/liftcare/internal/aggregate"
	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/repository"
)

type SparePartInput struct {
	Name            string           `json:"name" validate:"required"`
	PartNumber      string           `json:"part_number"`
	Category        string           `json:"category" validate:"required"`
	Manufacturer    string           `json:"manufacturer"`
	Description     string           `json:"description"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	QuantityInStock int              `json:"quantity_in_stock" validate:"gte=0"`
	MinimumStock    *int             `json:"minimum_stock" validate:"required,gte=0"`
	Location        string           `json:"location"`
}

var sparePartUpdateSchema = updateSchema{
	"name":              {kind: textField, required: true},
	"part_number":       {kind: textField},
	"category":          {kind: textField, required: true},
	"manufacturer":      {kind: textField},
	"description":       {kind: textField},
	"unit_price":        {kind: decimalField},
	"quantity_in_stock": {kind: intField},
	"minimum_stock":     {kind: intField},
	"location":          {kind: textField},
}

type InventoryService struct {
	repo     SparePartStore
	activity ActivityRecorder
	now      func() time.Time
}

func NewInventoryService(repo SparePartStore, activity ActivityRecorder) *InventoryService {
	return &InventoryService{repo: repo, activity: activity, now: utcNow}
}

func (s *InventoryService) List(ctx context.Context, params repository.ListParams) ([]model.SparePart, int64, error) {
	return s.repo.List(ctx, params)
}

func (s *InventoryService) Get(ctx context.Context, id uuid.UUID) (*model.SparePart, error) {
	part, err := s.repo.Get(ctx, id)
	return part, translate(err, "spare part")
}

func (s *InventoryService) Create(ctx context.Context, actor model.Principal, input SparePartInput) (*model.SparePart, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	part := &model.SparePart{
		Name:            input.Name,
		PartNumber:      strings.TrimSpace(input.PartNumber),
		Category:        input.Category,
		Manufacturer:    input.Manufacturer,
		Description:     input.Description,
		UnitPrice:       decimal.Zero,
		QuantityInStock: input.QuantityInStock,
		MinimumStock:    *input.MinimumStock,
		Location:        input.Location,
	}
	if input.UnitPrice != nil {
		part.UnitPrice = *input.UnitPrice
	}
	if err := s.repo.Create(ctx, part); err != nil {
		return nil, err
	}
	record(ctx, s.activity, actor, "inventory.created", part.Name)
	return part, nil
}

func (s *InventoryService) Update(ctx context.Context, actor model.Principal, id uuid.UUID, partial map[string]interface{}) (*model.SparePart, error) {
	fields, err := sparePartUpdateSchema.build(partial, s.now())
	if err != nil {
		return nil, err
	}
	part, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, translate(err, "spare part")
	}
	record(ctx, s.activity, actor, "inventory.updated", part.Name)
	return part, nil
}

func (s *InventoryService) Delete(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err, "spare part")
	}
	record(ctx, s.activity, actor, "inventory.deleted", id.String())
	return nil
}

// Restock adds quantity units to a part and stamps the restock time.
func (s *InventoryService) Restock(ctx context.Context, actor model.Principal, id uuid.UUID, quantity int) (*model.SparePart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	part, err := s.repo.Restock(ctx, id, quantity, s.now())
	if err != nil {
		return nil, translate(err, "spare part")
	}
	record(ctx, s.activity, actor, "inventory.restocked", fmt.Sprintf("%s +%d", part.Name, quantity))
	return part, nil
}

func (s *InventoryService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *InventoryService) Summary(ctx context.Context) (model.InventorySummary, error) {
	parts, err := s.repo.ListByStock(ctx)
	if err != nil {
		return model.InventorySummary{}, err
	}
	return aggregate.InventorySummary(parts), nil
}

// LowStock returns the parts below minimum, lowest stock first. limit <= 0 returns all.
func (s *InventoryService) LowStock(ctx context.Context, limit int) ([]model.LowStockItem, error) {
	parts, err := s.repo.ListByStock(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.LowStock(parts, limit), nil
}
