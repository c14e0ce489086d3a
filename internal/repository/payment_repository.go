package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/liftcare/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return create(ctx, r.db, "create payment", payment)
}

// Between returns payments and forecasts dated in [from, to).
func (r *PaymentRepository) Between(ctx context.Context, from, to time.Time) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", from, to).
		Order("date ASC").
		Find(&payments).Error
	if err != nil {
		return nil, wrapErr("list payments between", err)
	}
	return payments, nil
}
