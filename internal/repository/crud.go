package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func getByID[T any](ctx context.Context, db *gorm.DB, op string, id uuid.UUID) (*T, error) {
	var row T
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, wrapErr(op, err)
	}
	return &row, nil
}

func exists[T any](ctx context.Context, db *gorm.DB, op string, id uuid.UUID) error {
	var count int64
	if err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return wrapErr(op, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func create[T any](ctx context.Context, db *gorm.DB, op string, row *T) error {
	return wrapErr(op, db.WithContext(ctx).Create(row).Error)
}

// updateFields merges fields into the row and returns the stored result.
func updateFields[T any](ctx context.Context, db *gorm.DB, op string, id uuid.UUID, fields map[string]interface{}) (*T, error) {
	if err := exists[T](ctx, db, op, id); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields).Error; err != nil {
			return nil, wrapErr(op, err)
		}
	}
	return getByID[T](ctx, db, op, id)
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, op string, id uuid.UUID) error {
	if err := exists[T](ctx, db, op, id); err != nil {
		return err
	}
	return wrapErr(op, db.WithContext(ctx).Where("id = ?", id).Delete(new(T)).Error)
}

func countWhere[T any](ctx context.Context, db *gorm.DB, op string, query string, args ...interface{}) (int64, error) {
	var count int64
	q := db.WithContext(ctx).Model(new(T))
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, wrapErr(op, err)
	}
	return count, nil
}
