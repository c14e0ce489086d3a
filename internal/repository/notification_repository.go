package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/liftcare/internal/model"
)

var notificationListSpec = listSpec{
	searchColumns: []string{"title", "message"},
	filterColumn:  "type",
	orderColumns:  map[string]bool{"created_at": true},
	defaultOrder:  "created_at",
	defaultDesc:   true,
}

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return create(ctx, r.db, "create notification", notification)
}

func (r *NotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, params ListParams) ([]model.Notification, int64, error) {
	return list[model.Notification](ctx, r.db, "list notifications", notificationListSpec, params, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", userID)
	})
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return countWhere[model.Notification](ctx, r.db, "count unread notifications", "user_id = ? AND is_read = ?", userID, false)
}

// MarkRead flags a notification as read. Notifications of other users are reported as missing.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return wrapErr("mark notification read", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var activityListSpec = listSpec{
	searchColumns: []string{"action", "details"},
	orderColumns:  map[string]bool{"timestamp": true},
	defaultOrder:  "timestamp",
	defaultDesc:   true,
}

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Append(ctx context.Context, entry *model.ActivityLog) error {
	return create(ctx, r.db, "append activity", entry)
}

func (r *ActivityRepository) List(ctx context.Context, params ListParams) ([]model.ActivityLog, int64, error) {
	return list[model.ActivityLog](ctx, r.db, "list activity", activityListSpec, params, nil)
}

func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	rows, _, err := r.List(ctx, ListParams{Page: 1, Limit: limit})
	return rows, err
}
