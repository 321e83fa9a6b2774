package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"community-hub-backend/internal/model"
)

// Store defines the interface for all database operations used by the
// notification core.
type Store interface {
	DB() *gorm.DB

	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	DeleteNotification(ctx context.Context, id int64) error

	UserExists(ctx context.Context, userID int64) (bool, error)

	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	ListActiveSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	DeactivateSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for handlers that need ad-hoc reads.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// CreateNotification persists one broadcast record. A broadcast writes
// exactly one row regardless of how many endpoints it reaches.
func (s *gormStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListNotifications returns all notification records, newest first.
func (s *gormStore) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// DeleteNotification removes one record by id.
func (s *gormStore) DeleteNotification(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Notification{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete notification %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UserExists reports whether a user id references a known resident.
func (s *gormStore) UserExists(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user %d: %w", userID, err)
	}
	return count > 0, nil
}

// UpsertSubscription creates or reactivates a subscription. The endpoint is
// the conflict key: re-subscribing from the same device updates the keys and
// owner and flips the row back to active.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	sub.Active = true
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "active"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// ListActiveSubscriptions returns every endpoint still eligible for fan-out.
func (s *gormStore) ListActiveSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active subscriptions: %w", err)
	}
	return subs, nil
}

// DeactivateSubscription flags a dead endpoint. The row is kept for audit;
// it is never resurrected automatically.
func (s *gormStore) DeactivateSubscription(ctx context.Context, endpoint string) error {
	err := s.db.WithContext(ctx).
		Model(&model.PushSubscription{}).
		Where("endpoint = ?", endpoint).
		Update("active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate subscription %s: %w", endpoint, err)
	}
	return nil
}
