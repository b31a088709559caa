package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
)

// GormNotificationRepository 是 outbox 的 GORM 实现
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository 创建 GormNotificationRepository 实例
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	if db == nil {
		panic("database connection cannot be nil for GormNotificationRepository")
	}
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("gorm: create notification (%s to %s): %w", n.Kind, n.Recipient, err)
	}
	return nil
}

func (r *GormNotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("gorm: find notification by id '%s': %w", id, err)
	}
	return &n, nil
}

func (r *GormNotificationRepository) FindPending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Notification, error) {
	pending := make([]domain.Notification, 0)
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.NotificationStatusPending, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find pending notifications: %w", err)
	}
	return pending, nil
}

func (r *GormNotificationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.NotificationStatusSent,
			"sent_at":    sentAt,
			"updated_at": sentAt,
			"last_error": "",
		})
	if result.Error != nil {
		return fmt.Errorf("gorm: mark notification '%s' sent: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotificationNotFound
	}
	return nil
}

func (r *GormNotificationRepository) RecordFailure(ctx context.Context, id string, errMsg string, final bool) error {
	updates := map[string]interface{}{
		"attempts":   gorm.Expr("attempts + ?", 1),
		"last_error": errMsg,
		"updated_at": time.Now().UTC(),
	}
	if final {
		updates["status"] = domain.NotificationStatusFailed
	}
	result := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("gorm: record failure of notification '%s': %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotificationNotFound
	}
	return nil
}
