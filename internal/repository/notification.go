package repository

import (
	"context"
	"time"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
)

// NotificationRepository 是邮件 outbox 的存储接口。
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	FindByID(ctx context.Context, id string) (*domain.Notification, error)

	// FindPending 返回 createdBefore 之前创建且仍为 pending 的通知，按创建时间升序。
	FindPending(ctx context.Context, createdBefore time.Time, limit int) ([]domain.Notification, error)

	MarkSent(ctx context.Context, id string, sentAt time.Time) error

	// RecordFailure 增加尝试次数并记录错误；final 为 true 时状态变为 failed。
	RecordFailure(ctx context.Context, id string, errMsg string, final bool) error
}
