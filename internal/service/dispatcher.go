package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
)

// NotificationDispatcher 把已提交的 outbox 通知交给异步投递 (asynq)。
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, n *domain.Notification) error
}

// Clock 返回当前时间，测试中可替换。
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// dispatchAfterCommit 是事务提交后的快速路径。失败只记录日志:
// 通知已经在 outbox 中，relay 任务会再次投递。
func dispatchAfterCommit(ctx context.Context, d NotificationDispatcher, n *domain.Notification) {
	if d == nil {
		return
	}
	if err := d.Dispatch(ctx, n); err != nil {
		logrus.WithFields(logrus.Fields{
			"notification_id": n.ID,
			"kind":            n.Kind,
		}).WithError(err).Warn("Failed to enqueue notification, relay will pick it up")
	}
}
