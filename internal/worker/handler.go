package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/service"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/tasks"
)

// NotificationDeliverer 是发送处理器需要的 service 能力
type NotificationDeliverer interface {
	Deliver(ctx context.Context, id string, final bool) error
}

// NotificationSendHandler 处理通知发送任务
type NotificationSendHandler struct {
	deliverer NotificationDeliverer
}

// NewNotificationSendHandler 创建 Handler 实例
func NewNotificationSendHandler(deliverer NotificationDeliverer) *NotificationSendHandler {
	if deliverer == nil {
		panic("NotificationDeliverer cannot be nil for NotificationSendHandler")
	}
	return &NotificationSendHandler{deliverer: deliverer}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *NotificationSendHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	taskID, _ := asynq.GetTaskID(ctx)
	currentRetry, _ := asynq.GetRetryCount(ctx)
	maxRetry, hasMax := asynq.GetMaxRetry(ctx)

	logCtx := logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
		"retry":     currentRetry,
		"max_retry": maxRetry,
	})

	payload, err := tasks.ParseNotificationSendPayload(t.Payload())
	if err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	logCtx = logCtx.WithField("notification_id", payload.NotificationID)

	// 最后一次尝试失败时通知会被标记为 failed
	final := hasMax && currentRetry >= maxRetry
	if err := h.deliverer.Deliver(ctx, payload.NotificationID, final); err != nil {
		var perm *service.PermanentError
		if errors.As(err, &perm) {
			logCtx.WithError(err).Error("Notification cannot be delivered, not retrying")
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	logCtx.Debug("Notification send task processed")
	return nil
}

// NotificationRelayer 是 relay 处理器需要的 service 能力
type NotificationRelayer interface {
	RelayPending(ctx context.Context) (int, error)
}

// NotificationRelayHandler 处理周期性的 relay 任务
type NotificationRelayHandler struct {
	relayer NotificationRelayer
}

// NewNotificationRelayHandler 创建 Handler 实例
func NewNotificationRelayHandler(relayer NotificationRelayer) *NotificationRelayHandler {
	if relayer == nil {
		panic("NotificationRelayer cannot be nil for NotificationRelayHandler")
	}
	return &NotificationRelayHandler{relayer: relayer}
}

// ProcessTask 实现 asynq.Handler 接口。
// 周期任务失败不重试，下一个周期会再次执行。
func (h *NotificationRelayHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	relayed, err := h.relayer.RelayPending(ctx)
	if err != nil {
		return fmt.Errorf("relay pending notifications: %v: %w", err, asynq.SkipRetry)
	}
	if relayed > 0 {
		logrus.WithFields(logrus.Fields{"task_type": t.Type(), "relayed": relayed}).Info("Notification relay task processed")
	}
	return nil
}
