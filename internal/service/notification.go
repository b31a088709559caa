package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/infra/mail"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
)

const relayBatchSize = 100

// Mailer 是 NotificationService 需要的发送器能力。
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NotificationService 负责 outbox 中通知的投递和补偿。
type NotificationService struct {
	store      repository.Store
	mailer     Mailer
	dispatcher NotificationDispatcher
	relayGrace time.Duration // relay 只处理创建超过该时长的 pending 通知
	now        Clock
}

// NewNotificationService 创建 NotificationService 实例。
func NewNotificationService(store repository.Store, mailer Mailer, dispatcher NotificationDispatcher, relayGrace time.Duration) *NotificationService {
	if store == nil {
		panic("Store cannot be nil for NotificationService")
	}
	if mailer == nil {
		panic("Mailer cannot be nil for NotificationService")
	}
	if relayGrace < 0 {
		relayGrace = 0
	}
	return &NotificationService{
		store:      store,
		mailer:     mailer,
		dispatcher: dispatcher,
		relayGrace: relayGrace,
		now:        utcNow,
	}
}

// PermanentError 表示重试也无法成功的投递失败 (例如收件人地址无效)。
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Deliver 发送一条通知。已发送的通知直接返回 nil，所以重复投递是安全的。
// 发送失败时记录尝试次数并返回包装了 ErrDelivery 的错误；
// final 为 true (最后一次重试) 或失败是永久性的时，通知标记为 failed。
func (s *NotificationService) Deliver(ctx context.Context, id string, final bool) error {
	logCtx := logrus.WithFields(logrus.Fields{"operation": "Deliver", "notification_id": id})

	n, err := s.store.Notifications().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return &PermanentError{Err: fmt.Errorf("%w: %s", ErrNotificationNotFound, id)}
		}
		return fmt.Errorf("load notification %s: %w", id, err)
	}
	if n.Delivered() {
		logCtx.Debug("Notification already sent, skipping")
		return nil
	}
	if n.Status == domain.NotificationStatusFailed {
		logCtx.Warn("Notification already marked failed, skipping")
		return nil
	}
	logCtx = logCtx.WithFields(logrus.Fields{"kind": n.Kind, "to": n.Recipient, "attempt": n.Attempts + 1})

	sendErr := s.mailer.Send(ctx, n.Recipient, n.Subject, n.Body)
	if sendErr != nil {
		permanent := errors.Is(sendErr, mail.ErrInvalidRecipient)
		if err := s.store.Notifications().RecordFailure(ctx, id, sendErr.Error(), final || permanent); err != nil {
			logCtx.WithError(err).Error("Failed to record notification failure")
		}
		logCtx.WithError(sendErr).Warn("Notification delivery failed")
		wrapped := fmt.Errorf("%w: %v", ErrDelivery, sendErr)
		if permanent {
			return &PermanentError{Err: wrapped}
		}
		return wrapped
	}

	if err := s.store.Notifications().MarkSent(ctx, id, s.now()); err != nil {
		// 邮件已经发出，这里返回错误会导致重发，所以只记录日志
		logCtx.WithError(err).Error("Notification sent but could not be marked as sent")
		return nil
	}
	logCtx.Info("Notification sent")
	return nil
}

// RelayPending 重新投递错过快速路径的 pending 通知，返回投递成功的数量。
func (s *NotificationService) RelayPending(ctx context.Context) (int, error) {
	logCtx := logrus.WithField("operation", "RelayPending")
	if s.dispatcher == nil {
		return 0, nil
	}

	pending, err := s.store.Notifications().FindPending(ctx, s.now().Add(-s.relayGrace), relayBatchSize)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load pending notifications")
		return 0, ErrInternalServer
	}

	relayed := 0
	for i := range pending {
		n := &pending[i]
		if err := s.dispatcher.Dispatch(ctx, n); err != nil {
			logCtx.WithField("notification_id", n.ID).WithError(err).Warn("Failed to relay notification")
			continue
		}
		relayed++
	}
	if len(pending) > 0 {
		logCtx.WithFields(logrus.Fields{"pending": len(pending), "relayed": relayed}).Info("Relayed pending notifications")
	}
	return relayed, nil
}
