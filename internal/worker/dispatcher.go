package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/domain"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/tasks"
)

const (
	// QueueDefault 是通知任务所在的队列
	QueueDefault    = "default"
	sendTaskTimeout = 30 * time.Second
)

// enqueuer 是 *asynq.Client 中 Dispatcher 用到的部分
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// taskInspector 是 *asynq.Inspector 中 Dispatcher 用到的部分
type taskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
}

// AsynqDispatcher 把通知作为 asynq 任务入队。
// 任务 ID 就是通知 ID，所以快速路径和 relay 重复入队不会产生两个任务。
// 任务 ID 冲突时如果旧任务已经归档 (重试耗尽但通知仍是 pending)，删除后重新入队。
type AsynqDispatcher struct {
	client    enqueuer
	inspector taskInspector
	maxRetry  int
}

// NewAsynqDispatcher 创建 AsynqDispatcher。inspector 可以为 nil，此时冲突一律视为已入队。
func NewAsynqDispatcher(client *asynq.Client, inspector *asynq.Inspector, maxRetry int) *AsynqDispatcher {
	if client == nil {
		panic("asynq client cannot be nil for AsynqDispatcher")
	}
	if inspector == nil {
		return newAsynqDispatcher(client, nil, maxRetry)
	}
	return newAsynqDispatcher(client, inspector, maxRetry)
}

func newAsynqDispatcher(client enqueuer, inspector taskInspector, maxRetry int) *AsynqDispatcher {
	if maxRetry < 0 {
		maxRetry = 0
	}
	return &AsynqDispatcher{client: client, inspector: inspector, maxRetry: maxRetry}
}

// Dispatch 实现 service.NotificationDispatcher
func (d *AsynqDispatcher) Dispatch(ctx context.Context, n *domain.Notification) error {
	payload, err := tasks.NewNotificationSendTask(n.ID)
	if err != nil {
		return fmt.Errorf("build notification task: %w", err)
	}
	task := asynq.NewTask(tasks.TypeNotificationSend, payload)

	err = d.enqueue(ctx, task, n.ID)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return d.requeueArchived(ctx, task, n.ID)
	}
	return err
}

func (d *AsynqDispatcher) enqueue(ctx context.Context, task *asynq.Task, id string) error {
	info, err := d.client.EnqueueContext(ctx, task,
		asynq.TaskID(id),
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(d.maxRetry),
		asynq.Timeout(sendTaskTimeout),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return err
		}
		return fmt.Errorf("enqueue notification %s: %w", id, err)
	}
	logrus.WithFields(logrus.Fields{
		"notification_id": id,
		"task_id":         info.ID,
		"queue":           info.Queue,
	}).Debug("Notification task enqueued")
	return nil
}

// requeueArchived 处理任务 ID 冲突。等待、执行或重试中的任务保持不动。
func (d *AsynqDispatcher) requeueArchived(ctx context.Context, task *asynq.Task, id string) error {
	logCtx := logrus.WithField("notification_id", id)
	if d.inspector == nil {
		logCtx.Debug("Notification task already enqueued")
		return nil
	}

	info, err := d.inspector.GetTaskInfo(QueueDefault, id)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskNotFound) {
			// 冲突之后任务刚好结束，下一轮 relay 会再看
			return nil
		}
		return fmt.Errorf("inspect notification task %s: %w", id, err)
	}
	if info.State != asynq.TaskStateArchived {
		logCtx.WithField("state", info.State.String()).Debug("Notification task already enqueued")
		return nil
	}

	if err := d.inspector.DeleteTask(QueueDefault, id); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
		return fmt.Errorf("delete archived notification task %s: %w", id, err)
	}
	if err := d.enqueue(ctx, task, id); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return err
	}
	logCtx.WithField("last_error", info.LastErr).Warn("Archived notification task re-enqueued")
	return nil
}
