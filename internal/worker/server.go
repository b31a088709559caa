package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/tasks"
)

// NotificationProcessor 同时具备投递和补投能力 (*service.NotificationService)
type NotificationProcessor interface {
	NotificationDeliverer
	NotificationRelayer
}

// WorkerServer 封装了 Asynq Worker Server 的启动和关闭逻辑
type WorkerServer struct {
	server        *asynq.Server
	log           *logrus.Entry
	notifications NotificationProcessor
}

// NewWorkerServer 创建一个新的 WorkerServer 实例
func NewWorkerServer(redisOpt asynq.RedisConnOpt, notifications NotificationProcessor, logger *logrus.Logger) *WorkerServer {
	if notifications == nil {
		panic("NotificationProcessor cannot be nil for WorkerServer")
	}
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical":   6,
				QueueDefault: 3,
				"low":        1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				taskID, _ := asynq.GetTaskID(ctx)
				queue, _ := asynq.GetQueueName(ctx)
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_id":   taskID,
					"task_type": task.Type(),
					"queue":     queue,
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
			Logger:   logEntry,
			LogLevel: asynq.WarnLevel,
		},
	)

	return &WorkerServer{
		server:        server,
		log:           logEntry,
		notifications: notifications,
	}
}

// NewServeMux 注册所有任务处理器
func NewServeMux(notifications NotificationProcessor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeNotificationSend, NewNotificationSendHandler(notifications))
	mux.Handle(tasks.TypeNotificationRelay, NewNotificationRelayHandler(notifications))
	return mux
}

// Start 在后台启动 Worker Server，不阻塞调用者
func (ws *WorkerServer) Start() error {
	ws.log.Info("Worker server starting...")
	if err := ws.server.Start(NewServeMux(ws.notifications)); err != nil {
		return fmt.Errorf("could not start worker server: %w", err)
	}
	return nil
}

// Shutdown 优雅地关闭 Worker Server
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}
