package tasks

import (
	"encoding/json"
	"fmt"
)

// 任务类型常量
const (
	TypeNotificationSend  = "notification:send"  // 发送一条 outbox 通知
	TypeNotificationRelay = "notification:relay" // 周期性补投 pending 通知
)

// NotificationSendPayload 只携带通知 ID，内容由 Worker 从存储中读取
type NotificationSendPayload struct {
	NotificationID string `json:"notification_id"`
}

// NewNotificationSendTask 创建通知发送任务的 payload
func NewNotificationSendTask(notificationID string) ([]byte, error) {
	if notificationID == "" {
		return nil, fmt.Errorf("notification id is required")
	}
	return json.Marshal(NotificationSendPayload{NotificationID: notificationID})
}

// ParseNotificationSendPayload 解析通知发送任务的 payload
func ParseNotificationSendPayload(data []byte) (NotificationSendPayload, error) {
	var p NotificationSendPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, err
	}
	if p.NotificationID == "" {
		return p, fmt.Errorf("payload missing notification_id")
	}
	return p, nil
}

// NotificationRelayPayload 周期任务不需要参数，保留结构体以便以后扩展
type NotificationRelayPayload struct{}

// NewNotificationRelayTask 创建 relay 任务的 payload
func NewNotificationRelayTask() ([]byte, error) {
	return json.Marshal(NotificationRelayPayload{})
}
