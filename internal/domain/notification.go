package domain

import "time"

// NotificationKind 区分通知的业务来源。
type NotificationKind string

// NotificationStatus 是 outbox 记录的投递状态。
type NotificationStatus string

const (
	NotificationKindWelcome           NotificationKind = "welcome"
	NotificationKindOrderConfirmation NotificationKind = "order_confirmation"

	NotificationStatusPending NotificationStatus = "pending" // 等待投递 (包括重试中)
	NotificationStatusSent    NotificationStatus = "sent"    // 邮件中继已接受
	NotificationStatusFailed  NotificationStatus = "failed"  // 重试耗尽或永久失败
)

// Notification 是一条待发送的邮件 (outbox 记录)。
// 它与触发它的 User 或 Order 在同一个事务中写入。
type Notification struct {
	ID         string             `gorm:"type:varchar(64);primaryKey" json:"_id"`
	Kind       NotificationKind   `gorm:"type:varchar(32);not null" json:"kind"`
	Recipient  string             `gorm:"type:varchar(191);not null" json:"recipient"`
	Subject    string             `gorm:"type:varchar(191);not null" json:"subject"`
	Body       string             `gorm:"type:text;not null" json:"body"`
	Status     NotificationStatus `gorm:"type:varchar(16);index:idx_notifications_status_created,priority:1;not null" json:"status"`
	Attempts   int                `gorm:"not null;default:0" json:"attempts"`
	LastError  string             `gorm:"type:text" json:"lastError,omitempty"`
	SubjectRef string             `gorm:"type:varchar(64);index" json:"subjectRef"` // id of the user or order that caused it
	CreatedAt  time.Time          `gorm:"index:idx_notifications_status_created,priority:2" json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
	SentAt     *time.Time         `json:"sentAt,omitempty"`
}

// NewNotification builds a pending notification.
func NewNotification(kind NotificationKind, to, subject, body string, now time.Time) *Notification {
	return &Notification{
		Kind:      kind,
		Recipient: to,
		Subject:   subject,
		Body:      body,
		Status:    NotificationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Delivered reports whether the relay has already accepted this notification.
func (n *Notification) Delivered() bool {
	return n.Status == NotificationStatusSent
}
