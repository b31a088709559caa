// Package mail 实现通知发送器: 通过外部 SMTP 中继发送纯文本邮件。
package mail

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
)

var (
	// ErrDelivery 表示邮件中继拒绝或无法接收邮件 (认证失败、网络错误等)，可以重试。
	ErrDelivery = errors.New("mail: delivery failed")
	// ErrInvalidRecipient 表示收件人地址无效，重试没有意义。
	ErrInvalidRecipient = errors.New("mail: invalid recipient address")
)

// Sender 是通知发送器的契约。
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
	Close() error
}

// validateRecipient 检查收件人是否是单个合法地址。
func validateRecipient(to string) error {
	addr, err := netmail.ParseAddress(to)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidRecipient, to, err)
	}
	if addr.Address != to {
		return fmt.Errorf("%w: %q must be a bare address", ErrInvalidRecipient, to)
	}
	return nil
}
