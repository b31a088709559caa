package mail

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// defaultIdleTimeout 是复用连接的最大空闲时间，超过后重新拨号，
// 中继通常会在几分钟内关闭空闲连接。
const defaultIdleTimeout = 30 * time.Second

// SMTPConfig 是 SMTP 中继的连接参数
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string // 同时作为发件人地址
	Password    string
	FromName    string
	IdleTimeout time.Duration
}

// dialer 抽象 gomail.Dialer，便于测试。
type dialer interface {
	Dial() (gomail.SendCloser, error)
}

// SMTPMailer 在进程内持有一个长连接，所有请求复用。
// gomail.SendCloser 不是并发安全的，所以发送过程由 mu 串行化。
type SMTPMailer struct {
	dialer      dialer
	from        string
	fromName    string
	idleTimeout time.Duration
	log         *logrus.Entry

	mu       sync.Mutex
	conn     gomail.SendCloser
	lastUsed time.Time
}

// NewSMTPMailer 创建 SMTPMailer。此时不会拨号，第一次 Send 时才建立连接。
func NewSMTPMailer(cfg SMTPConfig, logger *logrus.Logger) *SMTPMailer {
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = defaultIdleTimeout
	}
	return &SMTPMailer{
		dialer:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:        cfg.Username,
		fromName:    cfg.FromName,
		idleTimeout: idle,
		log:         logger.WithField("component", "smtp_mailer"),
	}
}

// Send 发送一封纯文本邮件。发送失败时丢弃连接并用新连接重试一次。
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := validateRecipient(to); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := m.connection()
	if err != nil {
		return err
	}
	if err := gomail.Send(conn, msg); err != nil {
		m.log.WithError(err).Warn("Send on pooled SMTP connection failed, redialing")
		m.discard()

		conn, dialErr := m.connection()
		if dialErr != nil {
			return dialErr
		}
		if err := gomail.Send(conn, msg); err != nil {
			m.discard()
			return fmt.Errorf("%w: send to %s: %v", ErrDelivery, to, err)
		}
	}
	m.lastUsed = time.Now()
	return nil
}

// connection 返回可用连接，必要时重新拨号。调用者必须持有 mu。
func (m *SMTPMailer) connection() (gomail.SendCloser, error) {
	if m.conn != nil && time.Since(m.lastUsed) > m.idleTimeout {
		m.discard()
	}
	if m.conn == nil {
		conn, err := m.dialer.Dial()
		if err != nil {
			return nil, fmt.Errorf("%w: dial relay: %v", ErrDelivery, err)
		}
		m.conn = conn
		m.lastUsed = time.Now()
	}
	return m.conn, nil
}

// discard 关闭并丢弃当前连接。调用者必须持有 mu。
func (m *SMTPMailer) discard() {
	if m.conn == nil {
		return
	}
	if err := m.conn.Close(); err != nil {
		m.log.WithError(err).Debug("Closing SMTP connection failed")
	}
	m.conn = nil
}

// Close 关闭长连接 (进程退出时调用)。
func (m *SMTPMailer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discard()
	return nil
}
