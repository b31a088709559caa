package mail

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogMailer 只把邮件写入日志，在未配置 EMAIL_USER 的开发环境中使用。
type LogMailer struct {
	log *logrus.Entry
}

func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{log: logger.WithField("component", "log_mailer")}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	if err := validateRecipient(to); err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"to": to, "subject": subject}).Info(body)
	return nil
}

func (m *LogMailer) Close() error { return nil }
