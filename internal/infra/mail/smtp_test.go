package mail

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeConn struct {
	sent    []string
	failOn  int // 第 n 次 Send 失败 (从 1 开始)，0 表示从不失败
	calls   int
	closed  bool
	lastMsg string
}

func (c *fakeConn) Send(from string, to []string, msg io.WriterTo) error {
	c.calls++
	if c.failOn != 0 && c.calls == c.failOn {
		return errors.New("421 service not available")
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return err
	}
	c.sent = append(c.sent, to...)
	c.lastMsg = buf.String()
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

type fakeDialer struct {
	conns []*fakeConn
	dials int
	err   error
}

func (d *fakeDialer) Dial() (gomail.SendCloser, error) {
	if d.err != nil {
		return nil, d.err
	}
	conn := d.conns[d.dials]
	d.dials++
	return conn, nil
}

func newTestMailer(d dialer) *SMTPMailer {
	m := NewSMTPMailer(SMTPConfig{Username: "shop@example.com", FromName: "Supermarket"}, logrus.New())
	m.dialer = d
	return m
}

func TestSMTPMailer_ReusesConnection(t *testing.T) {
	conn := &fakeConn{}
	d := &fakeDialer{conns: []*fakeConn{conn}}
	m := newTestMailer(d)

	require.NoError(t, m.Send(context.Background(), "a@b.com", "Order Confirmation", "Your order of KES 500 has been placed."))
	require.NoError(t, m.Send(context.Background(), "c@d.com", "Welcome to Supermarket", "Hi"))

	assert.Equal(t, 1, d.dials, "second send should reuse the pooled connection")
	assert.Equal(t, []string{"a@b.com", "c@d.com"}, conn.sent)
	assert.Contains(t, conn.lastMsg, "Subject: Welcome to Supermarket")
	assert.Contains(t, conn.lastMsg, `From: "Supermarket" <shop@example.com>`)
}

func TestSMTPMailer_RedialsAfterSendFailure(t *testing.T) {
	broken := &fakeConn{failOn: 1}
	fresh := &fakeConn{}
	d := &fakeDialer{conns: []*fakeConn{broken, fresh}}
	m := newTestMailer(d)

	require.NoError(t, m.Send(context.Background(), "a@b.com", "s", "b"))

	assert.True(t, broken.closed)
	assert.Equal(t, 2, d.dials)
	assert.Equal(t, []string{"a@b.com"}, fresh.sent)
}

func TestSMTPMailer_RedialsWhenIdle(t *testing.T) {
	first := &fakeConn{}
	second := &fakeConn{}
	d := &fakeDialer{conns: []*fakeConn{first, second}}
	m := newTestMailer(d)
	m.idleTimeout = time.Millisecond

	require.NoError(t, m.Send(context.Background(), "a@b.com", "s", "b"))
	m.lastUsed = time.Now().Add(-time.Second)
	require.NoError(t, m.Send(context.Background(), "a@b.com", "s", "b"))

	assert.True(t, first.closed)
	assert.Equal(t, 2, d.dials)
}

func TestSMTPMailer_DialFailureIsDeliveryError(t *testing.T) {
	m := newTestMailer(&fakeDialer{err: errors.New("535 authentication failed")})

	err := m.Send(context.Background(), "a@b.com", "s", "b")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDelivery)
}

func TestSMTPMailer_InvalidRecipientDoesNotDial(t *testing.T) {
	d := &fakeDialer{}
	m := newTestMailer(d)

	err := m.Send(context.Background(), "not-an-address", "s", "b")

	assert.ErrorIs(t, err, ErrInvalidRecipient)
	assert.Zero(t, d.dials)
}

func TestLogMailer(t *testing.T) {
	m := NewLogMailer(logrus.New())
	assert.NoError(t, m.Send(context.Background(), "a@b.com", "s", "b"))
	assert.ErrorIs(t, m.Send(context.Background(), "Bob <bob@example.com>", "s", "b"), ErrInvalidRecipient)
	assert.NoError(t, m.Close())
}
