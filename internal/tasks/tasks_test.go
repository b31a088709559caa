package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationSendPayload(t *testing.T) {
	data, err := NewNotificationSendTask("n-42")
	require.NoError(t, err)
	assert.JSONEq(t, `{"notification_id":"n-42"}`, string(data))

	p, err := ParseNotificationSendPayload(data)
	require.NoError(t, err)
	assert.Equal(t, "n-42", p.NotificationID)
}

func TestNotificationSendPayload_Invalid(t *testing.T) {
	_, err := NewNotificationSendTask("")
	assert.Error(t, err)

	_, err = ParseNotificationSendPayload([]byte(`{}`))
	assert.Error(t, err)

	_, err = ParseNotificationSendPayload([]byte(`not json`))
	assert.Error(t, err)
}
