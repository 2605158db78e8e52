package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.DOCUMENT_PROCESSED", Subject("DOCUMENT_PROCESSED"))
}

func TestDecodeMessage(t *testing.T) {
	evt, err := decodeMessage("events.DOCUMENT_DELETED", []byte(`{"user_id":"u","occurred_at":"2024-03-01T10:00:00Z"}`))
	require.NoError(t, err)

	assert.Equal(t, "DOCUMENT_DELETED", evt.EventType())
	assert.Equal(t, "u", evt.UserID())
	assert.NotContains(t, evt.Payload(), "occurred_at")
	assert.True(t, evt.Timestamp().Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))

	_, err = decodeMessage("events.X", []byte("{"))
	assert.Error(t, err)
}
