package nats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	occurred := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	raw, _ := json.Marshal(envelope{
		Type:       "WINE_ADDED",
		Data:       map[string]interface{}{"wine_id": "w-1"},
		OccurredAt: occurred,
	})

	event, err := decodeEvent("events.WINE_ADDED", raw)
	require.NoError(t, err)
	assert.Equal(t, "WINE_ADDED", event.EventType())
	assert.Equal(t, "w-1", event.Payload()["wine_id"])
	assert.True(t, occurred.Equal(event.Timestamp()))
}

func TestDecodeEventFallsBackToSubject(t *testing.T) {
	raw := []byte(`{"data":{"bottle_id":"b-1"}}`)

	event, err := decodeEvent("events.BOTTLE_ADDED", raw)
	require.NoError(t, err)
	assert.Equal(t, "BOTTLE_ADDED", event.EventType())
	assert.False(t, event.Timestamp().IsZero())
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	_, err := decodeEvent("events.WINE_ADDED", []byte("not json"))
	assert.Error(t, err)
}
