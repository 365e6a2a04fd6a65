package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quietLogger struct{}

func (quietLogger) Debug(string, string, map[string]interface{}) {}
func (quietLogger) Info(string, string, map[string]interface{})  {}
func (quietLogger) Warn(string, string, map[string]interface{})  {}
func (quietLogger) Error(string, string, map[string]interface{}) {}
func (quietLogger) Sync() error                                  { return nil }

func attachClient(h *Hub, sessionID string) *Client {
	c := &Client{SessionID: sessionID, Send: make(chan []byte, 8)}
	h.mu.Lock()
	h.clients[sessionID] = append(h.clients[sessionID], c)
	h.mu.Unlock()
	return c
}

func drainOne(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func assertNoMessage(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("unexpected extra delivery: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifyDeliversOncePerClient(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	c := attachClient(h, "s1")

	h.Notify("s1", "message_appended", map[string]interface{}{"id": "m1"})

	var got struct {
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(drainOne(t, c), &got))
	assert.Equal(t, "message_appended", got.Type)
	assert.Equal(t, "m1", got.Data["id"])

	assertNoMessage(t, c)
}

func TestSelfOriginatedBusPayloadIsDropped(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	c := attachClient(h, "s1")

	message, _ := json.Marshal(map[string]interface{}{"type": "identify_partial"})
	own, _ := json.Marshal(busEnvelope{
		Origin:          h.instanceID,
		TargetSessionID: "s1",
		Message:         message,
	})
	h.handleBusPayload(own)
	assertNoMessage(t, c)
}

func TestForeignBusPayloadIsDelivered(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	c := attachClient(h, "s1")

	message, _ := json.Marshal(map[string]interface{}{"type": "identify_partial"})
	foreign, _ := json.Marshal(busEnvelope{
		Origin:          "another-instance",
		TargetSessionID: "s1",
		Message:         message,
	})
	h.handleBusPayload(foreign)

	assert.JSONEq(t, string(message), string(drainOne(t, c)))
	assertNoMessage(t, c)
}

func TestUndecodableBusPayloadIgnored(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	c := attachClient(h, "s1")

	h.handleBusPayload([]byte("not json"))
	assertNoMessage(t, c)
}
