package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHubEmitDeliversEnvelope(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	h.Emit("req-1", TypeModeChanged, map[string]string{"mode": "live"})

	raw := <-ch
	var e Event
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, TypeModeChanged, e.Type)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "req-1", e.RequestID)
	assert.JSONEq(t, `{"mode":"live"}`, string(e.Data))
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	for i := 0; i < 100; i++ {
		h.Publish("x")
	}
	assert.Len(t, ch, cap(ch))
	h.Unsubscribe(ch)
	h.Unsubscribe(ch)
	assert.Equal(t, 0, h.Subscribers())
}

func TestNilHubEmitIsNoop(t *testing.T) {
	var h *Hub
	h.Emit("", TypePing, nil)
}
