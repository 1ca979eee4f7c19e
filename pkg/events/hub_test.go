package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub(t *testing.T) {
	h := NewEventHub()
	a := h.Subscribe()
	b := h.Subscribe()
	assert.Equal(t, 2, h.Subscribers())

	h.Publish(CycleState, CycleStateEvent{From: "idle", To: "charging", Ts: 1})

	for _, ch := range []chan Event{a, b} {
		ev := <-ch
		assert.Equal(t, CycleState, ev.Name)
		p, err := DecodeAs[CycleStateEvent](ev)
		require.NoError(t, err)
		assert.Equal(t, "charging", p.To)
	}

	h.Unsubscribe(a)
	h.Unsubscribe(a)
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, h.Subscribers())
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()

	for i := 0; i < 100; i++ {
		h.Publish(CycleCharging, CycleChargingEvent{Enabled: i%2 == 0})
	}
	assert.Len(t, ch, cap(ch))
}

func TestNilHub(t *testing.T) {
	var h *EventHub
	assert.NotPanics(t, func() { h.Publish(CycleState, nil) })
}

func TestDecodeEmpty(t *testing.T) {
	p, err := DecodeAs[CycleChargingEvent](Event{Name: CycleCharging})
	require.NoError(t, err)
	assert.False(t, p.Enabled)
}
