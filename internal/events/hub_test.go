package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/takeoff/pkg/types"
)

func TestHub_PublishDeliversToAllSubscribers(t *testing.T) {
	h := NewHub(nil)
	a, cancelA := h.Subscribe(4)
	defer cancelA()
	b, cancelB := h.Subscribe(4)
	defer cancelB()

	sent := h.Publish(types.EventBoundaryCreated, "MainHouse", "")
	require.NotEmpty(t, sent.ID)

	for _, ch := range []<-chan types.Event{a, b} {
		ev := <-ch
		assert.Equal(t, sent, ev)
		assert.Equal(t, types.EventBoundaryCreated, ev.Kind)
		assert.Equal(t, "MainHouse", ev.Subject)
	}
}

func TestHub_FullBufferDropsWithoutBlocking(t *testing.T) {
	h := NewHub(nil)
	ch, cancel := h.Subscribe(1)
	defer cancel()

	h.Publish(types.EventBoundaryCreated, "a", "")
	h.Publish(types.EventBoundaryCreated, "b", "")
	h.Publish(types.EventBoundaryCreated, "c", "")

	assert.Equal(t, uint64(2), h.Dropped())
	ev := <-ch
	assert.Equal(t, "a", ev.Subject, "the first event is kept")
}

func TestHub_CancelClosesAndUnsubscribes(t *testing.T) {
	h := NewHub(nil)
	ch, cancel := h.Subscribe(0)
	assert.Equal(t, 1, h.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, h.Subscribers())

	_, open := <-ch
	assert.False(t, open)

	h.Publish(types.EventBoundaryDeleted, "x", "")
	assert.Equal(t, uint64(0), h.Dropped())
}
