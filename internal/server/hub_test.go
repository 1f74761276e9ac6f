package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procboost/boostd/internal/monitor"
	"github.com/procboost/boostd/internal/sysstats"
)

func tick(n int) monitor.TickResult {
	return monitor.TickResult{Snapshot: sysstats.Snapshot{ProcessCount: n}}
}

func TestHubDeliversInOrder(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Post(tick(1))
	h.Post(tick(2))

	assert.Equal(t, 1, (<-ch).Snapshot.ProcessCount)
	assert.Equal(t, 2, (<-ch).Snapshot.ProcessCount)
}

func TestHubDropsForSlowClient(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	// Overflow the client buffer without reading; Post must not block.
	for i := 1; i <= clientBuffer+10; i++ {
		h.Post(tick(i))
	}

	// The retained ticks are the earliest ones, still in order.
	first := <-ch
	second := <-ch
	require.Less(t, first.Snapshot.ProcessCount, second.Snapshot.ProcessCount)
	assert.Equal(t, 1, first.Snapshot.ProcessCount)
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	cancel()

	h.Post(tick(1))

	select {
	case <-ch:
		t.Fatal("unexpected delivery after cancel")
	default:
	}
}

func TestHubMultipleSubscribers(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe()
	defer cancelA()
	b, cancelB := h.Subscribe()
	defer cancelB()

	h.Post(tick(7))

	assert.Equal(t, 7, (<-a).Snapshot.ProcessCount)
	assert.Equal(t, 7, (<-b).Snapshot.ProcessCount)
}
