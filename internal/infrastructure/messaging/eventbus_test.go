package messaging

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focushub/pomodoro-hub/internal/domain/shared"
)

func newSyncBus() *InMemoryEventBus {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = false
	return NewInMemoryEventBus(cfg)
}

func TestInMemoryEventBus_DeliversToSubscribers(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var got []shared.Event
	err := bus.Subscribe(shared.EventCompletionRecorded, func(e shared.Event) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)

	event := shared.NewCompletionRecordedEvent("user-1", 50, 50, 1, 1, 1, 1500, time.Now().UTC())
	require.NoError(t, bus.Publish(event))

	require.Len(t, got, 1)
	assert.Equal(t, shared.EventCompletionRecorded, got[0].EventType())
}

func TestInMemoryEventBus_IgnoresUnsubscribedTypes(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	called := false
	require.NoError(t, bus.Subscribe(shared.EventLevelUp, func(shared.Event) error {
		called = true
		return nil
	}))

	event := shared.NewCompletionRecordedEvent("user-1", 50, 50, 1, 1, 1, 1500, time.Now().UTC())
	require.NoError(t, bus.Publish(event))

	assert.False(t, called)
}

func TestInMemoryEventBus_AsyncDelivery(t *testing.T) {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.WorkerPoolSize = 2
	bus := NewInMemoryEventBus(cfg)

	var (
		mu    sync.Mutex
		count int
	)
	done := make(chan struct{})

	require.NoError(t, bus.Subscribe(shared.EventCompletionRecorded, func(shared.Event) error {
		mu.Lock()
		count++
		if count == 10 {
			close(done)
		}
		mu.Unlock()
		return nil
	}))

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(shared.NewCompletionRecordedEvent("user-1", 50, 50*(i+1), 1, 1, i+1, 1500, time.Now().UTC())))
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("async handlers did not run")
	}

	require.NoError(t, bus.Close())
}

func TestInMemoryEventBus_PublishAfterCloseFails(t *testing.T) {
	bus := newSyncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewCompletionRecordedEvent("user-1", 50, 50, 1, 1, 1, 1500, time.Now().UTC()))
	assert.ErrorIs(t, err, ErrEventBusClosed)
}
