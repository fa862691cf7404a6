package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-gateway/pkg/config"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	bus := NewBus(config.EventsConfig{OutputBuffer: 4}, nil)
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func waitFor(t *testing.T, ch <-chan OrderCompleted) OrderCompleted {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return OrderCompleted{}
	}
}

func TestPublishReachesEveryLiveSubscriber(t *testing.T) {
	bus := newTestBus(t)
	ctx := context.Background()

	first := make(chan OrderCompleted, 1)
	second := make(chan OrderCompleted, 1)

	subA, err := bus.SubscribeOrderCompleted(ctx, "a", func(_ context.Context, evt OrderCompleted) error {
		first <- evt
		return nil
	})
	require.NoError(t, err)
	defer subA.Close()

	subB, err := bus.SubscribeOrderCompleted(ctx, "b", func(_ context.Context, evt OrderCompleted) error {
		second <- evt
		return nil
	})
	require.NoError(t, err)
	defer subB.Close()

	bus.PublishOrderCompleted(ctx, OrderCompleted{OrderID: "o-1", ProductIDs: []string{"p1", "p2"}})

	gotA := waitFor(t, first)
	gotB := waitFor(t, second)
	assert.Equal(t, "o-1", gotA.OrderID)
	assert.True(t, gotB.Touches("p2"))
	assert.False(t, gotB.OccurredAt.IsZero())
}

func TestClosedSubscriptionMissesLaterEvents(t *testing.T) {
	bus := newTestBus(t)
	ctx := context.Background()

	received := make(chan OrderCompleted, 4)
	sub, err := bus.SubscribeOrderCompleted(ctx, "detail", func(_ context.Context, evt OrderCompleted) error {
		received <- evt
		return nil
	})
	require.NoError(t, err)

	sub.Close()
	sub.Close()

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription goroutine did not exit")
	}

	bus.PublishOrderCompleted(ctx, OrderCompleted{OrderID: "late"})
	select {
	case evt := <-received:
		t.Fatalf("unexpected delivery after close: %+v", evt)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	bus := newTestBus(t)

	done := make(chan struct{})
	go func() {
		bus.PublishOrderCompleted(context.Background(), OrderCompleted{OrderID: "nobody"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked without subscribers")
	}
}

func TestHandlerErrorDoesNotRedeliver(t *testing.T) {
	bus := newTestBus(t)
	ctx := context.Background()

	var mu sync.Mutex
	seen := map[string]int{}
	next := make(chan OrderCompleted, 4)

	sub, err := bus.SubscribeOrderCompleted(ctx, "flaky", func(_ context.Context, evt OrderCompleted) error {
		mu.Lock()
		seen[evt.OrderID]++
		mu.Unlock()
		next <- evt
		return errors.New("refresh failed")
	})
	require.NoError(t, err)
	defer sub.Close()

	bus.PublishOrderCompleted(ctx, OrderCompleted{OrderID: "o-1"})
	waitFor(t, next)
	bus.PublishOrderCompleted(ctx, OrderCompleted{OrderID: "o-2"})
	waitFor(t, next)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, seen["o-1"])
	assert.Equal(t, 1, seen["o-2"])
}

func TestSubscriptionSurvivesCallerContextCancel(t *testing.T) {
	bus := newTestBus(t)
	reqCtx, cancel := context.WithCancel(context.Background())

	received := make(chan OrderCompleted, 1)
	sub, err := bus.SubscribeOrderCompleted(reqCtx, "mounted", func(_ context.Context, evt OrderCompleted) error {
		received <- evt
		return nil
	})
	require.NoError(t, err)
	defer sub.Close()

	cancel()
	bus.PublishOrderCompleted(context.Background(), OrderCompleted{OrderID: "after-request"})
	assert.Equal(t, "after-request", waitFor(t, received).OrderID)
}
