package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshLockStateMachine(t *testing.T) {
	t.Parallel()

	lock := NewRefreshLock()
	assert.Equal(t, StateIdle, lock.State())

	seen, err := lock.waitIdle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, seen)

	refresher := lock.acquire(seen)
	require.Equal(t, ticketRefresher, refresher.kind)
	assert.Equal(t, StateRefreshing, lock.State())

	waiter := lock.acquire(seen)
	require.Equal(t, ticketWaiter, waiter.kind)
	assert.Same(t, refresher.window, waiter.window)

	lock.release(refresher.window, outcomeRefreshed)
	assert.Equal(t, StateIdle, lock.State())

	result, err := waiter.window.wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, outcomeRefreshed, result)
}

func TestRefreshLockStaleUnauthorizedIsSettledByFinishedWindow(t *testing.T) {
	t.Parallel()

	lock := NewRefreshLock()
	seen, err := lock.waitIdle(context.Background())
	require.NoError(t, err)

	first := lock.acquire(seen)
	require.Equal(t, ticketRefresher, first.kind)
	lock.release(first.window, outcomeFailed)

	// A request issued before the window opened gets its 401 after it closed.
	late := lock.acquire(seen)
	assert.Equal(t, ticketSettled, late.kind)
	assert.Equal(t, outcomeFailed, late.result)

	// A request issued after the window closed starts a fresh one.
	seen, err = lock.waitIdle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seen)
	next := lock.acquire(seen)
	assert.Equal(t, ticketRefresher, next.kind)
	lock.release(next.window, outcomeRefreshed)
}

func TestRefreshLockWaitIdleBlocksUntilRelease(t *testing.T) {
	t.Parallel()

	lock := NewRefreshLock()
	refresher := lock.acquire(0)
	require.Equal(t, ticketRefresher, refresher.kind)

	released := make(chan struct{})
	idle := make(chan uint64, 1)
	go func() {
		seen, err := lock.waitIdle(context.Background())
		assert.NoError(t, err)
		select {
		case <-released:
		default:
			t.Error("waitIdle returned before the window was released")
		}
		idle <- seen
	}()

	time.Sleep(20 * time.Millisecond)
	close(released)
	lock.release(refresher.window, outcomeRefreshed)

	select {
	case seen := <-idle:
		assert.Equal(t, uint64(1), seen)
	case <-time.After(2 * time.Second):
		t.Fatal("waitIdle did not return after release")
	}
}

func TestRefreshLockWaitHonorsContext(t *testing.T) {
	t.Parallel()

	lock := NewRefreshLock()
	refresher := lock.acquire(0)
	defer lock.release(refresher.window, outcomeFailed)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := lock.waitIdle(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	waiter := lock.acquire(0)
	_, err = waiter.window.wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "refreshing", StateRefreshing.String())
	assert.Equal(t, "unknown", State(7).String())
}
