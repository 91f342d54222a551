package gateway

import (
	"context"
	"sync"
)

type State int

const (
	StateIdle State = iota
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

type outcome int

const (
	outcomeNone outcome = iota
	outcomeRefreshed
	outcomeFailed
)

func (o outcome) String() string {
	switch o {
	case outcomeRefreshed:
		return "refreshed"
	case outcomeFailed:
		return "failed"
	default:
		return "none"
	}
}

// window is one refresh attempt. result is written before done is closed and
// must only be read after done is closed.
type window struct {
	done   chan struct{}
	result outcome
}

func (w *window) wait(ctx context.Context) (outcome, error) {
	select {
	case <-w.done:
		return w.result, nil
	case <-ctx.Done():
		return outcomeNone, ctx.Err()
	}
}

// RefreshLock serializes credential refreshes. At most one window is open at a
// time; callers that hit an authorization failure while it is open wait for
// its result instead of refreshing themselves.
//
// A RefreshLock is shared by every Gateway that talks to the same backend
// session and must not be copied after first use.
type RefreshLock struct {
	mu      sync.Mutex
	current *window
	// closed counts finished windows; last is the result of the most recent one.
	closed uint64
	last   outcome
}

func NewRefreshLock() *RefreshLock {
	return &RefreshLock{}
}

func (l *RefreshLock) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil {
		return StateRefreshing
	}
	return StateIdle
}

// waitIdle blocks until no window is open and returns how many windows have
// closed so far.
func (l *RefreshLock) waitIdle(ctx context.Context) (uint64, error) {
	for {
		l.mu.Lock()
		current, closed := l.current, l.closed
		l.mu.Unlock()

		if current == nil {
			return closed, nil
		}

		select {
		case <-current.done:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

type ticketKind int

const (
	// ticketRefresher owns the new window and must release it.
	ticketRefresher ticketKind = iota
	// ticketWaiter waits on a window someone else owns.
	ticketWaiter
	// ticketSettled means a window finished after the caller's request was
	// issued, so its 401 predates that refresh.
	ticketSettled
)

type ticket struct {
	kind   ticketKind
	window *window
	result outcome
}

// acquire is called after an unauthorized response to a request issued when
// seen windows had closed.
func (l *RefreshLock) acquire(seen uint64) ticket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil {
		return ticket{kind: ticketWaiter, window: l.current}
	}
	if l.closed != seen {
		return ticket{kind: ticketSettled, result: l.last}
	}

	w := &window{done: make(chan struct{})}
	l.current = w
	return ticket{kind: ticketRefresher, window: w}
}

func (l *RefreshLock) release(w *window, result outcome) {
	l.mu.Lock()
	w.result = result
	if l.current == w {
		l.current = nil
	}
	l.closed++
	l.last = result
	l.mu.Unlock()

	close(w.done)
}
