package keyspace

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/peternagy/dbquerytool/internal/debug"
)

// RefreshFunc receives the outcome of every refresh.
type RefreshFunc func(tree *Tree, err error)

// RefresherStats are point-in-time counters.
type RefresherStats struct {
	Refreshes int64 `json:"refreshes"`
	Skipped   int64 `json:"skipped"`
	Errors    int64 `json:"errors"`
}

// AutoRefresher refreshes a Browser on a fixed interval. A tick that arrives
// while any refresh of the browser is in flight, manual ones included, is
// dropped.
type AutoRefresher struct {
	browser  *Browser
	pattern  string
	interval time.Duration
	onResult RefreshFunc

	wg sync.WaitGroup

	refreshes atomic.Int64
	skipped   atomic.Int64
	errors    atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAutoRefresher creates a refresher for pattern. onResult may be nil.
func NewAutoRefresher(b *Browser, interval time.Duration, pattern string, onResult RefreshFunc) *AutoRefresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &AutoRefresher{browser: b, pattern: pattern, interval: interval, onResult: onResult}
}

// Start begins ticking. It is a no-op when already started.
func (a *AutoRefresher) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}
	ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan struct{})
	go a.loop(ctx, a.done)

	debug.LogKeyspace("auto refresh started", map[string]interface{}{
		"interval": a.interval.String(),
		"pattern":  a.pattern,
	})
}

// Stop cancels the timer and any refresh in flight, then waits for them.
func (a *AutoRefresher) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	a.wg.Wait()
	debug.LogKeyspace("auto refresh stopped", nil)
}

// Trigger starts a refresh unless the browser is already refreshing or ctx
// is done, and reports whether it did.
func (a *AutoRefresher) Trigger(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if !a.browser.tryAcquire() {
		a.skipped.Add(1)
		return false
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.browser.release()
		a.refresh(ctx)
	}()
	return true
}

// Stats returns the current counters.
func (a *AutoRefresher) Stats() RefresherStats {
	return RefresherStats{
		Refreshes: a.refreshes.Load(),
		Skipped:   a.skipped.Load(),
		Errors:    a.errors.Load(),
	}
}

func (a *AutoRefresher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Trigger(ctx)
		}
	}
}

func (a *AutoRefresher) refresh(ctx context.Context) {
	tree, err := a.browser.refresh(ctx, a.pattern)
	a.refreshes.Add(1)
	if err != nil {
		a.errors.Add(1)
		debug.Warn(debug.CategoryKeyspace, "auto refresh failed", map[string]interface{}{"error": err.Error()})
	}
	if a.onResult != nil {
		a.onResult(tree, err)
	}
}
