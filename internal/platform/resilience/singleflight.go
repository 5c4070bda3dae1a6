package resilience

import (
	"context"
	"sync"
)

// Group deduplicates concurrent calls for the same key. The zero value is ready to use.
type Group[T any] struct {
	mu    sync.Mutex
	calls map[string]*call[T]
}

type call[T any] struct {
	done chan struct{}
	val  T
	err  error

	// waiters counts DoContext callers still waiting; cancel stops the run
	// once it drops to zero.
	waiters int
	cancel  context.CancelFunc
}

// Do runs fn once per key among concurrent callers; shared reports whether
// the result came from another caller's run.
func (g *Group[T]) Do(key string, fn func() (T, error)) (val T, err error, shared bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call[T])
	}

	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		<-c.done
		return c.val, c.err, true
	}

	c := &call[T]{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	defer g.finish(key, c)

	c.val, c.err = fn()
	return c.val, c.err, false
}

// DoContext is Do for calls that take a context. fn runs on a context that
// keeps the first caller's values but is cancelled only when every caller
// waiting on key has returned, so one caller giving up does not fail the
// others. A caller whose ctx ends returns ctx.Err() without waiting.
func (g *Group[T]) DoContext(ctx context.Context, key string, fn func(context.Context) (T, error)) (val T, err error, shared bool) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err, false
	}

	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call[T])
	}

	c, shared := g.calls[key]
	if shared {
		c.waiters++
	} else {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		c = &call[T]{done: make(chan struct{}), waiters: 1, cancel: cancel}
		g.calls[key] = c
		go func() {
			defer cancel()
			defer g.finish(key, c)
			c.val, c.err = fn(runCtx)
		}()
	}
	g.mu.Unlock()

	select {
	case <-c.done:
		return c.val, c.err, shared
	case <-ctx.Done():
		g.leave(key, c)
		return zero, ctx.Err(), shared
	}
}

// InFlight reports how many keys currently have a running call.
func (g *Group[T]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func (g *Group[T]) finish(key string, c *call[T]) {
	g.mu.Lock()
	if g.calls[key] == c {
		delete(g.calls, key)
	}
	g.mu.Unlock()
	close(c.done)
}

// leave drops a waiter. The last one out cancels the run and unregisters it
// so later callers start fresh instead of joining a cancelled call.
func (g *Group[T]) leave(key string, c *call[T]) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c.waiters--
	if c.waiters > 0 {
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	if g.calls[key] == c {
		delete(g.calls, key)
	}
}
