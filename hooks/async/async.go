// Package async runs another lrucache.Hooks off the caller's goroutine.
// Events go through a bounded queue; when it is full they are dropped.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{MissEvery: 100})
//	hooks := async.New(raw, 1, 1000)
//	defer hooks.Close()
//
//	cache, _ := lrucache.New[User](lrucache.Options[User]{
//	    Namespace: "users",
//	    Hooks:     hooks,
//	})
package async

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/lrucache"
)

type Hooks struct {
	inner lrucache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ lrucache.Hooks = (*Hooks)(nil)

func New(inner lrucache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events sent after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped counts events lost to a full queue or a closed Hooks.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(k string)  { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) Miss(k string) { h.try(func() { h.inner.Miss(k) }) }

func (h *Hooks) DeleteFailed(keys []string, err error) {
	h.try(func() { h.inner.DeleteFailed(keys, err) })
}

func (h *Hooks) CleanDeleteFailed(k string, err error) {
	h.try(func() { h.inner.CleanDeleteFailed(k, err) })
}

func (h *Hooks) LockContended(k string) { h.try(func() { h.inner.LockContended(k) }) }
func (h *Hooks) PingFailed(err error)   { h.try(func() { h.inner.PingFailed(err) }) }
func (h *Hooks) Connected(addr string)  { h.try(func() { h.inner.Connected(addr) }) }

func (h *Hooks) ConnectionError(addr string, err error) {
	h.try(func() { h.inner.ConnectionError(addr, err) })
}
