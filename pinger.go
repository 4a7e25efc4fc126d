package lrucache

import (
	"context"
	"sync"
	"time"
)

// pinger runs the keep-alive loop. One per cache; stop is idempotent and
// waits for an in-flight ping to return.
type pinger struct {
	ticker *time.Ticker
	stopCh chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func startPinger(interval time.Duration, ping func(context.Context)) *pinger {
	base, cancel := context.WithCancel(context.Background())
	p := &pinger{
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
		cancel: cancel,
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-p.ticker.C:
				ctx, done := context.WithTimeout(base, interval)
				ping(ctx)
				done()
			case <-p.stopCh:
				return
			}
		}
	}()
	return p
}

func (p *pinger) stop() {
	p.once.Do(func() {
		p.ticker.Stop() // stop ticker before waiting
		p.cancel()
		close(p.stopCh)
		p.wg.Wait()
	})
}
