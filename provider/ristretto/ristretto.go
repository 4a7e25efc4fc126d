// Package ristretto is an in-process provider.Store bounded by entry count.
// Ristretto admits writes asynchronously and may reject them under its
// TinyLFU policy; Set waits for the write buffer so a successful Set is
// visible to the next Get unless the policy refused it.
package ristretto

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/lrucache/provider"
)

type Provider struct {
	c *rc.Cache

	mu   sync.Mutex
	keys map[string]uint64 // name -> version of the last Set; ristretto keeps hashes only
	ver  uint64

	closeOnce sync.Once
}

var _ pr.Store = (*Provider)(nil)

type Config struct {
	MaxItems    int64 // capacity in entries (each entry costs 1)
	BufferItems int64 // 0 => 64
	Metrics     bool
}

// entry carries the key and its version so eviction callbacks can forget
// it without calling back into the cache.
type entry struct {
	key string
	ver uint64
	val []byte
}

func New(cfg Config) (*Provider, error) {
	if cfg.MaxItems <= 0 {
		return nil, errors.New("ristretto: MaxItems must be positive")
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = 64
	}
	p := &Provider{keys: make(map[string]uint64)}
	c, err := rc.NewCache(&rc.Config{
		NumCounters:        cfg.MaxItems * 10,
		MaxCost:            cfg.MaxItems,
		BufferItems:        cfg.BufferItems,
		Metrics:            cfg.Metrics,
		IgnoreInternalCost: true,
		OnEvict:            p.forget,
		OnReject:           p.forget,
	})
	if err != nil {
		return nil, err
	}
	p.c = c
	return p, nil
}

// forget runs inside ristretto callbacks, some of which hold shard locks,
// so it only touches p.keys. A newer Set of the same key keeps its name.
func (p *Provider) forget(item *rc.Item) {
	e, ok := item.Value.(entry)
	if !ok {
		return
	}
	p.mu.Lock()
	if p.keys[e.key] == e.ver {
		delete(p.keys, e.key)
	}
	p.mu.Unlock()
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	e, ok := v.(entry)
	if !ok {
		// self-heal: drop unexpected entry shape
		p.c.Del(key)
		return nil, false, nil
	}
	return e.val, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	p.mu.Lock()
	p.ver++
	ver := p.ver
	p.keys[key] = ver
	p.mu.Unlock()

	p.c.SetWithTTL(key, entry{key: key, ver: ver, val: value}, 1, ttl)
	p.c.Wait()
	return nil
}

func (p *Provider) Del(_ context.Context, key string) (bool, error) {
	_, existed := p.c.Get(key)
	p.c.Del(key)
	p.mu.Lock()
	delete(p.keys, key)
	p.mu.Unlock()
	return existed, nil
}

// Keys returns live keys in sorted order, pruning ones ristretto dropped
// without a callback (TTL expiry).
func (p *Provider) Keys(context.Context) ([]string, error) {
	p.mu.Lock()
	names := make([]string, 0, len(p.keys))
	for k := range p.keys {
		names = append(names, k)
	}
	p.mu.Unlock()

	live := names[:0]
	var gone []string
	for _, k := range names {
		if _, ok := p.c.Get(k); ok {
			live = append(live, k)
		} else {
			gone = append(gone, k)
		}
	}
	if len(gone) > 0 {
		p.mu.Lock()
		for _, k := range gone {
			delete(p.keys, k)
		}
		p.mu.Unlock()
	}
	sort.Strings(live)
	return live, nil
}

func (p *Provider) Ping(context.Context) error { return nil }

func (p *Provider) Close(_ context.Context) error {
	p.closeOnce.Do(func() {
		p.c.Wait()
		p.c.Close()
	})
	return nil
}

// Metrics returns ristretto's counters; nil unless Config.Metrics is set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
