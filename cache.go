package lrucache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/unkn0wn-root/lrucache/codec"
	"github.com/unkn0wn-root/lrucache/lock"
	pr "github.com/unkn0wn-root/lrucache/provider"
)

type cache[V any] struct {
	keys       keyspace
	store      pr.Store
	codec      codec.Codec[V]
	log        Logger
	hooks      Hooks
	enabled    bool
	defaultTTL time.Duration

	// nil when Options.Store was injected
	rdb goredis.UniversalClient

	// nil => locking unavailable
	locker    lock.Locker
	tryLocker lock.Locker

	pinger    *pinger
	closeOnce sync.Once
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !c.enabled {
		return zero, false, nil
	}
	k := c.keys.physical(key)
	raw, ok, err := c.store.Get(ctx, k)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		c.hooks.Miss(k)
		return zero, false, nil
	}
	v, err := c.codec.Decode(raw)
	if err != nil {
		return zero, false, fmt.Errorf("lrucache: decode %q: %w", key, err)
	}
	c.hooks.Hit(k)
	return v, true, nil
}

func (c *cache[V]) GetWithTTL(ctx context.Context, key string) (Entry[V], bool, error) {
	v, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return Entry[V]{}, ok, err
	}
	return Entry[V]{Value: v}, true, nil
}

func (c *cache[V]) Set(ctx context.Context, key string, value V) error {
	return c.SetTTL(ctx, key, value, c.defaultTTL)
}

func (c *cache[V]) SetTTL(ctx context.Context, key string, value V, ttl time.Duration) error {
	if !c.enabled {
		return nil
	}
	payload, err := c.codec.Encode(value)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	return c.store.Set(ctx, c.keys.physical(key), payload, ttl)
}

func (c *cache[V]) Del(ctx context.Context, keys ...string) ([]bool, error) {
	removed := make([]bool, len(keys))
	if !c.enabled || len(keys) == 0 {
		return removed, nil
	}

	physical := make([]string, len(keys))
	for i, k := range keys {
		physical[i] = c.keys.physical(k)
	}

	// independent deletions; one failing does not cancel the others
	var g errgroup.Group
	for i, k := range physical {
		i, k := i, k
		g.Go(func() error {
			ok, err := c.store.Del(ctx, k)
			removed[i] = ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		c.log.Error("delete failed", Fields{"keys": physical, "err": err})
		c.hooks.DeleteFailed(physical, err)
		return removed, err
	}
	return removed, nil
}

func (c *cache[V]) Fetch(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) (V, error)) (V, error) {
	var zero V
	if !c.enabled {
		return fn(ctx)
	}
	if v, ok, err := c.Get(ctx, key); err != nil || ok {
		return v, err
	}

	unlock, err := c.Lock(ctx, key, 0)
	switch {
	case errors.Is(err, ErrLockUnavailable):
		c.log.Debug("fetch without lock", Fields{"key": key})
	case err != nil:
		return zero, err
	default:
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				c.log.Warn("fetch unlock failed", Fields{"key": key, "err": err})
			}
		}()
		// another holder may have filled it while we waited
		if v, ok, err := c.Get(ctx, key); err != nil || ok {
			return v, err
		}
	}

	v, err := fn(ctx)
	if err != nil {
		return zero, err
	}
	if ttl == 0 {
		err = c.Set(ctx, key, v)
	} else {
		err = c.SetTTL(ctx, key, v, ttl)
	}
	if err != nil {
		return zero, err
	}
	return v, nil
}
