package lrucache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/unkn0wn-root/lrucache/lock"
)

func (c *cache[V]) Lock(ctx context.Context, key string, ttl time.Duration) (Unlock, error) {
	return c.acquire(ctx, c.locker, key, ttl)
}

func (c *cache[V]) TryLock(ctx context.Context, key string, ttl time.Duration) (Unlock, error) {
	return c.acquire(ctx, c.tryLocker, key, ttl)
}

func (c *cache[V]) acquire(ctx context.Context, l lock.Locker, key string, ttl time.Duration) (Unlock, error) {
	if l == nil {
		return nil, ErrLockUnavailable
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	lk := c.keys.lock(key)
	lease, err := l.Acquire(ctx, lk, ttl)
	if err != nil {
		if errors.Is(err, lock.ErrTaken) {
			c.hooks.LockContended(lk)
		}
		return nil, err
	}

	var once sync.Once
	return func(ctx context.Context) error {
		var err error
		once.Do(func() {
			err = lease.Release(ctx)
			if err != nil {
				c.log.Warn("unlock failed", Fields{"key": lk, "err": err})
			}
		})
		return err
	}, nil
}
