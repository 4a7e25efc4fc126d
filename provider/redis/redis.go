// Package redis is an LRU-bounded provider.Store on go-redis.
//
// Data lives under the caller's keys. A sorted set (the recency index)
// scores every key by its last access; when the index grows past MaxItems
// the least recently used keys are deleted, independent of their TTL.
// Works with single-node and cluster clients: no command spans two keys.
//
// The index cannot report per-key expiry, and entries that expired by TTL
// stay in the index until the next Get, Keys or eviction notices them.
//
// The index key is "\x00lru-index:" + Namespace. Data keys written under
// Namespace start with Namespace itself, so no data key can name the index
// unless Namespace starts with a NUL byte.
package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/lrucache/provider"
)

const indexMarker = "\x00lru-index:"

var ErrNilClient = errors.New("redis provider: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	index       string
	max         int64
	last        atomic.Int64 // last score handed out; keeps scores strictly increasing
}

var _ pr.Store = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool   // set true only if this provider exclusively owns the client
	Namespace   string // prefix of the data keys; names the recency index
	MaxItems    int64  // 0 = unbounded
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.MaxItems < 0 {
		return nil, errors.New("redis provider: negative MaxItems")
	}
	return &Redis{
		rdb:         cfg.Client,
		closeClient: cfg.CloseClient,
		index:       IndexKeyFor(cfg.Namespace),
		max:         cfg.MaxItems,
	}, nil
}

// IndexKeyFor returns the recency index key used for namespace.
func IndexKeyFor(namespace string) string { return indexMarker + namespace }

// IndexKey is the sorted set holding recency scores.
func (p *Redis) IndexKey() string { return p.index }

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var get *goredis.StringCmd
	_, err := p.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		get = pipe.Get(ctx, key)
		// XX: never resurrect a member removed by a concurrent Del
		pipe.ZAddXX(ctx, p.index, goredis.Z{Score: p.score(), Member: key})
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, false, err // transport/server error
	}
	b, err := get.Bytes()
	if errors.Is(err, goredis.Nil) {
		// expired by TTL; drop the stale index member
		if err := p.rdb.ZRem(ctx, p.index, key).Err(); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 0 // treat non-positive TTLs as "no expiry" per provider contract
	}

	var card *goredis.IntCmd
	_, err := p.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, key, value, ttl)
		pipe.ZAdd(ctx, p.index, goredis.Z{Score: p.score(), Member: key})
		card = pipe.ZCard(ctx, p.index)
		return nil
	})
	if err != nil {
		return err
	}
	if p.max > 0 && card.Val() > p.max {
		return p.evict(ctx)
	}
	return nil
}

// evict drops index members that expired by TTL, then deletes the least
// recently used live keys until at most max remain.
func (p *Redis) evict(ctx context.Context) error {
	live, err := p.sweep(ctx)
	if err != nil || int64(len(live)) <= p.max {
		return err
	}
	victims := live[:int64(len(live))-p.max]
	members := make([]any, len(victims))
	_, err = p.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, v := range victims {
			pipe.Del(ctx, v)
			members[i] = v
		}
		pipe.ZRem(ctx, p.index, members...)
		return nil
	})
	return err
}

func (p *Redis) Del(ctx context.Context, key string) (bool, error) {
	var del *goredis.IntCmd
	_, err := p.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		del = pipe.Del(ctx, key)
		pipe.ZRem(ctx, p.index, key)
		return nil
	})
	if err != nil {
		return false, err
	}
	return del.Val() > 0, nil
}

// Keys lists the index, oldest first, leaving out (and pruning) members
// whose data key is gone.
func (p *Redis) Keys(ctx context.Context) ([]string, error) {
	return p.sweep(ctx)
}

// sweep returns live index members, oldest first, and removes the rest
// from the index.
func (p *Redis) sweep(ctx context.Context) ([]string, error) {
	members, err := p.rdb.ZRange(ctx, p.index, 0, -1).Result()
	if err != nil || len(members) == 0 {
		return members, err
	}

	exists := make([]*goredis.IntCmd, len(members))
	_, err = p.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, m := range members {
			exists[i] = pipe.Exists(ctx, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	live := make([]string, 0, len(members))
	var stale []any
	for i, m := range members {
		if exists[i].Val() > 0 {
			live = append(live, m)
		} else {
			stale = append(stale, m)
		}
	}
	if len(stale) > 0 {
		// best effort; a later Get or sweep retries
		_ = p.rdb.ZRem(ctx, p.index, stale...).Err()
	}
	return live, nil
}

func (p *Redis) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

func (p *Redis) score() float64 {
	for {
		now := time.Now().UnixMicro()
		last := p.last.Load()
		if now <= last {
			now = last + 1
		}
		if p.last.CompareAndSwap(last, now) {
			return float64(now)
		}
	}
}
