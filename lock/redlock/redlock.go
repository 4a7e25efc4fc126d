// Package redlock implements lock.Locker with the Redlock algorithm over
// one or more independent Redis clients (go-redsync). A lease is granted
// when a majority of clients accept it.
package redlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	rsredis "github.com/go-redsync/redsync/v4/redis"
	rsgoredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/lrucache/lock"
)

var ErrNoClients = errors.New("redlock: at least one client is required")

// Config mirrors the redsync mutex options. Zero values keep redsync defaults.
type Config struct {
	Tries         int
	RetryDelay    time.Duration
	DriftFactor   float64
	TimeoutFactor float64
}

type Redlock struct {
	rs   *redsync.Redsync
	opts []redsync.Option
}

var _ lock.Locker = (*Redlock)(nil)

func New(clients []goredis.UniversalClient, cfg Config) (*Redlock, error) {
	if len(clients) == 0 {
		return nil, ErrNoClients
	}
	pools := make([]rsredis.Pool, 0, len(clients))
	for _, cl := range clients {
		if cl == nil {
			return nil, ErrNoClients
		}
		pools = append(pools, rsgoredis.NewPool(cl))
	}

	var opts []redsync.Option
	if cfg.Tries > 0 {
		opts = append(opts, redsync.WithTries(cfg.Tries))
	}
	if cfg.RetryDelay > 0 {
		opts = append(opts, redsync.WithRetryDelay(cfg.RetryDelay))
	}
	if cfg.DriftFactor > 0 {
		opts = append(opts, redsync.WithDriftFactor(cfg.DriftFactor))
	}
	if cfg.TimeoutFactor > 0 {
		opts = append(opts, redsync.WithTimeoutFactor(cfg.TimeoutFactor))
	}
	return &Redlock{rs: redsync.New(pools...), opts: opts}, nil
}

func (r *Redlock) Acquire(ctx context.Context, key string, ttl time.Duration) (lock.Lease, error) {
	opts := append([]redsync.Option{redsync.WithExpiry(ttl)}, r.opts...)
	m := r.rs.NewMutex(key, opts...)
	if err := m.LockContext(ctx); err != nil {
		if contended(err) {
			return nil, fmt.Errorf("%w: %s", lock.ErrTaken, key)
		}
		return nil, err
	}
	return lease{m: m}, nil
}

// contended reports whether err means another owner won the quorum.
func contended(err error) bool {
	if errors.Is(err, redsync.ErrFailed) {
		return true
	}
	var taken *redsync.ErrTaken
	if errors.As(err, &taken) {
		return true
	}
	var nodeTaken *redsync.ErrNodeTaken
	return errors.As(err, &nodeTaken)
}

type lease struct {
	m *redsync.Mutex
}

func (l lease) Release(ctx context.Context) error {
	ok, err := l.m.UnlockContext(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("redlock: release %s: lease lost", l.m.Name())
	}
	return nil
}
