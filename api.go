package lrucache

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	c "github.com/unkn0wn-root/lrucache/codec"
	"github.com/unkn0wn-root/lrucache/lock"
	pr "github.com/unkn0wn-root/lrucache/provider"
)

// Cache is the uniform cache contract: get/set/del/clean/lock over a
// remote, capacity-bounded store. V is the caller's value type;
// serialization is handled by a pluggable Codec[V].
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error
	Ping(context.Context) error

	// Get returns (v, true, nil) on hit and (zero, false, nil) on miss.
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	// GetWithTTL is Get plus remaining expiry. The LRU store cannot report
	// expiry, so Entry.TTL is always nil.
	GetWithTTL(ctx context.Context, key string) (e Entry[V], ok bool, err error)
	// Set stores value with Options.TTL.
	Set(ctx context.Context, key string, value V) error
	// SetTTL stores value with an explicit ttl; ttl <= 0 means no expiry.
	SetTTL(ctx context.Context, key string, value V, ttl time.Duration) error
	// Del removes keys concurrently. removed[i] reports whether keys[i] existed.
	Del(ctx context.Context, keys ...string) (removed []bool, err error)
	// Clean removes every key matching any glob pattern; no patterns means "**".
	Clean(ctx context.Context, patterns ...string) error
	// Keys lists logical keys currently tracked by the store.
	Keys(ctx context.Context) ([]KeyInfo, error)

	// Lock blocks (per the lock backend's retry policy) until key is held.
	// ttl <= 0 means 15s.
	Lock(ctx context.Context, key string, ttl time.Duration) (Unlock, error)
	// TryLock makes exactly one attempt and fails with ErrLockTaken on contention.
	TryLock(ctx context.Context, key string, ttl time.Duration) (Unlock, error)

	// Fetch reads key or, on miss, computes it under Lock so that only one
	// caller computes per key. ttl == 0 uses Options.TTL.
	Fetch(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) (V, error)) (V, error)
}

// Entry is a value with its remaining expiry, when known.
type Entry[V any] struct {
	Value V
	TTL   *time.Duration
}

// KeyInfo describes one cached key. Only the logical key is known.
type KeyInfo struct {
	Key string
}

// Unlock releases a lease. Only the first call has effect.
type Unlock func(ctx context.Context) error

// ClusterNode is one seed node of a Redis Cluster.
type ClusterNode struct {
	Host string
	Port int
}

// ClusterConfig selects a clustered connection. Nodes must not be empty.
type ClusterConfig struct {
	Nodes   []ClusterNode
	Options *goredis.ClusterOptions // Addrs is overwritten from Nodes
}

// RedlockConfig controls the distributed lock backend.
type RedlockConfig struct {
	// Clients taking part in the quorum. nil => the cache connection only.
	// These clients are caller-owned and are not closed by Close.
	Clients []goredis.UniversalClient

	Tries         int           // blocking Lock attempts; 0 => redsync default (32)
	RetryDelay    time.Duration // 0 => redsync default (random 50-250ms)
	DriftFactor   float64       // 0 => redsync default
	TimeoutFactor float64       // 0 => redsync default

	Disabled bool // no lock backend; Lock/TryLock return ErrLockUnavailable
}

// Options configure a Cache. All fields are optional; a zero Options
// talks to localhost:6379 with JSON payloads.
type Options[V any] struct {
	// Connection, in order of precedence: Store, Cluster, Redis, RedisOptions.
	Redis        string           // redis:// URL or host:port
	RedisOptions *goredis.Options // structured alternative to Redis
	Cluster      *ClusterConfig

	Prefix    string // physical key prefix; overrides Namespace
	Namespace string // owning service namespace; prefix becomes "LRU-<ns>-"

	PingInterval time.Duration // > 0 enables the keep-alive ping loop
	Max          int64         // capacity in entries; 0 => 1000
	TTL          time.Duration // default for Set; 0 => no expiry

	Redlock RedlockConfig
	Monitor bool // trace every store command at debug level

	Codec    c.Codec[V] // nil => codec.JSON[V]
	Logger   Logger     // if nil, NopLogger is used
	Hooks    Hooks      // if nil, NopHooks is used
	Disabled bool       // default false (enabled)

	// Store injects a connected store instead of dialing Redis. Locks then
	// come only from Locker/TryLocker; nil lockers disable locking.
	Store     pr.Store
	Locker    lock.Locker
	TryLocker lock.Locker
}

// URL is shorthand for Options{Redis: url}.
func URL[V any](url string) Options[V] {
	return Options[V]{Redis: url}
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
