// Package lrucache implements a cache backend over a remote, shared,
// capacity-bounded LRU store (Redis) with per-key TTL, key prefixing,
// glob-pattern invalidation and Redlock distributed locks.
//
// Components:
//   - provider.Store: byte store with TTL, key listing and ping
//     (provider/redis is LRU-bounded; ristretto/bigcache are in-process).
//   - codec.Codec[V]: (de)serializes V <-> []byte.
//   - lock.Locker: lease provider (lock/redlock). Two instances are kept:
//     a retrying one for Lock and a single-attempt one for TryLock.
//
// Keys:
//
//	<prefix><key>       - entries; prefix defaults to "LRU-" or "LRU-<namespace>-"
//	<prefix><key>-lock  - lock leases
//
// Clean patterns use glob syntax with "." as segment separator: "*" stays
// within a segment, "**" crosses segments.
//
// Read-through under a lock:
//
//	v, err := cache.Fetch(ctx, "posts.find:42", time.Minute, loadPost)
package lrucache
