package lrucache

import "time"

const (
	defaultMax       int64 = 1000
	defaultLockTTL         = 15 * time.Second
	defaultRedisAddr       = "localhost:6379"
	cleanConcurrency       = 64
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
