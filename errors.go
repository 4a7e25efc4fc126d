package lrucache

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/lrucache/lock"
)

var (
	// ErrConfig is matched by every *ConfigError.
	ErrConfig = errors.New("lrucache: invalid configuration")

	// ErrLockTaken is returned by TryLock (and by Lock once its retries run
	// out) when another owner holds the lease.
	ErrLockTaken = lock.ErrTaken

	// ErrLockUnavailable is returned by Lock/TryLock when no lock backend is configured.
	ErrLockUnavailable = errors.New("lrucache: lock backend unavailable")
)

// ConfigError reports a fatal configuration problem found before any
// network activity.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("lrucache: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }
