package lrucache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// Get found / did not find storageKey.
	Hit(storageKey string)
	Miss(storageKey string)

	// Del failed; storageKeys is the whole batch of the call.
	DeleteFailed(storageKeys []string, err error)

	// One deletion inside Clean failed. Clean itself still succeeds.
	CleanDeleteFailed(storageKey string, err error)

	// Lock or TryLock lost to another owner.
	LockContended(lockKey string)

	// Keep-alive ping failed.
	PingFailed(err error)

	// Store connection events, one per dialed connection.
	Connected(addr string)
	ConnectionError(addr string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                      {}
func (NopHooks) Miss(string)                     {}
func (NopHooks) DeleteFailed([]string, error)    {}
func (NopHooks) CleanDeleteFailed(string, error) {}
func (NopHooks) LockContended(string)            {}
func (NopHooks) PingFailed(error)                {}
func (NopHooks) Connected(string)                {}
func (NopHooks) ConnectionError(string, error)   {}
