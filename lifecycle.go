package lrucache

import (
	"context"
	"net"
	"strconv"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/lrucache/codec"
	"github.com/unkn0wn-root/lrucache/internal/redishook"
	"github.com/unkn0wn-root/lrucache/lock/redlock"
	rp "github.com/unkn0wn-root/lrucache/provider/redis"
)

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if err := validate(opts); err != nil {
		return nil, err
	}

	c := &cache[V]{
		keys:       newKeyspace(opts.Prefix, opts.Namespace),
		enabled:    !opts.Disabled,
		defaultTTL: opts.TTL,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.codec = coalesce[codec.Codec[V]](opts.Codec, codec.JSON[V]{})

	if opts.Store != nil {
		c.store = opts.Store
		c.locker, c.tryLocker = opts.Locker, opts.TryLocker
	} else if err := c.connect(opts); err != nil {
		return nil, err
	}
	if c.locker == nil && c.tryLocker == nil {
		c.log.Warn("no lock backend; Lock and TryLock are disabled", nil)
	}

	if opts.PingInterval > 0 {
		c.pinger = startPinger(opts.PingInterval, c.keepAlive)
	}
	return c, nil
}

func validate[V any](opts Options[V]) error {
	if opts.Max < 0 {
		return &ConfigError{Field: "max", Reason: "must not be negative"}
	}
	if strings.HasPrefix(opts.Prefix, "\x00") {
		// reserved for the store's recency index
		return &ConfigError{Field: "prefix", Reason: "must not start with a NUL byte"}
	}
	if opts.Redlock.Tries < 0 {
		return &ConfigError{Field: "redlock.tries", Reason: "must not be negative"}
	}
	if opts.Store != nil {
		return nil
	}
	if opts.Cluster != nil {
		if len(opts.Cluster.Nodes) == 0 {
			return &ConfigError{Field: "cluster.nodes", Reason: "at least one node is required"}
		}
		for i, n := range opts.Cluster.Nodes {
			if n.Host == "" || n.Port <= 0 {
				return &ConfigError{Field: "cluster.nodes[" + strconv.Itoa(i) + "]", Reason: "host and port are required"}
			}
		}
		return nil
	}
	if opts.Redis != "" {
		_, err := parseRedis(opts.Redis)
		return err
	}
	return nil
}

// parseRedis accepts a redis:// or rediss:// URL or a bare host:port.
func parseRedis(s string) (*goredis.Options, error) {
	if strings.Contains(s, "://") {
		o, err := goredis.ParseURL(s)
		if err != nil {
			return nil, &ConfigError{Field: "redis", Reason: err.Error()}
		}
		return o, nil
	}
	if _, _, err := net.SplitHostPort(s); err != nil {
		return nil, &ConfigError{Field: "redis", Reason: err.Error()}
	}
	return &goredis.Options{Addr: s}, nil
}

// dial builds the client. go-redis connects lazily, so nothing here
// touches the network.
func dial[V any](opts Options[V]) (goredis.UniversalClient, error) {
	switch {
	case opts.Cluster != nil:
		var co goredis.ClusterOptions
		if opts.Cluster.Options != nil {
			co = *opts.Cluster.Options
		}
		co.Addrs = make([]string, len(opts.Cluster.Nodes))
		for i, n := range opts.Cluster.Nodes {
			co.Addrs[i] = net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
		}
		return goredis.NewClusterClient(&co), nil
	case opts.Redis != "":
		o, err := parseRedis(opts.Redis)
		if err != nil {
			return nil, err
		}
		return goredis.NewClient(o), nil
	case opts.RedisOptions != nil:
		return goredis.NewClient(opts.RedisOptions), nil
	default:
		return goredis.NewClient(&goredis.Options{Addr: defaultRedisAddr}), nil
	}
}

func (c *cache[V]) connect(opts Options[V]) error {
	rdb, err := dial(opts)
	if err != nil {
		return err
	}
	c.rdb = rdb
	c.observe(rdb, opts.Monitor)

	store, err := rp.New(rp.Config{
		Client:      rdb,
		CloseClient: true,
		Namespace:   c.keys.prefix,
		MaxItems:    coalesce(opts.Max, defaultMax),
	})
	if err != nil {
		_ = rdb.Close()
		return err
	}
	c.store = store

	if opts.Redlock.Disabled {
		return nil
	}
	clients := opts.Redlock.Clients
	if len(clients) == 0 {
		clients = []goredis.UniversalClient{rdb}
	}
	cfg := redlock.Config{
		Tries:         opts.Redlock.Tries,
		RetryDelay:    opts.Redlock.RetryDelay,
		DriftFactor:   opts.Redlock.DriftFactor,
		TimeoutFactor: opts.Redlock.TimeoutFactor,
	}
	blocking, err := redlock.New(clients, cfg)
	if err != nil {
		return err
	}
	// retry policy is fixed per instance, so TryLock gets its own
	cfg.Tries = 1
	single, err := redlock.New(clients, cfg)
	if err != nil {
		return err
	}
	c.locker, c.tryLocker = blocking, single
	return nil
}

// observe wires connection events and, optionally, command tracing.
// Cluster node clients are created on demand, so hooks go on each new node.
func (c *cache[V]) observe(rdb goredis.UniversalClient, monitor bool) {
	hooks := []goredis.Hook{redishook.Events{
		OnConnect: func(addr string) {
			c.log.Info("store connected", Fields{"addr": addr})
			c.hooks.Connected(addr)
		},
		OnError: func(addr string, err error) {
			c.log.Error("store connection error", Fields{"addr": addr, "err": err})
			c.hooks.ConnectionError(addr, err)
		},
	}}
	if monitor {
		hooks = append(hooks, redishook.Monitor{Trace: func(t redishook.Trace) {
			f := Fields{"cmd": t.Name, "args": t.Args, "took": t.Took}
			if t.Err != nil {
				f["err"] = t.Err
			}
			c.log.Debug("store command", f)
		}})
	}

	if cc, ok := rdb.(*goredis.ClusterClient); ok {
		cc.OnNewNode(func(node *goredis.Client) {
			for _, h := range hooks {
				node.AddHook(h)
			}
		})
		return
	}
	for _, h := range hooks {
		rdb.AddHook(h)
	}
}

func (c *cache[V]) keepAlive(ctx context.Context) {
	if err := c.store.Ping(ctx); err != nil {
		c.log.Warn("keep-alive ping failed", Fields{"err": err})
		c.hooks.PingFailed(err)
	}
}

func (c *cache[V]) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func (c *cache[V]) Keys(ctx context.Context) ([]KeyInfo, error) {
	if !c.enabled {
		return nil, nil
	}
	raw, err := c.store.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]KeyInfo, len(raw))
	for i, k := range raw {
		out[i] = KeyInfo{Key: c.keys.logical(k)}
	}
	return out, nil
}

// Close stops the keep-alive loop (once) and closes the store.
// Redlock clients passed in Options are left open.
func (c *cache[V]) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		if c.pinger != nil {
			c.pinger.stop()
		}
	})
	if c.store != nil {
		return c.store.Close(ctx)
	}
	return nil
}

