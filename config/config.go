// Package config loads lrucache settings from a config file and
// LRUCACHE_* environment variables.
//
//	redis: redis://cache:6379/0
//	namespace: users
//	ping_interval: 5000   # ms; 0 or non-numeric disables keep-alive
//	max: 10000
//	ttl: 300              # seconds, or a duration like "5m"
//	redlock:
//	  tries: 16
//	  retry_delay: 100    # ms
//
// Every key can be overridden from the environment, e.g.
// LRUCACHE_REDIS, LRUCACHE_CLUSTER_NODES="h1:7000,h2:7001",
// LRUCACHE_REDLOCK_TRIES.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/unkn0wn-root/lrucache"
)

const EnvPrefix = "LRUCACHE"

// Config is the decoded, typed configuration.
type Config struct {
	Redis        string
	ClusterNodes []string // host:port; non-empty selects cluster mode
	Prefix       string
	Namespace    string
	PingInterval time.Duration
	Max          int64
	TTL          time.Duration
	Monitor      bool
	Disabled     bool

	Redlock Redlock
}

type Redlock struct {
	Disabled      bool
	Tries         int
	RetryDelay    time.Duration
	DriftFactor   float64
	TimeoutFactor float64
}

// FromURL is the bare connection-string shorthand.
func FromURL(url string) *Config {
	return &Config{Redis: url}
}

func defaults(v *viper.Viper) {
	v.SetDefault("redis", "")
	v.SetDefault("cluster.nodes", []string{})
	v.SetDefault("prefix", "")
	v.SetDefault("namespace", "")
	v.SetDefault("ping_interval", 0)
	v.SetDefault("max", 0)
	v.SetDefault("ttl", 0)
	v.SetDefault("monitor", false)
	v.SetDefault("disabled", false)
	v.SetDefault("redlock.disabled", false)
	v.SetDefault("redlock.tries", 0)
	v.SetDefault("redlock.retry_delay", 0)
	v.SetDefault("redlock.drift_factor", 0)
	v.SetDefault("redlock.timeout_factor", 0)
}

// Load reads path (any format viper knows; "" reads the environment only).
// envFiles that exist are loaded into the process environment first;
// variables already set win.
func Load(path string, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := gotenv.Load(f); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	c := &Config{
		Redis:        v.GetString("redis"),
		Prefix:       v.GetString("prefix"),
		Namespace:    v.GetString("namespace"),
		PingInterval: millis(v.Get("ping_interval")),
		Monitor:      v.GetBool("monitor"),
		Disabled:     v.GetBool("disabled"),
	}

	nodes, err := stringList(v.Get("cluster.nodes"))
	if err != nil {
		return nil, fmt.Errorf("config: cluster.nodes: %w", err)
	}
	c.ClusterNodes = nodes

	if c.Max, err = cast.ToInt64E(v.Get("max")); err != nil {
		return nil, fmt.Errorf("config: max: %w", err)
	}
	if c.TTL, err = seconds(v.Get("ttl")); err != nil {
		return nil, fmt.Errorf("config: ttl: %w", err)
	}

	c.Redlock.Disabled = v.GetBool("redlock.disabled")
	if c.Redlock.Tries, err = cast.ToIntE(v.Get("redlock.tries")); err != nil {
		return nil, fmt.Errorf("config: redlock.tries: %w", err)
	}
	c.Redlock.RetryDelay = millis(v.Get("redlock.retry_delay"))
	if c.Redlock.DriftFactor, err = cast.ToFloat64E(v.Get("redlock.drift_factor")); err != nil {
		return nil, fmt.Errorf("config: redlock.drift_factor: %w", err)
	}
	if c.Redlock.TimeoutFactor, err = cast.ToFloat64E(v.Get("redlock.timeout_factor")); err != nil {
		return nil, fmt.Errorf("config: redlock.timeout_factor: %w", err)
	}
	return c, nil
}

// millis reads a millisecond count. Anything non-numeric or non-positive
// yields 0 (disabled).
func millis(raw any) time.Duration {
	n, err := cast.ToInt64E(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Millisecond
}

// seconds accepts a number of seconds or a duration string.
func seconds(raw any) (time.Duration, error) {
	if n, err := cast.ToInt64E(raw); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return cast.ToDurationE(raw)
}

// stringList accepts a list or a comma separated string (the env form).
func stringList(raw any) ([]string, error) {
	if s, ok := raw.(string); ok {
		var out []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	}
	return cast.ToStringSliceE(raw)
}

// Options converts c into lrucache options. Logger, Hooks and Codec are
// left for the caller.
func Options[V any](c *Config) (lrucache.Options[V], error) {
	if c == nil {
		return lrucache.Options[V]{}, errors.New("config: nil config")
	}
	o := lrucache.Options[V]{
		Redis:        c.Redis,
		Prefix:       c.Prefix,
		Namespace:    c.Namespace,
		PingInterval: c.PingInterval,
		Max:          c.Max,
		TTL:          c.TTL,
		Monitor:      c.Monitor,
		Disabled:     c.Disabled,
		Redlock: lrucache.RedlockConfig{
			Disabled:      c.Redlock.Disabled,
			Tries:         c.Redlock.Tries,
			RetryDelay:    c.Redlock.RetryDelay,
			DriftFactor:   c.Redlock.DriftFactor,
			TimeoutFactor: c.Redlock.TimeoutFactor,
		},
	}
	if len(c.ClusterNodes) == 0 {
		return o, nil
	}

	cc := &lrucache.ClusterConfig{Nodes: make([]lrucache.ClusterNode, len(c.ClusterNodes))}
	for i, addr := range c.ClusterNodes {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return o, &lrucache.ConfigError{Field: "cluster.nodes", Reason: err.Error()}
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return o, &lrucache.ConfigError{Field: "cluster.nodes", Reason: fmt.Sprintf("port %q: %v", port, err)}
		}
		cc.Nodes[i] = lrucache.ClusterNode{Host: host, Port: p}
	}
	o.Cluster = cc
	return o, nil
}
