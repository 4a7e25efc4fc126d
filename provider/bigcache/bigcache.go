// Package bigcache is an in-process provider.Store. BigCache has no per-entry
// TTL: every entry lives for LifeWindow, and the ttl passed to Set is ignored.
package bigcache

import (
	"context"
	"errors"
	"sort"
	"time"

	bc "github.com/allegro/bigcache/v3"

	pr "github.com/unkn0wn-root/lrucache/provider"
)

type Provider struct {
	c *bc.BigCache
}

var _ pr.Store = (*Provider)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(ctx context.Context, cfg Config) (*Provider, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	return p.c.Set(key, value)
}

func (p *Provider) Del(_ context.Context, key string) (bool, error) {
	err := p.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (p *Provider) Keys(context.Context) ([]string, error) {
	var keys []string
	it := p.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			// entry vanished mid-iteration
			continue
		}
		keys = append(keys, e.Key())
	}
	sort.Strings(keys)
	return keys, nil
}

func (p *Provider) Ping(context.Context) error { return nil }

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}
