package lrucache

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/unkn0wn-root/lrucache/internal/glob"
)

// Clean lists every key once and deletes those matching any pattern.
// It is best-effort: keys written while it runs may survive, and failed
// deletions are logged and reported to Hooks but do not fail the call.
func (c *cache[V]) Clean(ctx context.Context, patterns ...string) error {
	if !c.enabled {
		return nil
	}
	if len(patterns) == 0 {
		patterns = []string{"**"}
	}
	anchored := make([]string, len(patterns))
	for i, p := range patterns {
		anchored[i] = c.keys.pattern(p)
	}
	m, err := glob.Compile(anchored...)
	if err != nil {
		return err
	}

	keys, err := c.store.Keys(ctx)
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(cleanConcurrency)
	matched := 0
	for _, k := range keys {
		if !m.Match(k) {
			continue
		}
		matched++
		k := k
		g.Go(func() error {
			if _, err := c.store.Del(ctx, k); err != nil {
				c.log.Warn("clean: delete failed", Fields{"key": k, "err": err})
				c.hooks.CleanDeleteFailed(k, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	c.log.Debug("cleaned keys", Fields{"patterns": patterns, "listed": len(keys), "matched": matched})
	return nil
}
