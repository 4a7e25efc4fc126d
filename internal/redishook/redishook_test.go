package redishook

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsReportDialOutcome(t *testing.T) {
	var connected, failed []string
	h := Events{
		OnConnect: func(addr string) { connected = append(connected, addr) },
		OnError:   func(addr string, err error) { failed = append(failed, addr) },
	}

	ok := h.DialHook(func(context.Context, string, string) (net.Conn, error) {
		c, _ := net.Pipe()
		return c, nil
	})
	conn, err := ok(context.Background(), "tcp", "a:1")
	require.NoError(t, err)
	conn.Close()

	bad := h.DialHook(func(context.Context, string, string) (net.Conn, error) {
		return nil, errors.New("refused")
	})
	_, err = bad(context.Background(), "tcp", "b:2")
	require.Error(t, err)

	canceled := h.DialHook(func(context.Context, string, string) (net.Conn, error) {
		return nil, context.Canceled
	})
	_, _ = canceled(context.Background(), "tcp", "c:3")

	assert.Equal(t, []string{"a:1"}, connected)
	assert.Equal(t, []string{"b:2"}, failed)
}

func TestMonitorTracesCommands(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var (
		mu     sync.Mutex
		traces []Trace
	)
	rdb.AddHook(Monitor{Trace: func(tr Trace) {
		mu.Lock()
		traces = append(traces, tr)
		mu.Unlock()
	}})

	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, "k", "v", 0).Err())
	require.ErrorIs(t, rdb.Get(ctx, "missing").Err(), redis.Nil)
	_, err := rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, "k")
		p.Exists(ctx, "k")
		return nil
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	var names []string
	for _, tr := range traces {
		names = append(names, tr.Name)
		if tr.Name == "get" {
			assert.NoError(t, tr.Err, "miss must not be traced as an error")
			assert.Equal(t, []any{"missing"}, tr.Args)
		}
	}
	assert.Subset(t, names, []string{"set", "get", "del", "exists"})
}
