package lrucache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/lrucache/codec"
)

func TestClusterOptionsBuildClusterClient(t *testing.T) {
	c, err := New[string](Options[string]{
		Cluster: &ClusterConfig{Nodes: []ClusterNode{{Host: "127.0.0.1", Port: 7000}}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close(context.Background())

	if _, ok := mustImpl(t, c).rdb.(*goredis.ClusterClient); !ok {
		t.Fatalf("rdb is %T, want *redis.ClusterClient", mustImpl(t, c).rdb)
	}
}

func TestParseRedis(t *testing.T) {
	o, err := parseRedis("redis://:secret@cache:6380/3")
	if err != nil {
		t.Fatal(err)
	}
	if o.Addr != "cache:6380" || o.DB != 3 || o.Password != "secret" {
		t.Fatalf("parsed %+v", o)
	}
	o, err = parseRedis("10.0.0.5:6379")
	if err != nil || o.Addr != "10.0.0.5:6379" {
		t.Fatalf("host:port: %+v %v", o, err)
	}
}

type connHooks struct {
	NopHooks
	connected chan string
}

func (h connHooks) Connected(addr string) {
	select {
	case h.connected <- addr:
	default:
	}
}

func TestRedisBackedCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	h := connHooks{connected: make(chan string, 4)}

	c, err := New[string](Options[string]{
		Redis:     mr.Addr(),
		Namespace: "it",
		Max:       2,
		Codec:     codec.String{},
		Hooks:     h,
		Monitor:   true,
		Redlock:   RedlockConfig{Tries: 2, RetryDelay: 10 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close(ctx)

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	select {
	case addr := <-h.connected:
		if addr != mr.Addr() {
			t.Fatalf("connected to %q", addr)
		}
	case <-time.After(time.Second):
		t.Fatal("Connected hook not called")
	}

	if err := c.SetTTL(ctx, "a", "1", time.Minute); err != nil {
		t.Fatal(err)
	}
	if got := mr.TTL("LRU-it-a"); got != time.Minute {
		t.Fatalf("ttl = %v", got)
	}
	_ = c.Set(ctx, "b", "2")
	_ = c.Set(ctx, "c", "3") // evicts a

	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatal("a should have been evicted")
	}
	keys, err := c.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0].Key != "b" || keys[1].Key != "c" {
		t.Fatalf("Keys = %v", keys)
	}

	unlock, err := c.Lock(ctx, "job", time.Second)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if !mr.Exists("LRU-it-job-lock") {
		t.Fatal("lock key not written")
	}
	if _, err := c.TryLock(ctx, "job", time.Second); !errors.Is(err, ErrLockTaken) {
		t.Fatalf("TryLock: %v", err)
	}
	if err := unlock(ctx); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	release, err := c.TryLock(ctx, "job", time.Second)
	if err != nil {
		t.Fatalf("TryLock after unlock: %v", err)
	}
	_ = release(ctx)

	if err := c.Clean(ctx); err != nil {
		t.Fatal(err)
	}
	if keys, _ := c.Keys(ctx); len(keys) != 0 {
		t.Fatalf("Clean left %v", keys)
	}
}

func TestLockRetriesExhaustedIsTaken(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c, err := New[string](Options[string]{
		Redis:   mr.Addr(),
		Redlock: RedlockConfig{Tries: 2, RetryDelay: 10 * time.Millisecond},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close(ctx)

	unlock, err := c.TryLock(ctx, "job", 5*time.Second)
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	defer unlock(ctx)

	if _, err := c.Lock(ctx, "job", 5*time.Second); !errors.Is(err, ErrLockTaken) {
		t.Fatalf("Lock on held key: %v, want ErrLockTaken", err)
	}
}

func TestLockStoreDownIsNotTaken(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c, err := New[string](Options[string]{
		Redis:   mr.Addr(),
		Redlock: RedlockConfig{Tries: 2, RetryDelay: 10 * time.Millisecond},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close(ctx)
	mr.Close()

	_, err = c.Lock(ctx, "job", 5*time.Second)
	if err == nil || errors.Is(err, ErrLockTaken) {
		t.Fatalf("Lock with store down: %v, want a non-contention error", err)
	}
}

func TestIndexNameIsAValidKey(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c, err := New[string](Options[string]{Redis: mr.Addr(), Namespace: "it", Codec: codec.String{}})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close(ctx)

	for _, k := range []string{"__lru_index", "lru-index", "a"} {
		if err := c.Set(ctx, k, "v-"+k); err != nil {
			t.Fatalf("Set(%q): %v", k, err)
		}
	}
	if err := c.Set(ctx, "b", "2"); err != nil {
		t.Fatalf("Set after index-like key: %v", err)
	}
	if v, ok, err := c.Get(ctx, "a"); err != nil || !ok || v != "v-a" {
		t.Fatalf("Get(a): %q %v %v", v, ok, err)
	}
	if v, ok, err := c.Get(ctx, "__lru_index"); err != nil || !ok || v != "v-__lru_index" {
		t.Fatalf("Get(__lru_index): %q %v %v", v, ok, err)
	}
	keys, err := c.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 4 {
		t.Fatalf("Keys = %v", keys)
	}
}

func TestRedlockDisabled(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := New[string](Options[string]{Redis: mr.Addr(), Redlock: RedlockConfig{Disabled: true}})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close(context.Background())
	if _, err := c.Lock(context.Background(), "k", 0); !errors.Is(err, ErrLockUnavailable) {
		t.Fatalf("Lock: %v", err)
	}
}
