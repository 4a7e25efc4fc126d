package ristretto

import (
	"context"
	"fmt"
	"testing"
	"time"

	rc "github.com/dgraph-io/ristretto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRistrettoStore(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{MaxItems: 100})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(ctx) })

	require.NoError(t, p.Set(ctx, "k1", []byte("v1"), 0))
	require.NoError(t, p.Set(ctx, "k2", []byte("v2"), 0))

	got, ok, err := p.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), got)

	keys, err := p.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2"}, keys)

	existed, err := p.Del(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, existed)
	existed, err = p.Del(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, existed)

	keys, err = p.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k2"}, keys)

	require.NoError(t, p.Ping(ctx))
}

func TestRistrettoRejectsZeroCapacity(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestRistrettoCloseNonEmpty(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{MaxItems: 10})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0))
	}

	done := make(chan error, 1)
	go func() { done <- p.Close(ctx) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Close blocked on a non-empty store")
	}
	require.NoError(t, p.Close(ctx), "second close is a no-op")
}

func TestRistrettoStaleEvictionKeepsNewerKey(t *testing.T) {
	p, err := New(Config{MaxItems: 10})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	ctx := context.Background()

	require.NoError(t, p.Set(ctx, "k", []byte("old"), 0))
	p.mu.Lock()
	oldVer := p.keys["k"]
	p.mu.Unlock()
	require.NoError(t, p.Set(ctx, "k", []byte("new"), 0))

	// a late callback for the first write must not drop the key
	p.forget(&rc.Item{Value: entry{key: "k", ver: oldVer}})
	keys, err := p.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)
}
