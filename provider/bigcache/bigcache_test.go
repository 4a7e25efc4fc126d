package bigcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigcacheStore(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Config{LifeWindow: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(ctx) })

	require.NoError(t, p.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, p.Set(ctx, "a", []byte("1"), time.Second))

	got, ok, err := p.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("1"), got)

	keys, err := p.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	existed, err := p.Del(ctx, "a")
	require.NoError(t, err)
	assert.True(t, existed)
	existed, err = p.Del(ctx, "a")
	require.NoError(t, err)
	assert.False(t, existed)

	_, ok, err = p.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}
