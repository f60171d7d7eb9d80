package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestMemoryIncr(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	n, err := m.Incr(ctx, "counter", 60)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = m.Incr(ctx, "counter", 60)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, ok, err := m.Get(ctx, "counter")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", got)
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	// Backdate the entry so lazy expiry kicks in on the next access.
	m.mu.Lock()
	m.entries["stale"] = memoryEntry{value: "1", expiresAt: time.Now().Add(-time.Second)}
	m.mu.Unlock()

	_, ok, err := m.Get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)

	// Incr on an expired key restarts the sequence and re-applies the TTL.
	m.mu.Lock()
	m.entries["stale"] = memoryEntry{value: "7", expiresAt: time.Now().Add(-time.Second)}
	m.mu.Unlock()
	n, err := m.Incr(ctx, "stale", 60)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryExpire(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	require.NoError(t, m.Expire(ctx, "k", -1))

	// TTL <= 0 clears the expiry rather than deleting.
	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	// Expiring a missing key is a no-op.
	assert.NoError(t, m.Expire(ctx, "nope", 10))
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, m.Delete(ctx, "k"))
}
