package rdx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Locker = (*RedisLocker)(nil)
	_ Locker = (*MemLocker)(nil)
)

func TestMemLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemLocker()
	l.clock = func() time.Time { return now }

	ok, err := l.Acquire(ctx, "temp_1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = l.Acquire(ctx, "temp_1", time.Minute)
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = l.Acquire(ctx, "temp_1", time.Minute)
	assert.True(t, ok, "expired lock is reusable")

	require.NoError(t, l.Release(ctx, "temp_1"))
	ok, _ = l.Acquire(ctx, "temp_1", time.Minute)
	assert.True(t, ok)
}
