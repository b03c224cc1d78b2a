package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker(t *testing.T) {
	l := NewLocker(nil)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "checkout:1", time.Second)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "checkout:1", time.Second)
	assert.ErrorIs(t, err, ErrLockHeld)

	other, err := l.Acquire(ctx, "checkout:2", time.Second)
	require.NoError(t, err)
	other()

	release()
	release() // second release is a no-op

	again, err := l.Acquire(ctx, "checkout:1", time.Second)
	require.NoError(t, err)
	again()
}

func TestNopCache(t *testing.T) {
	c := NewRedisCache(nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1))
	var out int
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.DeletePrefix(ctx, "k"))
}
