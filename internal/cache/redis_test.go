package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(mr.Addr(), "")
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	token, err := c.NewSession(ctx, "alice", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, ok, err := c.GetSession(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", username)

	require.NoError(t, c.DeleteSession(ctx, token))
	_, ok, err = c.GetSession(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	token, err = c.NewSession(ctx, "bob", time.Minute)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, ok, err = c.GetSession(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok, "session should expire with its ttl")
}

func TestApplyLock(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	release, err := c.AcquireApplyLock(ctx, 7, "alice", time.Minute)
	require.NoError(t, err)

	_, err = c.AcquireApplyLock(ctx, 7, "alice", time.Minute)
	assert.True(t, errors.Is(err, ErrLockHeld))

	other, err := c.AcquireApplyLock(ctx, 7, "bob", time.Minute)
	require.NoError(t, err)
	other()

	release()
	assert.False(t, mr.Exists(MakeApplyLockKey(7, "alice")))

	release, err = c.AcquireApplyLock(ctx, 7, "alice", time.Minute)
	require.NoError(t, err)
	release()
}

func TestReleaseDoesNotDropForeignLock(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	release, err := c.AcquireApplyLock(ctx, 1, "alice", time.Second)
	require.NoError(t, err)

	// first holder expired, a second request took over
	mr.FastForward(2 * time.Second)
	second, err := c.AcquireApplyLock(ctx, 1, "alice", time.Minute)
	require.NoError(t, err)
	defer second()

	release()
	assert.True(t, mr.Exists(MakeApplyLockKey(1, "alice")))
}
