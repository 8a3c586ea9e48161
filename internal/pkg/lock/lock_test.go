package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedis_AcquireRelease(t *testing.T) {
	mr, client := setupRedis(t)
	l := NewRedis(client, WithTTL(time.Minute), WithWait(0))
	ctx := context.Background()

	lease, err := l.Acquire(ctx, "otp:user@example.com")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:otp:user@example.com"))
	assert.Equal(t, time.Minute, mr.TTL("lock:otp:user@example.com"))

	_, err = l.Acquire(ctx, "otp:user@example.com")
	assert.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, lease.Release(ctx))
	assert.False(t, mr.Exists("lock:otp:user@example.com"))
	assert.ErrorIs(t, lease.Release(ctx), ErrNotHeld)

	acquired, contended := l.Stats()
	assert.Equal(t, int64(1), acquired)
	assert.GreaterOrEqual(t, contended, int64(1))
}

func TestRedis_ExpiredLeaseDoesNotReleaseNewHolder(t *testing.T) {
	mr, client := setupRedis(t)
	l := NewRedis(client, WithTTL(time.Second), WithWait(0))
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "k")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	fresh, err := l.Acquire(ctx, "k")
	require.NoError(t, err)

	assert.ErrorIs(t, stale.Release(ctx), ErrNotHeld)
	assert.True(t, mr.Exists("lock:k"))
	require.NoError(t, fresh.Release(ctx))
}

func TestRedis_WaitsForHolder(t *testing.T) {
	_, client := setupRedis(t)
	l := NewRedis(client, WithWait(2*time.Second))
	ctx := context.Background()

	first, err := l.Acquire(ctx, "k")
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = first.Release(ctx)
	}()

	second, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, second.Release(ctx))
}

func TestRedis_WithLockSerializes(t *testing.T) {
	_, client := setupRedis(t)
	l := NewRedis(client, WithPrefix("test:"), WithWait(5*time.Second))

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for range 5 {
		wg.Go(func() {
			err := l.WithLock(context.Background(), "same", func(context.Context) error {
				mu.Lock()
				inside++
				maxSeen = max(maxSeen, inside)
				mu.Unlock()

				time.Sleep(10 * time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestRedis_WithLockPropagatesError(t *testing.T) {
	mr, client := setupRedis(t)
	l := NewRedis(client)
	boom := errors.New("boom")

	err := l.WithLock(context.Background(), "k", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("lock:k"))
}

func TestRedis_ConnectionError(t *testing.T) {
	mr, client := setupRedis(t)
	mr.Close()

	_, err := NewRedis(client, WithWait(0)).Acquire(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotAcquired)
}

func TestNoop(t *testing.T) {
	called := false
	err := Noop{}.WithLock(context.Background(), "k", func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}
