// Package lock provides short-lived mutual exclusion keyed by string,
// backed by Redis (SET NX PX plus a token-checked release).
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"go.uber.org/atomic"
)

var (
	// ErrNotAcquired is returned when the key stayed locked for the whole wait.
	ErrNotAcquired = errors.New("lock: not acquired")
	// ErrNotHeld is returned when releasing a lease that already expired or
	// was taken over.
	ErrNotHeld = errors.New("lock: not held")

	errBusy = errors.New("lock: busy")
)

// Locker runs fn while holding the lock for key.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// release deletes the key only if it still carries our token.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const (
	defaultTTL    = 15 * time.Second
	defaultWait   = 3 * time.Second
	defaultPrefix = "lock:"
	retryBase     = 25 * time.Millisecond
)

// Option tunes a Redis locker.
type Option func(*Redis)

// WithTTL bounds how long a crashed holder can keep the key.
func WithTTL(d time.Duration) Option {
	return func(r *Redis) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithWait bounds how long Acquire keeps retrying a busy key.
func WithWait(d time.Duration) Option {
	return func(r *Redis) {
		if d >= 0 {
			r.wait = d
		}
	}
}

func WithPrefix(p string) Option {
	return func(r *Redis) { r.prefix = p }
}

// Redis is a Locker on a single Redis deployment.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	wait   time.Duration

	acquired  atomic.Int64
	contended atomic.Int64
}

func NewRedis(client redis.UniversalClient, opts ...Option) *Redis {
	r := &Redis{client: client, prefix: defaultPrefix, ttl: defaultTTL, wait: defaultWait}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lease is a held lock.
type Lease struct {
	r     *Redis
	key   string
	token string
}

// Acquire takes the lock for key, retrying with jittered exponential
// backoff while another holder has it.
func (r *Redis) Acquire(ctx context.Context, key string) (*Lease, error) {
	lease := &Lease{r: r, key: r.prefix + key, token: uuid.NewString()}

	b := retry.WithMaxDuration(r.wait, retry.WithJitterPercent(20, retry.NewExponential(retryBase)))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		ok, err := r.client.SetNX(ctx, lease.key, lease.token, r.ttl).Result()
		if err != nil {
			return err
		}
		if !ok {
			r.contended.Inc()
			return retry.RetryableError(errBusy)
		}
		return nil
	})
	if errors.Is(err, errBusy) {
		return nil, ErrNotAcquired
	}
	if err != nil {
		return nil, err
	}

	r.acquired.Inc()
	return lease, nil
}

// Release gives the lock back. It never deletes a key re-acquired by
// someone else after this lease expired.
func (l *Lease) Release(ctx context.Context) error {
	n, err := release.Run(ctx, l.r.client, []string{l.key}, l.token).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

// WithLock acquires key, runs fn and releases. fn's error wins over a
// release error.
func (r *Redis) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) (err error) {
	lease, err := r.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		// release even if ctx was canceled mid-fn
		relErr := lease.Release(context.WithoutCancel(ctx))
		if err == nil && relErr != nil && !errors.Is(relErr, ErrNotHeld) {
			err = relErr
		}
	}()

	return fn(ctx)
}

// Stats reports how many locks were taken and how many attempts found the
// key busy.
func (r *Redis) Stats() (acquired, contended int64) {
	return r.acquired.Load(), r.contended.Load()
}

// Noop runs fn without any locking.
type Noop struct{}

func (Noop) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
