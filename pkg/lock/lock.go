// Package lock provides a Redis-backed distributed lock, used by
// pkg/gc.Runner to ensure only one GC run proceeds against a given
// environment at a time across processes.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotHeld is returned by Release when the lock is not held by this
// token, either because it expired or another holder acquired it.
var ErrNotHeld = errors.New("lock: not held")

// releaseScript deletes key only if its value still matches token,
// preventing a caller from releasing a lock it no longer holds after its
// TTL expired and someone else acquired it.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Lock is a single Redis-backed mutual-exclusion lock keyed by name.
type Lock struct {
	client *redis.Client
	key    string
}

// New returns a Lock over the given key, backed by client.
func New(client *redis.Client, key string) *Lock {
	return &Lock{client: client, key: key}
}

// Acquire attempts to take the lock with the given TTL, returning a
// token to pass to Release. acquired is false if another holder
// currently has the lock; this is not an error.
func (l *Lock) Acquire(ctx context.Context, ttl time.Duration) (token string, acquired bool, err error) {
	token, err = randomToken()
	if err != nil {
		return "", false, err
	}
	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// Release gives up the lock if token still matches the value held in
// Redis. Returns ErrNotHeld if it does not (already expired, or
// re-acquired by another holder).
func (l *Lock) Release(ctx context.Context, token string) error {
	n, err := l.client.Eval(ctx, releaseScript, []string{l.key}, token).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

// WithLock runs fn while holding the lock, retrying Acquire every
// pollInterval until ctx is cancelled. The lock is released when fn
// returns, regardless of outcome.
func WithLock(ctx context.Context, l *Lock, ttl, pollInterval time.Duration, fn func(ctx context.Context) error) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		token, acquired, err := l.Acquire(ctx, ttl)
		if err != nil {
			return err
		}
		if acquired {
			defer l.Release(ctx, token)
			return fn(ctx)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
