package locking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	rd "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/example/orderbot/internal/ctxutil"
	"github.com/example/orderbot/internal/ports/secondary"
)

// luaReleaseIfMatch deletes the lock only while it still carries our token,
// so an expired lock taken over by another holder is left alone.
const luaReleaseIfMatch = `
local lockKey = KEYS[1]
local token = ARGV[1]
if redis.call('GET', lockKey) == token then
  return redis.call('DEL', lockKey)
end
return 0
`

const (
	// DefaultLockTTL bounds how long a crashed holder can block a key.
	DefaultLockTTL = 10 * time.Second
	// DefaultRetryInterval is the polling interval while a key is held.
	DefaultRetryInterval = 25 * time.Millisecond

	keyPrefix = "orderbot:lock:"
)

// LockKey namespaces a locker key in Redis.
func LockKey(key string) string {
	return keyPrefix + key
}

// RedisLocker serializes holders of the same key across processes using
// SET NX PX with a random token and a compare-and-delete release.
type RedisLocker struct {
	rdb    rd.UniversalClient
	ttl    time.Duration
	retry  time.Duration
	logger zerolog.Logger
}

// RedisOption customizes a RedisLocker.
type RedisOption func(*RedisLocker)

// WithTTL sets the lock expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(l *RedisLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithRetryInterval sets the polling interval.
func WithRetryInterval(d time.Duration) RedisOption {
	return func(l *RedisLocker) {
		if d > 0 {
			l.retry = d
		}
	}
}

// NewRedisLocker creates a Redis-backed locker.
func NewRedisLocker(rdb rd.UniversalClient, logger zerolog.Logger, opts ...RedisOption) *RedisLocker {
	l := &RedisLocker{
		rdb:    rdb,
		ttl:    DefaultLockTTL,
		retry:  DefaultRetryInterval,
		logger: logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock polls until key is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := LockKey(key)
	// The token names the holder so a stuck key can be traced to its command.
	token := ctxutil.InvocationFromContext(ctx)
	if token == "" {
		token = uuid.NewString()
	}
	log := l.logger.With().Str("key", lockKey).Str("actor", ctxutil.ActorFromContext(ctx)).Logger()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return l.releaser(log, lockKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) releaser(log zerolog.Logger, lockKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() { l.release(log, lockKey, token) })
	}
}

func (l *RedisLocker) release(log zerolog.Logger, lockKey, token string) {
	// Release even if the command context was cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), l.ttl)
	defer cancel()

	n, err := l.rdb.Eval(ctx, luaReleaseIfMatch, []string{lockKey}, token).Int()
	if err != nil && !errors.Is(err, rd.Nil) {
		log.Warn().Err(err).Str("token", token).Msg("failed to release lock")
		return
	}
	if n == 0 {
		log.Warn().Str("token", token).Msg("lock expired before release")
	}
}

var _ secondary.Locker = (*RedisLocker)(nil)
