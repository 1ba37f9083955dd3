package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	dErrors "parley/pkg/domain-errors"
)

const keyPrefix = "parley:lock:request:"

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared across engine instances. Each lock is a key set
// with NX and a TTL, holding a random token.
type Redis struct {
	client     *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
	observer   WaitObserver
}

type RedisOption func(*Redis)

func WithTTL(d time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = d }
}

func WithRetryDelay(d time.Duration) RedisOption {
	return func(r *Redis) { r.retryDelay = d }
}

func WithRedisWaitObserver(o WaitObserver) RedisOption {
	return func(r *Redis) { r.observer = o }
}

func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, ttl: 10 * time.Second, retryDelay: 20 * time.Millisecond}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	redisKey := keyPrefix + key
	token := uuid.NewString()
	start := time.Now()
	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return dErrors.Wrap(err, dErrors.CodeTimeout, "lock aborted: context cancelled")
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "acquire request lock")
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "timed out waiting for request lock")
		case <-time.After(r.retryDelay):
		}
	}
	if r.observer != nil {
		r.observer.ObserveLockWait(start)
	}

	defer func() {
		// release with a fresh context so a cancelled caller still unlocks
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, r.client, []string{redisKey}, token).Err()
	}()
	return fn(ctx)
}
