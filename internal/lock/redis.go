package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/scrimforge/roster/internal/roster"
)

// RedisLocker serializes roster mutations across processes with SET NX + TTL.
// The TTL guards against a crashed holder wedging a team forever.
type RedisLocker struct {
	cli *redis.Client
	ttl time.Duration
}

const redisLockTTL = 15 * time.Second

// redisUnlock deletes the key only when it still holds our token.
var redisUnlock = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0`)

func NewRedisLocker(url string) (*RedisLocker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis locker: %w", err)
	}
	return &RedisLocker{cli: redis.NewClient(opt), ttl: redisLockTTL}, nil
}

func (l *RedisLocker) Close() error { return l.cli.Close() }

func lockKey(teamID uint) string { return fmt.Sprintf("roster:lock:team:%d", teamID) }

// Acquire polls SET NX until it wins the key or wait elapses.
func (l *RedisLocker) Acquire(ctx context.Context, teamID uint, wait time.Duration) (func(), error) {
	if wait <= 0 {
		wait = DefaultWait
	}
	key := lockKey(teamID)
	token := uuid.NewString()
	deadline := time.Now().Add(wait)
	for {
		ok, err := l.cli.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis locker: %w", err)
		}
		if ok {
			return func() {
				rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = redisUnlock.Run(rctx, l.cli, []string{key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, roster.ErrConcurrentModification
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}
