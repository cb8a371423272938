// Package lock provides the exclusive per-team locks that serialize roster
// mutations. The default is an in-process keyed mutex; a redis-backed locker
// covers multi-process deployments.
package lock

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// DefaultWait bounds how long a mutation waits for a team lock before it
// surfaces a busy-retry failure.
const DefaultWait = 3 * time.Second

// TeamLocker grants exclusive ownership of one team's roster for the duration
// of a mutation. Acquire blocks up to wait and returns a release func, or
// roster.ErrConcurrentModification when the lock stays contended.
type TeamLocker interface {
	Acquire(ctx context.Context, teamID uint, wait time.Duration) (release func(), err error)
}

// FromEnv selects the lock backend.
// ROSTER_LOCK_BACKEND: local (default) | redis. Redis uses REDIS_URL.
func FromEnv() TeamLocker {
	switch os.Getenv("ROSTER_LOCK_BACKEND") {
	case "redis":
		url := os.Getenv("REDIS_URL")
		if url == "" {
			url = "redis://localhost:6379/0"
		}
		l, err := NewRedisLocker(url)
		if err != nil {
			slog.Warn("redis locker unavailable, falling back to local", "error", err)
			return NewKeyedMutex()
		}
		return l
	default:
		return NewKeyedMutex()
	}
}
