package lock

import (
	"context"
	"sync"
	"time"

	"github.com/scrimforge/roster/internal/roster"
)

// KeyedMutex serializes roster mutations per team within one process.
// Semaphore channels are created lazily and kept for the process lifetime;
// the set of teams a process touches is small.
type KeyedMutex struct {
	mu   sync.Mutex
	sems map[uint]chan struct{}
}

func NewKeyedMutex() *KeyedMutex { return &KeyedMutex{sems: map[uint]chan struct{}{}} }

func (k *KeyedMutex) sem(teamID uint) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.sems[teamID]
	if !ok {
		s = make(chan struct{}, 1)
		k.sems[teamID] = s
	}
	return s
}

// Acquire takes the team's lock, waiting at most wait (DefaultWait when <= 0).
func (k *KeyedMutex) Acquire(ctx context.Context, teamID uint, wait time.Duration) (func(), error) {
	if wait <= 0 {
		wait = DefaultWait
	}
	s := k.sem(teamID)
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case s <- struct{}{}:
		return func() { <-s }, nil
	case <-timer.C:
		return nil, roster.ErrConcurrentModification
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
