// Package tournament adapts the tournament subsystem's roster-freeze query for
// the roster engine. The engine only ever asks one thing: is this team's roster
// currently locked for an active tournament.
package tournament

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/scrimforge/roster/internal/roster"
)

// Noop reports every roster as unlocked. Default when no tournament backend is wired.
type Noop struct{}

func (Noop) IsRosterLocked(ctx context.Context, teamID uint) (bool, error) { return false, nil }

// Static answers from a fixed set. Used by tests and local tooling.
type Static struct {
	mu     sync.RWMutex
	locked map[uint]bool
}

func NewStatic(teamIDs ...uint) *Static {
	s := &Static{locked: map[uint]bool{}}
	for _, id := range teamIDs {
		s.locked[id] = true
	}
	return s
}

func (s *Static) SetLocked(teamID uint, locked bool) {
	s.mu.Lock()
	s.locked[teamID] = locked
	s.mu.Unlock()
}

func (s *Static) IsRosterLocked(ctx context.Context, teamID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locked[teamID], nil
}

// FromEnv builds a gate based on env configuration.
// ROSTER_TOURNAMENT_GATE: redis|noop (default). Redis uses REDIS_URL.
func FromEnv() roster.TournamentGate {
	switch os.Getenv("ROSTER_TOURNAMENT_GATE") {
	case "redis":
		url := os.Getenv("REDIS_URL")
		if url == "" {
			url = "redis://localhost:6379/0"
		}
		g, err := NewRedisGate(url)
		if err != nil {
			slog.Warn("tournament gate redis unavailable, using noop", "error", err)
			return Noop{}
		}
		return g
	default:
		return Noop{}
	}
}
