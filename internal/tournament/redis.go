package tournament

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

// RedisGate reads the freeze flag the tournament subsystem publishes under
// roster:frozen:team:<id>. Key presence means the roster is locked.
type RedisGate struct {
	cli *redis.Client
}

func NewRedisGate(url string) (*RedisGate, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("tournament gate: %w", err)
	}
	return &RedisGate{cli: redis.NewClient(opt)}, nil
}

func (g *RedisGate) Close() error { return g.cli.Close() }

func freezeKey(teamID uint) string { return fmt.Sprintf("roster:frozen:team:%d", teamID) }

func (g *RedisGate) IsRosterLocked(ctx context.Context, teamID uint) (bool, error) {
	n, err := g.cli.Exists(ctx, freezeKey(teamID)).Result()
	if err != nil {
		return false, fmt.Errorf("tournament gate: %w", err)
	}
	return n > 0, nil
}
