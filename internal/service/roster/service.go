// Package roster implements the roster manager: the orchestrator that decides
// whether a requested membership change is legal and applies it atomically.
// Every mutation runs under the target team's exclusive lock and inside one
// storage transaction; validators see a state that reflects every previously
// completed mutation on that team.
package roster

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/scrimforge/roster/internal/lock"
	"github.com/scrimforge/roster/internal/policy"
	dom "github.com/scrimforge/roster/internal/roster"
)

// Auditor records successful roster mutations. Satisfied by audit/chain.Writer.
type Auditor interface {
	Log(kind, actor, target string, meta map[string]string) error
}

// Manager exposes the roster operations. Safe for concurrent use.
type Manager struct {
	store    dom.Store
	policies *policy.Registry
	locker   lock.TeamLocker
	gate     dom.TournamentGate
	audit    Auditor
	log      *slog.Logger
	clock    func() time.Time
	lockWait time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithAudit attaches an audit trail for successful mutations.
func WithAudit(a Auditor) Option { return func(m *Manager) { m.audit = a } }

// WithClock overrides the time source (tests).
func WithClock(clock func() time.Time) Option { return func(m *Manager) { m.clock = clock } }

// WithLockWait bounds how long mutations wait for a contended team lock.
func WithLockWait(d time.Duration) Option { return func(m *Manager) { m.lockWait = d } }

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option { return func(m *Manager) { m.log = l } }

func NewManager(store dom.Store, policies *policy.Registry, locker lock.TeamLocker, gate dom.TournamentGate, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		policies: policies,
		locker:   locker,
		gate:     gate,
		log:      slog.Default(),
		clock:    time.Now,
		lockWait: lock.DefaultWait,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) now() time.Time { return m.clock().UTC() }

// mutate runs fn under the team lock inside one transaction. fn sees a fresh
// snapshot of the roster; any error aborts with no partial write.
func (m *Manager) mutate(ctx context.Context, teamID uint, fn func(s dom.Store, snap *snapshot) error) error {
	release, err := m.locker.Acquire(ctx, teamID, m.lockWait)
	if err != nil {
		return err
	}
	defer release()

	return m.store.Transact(ctx, func(s dom.Store) error {
		snap, err := m.loadSnapshot(ctx, s, teamID, true)
		if err != nil {
			return err
		}
		return fn(s, snap)
	})
}

// loadSnapshot reads team, policy and memberships. forUpdate row-locks the team
// row on backends that support it.
func (m *Manager) loadSnapshot(ctx context.Context, s dom.Store, teamID uint, forUpdate bool) (*snapshot, error) {
	var (
		team *dom.Team
		err  error
	)
	if forUpdate {
		team, err = s.GetTeamForUpdate(ctx, teamID)
	} else {
		team, err = s.GetTeam(ctx, teamID)
	}
	if err != nil {
		return nil, err
	}
	pol, err := m.policies.Resolve(team.GameCode)
	if err != nil {
		return nil, err
	}
	members, err := s.ListTeamMemberships(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return &snapshot{team: team, policy: pol, members: members}, nil
}

// record logs and audits one completed mutation.
func (m *Manager) record(kind string, teamID, playerID uint, meta map[string]string) {
	args := []any{"team", teamID, "player", playerID}
	for k, v := range meta {
		args = append(args, k, v)
	}
	m.log.Info("roster "+kind, args...)
	if m.audit == nil {
		return
	}
	actor := strconv.FormatUint(uint64(playerID), 10)
	target := strconv.FormatUint(uint64(teamID), 10)
	if err := m.audit.Log(kind, actor, target, meta); err != nil {
		m.log.Warn("roster audit append failed", "kind", kind, "error", err)
	}
}
