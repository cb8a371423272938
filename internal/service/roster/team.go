package roster

import (
	"context"
	"fmt"
	"strings"

	dom "github.com/scrimforge/roster/internal/roster"
)

// CreateTeamInput describes a new roster aggregate.
type CreateTeamInput struct {
	Name     string
	Tag      string
	Slug     string
	GameCode string
	// CaptainPlayerID, when set, triggers the best-effort captain membership
	// bootstrap after the team row is created.
	CaptainPlayerID *uint
}

// CreateTeamResult reports the created team and the outcome of the captain
// bootstrap. A bootstrap failure never rolls back team creation.
type CreateTeamResult struct {
	Team                *dom.Team
	CaptainBootstrapErr error
}

// CreateTeam validates the game code against the policy registry and persists
// the team. The game code is stored normalized and is immutable afterwards.
func (m *Manager) CreateTeam(ctx context.Context, in CreateTeamInput) (*CreateTeamResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("team name is required")
	}
	pol, err := m.policies.Resolve(in.GameCode)
	if err != nil {
		return nil, err
	}
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	}
	team := &dom.Team{
		Name:            name,
		Tag:             strings.TrimSpace(in.Tag),
		Slug:            slug,
		GameCode:        pol.Code,
		CaptainPlayerID: in.CaptainPlayerID,
		Active:          true,
	}
	if err := m.store.CreateTeam(ctx, team); err != nil {
		return nil, err
	}
	m.log.Info("team created", "team", team.ID, "game", team.GameCode, "slug", team.Slug)

	res := &CreateTeamResult{Team: team}
	if in.CaptainPlayerID != nil {
		if _, err := m.EnsureCaptainMembership(ctx, team.ID); err != nil {
			m.log.Error("captain bootstrap failed", "team", team.ID, "player", *in.CaptainPlayerID, "error", err)
			res.CaptainBootstrapErr = err
		}
	}
	return res, nil
}

// CaptainBootstrap reports what EnsureCaptainMembership did.
type CaptainBootstrap struct {
	// Created is true when a new ACTIVE membership was opened for the captain.
	Created bool
	// Repaired is true when an existing membership was missing the captain flag.
	Repaired bool
}

// EnsureCaptainMembership makes the team invariant hold: a set captain reference
// points at a player with an ACTIVE membership carrying the captain flag.
// Idempotent; a team without a captain reference is left untouched.
func (m *Manager) EnsureCaptainMembership(ctx context.Context, teamID uint) (CaptainBootstrap, error) {
	var out CaptainBootstrap
	err := m.mutate(ctx, teamID, func(s dom.Store, snap *snapshot) error {
		if snap.team.CaptainPlayerID == nil {
			return nil
		}
		captainID := *snap.team.CaptainPlayerID
		if ms := snap.activeOf(captainID); ms != nil {
			if ms.IsCaptain {
				return nil
			}
			ms.IsCaptain = true
			out.Repaired = true
			return s.UpdateMembership(ctx, ms)
		}

		if err := checkCapacity(snap, 1); err != nil {
			return err
		}
		if err := checkCrossTeamExclusive(ctx, s, snap, captainID); err != nil {
			return err
		}
		starter := snap.starterCount() < snap.policy.MaxStarters
		if !starter {
			if err := checkSubstituteQuota(snap, 1); err != nil {
				return err
			}
		}
		ms := &dom.Membership{
			TeamID:    teamID,
			PlayerID:  captainID,
			Role:      m.bootstrapRole(snap),
			Status:    dom.StatusActive,
			IsCaptain: true,
			IsStarter: starter,
			JoinedAt:  m.now(),
		}
		if err := s.CreateMembership(ctx, ms); err != nil {
			return err
		}
		out.Created = true
		return nil
	})
	if err != nil {
		return CaptainBootstrap{}, err
	}
	if out.Created || out.Repaired {
		m.log.Info("captain membership ensured", "team", teamID, "created", out.Created, "repaired", out.Repaired)
	}
	return out, nil
}

// bootstrapRole picks a legal role for the captain bootstrap: the first role no
// active starter holds when uniqueness applies, otherwise the first legal role.
func (m *Manager) bootstrapRole(snap *snapshot) string {
	roles := snap.policy.LegalRoles()
	if len(roles) == 0 {
		return ""
	}
	if !snap.policy.RequiresUniqueRoles {
		return roles[0]
	}
	taken := map[string]bool{}
	for _, ms := range snap.members {
		if ms.IsActive() && ms.IsStarter {
			taken[strings.ToLower(ms.Role)] = true
		}
	}
	for _, r := range roles {
		if !taken[strings.ToLower(r)] {
			return r
		}
	}
	return roles[0]
}
