package roster

import (
	"context"
	"fmt"
	"strings"

	dom "github.com/scrimforge/roster/internal/roster"
)

// AddPlayerInput describes a requested roster addition.
type AddPlayerInput struct {
	TeamID        uint
	PlayerID      uint
	Role          string
	SecondaryRole string
	IsStarter     bool
	IGN           string
	// AsPending creates the membership awaiting approval instead of ACTIVE.
	AsPending bool
}

// AddPlayer creates a membership after the full validator chain passes.
func (m *Manager) AddPlayer(ctx context.Context, in AddPlayerInput) (*dom.Membership, error) {
	var created *dom.Membership
	err := m.mutate(ctx, in.TeamID, func(s dom.Store, snap *snapshot) error {
		if snap.activeOf(in.PlayerID) != nil || snap.pendingOf(in.PlayerID) != nil {
			return fmt.Errorf("%w: player %d on team %d", dom.ErrAlreadyMember, in.PlayerID, in.TeamID)
		}
		if err := checkCapacity(snap, 1); err != nil {
			return err
		}
		if err := checkRoleValid(snap, in.Role, in.SecondaryRole); err != nil {
			return err
		}
		if in.IsStarter {
			if err := checkRoleUnique(snap, in.Role, in.PlayerID); err != nil {
				return err
			}
			if err := checkStarterQuota(snap, 1); err != nil {
				return err
			}
		} else {
			if err := checkSubstituteQuota(snap, 1); err != nil {
				return err
			}
		}
		if err := checkIGNUnique(snap, in.IGN, in.PlayerID); err != nil {
			return err
		}
		if err := checkCrossTeamExclusive(ctx, s, snap, in.PlayerID); err != nil {
			return err
		}
		if err := checkTournamentLock(ctx, m.gate, in.TeamID); err != nil {
			return err
		}

		status := dom.StatusActive
		if in.AsPending {
			status = dom.StatusPending
		}
		ms := &dom.Membership{
			TeamID:        in.TeamID,
			PlayerID:      in.PlayerID,
			Role:          strings.ToLower(strings.TrimSpace(in.Role)),
			SecondaryRole: strings.ToLower(strings.TrimSpace(in.SecondaryRole)),
			Status:        status,
			IsStarter:     in.IsStarter,
			IGN:           dom.NormalizeIGN(in.IGN),
			JoinedAt:      m.now(),
		}
		if err := s.CreateMembership(ctx, ms); err != nil {
			return err
		}
		created = ms
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.record("member_added", in.TeamID, in.PlayerID, map[string]string{
		"role": created.Role, "starter": fmt.Sprint(created.IsStarter), "status": string(created.Status),
	})
	return created, nil
}

// ApprovePending activates a PENDING membership, re-running the validators the
// roster may have outgrown since the request was filed.
func (m *Manager) ApprovePending(ctx context.Context, teamID, playerID uint) (*dom.Membership, error) {
	var approved *dom.Membership
	err := m.mutate(ctx, teamID, func(s dom.Store, snap *snapshot) error {
		ms := snap.pendingOf(playerID)
		if ms == nil {
			return fmt.Errorf("%w: no pending membership for player %d", dom.ErrNotAMember, playerID)
		}
		if err := checkCapacity(snap, 1); err != nil {
			return err
		}
		if ms.IsStarter {
			if err := checkRoleUnique(snap, ms.Role, playerID); err != nil {
				return err
			}
			if err := checkStarterQuota(snap, 1); err != nil {
				return err
			}
		} else {
			if err := checkSubstituteQuota(snap, 1); err != nil {
				return err
			}
		}
		if err := checkIGNUnique(snap, ms.IGN, playerID); err != nil {
			return err
		}
		if err := checkCrossTeamExclusive(ctx, s, snap, playerID); err != nil {
			return err
		}
		if err := checkTournamentLock(ctx, m.gate, teamID); err != nil {
			return err
		}
		if err := ms.Transition(dom.StatusActive); err != nil {
			return err
		}
		if err := s.UpdateMembership(ctx, ms); err != nil {
			return err
		}
		approved = ms
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.record("member_approved", teamID, playerID, map[string]string{"role": approved.Role})
	return approved, nil
}

// RemovePlayer terminates the player's ACTIVE membership. The captain cannot be
// removed; transfer captaincy first.
func (m *Manager) RemovePlayer(ctx context.Context, teamID, playerID uint) error {
	err := m.mutate(ctx, teamID, func(s dom.Store, snap *snapshot) error {
		ms := snap.activeOf(playerID)
		if ms == nil {
			return fmt.Errorf("%w: player %d on team %d", dom.ErrNotAMember, playerID, teamID)
		}
		if ms.IsCaptain || (snap.team.CaptainPlayerID != nil && *snap.team.CaptainPlayerID == playerID) {
			return fmt.Errorf("%w: cannot remove the captain", dom.ErrCaptainConstraint)
		}
		if err := checkMinimumRoster(snap, 1); err != nil {
			return err
		}
		if err := checkTournamentLock(ctx, m.gate, teamID); err != nil {
			return err
		}
		if err := ms.Transition(dom.StatusRemoved); err != nil {
			return err
		}
		now := m.now()
		ms.LeftAt = &now
		return s.UpdateMembership(ctx, ms)
	})
	if err != nil {
		return err
	}
	m.record("member_removed", teamID, playerID, nil)
	return nil
}

// PromoteToStarter flips an ACTIVE substitute into the starting lineup.
// Promoting a player who already starts is a no-op.
func (m *Manager) PromoteToStarter(ctx context.Context, teamID, playerID uint) error {
	changed := false
	err := m.mutate(ctx, teamID, func(s dom.Store, snap *snapshot) error {
		ms := snap.activeOf(playerID)
		if ms == nil {
			return fmt.Errorf("%w: player %d on team %d", dom.ErrNotAMember, playerID, teamID)
		}
		if ms.IsStarter {
			return nil
		}
		if err := checkStarterQuota(snap, 1); err != nil {
			return err
		}
		if err := checkRoleUnique(snap, ms.Role, playerID); err != nil {
			return err
		}
		if err := checkTournamentLock(ctx, m.gate, teamID); err != nil {
			return err
		}
		ms.IsStarter = true
		changed = true
		return s.UpdateMembership(ctx, ms)
	})
	if err != nil {
		return err
	}
	if changed {
		m.record("member_promoted", teamID, playerID, nil)
	}
	return nil
}

// DemoteToSubstitute moves an ACTIVE starter to the bench. The captain stays in
// the lineup, and the lineup never drops below the game minimum.
func (m *Manager) DemoteToSubstitute(ctx context.Context, teamID, playerID uint) error {
	changed := false
	err := m.mutate(ctx, teamID, func(s dom.Store, snap *snapshot) error {
		ms := snap.activeOf(playerID)
		if ms == nil {
			return fmt.Errorf("%w: player %d on team %d", dom.ErrNotAMember, playerID, teamID)
		}
		if !ms.IsStarter {
			return nil
		}
		if ms.IsCaptain || (snap.team.CaptainPlayerID != nil && *snap.team.CaptainPlayerID == playerID) {
			return fmt.Errorf("%w: cannot bench the captain", dom.ErrCaptainConstraint)
		}
		if snap.starterCount()-1 < snap.policy.MinStarters {
			return fmt.Errorf("%w: starters %d - 1 < min %d",
				dom.ErrMinimumRoster, snap.starterCount(), snap.policy.MinStarters)
		}
		if err := checkSubstituteQuota(snap, 1); err != nil {
			return err
		}
		if err := checkTournamentLock(ctx, m.gate, teamID); err != nil {
			return err
		}
		ms.IsStarter = false
		changed = true
		return s.UpdateMembership(ctx, ms)
	})
	if err != nil {
		return err
	}
	if changed {
		m.record("member_demoted", teamID, playerID, nil)
	}
	return nil
}

// TransferCaptaincy moves the captain flag to another ACTIVE member and updates
// the team's captain reference.
func (m *Manager) TransferCaptaincy(ctx context.Context, teamID, newCaptainPlayerID uint) error {
	err := m.mutate(ctx, teamID, func(s dom.Store, snap *snapshot) error {
		next := snap.activeOf(newCaptainPlayerID)
		if next == nil {
			return fmt.Errorf("%w: player %d on team %d", dom.ErrNotAMember, newCaptainPlayerID, teamID)
		}
		for _, ms := range snap.active() {
			if ms.IsCaptain && ms.PlayerID != newCaptainPlayerID {
				ms.IsCaptain = false
				if err := s.UpdateMembership(ctx, ms); err != nil {
					return err
				}
			}
		}
		if !next.IsCaptain {
			next.IsCaptain = true
			if err := s.UpdateMembership(ctx, next); err != nil {
				return err
			}
		}
		snap.team.CaptainPlayerID = &next.PlayerID
		return s.PutTeam(ctx, snap.team)
	})
	if err != nil {
		return err
	}
	m.record("captain_transferred", teamID, newCaptainPlayerID, nil)
	return nil
}

// ChangeRole updates the player's role fields and appends the old primary role
// to the membership's role history.
func (m *Manager) ChangeRole(ctx context.Context, teamID, playerID uint, newRole, newSecondary string) error {
	err := m.mutate(ctx, teamID, func(s dom.Store, snap *snapshot) error {
		ms := snap.activeOf(playerID)
		if ms == nil {
			return fmt.Errorf("%w: player %d on team %d", dom.ErrNotAMember, playerID, teamID)
		}
		if err := checkRoleValid(snap, newRole, newSecondary); err != nil {
			return err
		}
		if ms.IsStarter {
			if err := checkRoleUnique(snap, newRole, playerID); err != nil {
				return err
			}
		}
		if prev := ms.Role; prev != "" && !strings.EqualFold(prev, newRole) {
			ms.RoleHistory = append(ms.RoleHistory, prev)
		}
		ms.Role = strings.ToLower(strings.TrimSpace(newRole))
		ms.SecondaryRole = strings.ToLower(strings.TrimSpace(newSecondary))
		return s.UpdateMembership(ctx, ms)
	})
	if err != nil {
		return err
	}
	m.record("role_changed", teamID, playerID, map[string]string{"role": strings.ToLower(strings.TrimSpace(newRole))})
	return nil
}
