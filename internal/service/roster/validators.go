package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/scrimforge/roster/internal/policy"
	dom "github.com/scrimforge/roster/internal/roster"
)

// snapshot is the locked view of one team's roster that validators inspect.
// Validators never mutate it; they return the first violated invariant.
type snapshot struct {
	team    *dom.Team
	policy  policy.GameRosterPolicy
	members []*dom.Membership
}

func (s *snapshot) active() []*dom.Membership {
	out := make([]*dom.Membership, 0, len(s.members))
	for _, m := range s.members {
		if m.IsActive() {
			out = append(out, m)
		}
	}
	return out
}

func (s *snapshot) activeCount() int { return len(s.active()) }

func (s *snapshot) starterCount() int {
	n := 0
	for _, m := range s.members {
		if m.IsActive() && m.IsStarter {
			n++
		}
	}
	return n
}

func (s *snapshot) substituteCount() int {
	n := 0
	for _, m := range s.members {
		if m.IsActive() && !m.IsStarter {
			n++
		}
	}
	return n
}

// activeOf returns the player's ACTIVE membership on this team, if any.
func (s *snapshot) activeOf(playerID uint) *dom.Membership {
	for _, m := range s.members {
		if m.PlayerID == playerID && m.IsActive() {
			return m
		}
	}
	return nil
}

// pendingOf returns the player's PENDING membership on this team, if any.
func (s *snapshot) pendingOf(playerID uint) *dom.Membership {
	for _, m := range s.members {
		if m.PlayerID == playerID && m.Status == dom.StatusPending {
			return m
		}
	}
	return nil
}

// checkCapacity rejects when the proposed ACTIVE count exceeds the policy cap.
func checkCapacity(s *snapshot, adding int) error {
	if s.activeCount()+adding > s.policy.MaxRosterSize() {
		return fmt.Errorf("%w: active %d + %d > cap %d",
			dom.ErrCapacityExceeded, s.activeCount(), adding, s.policy.MaxRosterSize())
	}
	return nil
}

// checkMinimumRoster rejects removals that would drop ACTIVE below the game minimum.
func checkMinimumRoster(s *snapshot, removing int) error {
	if s.activeCount()-removing < s.policy.MinRosterSize() {
		return fmt.Errorf("%w: active %d - %d < min %d",
			dom.ErrMinimumRoster, s.activeCount(), removing, s.policy.MinRosterSize())
	}
	return nil
}

// checkRoleValid validates the primary and optional secondary role names.
// A secondary role also requires the policy to allow multi-role play.
func checkRoleValid(s *snapshot, role, secondary string) error {
	if !s.policy.IsLegalRole(role) {
		return fmt.Errorf("%w: %q not in %v", dom.ErrRoleInvalid, role, s.policy.LegalRoles())
	}
	if secondary == "" {
		return nil
	}
	if !s.policy.AllowsMultiRole {
		return fmt.Errorf("%w: %q does not allow a secondary role", dom.ErrRoleInvalid, s.policy.Code)
	}
	if !s.policy.IsLegalRole(secondary) {
		return fmt.Errorf("%w: %q not in %v", dom.ErrRoleInvalid, secondary, s.policy.LegalRoles())
	}
	return nil
}

// checkRoleUnique applies the unique-starter-roles rule against active starters,
// ignoring excludePlayer (the subject of the mutation).
func checkRoleUnique(s *snapshot, role string, excludePlayer uint) error {
	if !s.policy.RequiresUniqueRoles {
		return nil
	}
	for _, m := range s.members {
		if !m.IsActive() || !m.IsStarter || m.PlayerID == excludePlayer {
			continue
		}
		if strings.EqualFold(m.Role, role) {
			return fmt.Errorf("%w: %q held by player %d", dom.ErrRoleTaken, role, m.PlayerID)
		}
	}
	return nil
}

// checkStarterQuota rejects when adding starters would exceed max_starters.
func checkStarterQuota(s *snapshot, adding int) error {
	if s.starterCount()+adding > s.policy.MaxStarters {
		return fmt.Errorf("%w: starters %d + %d > max %d",
			dom.ErrCapacityExceeded, s.starterCount(), adding, s.policy.MaxStarters)
	}
	return nil
}

// checkSubstituteQuota rejects when adding substitutes would exceed max_substitutes.
func checkSubstituteQuota(s *snapshot, adding int) error {
	if s.substituteCount()+adding > s.policy.MaxSubstitutes {
		return fmt.Errorf("%w: substitutes %d + %d > max %d",
			dom.ErrCapacityExceeded, s.substituteCount(), adding, s.policy.MaxSubstitutes)
	}
	return nil
}

// checkIGNUnique compares case-insensitively against other ACTIVE memberships.
// Empty IGNs never collide; ValidateForTournament flags them instead.
func checkIGNUnique(s *snapshot, ign string, excludePlayer uint) error {
	if strings.TrimSpace(ign) == "" {
		return nil
	}
	for _, m := range s.members {
		if !m.IsActive() || m.PlayerID == excludePlayer {
			continue
		}
		if dom.SameIGN(m.IGN, ign) {
			return fmt.Errorf("%w: %q", dom.ErrIGNTaken, ign)
		}
	}
	return nil
}

// checkCrossTeamExclusive scans for an ACTIVE membership on another team of the
// same game. Evaluated under only the target team's lock: two concurrent adds
// on two different teams can both pass. Known gap, kept from the original design.
func checkCrossTeamExclusive(ctx context.Context, store dom.Store, s *snapshot, playerID uint) error {
	others, err := store.ListActiveByPlayerGame(ctx, playerID, s.team.GameCode)
	if err != nil {
		return err
	}
	for _, m := range others {
		if m.TeamID != s.team.ID {
			return fmt.Errorf("%w: player %d active on team %d for %s",
				dom.ErrAlreadyMember, playerID, m.TeamID, s.team.GameCode)
		}
	}
	return nil
}

// checkTournamentLock rejects structural mutations while the roster is frozen.
func checkTournamentLock(ctx context.Context, gate dom.TournamentGate, teamID uint) error {
	locked, err := gate.IsRosterLocked(ctx, teamID)
	if err != nil {
		return fmt.Errorf("tournament gate: %w", err)
	}
	if locked {
		return fmt.Errorf("%w: team=%d", dom.ErrRosterLocked, teamID)
	}
	return nil
}
