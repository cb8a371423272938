package roster

import (
	"context"
	"fmt"
	"strings"

	dom "github.com/scrimforge/roster/internal/roster"
)

// RosterStatus is the read-only summary of a team's roster against its policy.
type RosterStatus struct {
	TeamID          uint
	GameCode        string
	Starters        int
	Substitutes     int
	Active          int
	Pending         int
	MaxStarters     int
	MaxSubstitutes  int
	MinStarters     int
	StartersFull    bool
	SubstitutesFull bool
	Full            bool
	// Complete means the roster could field a legal lineup right now.
	Complete   bool
	HasCaptain bool
}

// GetRosterStatus reads a best-effort snapshot without taking the team lock.
func (m *Manager) GetRosterStatus(ctx context.Context, teamID uint) (*RosterStatus, error) {
	snap, err := m.loadSnapshot(ctx, m.store, teamID, false)
	if err != nil {
		return nil, err
	}
	pending := 0
	for _, ms := range snap.members {
		if ms.Status == dom.StatusPending {
			pending++
		}
	}
	st := &RosterStatus{
		TeamID:         teamID,
		GameCode:       snap.team.GameCode,
		Starters:       snap.starterCount(),
		Substitutes:    snap.substituteCount(),
		Active:         snap.activeCount(),
		Pending:        pending,
		MaxStarters:    snap.policy.MaxStarters,
		MaxSubstitutes: snap.policy.MaxSubstitutes,
		MinStarters:    snap.policy.MinStarters,
		HasCaptain:     snap.team.CaptainPlayerID != nil,
	}
	st.StartersFull = st.Starters >= st.MaxStarters
	st.SubstitutesFull = st.Substitutes >= st.MaxSubstitutes
	st.Full = st.Active >= snap.policy.MaxRosterSize()
	st.Complete = st.Starters >= st.MinStarters && st.HasCaptain
	return st, nil
}

// TournamentReport lists what blocks a roster from tournament registration.
// Issues block registration; warnings do not.
type TournamentReport struct {
	TeamID   uint
	Ready    bool
	Issues   []string
	Warnings []string
}

// ValidateForTournament checks minimum starters, captain presence, role
// uniqueness and missing IGNs. Read-only; never mutates.
func (m *Manager) ValidateForTournament(ctx context.Context, teamID uint) (*TournamentReport, error) {
	snap, err := m.loadSnapshot(ctx, m.store, teamID, false)
	if err != nil {
		return nil, err
	}
	rep := &TournamentReport{TeamID: teamID}

	if n := snap.starterCount(); n < snap.policy.MinStarters {
		rep.Issues = append(rep.Issues,
			fmt.Sprintf("only %d of %d required starters", n, snap.policy.MinStarters))
	}
	if snap.team.CaptainPlayerID == nil {
		rep.Issues = append(rep.Issues, "no captain designated")
	} else if snap.activeOf(*snap.team.CaptainPlayerID) == nil {
		rep.Issues = append(rep.Issues, "captain has no active membership")
	}
	if snap.policy.RequiresUniqueRoles {
		seen := map[string]uint{}
		for _, ms := range snap.members {
			if !ms.IsActive() || !ms.IsStarter {
				continue
			}
			key := strings.ToLower(ms.Role)
			if other, dup := seen[key]; dup {
				rep.Issues = append(rep.Issues,
					fmt.Sprintf("role %q held by players %d and %d", ms.Role, other, ms.PlayerID))
			} else {
				seen[key] = ms.PlayerID
			}
		}
	}
	for _, ms := range snap.active() {
		if strings.TrimSpace(ms.IGN) == "" {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("player %d has no IGN", ms.PlayerID))
		}
	}
	if snap.substituteCount() == 0 && snap.policy.MaxSubstitutes > 0 {
		rep.Warnings = append(rep.Warnings, "no substitutes on the bench")
	}

	rep.Ready = len(rep.Issues) == 0
	return rep, nil
}
