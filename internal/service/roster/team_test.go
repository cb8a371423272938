package roster

import (
	"context"
	"errors"
	"testing"

	dom "github.com/scrimforge/roster/internal/roster"
)

func TestCreateTeamBootstrapsCaptain(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()
	captain := uint(7)
	res, err := m.CreateTeam(ctx, CreateTeamInput{Name: "Bootstrapped", Slug: "bootstrapped", GameCode: "league", CaptainPlayerID: &captain})
	if err != nil {
		t.Fatal(err)
	}
	if res.CaptainBootstrapErr != nil {
		t.Fatalf("bootstrap failed: %v", res.CaptainBootstrapErr)
	}

	ms, err := store.GetMembership(ctx, res.Team.ID, captain)
	if err != nil {
		t.Fatalf("captain has no membership: %v", err)
	}
	if !ms.IsCaptain || !ms.IsStarter {
		t.Fatalf("bootstrap membership flags wrong: %+v", ms)
	}
	if ms.Role != "top" {
		t.Fatalf("bootstrap role = %q, want first free role top", ms.Role)
	}

	// a second run changes nothing
	out, err := m.EnsureCaptainMembership(ctx, res.Team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if out.Created || out.Repaired {
		t.Fatalf("second ensure was not a no-op: %+v", out)
	}
}

func TestEnsureCaptainRepairsFlag(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()
	team := seedTeam(t, m, "dota2", 2, 0)

	// point the team at player 1 without the membership flag
	got, err := store.GetTeam(ctx, team.ID)
	if err != nil {
		t.Fatal(err)
	}
	captain := uint(1)
	got.CaptainPlayerID = &captain
	if err := store.PutTeam(ctx, got); err != nil {
		t.Fatal(err)
	}

	out, err := m.EnsureCaptainMembership(ctx, team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Repaired || out.Created {
		t.Fatalf("expected a repair, got %+v", out)
	}
	ms, err := store.GetMembership(ctx, team.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !ms.IsCaptain {
		t.Fatalf("captain flag not repaired")
	}
}

func TestEnsureCaptainCrossTeamConflict(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()
	// player 1 already holds an ACTIVE dota2 membership elsewhere
	seedTeam(t, m, "dota2", 1, 0)

	captain := uint(1)
	res, err := m.CreateTeam(ctx, CreateTeamInput{Name: "Poachers", Slug: "poachers", GameCode: "dota2", CaptainPlayerID: &captain})
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(res.CaptainBootstrapErr, dom.ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember from bootstrap, got %v", res.CaptainBootstrapErr)
	}
	if _, err := store.GetMembership(ctx, res.Team.ID, captain); !errors.Is(err, dom.ErrNotAMember) {
		t.Fatalf("bootstrap opened a second active membership: %v", err)
	}
}

func TestEnsureCaptainWithoutReferenceIsNoop(t *testing.T) {
	m, _, _ := newTestManager(t)
	team := seedTeam(t, m, "dota2", 1, 0)

	out, err := m.EnsureCaptainMembership(context.Background(), team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if out.Created || out.Repaired {
		t.Fatalf("ensure touched a team with no captain reference: %+v", out)
	}
}

func TestGetRosterStatus(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	team := seedTeam(t, m, "dota2", 5, 1)

	st, err := m.GetRosterStatus(ctx, team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if st.Starters != 5 || st.Substitutes != 1 || st.Active != 6 {
		t.Fatalf("counts wrong: %+v", st)
	}
	if !st.StartersFull || st.SubstitutesFull || st.Full {
		t.Fatalf("fullness flags wrong: %+v", st)
	}
	if st.Complete {
		t.Fatalf("roster without a captain reported complete")
	}

	if err := m.TransferCaptaincy(ctx, team.ID, 1); err != nil {
		t.Fatal(err)
	}
	st, err = m.GetRosterStatus(ctx, team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !st.HasCaptain || !st.Complete {
		t.Fatalf("captained full lineup not complete: %+v", st)
	}
}

func TestValidateForTournament(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	team := seedTeam(t, m, "league", 3, 0)

	rep, err := m.ValidateForTournament(ctx, team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Ready {
		t.Fatalf("3 starters and no captain reported ready")
	}
	// short lineup and missing captain both block registration
	if len(rep.Issues) != 2 {
		t.Fatalf("issues = %v, want starter shortfall and missing captain", rep.Issues)
	}

	// fill the lineup and designate a captain
	for i, role := range []string{"adc", "support"} {
		if _, err := m.AddPlayer(ctx, AddPlayerInput{TeamID: team.ID, PlayerID: uint(10 + i), Role: role, IsStarter: true, IGN: ""}); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.TransferCaptaincy(ctx, team.ID, 1); err != nil {
		t.Fatal(err)
	}
	rep, err = m.ValidateForTournament(ctx, team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Ready || len(rep.Issues) != 0 {
		t.Fatalf("full captained lineup not ready: %+v", rep)
	}
	// the two blank IGNs and the empty bench warn but do not block
	if len(rep.Warnings) != 3 {
		t.Fatalf("warnings = %v, want two blank IGNs and empty bench", rep.Warnings)
	}
}
