package policy

import (
	"errors"
	"testing"

	"github.com/scrimforge/roster/internal/roster"
)

func TestResolveNormalizesAndAliases(t *testing.T) {
	reg := NewRegistry()
	cases := []struct {
		in   string
		want string
	}{
		{"league", "league"},
		{"LoL", "league"},
		{"  CSGO  ", "cs2"},
		{"pubg-mobile", "pubg"},
		{"DOTA", "dota2"},
	}
	for _, c := range cases {
		p, err := reg.Resolve(c.in)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", c.in, err)
		}
		if p.Code != c.want {
			t.Fatalf("Resolve(%q) = %q, want %q", c.in, p.Code, c.want)
		}
	}
}

func TestResolveUnknownGame(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Resolve("tetris")
	if !errors.Is(err, roster.ErrPolicyNotFound) {
		t.Fatalf("expected ErrPolicyNotFound, got %v", err)
	}
}

func TestDerivedQueries(t *testing.T) {
	reg := NewRegistry()
	p, err := reg.Resolve("league")
	if err != nil {
		t.Fatal(err)
	}
	if got := p.MaxRosterSize(); got != 8 {
		t.Fatalf("MaxRosterSize = %d, want 8", got)
	}
	if got := p.MinRosterSize(); got != 5 {
		t.Fatalf("MinRosterSize = %d, want 5", got)
	}
	if !p.IsLegalRole("JUNGLE") {
		t.Fatalf("expected jungle to be legal case-insensitively")
	}
	if p.IsLegalRole("goalkeeper") {
		t.Fatalf("goalkeeper is not a league role")
	}
	if len(p.LegalRoles()) != 5 {
		t.Fatalf("expected 5 roles, got %d", len(p.LegalRoles()))
	}
}

func TestLoadOverlayAddsAndReplaces(t *testing.T) {
	reg := NewRegistry()
	overlay := `{"policies":[
		{"name":"Chess","code":"chess","min_starters":1,"max_starters":1,"max_substitutes":1,"roles":["player"]},
		{"name":"CS2 Major","code":"CS2","min_starters":5,"max_starters":5,"max_substitutes":1,"roles":["igl","awper","rifler"]}
	]}`
	if err := reg.LoadOverlay([]byte(overlay)); err != nil {
		t.Fatalf("LoadOverlay: %v", err)
	}
	if _, err := reg.Resolve("chess"); err != nil {
		t.Fatalf("new code not registered: %v", err)
	}
	p, err := reg.Resolve("cs2")
	if err != nil {
		t.Fatal(err)
	}
	if p.MaxSubstitutes != 1 || len(p.Roles) != 3 {
		t.Fatalf("overlay did not replace cs2: %+v", p)
	}
	// built-ins not named by the overlay survive
	if _, err := reg.Resolve("league"); err != nil {
		t.Fatalf("league lost after overlay: %v", err)
	}
}

func TestLoadOverlayRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing roles":     `{"policies":[{"code":"x","min_starters":1,"max_starters":1,"max_substitutes":0}]}`,
		"empty roles":       `{"policies":[{"code":"x","min_starters":1,"max_starters":1,"max_substitutes":0,"roles":[]}]}`,
		"no policies key":   `{"games":[]}`,
		"max below min":     `{"policies":[{"code":"x","min_starters":5,"max_starters":3,"max_substitutes":0,"roles":["a"]}]}`,
		"negative subs":     `{"policies":[{"code":"x","min_starters":1,"max_starters":1,"max_substitutes":-1,"roles":["a"]}]}`,
		"zero max starters": `{"policies":[{"code":"x","min_starters":0,"max_starters":0,"max_substitutes":0,"roles":["a"]}]}`,
	}
	for name, overlay := range cases {
		reg := NewRegistry()
		if err := reg.LoadOverlay([]byte(overlay)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
		// a rejected overlay must leave the table untouched
		if _, err := reg.Resolve("league"); err != nil {
			t.Fatalf("%s: table corrupted by rejected overlay", name)
		}
	}
}
