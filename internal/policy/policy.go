// Package policy holds the per-game roster-shape rules and the registry that
// resolves a game code to them. Policies are data; no game gets its own code path.
package policy

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/scrimforge/roster/internal/roster"
)

// GameRosterPolicy describes the legal roster shape for one game.
// Instances are immutable once registered.
type GameRosterPolicy struct {
	Name             string            `json:"name"`
	Code             string            `json:"code"`
	MinStarters      int               `json:"min_starters"`
	MaxStarters      int               `json:"max_starters"`
	MaxSubstitutes   int               `json:"max_substitutes"`
	Roles            []string          `json:"roles"`
	RoleDescriptions map[string]string `json:"role_descriptions,omitempty"`
	// RequiresUniqueRoles forces distinct roles among active starters.
	RequiresUniqueRoles bool `json:"requires_unique_roles"`
	AllowsMultiRole     bool `json:"allows_multi_role"`
}

// MaxRosterSize is the total ACTIVE cap (starters plus substitutes).
func (p GameRosterPolicy) MaxRosterSize() int { return p.MaxStarters + p.MaxSubstitutes }

// MinRosterSize is the minimum ACTIVE count a legal roster keeps.
func (p GameRosterPolicy) MinRosterSize() int { return p.MinStarters }

// LegalRoles returns the ordered role list.
func (p GameRosterPolicy) LegalRoles() []string { return p.Roles }

// IsLegalRole reports whether role is legal for this game (case-insensitive).
func (p GameRosterPolicy) IsLegalRole(role string) bool {
	role = strings.TrimSpace(role)
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// aliases maps legacy or colloquial game codes to canonical policy codes.
var aliases = map[string]string{
	"pubg-mobile": "pubg",
	"pubgm":       "pubg",
	"csgo":        "cs2",
	"cs":          "cs2",
	"lol":         "league",
	"dota":        "dota2",
	"ow":          "overwatch",
	"ow2":         "overwatch",
	"rl":          "rocketleague",
	"val":         "valorant",
}

// Registry resolves normalized game codes to policies. The table is swapped
// atomically on overlay reload; individual policies are never mutated.
type Registry struct {
	mu    sync.RWMutex
	table map[string]GameRosterPolicy
}

// NewRegistry returns a registry seeded with the built-in policy table.
func NewRegistry() *Registry {
	return &Registry{table: builtinTable()}
}

// Normalize lowercases, trims and de-aliases a game code.
func Normalize(code string) string {
	c := strings.ToLower(strings.TrimSpace(code))
	if canonical, ok := aliases[c]; ok {
		return canonical
	}
	return c
}

// Resolve returns the policy for a game code or roster.ErrPolicyNotFound.
func (r *Registry) Resolve(code string) (GameRosterPolicy, error) {
	c := Normalize(code)
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.table[c]
	if !ok {
		return GameRosterPolicy{}, fmt.Errorf("%w: %q", roster.ErrPolicyNotFound, code)
	}
	return p, nil
}

// Codes returns the registered canonical codes, sorted.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.table))
	for c := range r.table {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// swap replaces the whole table. Callers pass a fully built map.
func (r *Registry) swap(table map[string]GameRosterPolicy) {
	r.mu.Lock()
	r.table = table
	r.mu.Unlock()
}

// snapshot copies the current table for overlay merging.
func (r *Registry) snapshot() map[string]GameRosterPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make(map[string]GameRosterPolicy, len(r.table))
	for k, v := range r.table {
		cp[k] = v
	}
	return cp
}

// builtinTable is built fresh per registry so overlays never bleed between instances.
func builtinTable() map[string]GameRosterPolicy {
	list := []GameRosterPolicy{
		{
			Name: "League of Legends", Code: "league",
			MinStarters: 5, MaxStarters: 5, MaxSubstitutes: 3,
			Roles: []string{"top", "jungle", "mid", "adc", "support"},
			RoleDescriptions: map[string]string{
				"top": "Top lane", "jungle": "Jungle", "mid": "Mid lane",
				"adc": "Bot carry", "support": "Support",
			},
			RequiresUniqueRoles: true,
		},
		{
			Name: "Dota 2", Code: "dota2",
			MinStarters: 5, MaxStarters: 5, MaxSubstitutes: 2,
			Roles:               []string{"carry", "mid", "offlane", "soft_support", "hard_support"},
			RequiresUniqueRoles: true,
		},
		{
			Name: "Counter-Strike 2", Code: "cs2",
			MinStarters: 5, MaxStarters: 5, MaxSubstitutes: 2,
			Roles:           []string{"igl", "awper", "entry", "rifler", "lurker", "support"},
			AllowsMultiRole: true,
		},
		{
			Name: "Valorant", Code: "valorant",
			MinStarters: 5, MaxStarters: 5, MaxSubstitutes: 2,
			Roles:           []string{"duelist", "controller", "initiator", "sentinel", "flex"},
			AllowsMultiRole: true,
		},
		{
			Name: "Overwatch 2", Code: "overwatch",
			MinStarters: 5, MaxStarters: 5, MaxSubstitutes: 3,
			Roles:               []string{"tank", "damage", "support"},
			RequiresUniqueRoles: false,
		},
		{
			Name: "Rocket League", Code: "rocketleague",
			MinStarters: 3, MaxStarters: 3, MaxSubstitutes: 1,
			Roles: []string{"striker", "midfield", "goalkeeper"},
		},
		{
			Name: "PUBG", Code: "pubg",
			MinStarters: 4, MaxStarters: 4, MaxSubstitutes: 2,
			Roles: []string{"igl", "fragger", "support", "scout"},
		},
		{
			Name: "Apex Legends", Code: "apex",
			MinStarters: 3, MaxStarters: 3, MaxSubstitutes: 1,
			Roles: []string{"igl", "fragger", "anchor"},
		},
		{
			Name: "EA FC", Code: "fifa",
			MinStarters: 1, MaxStarters: 1, MaxSubstitutes: 1,
			Roles: []string{"player"},
		},
	}
	table := make(map[string]GameRosterPolicy, len(list))
	for _, p := range list {
		table[p.Code] = p
	}
	return table
}
