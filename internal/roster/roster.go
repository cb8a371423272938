package roster

import (
	"fmt"
	"strings"
	"time"
)

// MembershipStatus is the lifecycle state of a membership.
// Starter vs substitute is a flag on ACTIVE memberships, not a separate status.
type MembershipStatus string

const (
	StatusPending  MembershipStatus = "PENDING"
	StatusActive   MembershipStatus = "ACTIVE"
	StatusInactive MembershipStatus = "INACTIVE"
	StatusRemoved  MembershipStatus = "REMOVED"
)

// Team is the domain DTO used by services/handlers. It mirrors the DB model but avoids GORM tags.
type Team struct {
	ID   uint
	Name string
	Tag  string
	Slug string
	// GameCode is the normalized policy code. Immutable after creation.
	GameCode string
	// CaptainPlayerID references the player holding captaincy; nil when unset.
	CaptainPlayerID *uint
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Membership is one player's participation record in one team.
type Membership struct {
	ID            uint
	TeamID        uint
	PlayerID      uint
	Role          string
	SecondaryRole string
	Status        MembershipStatus
	IsCaptain     bool
	IsStarter     bool
	// IGN is the in-game name, unique case-insensitively among a team's ACTIVE members.
	IGN      string
	JoinedAt time.Time
	LeftAt   *time.Time
	// RoleHistory records prior primary roles, oldest first.
	RoleHistory []string
}

// IsActive reports whether the membership counts against roster capacity.
func (m *Membership) IsActive() bool { return m.Status == StatusActive }

// Terminal reports whether the membership reached a state it can never leave.
func (m *Membership) Terminal() bool {
	return m.Status == StatusRemoved || m.Status == StatusInactive
}

// CanTransition reports whether a status change is permitted.
// PENDING -> ACTIVE -> {REMOVED, INACTIVE}; terminal states never transition out.
func CanTransition(from, to MembershipStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusActive || to == StatusRemoved
	case StatusActive:
		return to == StatusRemoved || to == StatusInactive
	default:
		return false
	}
}

// Transition moves the membership to a new status, rejecting jumps the
// lifecycle does not permit.
func (m *Membership) Transition(to MembershipStatus) error {
	if !CanTransition(m.Status, to) {
		return fmt.Errorf("illegal membership transition %s -> %s", m.Status, to)
	}
	m.Status = to
	return nil
}

// SameIGN compares in-game names the way the uniqueness invariant does.
func SameIGN(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// NormalizeIGN trims an in-game name for storage; comparison stays case-insensitive.
func NormalizeIGN(ign string) string { return strings.TrimSpace(ign) }
