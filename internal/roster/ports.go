package roster

import "context"

// Store defines persistence for teams and memberships.
// Implementations must make Transact atomic: either every write inside fn is
// persisted or none is.
type Store interface {
	CreateTeam(ctx context.Context, t *Team) error
	GetTeam(ctx context.Context, id uint) (*Team, error)
	// GetTeamForUpdate reads a team with an exclusive row lock when called
	// inside Transact; outside a transaction it behaves like GetTeam.
	GetTeamForUpdate(ctx context.Context, id uint) (*Team, error)
	PutTeam(ctx context.Context, t *Team) error

	CreateMembership(ctx context.Context, m *Membership) error
	UpdateMembership(ctx context.Context, m *Membership) error
	GetMembership(ctx context.Context, teamID, playerID uint) (*Membership, error)
	ListTeamMemberships(ctx context.Context, teamID uint) ([]*Membership, error)
	// ListActiveByPlayerGame scans for the player's ACTIVE memberships across
	// all teams of one game. Used by the cross-team exclusivity check.
	ListActiveByPlayerGame(ctx context.Context, playerID uint, gameCode string) ([]*Membership, error)

	// Transact runs fn against a store view bound to one transaction.
	Transact(ctx context.Context, fn func(Store) error) error
}

// TournamentGate is answered by the tournament subsystem: whether a team's
// roster is currently frozen for an active tournament.
type TournamentGate interface {
	IsRosterLocked(ctx context.Context, teamID uint) (bool, error)
}
