package roster

import "errors"

// Typed failures returned by validators and the manager. Callers match with errors.Is
// and render their own user-facing messages.
var (
	ErrPolicyNotFound         = errors.New("no roster policy for game")
	ErrTeamNotFound           = errors.New("team not found")
	ErrCapacityExceeded       = errors.New("roster capacity exceeded")
	ErrRoleInvalid            = errors.New("role is not legal for this game")
	ErrRoleTaken              = errors.New("role already held by an active starter")
	ErrIGNTaken               = errors.New("in-game name already in use on this team")
	ErrCaptainConstraint      = errors.New("operation violates captain constraint")
	ErrNotAMember             = errors.New("player has no active membership on this team")
	ErrAlreadyMember          = errors.New("player already holds an active membership")
	ErrMinimumRoster          = errors.New("roster would fall below the game minimum")
	ErrRosterLocked           = errors.New("roster is frozen for an active tournament")
	ErrConcurrentModification = errors.New("team roster is busy, retry")
)
