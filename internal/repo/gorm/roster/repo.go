package roster

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dom "github.com/scrimforge/roster/internal/roster"
)

// Repo provides GORM-based persistence for teams and memberships.
type Repo struct{ db *gorm.DB }

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&Team{}, &Membership{}) }
func NewRepo(db *gorm.DB) *Repo     { return &Repo{db: db} }

// compile-time check: Repo implements the store port.
var _ dom.Store = (*Repo)(nil)

func (r *Repo) CreateTeam(ctx context.Context, t *dom.Team) error {
	m := teamFromDomain(t)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	t.ID = m.ID
	t.CreatedAt = m.CreatedAt
	t.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *Repo) GetTeam(ctx context.Context, id uint) (*dom.Team, error) {
	var t Team
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id=%d", dom.ErrTeamNotFound, id)
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return teamToDomain(&t), nil
}

// GetTeamForUpdate reads the team row with FOR UPDATE on backends that support
// it. SQLite serializes writers on its own, so the clause is skipped there.
func (r *Repo) GetTeamForUpdate(ctx context.Context, id uint) (*dom.Team, error) {
	tx := r.db.WithContext(ctx)
	if tx.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var t Team
	if err := tx.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id=%d", dom.ErrTeamNotFound, id)
		}
		return nil, fmt.Errorf("get team for update: %w", err)
	}
	return teamToDomain(&t), nil
}

func (r *Repo) PutTeam(ctx context.Context, t *dom.Team) error {
	m := teamFromDomain(t)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("put team: %w", err)
	}
	return nil
}

func (r *Repo) CreateMembership(ctx context.Context, d *dom.Membership) error {
	m := membershipFromDomain(d)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create membership: %w", err)
	}
	d.ID = m.ID
	return nil
}

func (r *Repo) UpdateMembership(ctx context.Context, d *dom.Membership) error {
	if d.ID == 0 {
		return fmt.Errorf("update membership: missing id")
	}
	m := membershipFromDomain(d)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	return nil
}

// GetMembership returns the player's ACTIVE membership on the team, or
// roster.ErrNotAMember when none exists.
func (r *Repo) GetMembership(ctx context.Context, teamID, playerID uint) (*dom.Membership, error) {
	var m Membership
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND player_id = ? AND status = ?", teamID, playerID, string(dom.StatusActive)).
		Order("id DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: team=%d player=%d", dom.ErrNotAMember, teamID, playerID)
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return membershipToDomain(&m), nil
}

func (r *Repo) ListTeamMemberships(ctx context.Context, teamID uint) ([]*dom.Membership, error) {
	var arr []*Membership
	if err := r.db.WithContext(ctx).Where("team_id = ?", teamID).Order("id ASC").Find(&arr).Error; err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	out := make([]*dom.Membership, 0, len(arr))
	for _, m := range arr {
		out = append(out, membershipToDomain(m))
	}
	return out, nil
}

func (r *Repo) ListActiveByPlayerGame(ctx context.Context, playerID uint, gameCode string) ([]*dom.Membership, error) {
	var arr []*Membership
	err := r.db.WithContext(ctx).
		Joins("JOIN teams ON teams.id = memberships.team_id").
		Where("memberships.player_id = ? AND memberships.status = ? AND teams.game_code = ?",
			playerID, string(dom.StatusActive), gameCode).
		Find(&arr).Error
	if err != nil {
		return nil, fmt.Errorf("list active by player/game: %w", err)
	}
	out := make([]*dom.Membership, 0, len(arr))
	for _, m := range arr {
		out = append(out, membershipToDomain(m))
	}
	return out, nil
}

// Transact runs fn against a repo bound to one transaction; a non-nil error
// rolls back every write fn made.
func (r *Repo) Transact(ctx context.Context, fn func(dom.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repo{db: tx})
	})
}
