package roster

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	dom "github.com/scrimforge/roster/internal/roster"
)

// Team is the DB model for one roster aggregate.
// Use gorm.Model.ID (uint) as the primary key.
type Team struct {
	gorm.Model
	Name string `gorm:"size:128;not null"`
	Tag  string `gorm:"size:16"`
	Slug string `gorm:"size:128;uniqueIndex"`
	// GameCode is the normalized policy code; immutable after creation.
	GameCode        string `gorm:"size:32;not null;index"`
	CaptainPlayerID *uint
	Active          bool `gorm:"default:true"`
}

// Membership is the DB model for one player's participation in one team.
// Uniqueness of the ACTIVE row per (team, player) is enforced at mutation time
// under the team lock, not as a storage constraint: terminated rows share the pair.
type Membership struct {
	gorm.Model
	TeamID        uint   `gorm:"not null;index:idx_memberships_team_player"`
	PlayerID      uint   `gorm:"not null;index:idx_memberships_team_player;index"`
	Role          string `gorm:"size:50"`
	SecondaryRole string `gorm:"size:50"`
	Status        string `gorm:"size:16;not null;index"`
	IsCaptain     bool
	IsStarter     bool
	IGN           string `gorm:"size:64"`
	JoinedAt      time.Time
	LeftAt        *time.Time
	// RoleHistory stores prior primary roles (JSON array of strings)
	RoleHistory datatypes.JSON `gorm:"type:json"`
}

func (Team) TableName() string       { return "teams" }
func (Membership) TableName() string { return "memberships" }

// Helpers to encode/decode Membership.RoleHistory
func (m *Membership) GetRoleHistory() []string {
	var arr []string
	if len(m.RoleHistory) == 0 {
		return arr
	}
	_ = json.Unmarshal(m.RoleHistory, &arr)
	return arr
}
func (m *Membership) SetRoleHistory(roles []string) {
	b, _ := json.Marshal(roles)
	m.RoleHistory = b
}

func teamToDomain(t *Team) *dom.Team {
	return &dom.Team{
		ID:              t.ID,
		Name:            t.Name,
		Tag:             t.Tag,
		Slug:            t.Slug,
		GameCode:        t.GameCode,
		CaptainPlayerID: t.CaptainPlayerID,
		Active:          t.Active,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func teamFromDomain(t *dom.Team) *Team {
	m := &Team{
		Name:            t.Name,
		Tag:             t.Tag,
		Slug:            t.Slug,
		GameCode:        t.GameCode,
		CaptainPlayerID: t.CaptainPlayerID,
		Active:          t.Active,
	}
	m.ID = t.ID
	return m
}

func membershipToDomain(m *Membership) *dom.Membership {
	return &dom.Membership{
		ID:            m.ID,
		TeamID:        m.TeamID,
		PlayerID:      m.PlayerID,
		Role:          m.Role,
		SecondaryRole: m.SecondaryRole,
		Status:        dom.MembershipStatus(m.Status),
		IsCaptain:     m.IsCaptain,
		IsStarter:     m.IsStarter,
		IGN:           m.IGN,
		JoinedAt:      m.JoinedAt,
		LeftAt:        m.LeftAt,
		RoleHistory:   m.GetRoleHistory(),
	}
}

func membershipFromDomain(d *dom.Membership) *Membership {
	m := &Membership{
		TeamID:        d.TeamID,
		PlayerID:      d.PlayerID,
		Role:          d.Role,
		SecondaryRole: d.SecondaryRole,
		Status:        string(d.Status),
		IsCaptain:     d.IsCaptain,
		IsStarter:     d.IsStarter,
		IGN:           d.IGN,
		JoinedAt:      d.JoinedAt,
		LeftAt:        d.LeftAt,
	}
	m.ID = d.ID
	m.SetRoleHistory(d.RoleHistory)
	return m
}
