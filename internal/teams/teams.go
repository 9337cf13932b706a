// Package teams holds the minimal team directory the match core needs:
// who belongs to a team and who is allowed to manage it.
package teams

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openleague/matchday/internal/fault"
)

type Role string

const (
	RolePlayer  Role = "player"
	RoleCaptain Role = "captain"
	RoleCoach   Role = "coach"
	RoleManager Role = "manager"
)

func ValidRole(r Role) bool {
	switch r {
	case RolePlayer, RoleCaptain, RoleCoach, RoleManager:
		return true
	}
	return false
}

// management returns whether the role carries management rights.
func (r Role) management() bool {
	return r == RoleCaptain || r == RoleCoach || r == RoleManager
}

type Team struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Team) TableName() string { return "teams" }

type Member struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	TeamID    int64     `gorm:"column:team_id" json:"team_id"`
	UserID    int64     `gorm:"column:user_id" json:"user_id"`
	Role      Role      `gorm:"column:role" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Member) TableName() string { return "team_members" }

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) Create(ctx context.Context, name string) (Team, error) {
	if name == "" {
		return Team{}, fault.Validation("name", "required")
	}
	t := Team{Name: name}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return Team{}, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Team, error) {
	var t Team
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Team{}, fault.NotFound("team")
		}
		return Team{}, err
	}
	return t, nil
}

// AddMember upserts a membership keyed by (team, user); repeated calls
// update the role.
func (s *Service) AddMember(ctx context.Context, teamID, userID int64, role Role) (Member, error) {
	if !ValidRole(role) {
		return Member{}, fault.Validation("role", "unknown role")
	}
	if _, err := s.Get(ctx, teamID); err != nil {
		return Member{}, err
	}
	m := Member{TeamID: teamID, UserID: userID, Role: role}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(&m).Error
	if err != nil {
		return Member{}, err
	}
	// Re-read so the caller sees the stored row on the upsert path.
	var out Member
	if err := s.db.WithContext(ctx).
		First(&out, "team_id = ? AND user_id = ?", teamID, userID).Error; err != nil {
		return Member{}, err
	}
	return out, nil
}

func (s *Service) ListMembers(ctx context.Context, teamID int64) ([]Member, error) {
	var out []Member
	err := s.db.WithContext(ctx).
		Where("team_id = ?", teamID).Order("id").Find(&out).Error
	return out, err
}

// Manages reports whether the user holds a management role (captain,
// coach or manager) on the team.
func (s *Service) Manages(ctx context.Context, userID, teamID int64) (bool, error) {
	var m Member
	err := s.db.WithContext(ctx).
		First(&m, "team_id = ? AND user_id = ?", teamID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.Role.management(), nil
}

// ManagesEither reports management rights over at least one of two teams.
func (s *Service) ManagesEither(ctx context.Context, userID, teamA, teamB int64) (bool, error) {
	ok, err := s.Manages(ctx, userID, teamA)
	if err != nil || ok {
		return ok, err
	}
	return s.Manages(ctx, userID, teamB)
}
