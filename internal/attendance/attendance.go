// Package attendance tracks per-user, per-match participation state and
// the starter/bench designation that seeds roster computation.
package attendance

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openleague/matchday/internal/fault"
	"github.com/openleague/matchday/internal/matches"
	"github.com/openleague/matchday/internal/teams"
)

type Status string

const (
	StatusAttending Status = "attending"
	StatusAbsent    Status = "absent"
	StatusPending   Status = "pending"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusAttending, StatusAbsent, StatusPending:
		return true
	}
	return false
}

type Attendance struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	MatchID   int64     `gorm:"column:match_id" json:"match_id"`
	TeamID    int64     `gorm:"column:team_id" json:"team_id"`
	UserID    int64     `gorm:"column:user_id" json:"user_id"`
	Status    Status    `gorm:"column:status" json:"status"`
	Starter   bool      `gorm:"column:starter" json:"starter"`
	Jersey    *int      `gorm:"column:jersey" json:"jersey,omitempty"`
	Position  string    `gorm:"column:position" json:"position"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Attendance) TableName() string { return "attendances" }

// Counts is the attending/absent/pending tally used by summary views.
type Counts struct {
	Attending int64 `json:"attending"`
	Absent    int64 `json:"absent"`
	Pending   int64 `json:"pending"`
}

type Service struct {
	db      *gorm.DB
	teams   *teams.Service
	matches *matches.Service
}

func NewService(db *gorm.DB, ts *teams.Service, ms *matches.Service) *Service {
	return &Service{db: db, teams: ts, matches: ms}
}

type SetInput struct {
	TeamID   int64  `json:"team_id"`
	UserID   int64  `json:"user_id"`
	Status   Status `json:"status"`
	Starter  bool   `json:"starter"`
	Jersey   *int   `json:"jersey"`
	Position string `json:"position"`
}

// SetStatus upserts the attendance row keyed by (match, team, user).
// Repeated writes with the same status are idempotent. Allowed for the
// participant themself or for team management, in any lifecycle state.
func (s *Service) SetStatus(ctx context.Context, actorID, matchID int64, in SetInput) (Attendance, error) {
	if !ValidStatus(in.Status) {
		return Attendance{}, fault.Validation("status", "unknown attendance status")
	}
	m, err := s.matches.Get(ctx, matchID)
	if err != nil {
		return Attendance{}, err
	}
	if !m.TeamIn(in.TeamID) {
		return Attendance{}, fault.Validation("team_id", "team does not play in this match")
	}
	if actorID != in.UserID {
		ok, err := s.teams.Manages(ctx, actorID, in.TeamID)
		if err != nil {
			return Attendance{}, err
		}
		if !ok {
			return Attendance{}, fault.Permission("only the participant or team management may set attendance")
		}
	}

	a := Attendance{
		MatchID:  matchID,
		TeamID:   in.TeamID,
		UserID:   in.UserID,
		Status:   in.Status,
		Starter:  in.Starter,
		Jersey:   in.Jersey,
		Position: in.Position,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_id"}, {Name: "team_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "starter", "jersey", "position", "updated_at"}),
	}).Create(&a).Error
	if err != nil {
		return Attendance{}, err
	}
	var out Attendance
	if err := s.db.WithContext(ctx).
		First(&out, "match_id = ? AND team_id = ? AND user_id = ?", matchID, in.TeamID, in.UserID).Error; err != nil {
		return Attendance{}, err
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, matchID, teamID int64) ([]Attendance, error) {
	var out []Attendance
	err := s.db.WithContext(ctx).
		Where("match_id = ? AND team_id = ?", matchID, teamID).
		Order("id").Find(&out).Error
	return out, err
}

func (s *Service) CountByStatus(ctx context.Context, matchID, teamID int64) (Counts, error) {
	var c Counts
	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&Attendance{}).
			Where("match_id = ? AND team_id = ?", matchID, teamID)
	}
	if err := base().Where("status = ?", StatusAttending).Count(&c.Attending).Error; err != nil {
		return Counts{}, err
	}
	if err := base().Where("status = ?", StatusAbsent).Count(&c.Absent).Error; err != nil {
		return Counts{}, err
	}
	if err := base().Where("status = ?", StatusPending).Count(&c.Pending).Error; err != nil {
		return Counts{}, err
	}
	return c, nil
}

// AttendingSet returns the user ids attending for the team, the eligible
// player pool for event recording and roster computation.
func (s *Service) AttendingSet(ctx context.Context, matchID, teamID int64) (map[int64]bool, error) {
	rows, err := s.List(ctx, matchID, teamID)
	if err != nil {
		return nil, err
	}
	set := make(map[int64]bool, len(rows))
	for _, a := range rows {
		if a.Status == StatusAttending {
			set[a.UserID] = true
		}
	}
	return set, nil
}
