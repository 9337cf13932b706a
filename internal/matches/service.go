package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openleague/matchday/internal/fault"
	"github.com/openleague/matchday/internal/teams"
)

type Service struct {
	db    *gorm.DB
	teams *teams.Service
}

func NewService(db *gorm.DB, ts *teams.Service) *Service {
	return &Service{db: db, teams: ts}
}

type CreateInput struct {
	Kind          Kind       `json:"kind"`
	HomeTeamID    int64      `json:"home_team_id"`
	AwayTeamID    int64      `json:"away_team_id"`
	Kickoff       *time.Time `json:"kickoff"`
	Venue         string     `json:"venue"`
	HalfLengthMin int        `json:"half_length_min"`
}

func (s *Service) Create(ctx context.Context, actorID int64, in CreateInput) (Match, error) {
	if in.Kind == "" {
		in.Kind = KindLeague
	}
	if !ValidKind(in.Kind) {
		return Match{}, fault.Validation("kind", "unknown match kind")
	}
	if in.HomeTeamID == in.AwayTeamID {
		return Match{}, fault.Validation("away_team_id", "home and away team must differ")
	}
	if in.HalfLengthMin == 0 {
		in.HalfLengthMin = 45
	}
	if in.HalfLengthMin < 1 || in.HalfLengthMin > 60 {
		return Match{}, fault.Validation("half_length_min", "must be between 1 and 60")
	}
	for _, id := range []int64{in.HomeTeamID, in.AwayTeamID} {
		if _, err := s.teams.Get(ctx, id); err != nil {
			return Match{}, err
		}
	}
	if err := s.requireManagement(ctx, actorID, in.HomeTeamID, in.AwayTeamID); err != nil {
		return Match{}, err
	}

	m := Match{
		Kind:             in.Kind,
		HomeTeamID:       in.HomeTeamID,
		AwayTeamID:       in.AwayTeamID,
		Kickoff:          in.Kickoff,
		Venue:            in.Venue,
		Status:           StatusScheduled,
		HalfLengthMin:    in.HalfLengthMin,
		StoppageSlackMin: 15,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return Match{}, err
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Match, error) {
	var m Match
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Match{}, fault.NotFound("match")
		}
		return Match{}, err
	}
	return m, nil
}

func (s *Service) List(ctx context.Context) ([]Match, error) {
	var out []Match
	err := s.db.WithContext(ctx).Order("kickoff, id").Find(&out).Error
	return out, err
}

// Start moves a scheduled match to live.
func (s *Service) Start(ctx context.Context, actorID, id int64) (Match, error) {
	return s.transition(ctx, actorID, id, StatusLive)
}

// Finish moves a live match to finished. Irreversible, so the caller must
// pass an explicit confirmation.
func (s *Service) Finish(ctx context.Context, actorID, id int64, confirm bool) (Match, error) {
	if !confirm {
		return Match{}, fault.Validation("confirm", "finishing a match is irreversible and must be confirmed")
	}
	return s.transition(ctx, actorID, id, StatusFinished)
}

// Cancel moves a scheduled or live match to cancelled.
func (s *Service) Cancel(ctx context.Context, actorID, id int64) (Match, error) {
	return s.transition(ctx, actorID, id, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, actorID, id int64, to Status) (Match, error) {
	var out Match
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m Match
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.NotFound("match")
			}
			return err
		}
		if err := s.requireManagement(ctx, actorID, m.HomeTeamID, m.AwayTeamID); err != nil {
			return err
		}
		if !CanTransition(m.Status, to) {
			return fault.State(fmt.Sprintf("cannot move match from %s to %s", m.Status, to))
		}
		if err := tx.Model(&m).Update("status", to).Error; err != nil {
			return err
		}
		m.Status = to
		out = m
		return nil
	})
	if err != nil {
		return Match{}, err
	}
	return out, nil
}

func (s *Service) requireManagement(ctx context.Context, actorID, homeTeam, awayTeam int64) error {
	ok, err := s.teams.ManagesEither(ctx, actorID, homeTeam, awayTeam)
	if err != nil {
		return err
	}
	if !ok {
		return fault.Permission("management rights over a participating team required")
	}
	return nil
}
