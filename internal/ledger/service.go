package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/openleague/matchday/internal/attendance"
	"github.com/openleague/matchday/internal/fault"
	"github.com/openleague/matchday/internal/matches"
	"github.com/openleague/matchday/internal/teams"
)

type Service struct {
	db    *gorm.DB
	teams *teams.Service
	att   *attendance.Service
}

func NewService(db *gorm.DB, ts *teams.Service, as *attendance.Service) *Service {
	return &Service{db: db, teams: ts, att: as}
}

// Score is the running result of a match.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Record appends an event to a live match's ledger. The append and, for
// goals, the score bump happen in one transaction so the projection can
// never drift from the ledger on this path. A repeated call with the same
// client key returns the already recorded event instead of double-counting.
func (s *Service) Record(ctx context.Context, actorID, matchID int64, in RecordInput) (Event, error) {
	var out Event
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m matches.Match
		if err := tx.First(&m, matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.NotFound("match")
			}
			return err
		}
		if !matches.CanRecord(m.Status) {
			return fault.State(fmt.Sprintf("match is %s; events can only be recorded while live", m.Status))
		}
		ok, err := s.teams.ManagesEither(ctx, actorID, m.HomeTeamID, m.AwayTeamID)
		if err != nil {
			return err
		}
		if !ok {
			return fault.Permission("management rights over a participating team required")
		}
		if err := validate(m, in); err != nil {
			return err
		}
		if err := s.checkEligible(ctx, matchID, in); err != nil {
			return err
		}

		// Idempotent retry: same client key returns the stored event.
		if in.ClientKey != "" {
			var existing Event
			err := tx.First(&existing, "match_id = ? AND client_key = ?", matchID, in.ClientKey).Error
			if err == nil {
				out = existing
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		ev := Event{
			MatchID:   matchID,
			Kind:      in.Kind,
			TeamID:    in.TeamID,
			PlayerID:  in.PlayerID,
			RelatedID: in.RelatedID,
			Minute:    in.Minute,
			Half:      in.Half,
			Reason:    in.Reason,
			Note:      in.Note,
		}
		if in.ClientKey != "" {
			k := in.ClientKey
			ev.ClientKey = &k
		}
		if err := tx.Create(&ev).Error; err != nil {
			return err
		}
		if ev.Kind == KindGoal {
			if err := bumpScore(tx, &m, ev.TeamID, +1); err != nil {
				return err
			}
		}
		out = ev
		return nil
	})
	if err != nil {
		return Event{}, err
	}
	return out, nil
}

// Delete removes an event and compensates the score projection for goals,
// atomically. Deleting an unknown event is a no-op on the score.
func (s *Service) Delete(ctx context.Context, actorID, eventID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ev Event
		if err := tx.First(&ev, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.NotFound("event")
			}
			return err
		}
		var m matches.Match
		if err := tx.First(&m, ev.MatchID).Error; err != nil {
			return err
		}
		if !matches.CanRecord(m.Status) {
			return fault.State(fmt.Sprintf("match is %s; its ledger is immutable", m.Status))
		}
		ok, err := s.teams.ManagesEither(ctx, actorID, m.HomeTeamID, m.AwayTeamID)
		if err != nil {
			return err
		}
		if !ok {
			return fault.Permission("management rights over a participating team required")
		}
		if err := tx.Delete(&Event{}, ev.ID).Error; err != nil {
			return err
		}
		if ev.Kind == KindGoal {
			if err := bumpScore(tx, &m, ev.TeamID, -1); err != nil {
				return err
			}
		}
		return nil
	})
}

func bumpScore(tx *gorm.DB, m *matches.Match, teamID int64, delta int) error {
	col := "home_score"
	if teamID == m.AwayTeamID {
		col = "away_score"
	}
	return tx.Model(m).UpdateColumn(col, gorm.Expr(col+" + ?", delta)).Error
}

// List returns the match's events in narrative order (first half before
// second, minute ascending) or, with newestFirst, the live most-recent-first
// view. Both are derived sorts over the same rows; insertion order breaks
// minute ties stably.
func (s *Service) List(ctx context.Context, matchID int64, newestFirst bool) ([]Event, error) {
	order := "half ASC, minute ASC, id ASC"
	if newestFirst {
		order = "half DESC, minute DESC, id DESC"
	}
	var out []Event
	err := s.db.WithContext(ctx).
		Where("match_id = ?", matchID).Order(order).Find(&out).Error
	return out, err
}

// Substitutions returns the team's substitution events in ledger order,
// the input to roster folding.
func (s *Service) Substitutions(ctx context.Context, matchID, teamID int64) ([]Event, error) {
	var out []Event
	err := s.db.WithContext(ctx).
		Where("match_id = ? AND team_id = ? AND kind = ?", matchID, teamID, KindSubstitution).
		Order("half ASC, minute ASC, id ASC").Find(&out).Error
	return out, err
}

func (s *Service) Score(ctx context.Context, matchID int64) (Score, error) {
	var m matches.Match
	if err := s.db.WithContext(ctx).First(&m, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Score{}, fault.NotFound("match")
		}
		return Score{}, err
	}
	return Score{Home: m.HomeScore, Away: m.AwayScore}, nil
}

// ReconcileResult reports a reconciliation pass over one match.
type ReconcileResult struct {
	MatchID   int64 `json:"match_id"`
	Stored    Score `json:"stored"`
	Derived   Score `json:"derived"`
	Corrected bool  `json:"corrected"`
}

// Reconcile recomputes both scores from the ledger and corrects the
// stored projection if it drifted. Drift is not expected; when found it
// is healed and logged rather than surfaced as a failure.
func (s *Service) Reconcile(ctx context.Context, matchID int64) (ReconcileResult, error) {
	var res ReconcileResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m matches.Match
		if err := tx.First(&m, matchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.NotFound("match")
			}
			return err
		}
		derived, err := deriveScore(tx, m)
		if err != nil {
			return err
		}
		res = ReconcileResult{
			MatchID: m.ID,
			Stored:  Score{Home: m.HomeScore, Away: m.AwayScore},
			Derived: derived,
		}
		if res.Stored == res.Derived {
			return nil
		}
		drift := fault.Consistency(fmt.Sprintf(
			"match %d score %d-%d does not match ledger %d-%d",
			m.ID, m.HomeScore, m.AwayScore, derived.Home, derived.Away))
		log.Printf("reconcile: %v; correcting", drift)
		if err := tx.Model(&m).UpdateColumns(map[string]any{
			"home_score": derived.Home,
			"away_score": derived.Away,
		}).Error; err != nil {
			return err
		}
		res.Corrected = true
		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}
	return res, nil
}

// ReconcileLive runs the reconciliation pass over all live matches; used
// by the periodic scheduler.
func (s *Service) ReconcileLive(ctx context.Context) error {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&matches.Match{}).
		Where("status = ?", matches.StatusLive).Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.Reconcile(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func deriveScore(tx *gorm.DB, m matches.Match) (Score, error) {
	var home, away int64
	if err := tx.Model(&Event{}).
		Where("match_id = ? AND kind = ? AND team_id = ?", m.ID, KindGoal, m.HomeTeamID).
		Count(&home).Error; err != nil {
		return Score{}, err
	}
	if err := tx.Model(&Event{}).
		Where("match_id = ? AND kind = ? AND team_id = ?", m.ID, KindGoal, m.AwayTeamID).
		Count(&away).Error; err != nil {
		return Score{}, err
	}
	return Score{Home: int(home), Away: int(away)}, nil
}

// checkEligible verifies the acting players are in the attending pool for
// their team in this match.
func (s *Service) checkEligible(ctx context.Context, matchID int64, in RecordInput) error {
	pool, err := s.att.AttendingSet(ctx, matchID, in.TeamID)
	if err != nil {
		return err
	}
	if !pool[in.PlayerID] {
		return fault.NotFound("player in match roster")
	}
	if in.RelatedID != nil && !pool[*in.RelatedID] {
		return fault.NotFound("related player in match roster")
	}
	return nil
}
