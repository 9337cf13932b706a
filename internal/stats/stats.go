// Package stats holds the read-side computations over a match's ledger:
// goal timeline, per-team tallies and MVP candidates, plus the separately
// entered postmatch statistics panel.
package stats

import (
	"context"

	"gorm.io/gorm"

	"github.com/openleague/matchday/internal/ledger"
	"github.com/openleague/matchday/internal/matches"
	"github.com/openleague/matchday/internal/teams"
)

type Service struct {
	db     *gorm.DB
	ledger *ledger.Service
	teams  *teams.Service
}

func NewService(db *gorm.DB, ls *ledger.Service, ts *teams.Service) *Service {
	return &Service{db: db, ledger: ls, teams: ts}
}

// Timeline returns the match's goals, minute-ascending.
func (s *Service) Timeline(ctx context.Context, matchID int64) ([]ledger.Event, error) {
	events, err := s.ledger.List(ctx, matchID, false)
	if err != nil {
		return nil, err
	}
	goals := make([]ledger.Event, 0, len(events))
	for _, e := range events {
		if e.Kind == ledger.KindGoal {
			goals = append(goals, e)
		}
	}
	return goals, nil
}

// TeamTally counts event kinds for one team.
type TeamTally struct {
	TeamID        int64 `json:"team_id"`
	Goals         int   `json:"goals"`
	Cautions      int   `json:"cautions"`
	Dismissals    int   `json:"dismissals"`
	Substitutions int   `json:"substitutions"`
}

// Tallies folds the ledger into per-team event counts, home first.
func (s *Service) Tallies(ctx context.Context, matchID int64) ([]TeamTally, error) {
	var m matches.Match
	if err := s.db.WithContext(ctx).First(&m, matchID).Error; err != nil {
		return nil, err
	}
	events, err := s.ledger.List(ctx, matchID, false)
	if err != nil {
		return nil, err
	}
	byTeam := map[int64]*TeamTally{
		m.HomeTeamID: {TeamID: m.HomeTeamID},
		m.AwayTeamID: {TeamID: m.AwayTeamID},
	}
	for _, e := range events {
		t, ok := byTeam[e.TeamID]
		if !ok {
			continue
		}
		switch e.Kind {
		case ledger.KindGoal:
			t.Goals++
		case ledger.KindCaution:
			t.Cautions++
		case ledger.KindDismissal:
			t.Dismissals++
		case ledger.KindSubstitution:
			t.Substitutions++
		}
	}
	return []TeamTally{*byTeam[m.HomeTeamID], *byTeam[m.AwayTeamID]}, nil
}

// MVP reports the most-valuable-player candidates. Players with the
// maximum count win; whoever reached that count earliest in the ledger
// leads, and any still-tied players are all reported.
type MVP struct {
	TopScorers   []int64 `json:"top_scorers"`
	TopAssisters []int64 `json:"top_assisters"`
}

func (s *Service) MVP(ctx context.Context, matchID int64) (MVP, error) {
	events, err := s.ledger.List(ctx, matchID, false)
	if err != nil {
		return MVP{}, err
	}
	var scorers, assisters []int64
	pos := 0
	scoreCount := map[int64]int{}
	scoreReached := map[int64]int{}
	assistCount := map[int64]int{}
	assistReached := map[int64]int{}
	for _, e := range events {
		if e.Kind != ledger.KindGoal {
			continue
		}
		pos++
		scoreCount[e.PlayerID]++
		scoreReached[e.PlayerID] = pos
		if e.RelatedID != nil {
			assistCount[*e.RelatedID]++
			assistReached[*e.RelatedID] = pos
		}
	}
	scorers = leaders(scoreCount, scoreReached)
	assisters = leaders(assistCount, assistReached)
	return MVP{TopScorers: scorers, TopAssisters: assisters}, nil
}

// leaders picks the players with the maximum count; ties break in favor
// of the earliest ledger position at which the maximum was reached, and
// any remaining ties are all kept.
func leaders(count, reached map[int64]int) []int64 {
	max := 0
	for _, n := range count {
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return nil
	}
	best := -1
	for id, n := range count {
		if n == max && (best == -1 || reached[id] < best) {
			best = reached[id]
		}
	}
	var out []int64
	for id, n := range count {
		if n == max && reached[id] == best {
			out = append(out, id)
		}
	}
	return out
}
