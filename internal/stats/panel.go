package stats

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openleague/matchday/internal/fault"
	"github.com/openleague/matchday/internal/matches"
)

// Panel is the postmatch statistics panel. These numbers are entered
// summary data, not derived from the ledger.
type Panel struct {
	MatchID        int64     `gorm:"column:match_id;primaryKey" json:"match_id"`
	ShotsHome      int       `gorm:"column:shots_home" json:"shots_home"`
	ShotsAway      int       `gorm:"column:shots_away" json:"shots_away"`
	CornersHome    int       `gorm:"column:corners_home" json:"corners_home"`
	CornersAway    int       `gorm:"column:corners_away" json:"corners_away"`
	FoulsHome      int       `gorm:"column:fouls_home" json:"fouls_home"`
	FoulsAway      int       `gorm:"column:fouls_away" json:"fouls_away"`
	PossessionHome int       `gorm:"column:possession_home" json:"possession_home"`
	PossessionAway int       `gorm:"column:possession_away" json:"possession_away"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Panel) TableName() string { return "match_stat_panels" }

// PanelInput carries the entered numbers.
type PanelInput struct {
	ShotsHome      int `json:"shots_home"`
	ShotsAway      int `json:"shots_away"`
	CornersHome    int `json:"corners_home"`
	CornersAway    int `json:"corners_away"`
	FoulsHome      int `json:"fouls_home"`
	FoulsAway      int `json:"fouls_away"`
	PossessionHome int `json:"possession_home"`
	PossessionAway int `json:"possession_away"`
}

// Bar is a home/away pair with proportional shares for rendering.
type Bar struct {
	Home      int     `json:"home"`
	Away      int     `json:"away"`
	HomeShare float64 `json:"home_share"`
	AwayShare float64 `json:"away_share"`
}

// PanelView is the read shape: raw numbers plus proportional bars.
type PanelView struct {
	Panel      Panel `json:"panel"`
	Shots      Bar   `json:"shots"`
	Corners    Bar   `json:"corners"`
	Fouls      Bar   `json:"fouls"`
	Possession Bar   `json:"possession"`
}

// share splits 100 between the two sides; when both are zero the split
// defaults to even rather than dividing by zero.
func share(home, away int) (float64, float64) {
	total := home + away
	if total == 0 {
		return 50, 50
	}
	h := float64(home) / float64(total) * 100
	return h, 100 - h
}

func bar(home, away int) Bar {
	h, a := share(home, away)
	return Bar{Home: home, Away: away, HomeShare: h, AwayShare: a}
}

// UpsertPanel stores the entered numbers, keyed by match. Requires
// management rights over a participating team.
func (s *Service) UpsertPanel(ctx context.Context, actorID, matchID int64, in PanelInput) (Panel, error) {
	var m matches.Match
	if err := s.db.WithContext(ctx).First(&m, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Panel{}, fault.NotFound("match")
		}
		return Panel{}, err
	}
	ok, err := s.teams.ManagesEither(ctx, actorID, m.HomeTeamID, m.AwayTeamID)
	if err != nil {
		return Panel{}, err
	}
	if !ok {
		return Panel{}, fault.Permission("management rights over a participating team required")
	}
	for _, v := range []int{in.ShotsHome, in.ShotsAway, in.CornersHome, in.CornersAway, in.FoulsHome, in.FoulsAway, in.PossessionHome, in.PossessionAway} {
		if v < 0 {
			return Panel{}, fault.Validation("panel", "values must be non-negative")
		}
	}

	p := Panel{
		MatchID:        matchID,
		ShotsHome:      in.ShotsHome,
		ShotsAway:      in.ShotsAway,
		CornersHome:    in.CornersHome,
		CornersAway:    in.CornersAway,
		FoulsHome:      in.FoulsHome,
		FoulsAway:      in.FoulsAway,
		PossessionHome: in.PossessionHome,
		PossessionAway: in.PossessionAway,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "match_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"shots_home", "shots_away", "corners_home", "corners_away",
			"fouls_home", "fouls_away", "possession_home", "possession_away", "updated_at",
		}),
	}).Create(&p).Error
	if err != nil {
		return Panel{}, err
	}
	return p, nil
}

// PanelFor returns the stored panel with proportional bars. A match with
// no entered panel yet reads as all zeroes (even splits).
func (s *Service) PanelFor(ctx context.Context, matchID int64) (PanelView, error) {
	var m matches.Match
	if err := s.db.WithContext(ctx).First(&m, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PanelView{}, fault.NotFound("match")
		}
		return PanelView{}, err
	}
	var p Panel
	err := s.db.WithContext(ctx).First(&p, "match_id = ?", matchID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return PanelView{}, err
	}
	p.MatchID = matchID
	return PanelView{
		Panel:      p,
		Shots:      bar(p.ShotsHome, p.ShotsAway),
		Corners:    bar(p.CornersHome, p.CornersAway),
		Fouls:      bar(p.FoulsHome, p.FoulsAway),
		Possession: bar(p.PossessionHome, p.PossessionAway),
	}, nil
}
