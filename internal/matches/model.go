package matches

import "time"

type Kind string

const (
	KindLeague   Kind = "league"
	KindCup      Kind = "cup"
	KindFriendly Kind = "friendly"
	KindPractice Kind = "practice"
)

func ValidKind(k Kind) bool {
	switch k {
	case KindLeague, KindCup, KindFriendly, KindPractice:
		return true
	}
	return false
}

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
)

// Match is a fixture between two teams. HomeScore/AwayScore are a
// materialized projection of the goal events in the ledger; they are only
// written inside the same transaction as the ledger mutation.
type Match struct {
	ID               int64      `gorm:"column:id;primaryKey" json:"id"`
	Kind             Kind       `gorm:"column:kind" json:"kind"`
	HomeTeamID       int64      `gorm:"column:home_team_id" json:"home_team_id"`
	AwayTeamID       int64      `gorm:"column:away_team_id" json:"away_team_id"`
	Kickoff          *time.Time `gorm:"column:kickoff" json:"kickoff,omitempty"`
	Venue            string     `gorm:"column:venue" json:"venue"`
	Status           Status     `gorm:"column:status" json:"status"`
	HalfLengthMin    int        `gorm:"column:half_length_min" json:"half_length_min"`
	StoppageSlackMin int        `gorm:"column:stoppage_slack_min" json:"stoppage_slack_min"`
	HomeScore        int        `gorm:"column:home_score" json:"home_score"`
	AwayScore        int        `gorm:"column:away_score" json:"away_score"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Match) TableName() string { return "matches" }

// MaxMinute is the largest legal event minute for a half, stoppage
// included.
func (m Match) MaxMinute() int { return m.HalfLengthMin + m.StoppageSlackMin }

// TeamIn reports whether the team plays in this match.
func (m Match) TeamIn(teamID int64) bool {
	return teamID == m.HomeTeamID || teamID == m.AwayTeamID
}
