// Package ledger is the append-only record of match events and the score
// projection derived from it. The ledger is the single source of truth
// for everything that happened in a match; the stored score is only ever
// written in the same transaction as a ledger mutation.
package ledger

import (
	"time"

	"github.com/openleague/matchday/internal/fault"
	"github.com/openleague/matchday/internal/matches"
)

type Kind string

const (
	KindGoal         Kind = "goal"
	KindCaution      Kind = "caution"
	KindDismissal    Kind = "dismissal"
	KindSubstitution Kind = "substitution"
)

func ValidKind(k Kind) bool {
	switch k {
	case KindGoal, KindCaution, KindDismissal, KindSubstitution:
		return true
	}
	return false
}

// Halves are numbered 1 and 2; minute values repeat across halves.
const (
	HalfFirst  = 1
	HalfSecond = 2
)

// Reason is the closed set of disciplinary reasons. ReasonSecondCaution
// only applies to dismissals.
type Reason string

const (
	ReasonFoul           Reason = "foul"
	ReasonHandball       Reason = "handball"
	ReasonDissent        Reason = "dissent"
	ReasonTimeWasting    Reason = "time_wasting"
	ReasonViolentConduct Reason = "violent_conduct"
	ReasonSecondCaution  Reason = "second_caution"
	ReasonOther          Reason = "other"
)

func validReason(k Kind, r Reason) bool {
	switch r {
	case ReasonFoul, ReasonHandball, ReasonDissent, ReasonTimeWasting,
		ReasonViolentConduct, ReasonOther:
		return true
	case ReasonSecondCaution:
		return k == KindDismissal
	}
	return false
}

// Event is one entry in a match's ledger. RelatedID holds the assisting
// player for goals and the incoming player for substitutions; constructors
// and Validate keep the populated fields consistent with the kind.
type Event struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	MatchID   int64     `gorm:"column:match_id" json:"match_id"`
	Kind      Kind      `gorm:"column:kind" json:"kind"`
	TeamID    int64     `gorm:"column:team_id" json:"team_id"`
	PlayerID  int64     `gorm:"column:player_id" json:"player_id"`
	RelatedID *int64    `gorm:"column:related_id" json:"related_id,omitempty"`
	Minute    int       `gorm:"column:minute" json:"minute"`
	Half      int       `gorm:"column:half" json:"half"`
	Reason    Reason    `gorm:"column:reason" json:"reason,omitempty"`
	Note      string    `gorm:"column:note" json:"note,omitempty"`
	ClientKey *string   `gorm:"column:client_key" json:"client_key,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Event) TableName() string { return "match_events" }

// RecordInput carries the operator's action. Minute and half are explicit
// parameters, never inferred from a clock.
type RecordInput struct {
	Kind      Kind   `json:"kind"`
	TeamID    int64  `json:"team_id"`
	PlayerID  int64  `json:"player_id"`
	RelatedID *int64 `json:"related_id"`
	Minute    int    `json:"minute"`
	Half      int    `json:"half"`
	Reason    Reason `json:"reason"`
	Note      string `json:"note"`
	ClientKey string `json:"client_key"`
}

// validate checks the variant shape and the minute/half bounds against
// the match configuration.
func validate(m matches.Match, in RecordInput) error {
	if !ValidKind(in.Kind) {
		return fault.Validation("kind", "unknown event kind")
	}
	if in.Half != HalfFirst && in.Half != HalfSecond {
		return fault.Validation("half", "half must be 1 or 2")
	}
	if in.Minute < 0 || in.Minute > m.MaxMinute() {
		return fault.Validation("minute", "minute out of range for this match")
	}
	if !m.TeamIn(in.TeamID) {
		return fault.Validation("team_id", "team does not play in this match")
	}
	if in.PlayerID == 0 {
		return fault.Validation("player_id", "required")
	}

	switch in.Kind {
	case KindGoal:
		// Assist optional; must not be the scorer.
		if in.RelatedID != nil && *in.RelatedID == in.PlayerID {
			return fault.Validation("related_id", "assist cannot be the scorer")
		}
		if in.Reason != "" {
			return fault.Validation("reason", "goals carry no reason")
		}
	case KindSubstitution:
		if in.RelatedID == nil {
			return fault.Validation("related_id", "incoming player required for substitution")
		}
		if *in.RelatedID == in.PlayerID {
			return fault.Validation("related_id", "incoming and outgoing player must differ")
		}
		if in.Reason != "" {
			return fault.Validation("reason", "substitutions carry no reason")
		}
	case KindCaution, KindDismissal:
		if in.RelatedID != nil {
			return fault.Validation("related_id", "not valid for this event kind")
		}
		if in.Reason != "" && !validReason(in.Kind, in.Reason) {
			return fault.Validation("reason", "not in the allowed set for this event kind")
		}
	}
	return nil
}
