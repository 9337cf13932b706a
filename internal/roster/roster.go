// Package roster derives a team's current on-field/bench split for a
// match by folding substitution events, in ledger order, onto the
// attendance-derived starter/bench partition. The roster is a projection:
// it is recomputed on every read and never stored.
package roster

import (
	"context"
	"sort"

	"github.com/openleague/matchday/internal/attendance"
	"github.com/openleague/matchday/internal/ledger"
)

// Lineup is the derived roster for one team in one match. Starters is the
// set currently on the field, Bench the attending players available for
// substitution, SubstitutedOut those who left the field.
type Lineup struct {
	Starters       []int64 `json:"starters"`
	Bench          []int64 `json:"bench"`
	SubstitutedOut []int64 `json:"substituted_out"`
}

type Resolver struct {
	att    *attendance.Service
	ledger *ledger.Service
}

func NewResolver(as *attendance.Service, ls *ledger.Service) *Resolver {
	return &Resolver{att: as, ledger: ls}
}

// Lineup computes the team's roster for the match.
func (r *Resolver) Lineup(ctx context.Context, matchID, teamID int64) (Lineup, error) {
	rows, err := r.att.List(ctx, matchID, teamID)
	if err != nil {
		return Lineup{}, err
	}

	active := map[int64]bool{}
	bench := map[int64]bool{}
	for _, a := range rows {
		if a.Status != attendance.StatusAttending {
			continue
		}
		if a.Starter {
			active[a.UserID] = true
		} else {
			bench[a.UserID] = true
		}
	}

	subs, err := r.ledger.Substitutions(ctx, matchID, teamID)
	if err != nil {
		return Lineup{}, err
	}

	out := map[int64]bool{}
	for _, ev := range subs {
		// Outgoing player leaves the field.
		delete(active, ev.PlayerID)
		delete(bench, ev.PlayerID)
		out[ev.PlayerID] = true
		// Incoming player enters it.
		if ev.RelatedID != nil {
			in := *ev.RelatedID
			delete(bench, in)
			delete(out, in)
			active[in] = true
		}
	}

	return Lineup{
		Starters:       sortedKeys(active),
		Bench:          sortedKeys(bench),
		SubstitutedOut: sortedKeys(out),
	}, nil
}

func sortedKeys(set map[int64]bool) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
