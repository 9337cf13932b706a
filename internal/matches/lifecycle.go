package matches

// transitions is the only encoding of the match state machine. Everything
// else asks CanTransition / CanRecord instead of comparing status strings.
var transitions = map[Status][]Status{
	StatusScheduled: {StatusLive, StatusCancelled},
	StatusLive:      {StatusFinished, StatusCancelled},
	StatusFinished:  {},
	StatusCancelled: {},
}

// CanTransition reports whether the lifecycle allows moving from one
// status to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanRecord reports whether the ledger may be mutated for a match in the
// given status. Finished and cancelled matches are immutable.
func CanRecord(s Status) bool { return s == StatusLive }

// Terminal reports whether the status has no outgoing transitions.
func Terminal(s Status) bool { return len(transitions[s]) == 0 }
