package matches

import "testing"

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusScheduled, StatusLive, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusFinished, false},
		{StatusLive, StatusFinished, true},
		{StatusLive, StatusCancelled, true},
		{StatusLive, StatusScheduled, false},
		{StatusFinished, StatusLive, false},
		{StatusFinished, StatusCancelled, false},
		{StatusCancelled, StatusLive, false},
		{StatusCancelled, StatusScheduled, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.ok {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestCanRecord(t *testing.T) {
	if !CanRecord(StatusLive) {
		t.Fatal("live matches must accept events")
	}
	for _, s := range []Status{StatusScheduled, StatusFinished, StatusCancelled} {
		if CanRecord(s) {
			t.Fatalf("%s matches must not accept events", s)
		}
	}
}

func TestTerminal(t *testing.T) {
	if Terminal(StatusScheduled) || Terminal(StatusLive) {
		t.Fatal("scheduled/live are not terminal")
	}
	if !Terminal(StatusFinished) || !Terminal(StatusCancelled) {
		t.Fatal("finished/cancelled are terminal")
	}
}

func TestMatch_MaxMinute(t *testing.T) {
	m := Match{HalfLengthMin: 45, StoppageSlackMin: 15}
	if m.MaxMinute() != 60 {
		t.Fatalf("MaxMinute = %d, want 60", m.MaxMinute())
	}
}
