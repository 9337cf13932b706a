package fault

import (
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("minute", "out of range"), http.StatusBadRequest},
		{State("match is not live"), http.StatusConflict},
		{NotFound("match"), http.StatusNotFound},
		{Permission("management rights required"), http.StatusForbidden},
		{Consistency("score drift"), http.StatusInternalServerError},
		{fmt.Errorf("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Errorf("Status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestStatus_Wrapped(t *testing.T) {
	err := fmt.Errorf("record event: %w", State("match is finished"))
	if got := Status(err); got != http.StatusConflict {
		t.Fatalf("Status(wrapped state) = %d, want 409", got)
	}
}

func TestFieldOf(t *testing.T) {
	if got := FieldOf(Validation("half", "must be 1 or 2")); got != "half" {
		t.Fatalf("FieldOf = %q, want half", got)
	}
	if got := FieldOf(fmt.Errorf("wrap: %w", Validation("kind", "unknown"))); got != "kind" {
		t.Fatalf("FieldOf wrapped = %q, want kind", got)
	}
	if got := FieldOf(State("nope")); got != "" {
		t.Fatalf("FieldOf(state) = %q, want empty", got)
	}
}

func TestErrorStrings(t *testing.T) {
	if got := NotFound("event").Error(); got != "event not found" {
		t.Fatalf("NotFound.Error() = %q", got)
	}
	if got := Validation("", "bad payload").Error(); got != "bad payload" {
		t.Fatalf("fieldless validation = %q", got)
	}
	if got := Validation("minute", "out of range").Error(); got != "minute: out of range" {
		t.Fatalf("validation = %q", got)
	}
}
