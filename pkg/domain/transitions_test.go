package domain

import "testing"

func TestCanGapTransition(t *testing.T) {
	cases := []struct {
		from, to GapStatus
		want     bool
	}{
		{GapStatusNew, GapStatusInProgress, true},
		{GapStatusNew, GapStatusStalled, true},
		{GapStatusNew, GapStatusResolved, false},
		{GapStatusInProgress, GapStatusResolved, true},
		{GapStatusInProgress, GapStatusStalled, true},
		{GapStatusStalled, GapStatusInProgress, true},
		{GapStatusStalled, GapStatusResolved, false},
		{GapStatusResolved, GapStatusInProgress, false},
		{GapStatusResolved, GapStatusNew, false},
		{GapStatusNew, GapStatusNew, true},
		{GapStatusResolved, GapStatusResolved, true},
		{GapStatus("bogus"), GapStatusNew, false},
	}
	for _, tc := range cases {
		if got := CanGapTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanGapTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanPlanTransition(t *testing.T) {
	cases := []struct {
		from, to PlanStatus
		want     bool
	}{
		{PlanStatusPlanned, PlanStatusInProgress, true},
		{PlanStatusPlanned, PlanStatusCompleted, true},
		{PlanStatusPlanned, PlanStatusCancelled, true},
		{PlanStatusInProgress, PlanStatusCompleted, true},
		{PlanStatusInProgress, PlanStatusCancelled, true},
		{PlanStatusInProgress, PlanStatusPlanned, false},
		{PlanStatusCompleted, PlanStatusInProgress, false},
		{PlanStatusCancelled, PlanStatusInProgress, false},
		{PlanStatusCompleted, PlanStatusCompleted, true},
	}
	for _, tc := range cases {
		if got := CanPlanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanPlanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestValidStatuses(t *testing.T) {
	for _, s := range []GapStatus{GapStatusNew, GapStatusInProgress, GapStatusResolved, GapStatusStalled} {
		if !ValidGapStatus(s) {
			t.Errorf("ValidGapStatus(%s) = false", s)
		}
	}
	if ValidGapStatus("archived") {
		t.Error("unknown gap status accepted")
	}
	for _, s := range []PlanStatus{PlanStatusPlanned, PlanStatusInProgress, PlanStatusCompleted, PlanStatusCancelled} {
		if !ValidPlanStatus(s) {
			t.Errorf("ValidPlanStatus(%s) = false", s)
		}
	}
	if ValidPlanStatus("paused") {
		t.Error("unknown plan status accepted")
	}
}
