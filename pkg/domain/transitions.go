package domain

// Authoritative status transition tables. An absent entry means the move is
// forbidden; self-transitions are always allowed so progress-only updates
// never trip the state machine.

var gapTransitions = map[GapStatus]map[GapStatus]struct{}{
	GapStatusNew:        statusSet(GapStatusInProgress, GapStatusStalled),
	GapStatusInProgress: statusSet(GapStatusResolved, GapStatusStalled),
	GapStatusStalled:    statusSet(GapStatusInProgress),
	GapStatusResolved:   {},
}

var planTransitions = map[PlanStatus]map[PlanStatus]struct{}{
	PlanStatusPlanned:    statusSet(PlanStatusInProgress, PlanStatusCompleted, PlanStatusCancelled),
	PlanStatusInProgress: statusSet(PlanStatusCompleted, PlanStatusCancelled),
	PlanStatusCompleted:  {},
	PlanStatusCancelled:  {},
}

func statusSet[S comparable](states ...S) map[S]struct{} {
	set := make(map[S]struct{}, len(states))
	for _, s := range states {
		set[s] = struct{}{}
	}
	return set
}

// ValidGapStatus reports whether s is a recognized gap status.
func ValidGapStatus(s GapStatus) bool {
	_, ok := gapTransitions[s]
	return ok
}

// ValidPlanStatus reports whether s is a recognized plan status.
func ValidPlanStatus(s PlanStatus) bool {
	_, ok := planTransitions[s]
	return ok
}

// CanGapTransition reports whether a gap may move from one status to another.
func CanGapTransition(from, to GapStatus) bool {
	if from == to {
		return ValidGapStatus(to)
	}
	next, ok := gapTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// CanPlanTransition reports whether a plan may move from one status to another.
func CanPlanTransition(from, to PlanStatus) bool {
	if from == to {
		return ValidPlanStatus(to)
	}
	next, ok := planTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}
