package core

import (
	"context"
	"fmt"

	"talentcore/pkg/domain"
)

// ActivePlanRule warns when a gap ends up with more than one active plan.
// The cascade fires per completed plan, so competing active plans can race
// over which one resolves the gap; the model tolerates it but flags it.
func ActivePlanRule() domain.Rule {
	return activePlanRule{}
}

type activePlanRule struct{}

func (activePlanRule) Name() string { return "active_plan" }

func (activePlanRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	touched := make(map[string]struct{})
	for _, change := range changes {
		if change.Entity != EntityDevelopmentPlan {
			continue
		}
		if plan, ok := change.After.(DevelopmentPlan); ok {
			touched[plan.GapID] = struct{}{}
		}
	}
	if len(touched) == 0 {
		return domain.Result{}, nil
	}

	active := make(map[string]int)
	for _, plan := range view.ListDevelopmentPlans() {
		if plan.Active() {
			active[plan.GapID]++
		}
	}

	res := domain.Result{}
	for gapID := range touched {
		if count := active[gapID]; count > 1 {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "active_plan",
				Severity: SeverityWarn,
				Message:  fmt.Sprintf("gap %s has %d active development plans", gapID, count),
				Entity:   EntityGap,
				EntityID: gapID,
			})
		}
	}
	return res, nil
}
