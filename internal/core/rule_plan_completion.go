package core

import (
	"context"
	"fmt"

	"talentcore/pkg/domain"
)

// PlanCompletionRule blocks commits in which a plan enters Completed while
// its gap is left unresolved. Completion must go through UpdatePlanProgress,
// which resolves the gap in the same transaction; any other path into
// Completed fails here.
func PlanCompletionRule() domain.Rule {
	return planCompletionRule{}
}

type planCompletionRule struct{}

func (planCompletionRule) Name() string { return "plan_completion_sync" }

func (planCompletionRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != EntityDevelopmentPlan {
			continue
		}
		after, ok := change.After.(DevelopmentPlan)
		if !ok || after.Status != PlanStatusCompleted {
			continue
		}
		if before, ok := change.Before.(DevelopmentPlan); ok && before.Status == PlanStatusCompleted {
			continue
		}
		gap, ok := view.FindGap(after.GapID)
		if !ok || gap.Status != GapStatusResolved {
			status := "missing"
			if ok {
				status = string(gap.Status)
			}
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "plan_completion_sync",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("plan %s completed while gap %s is %s", after.ID, after.GapID, status),
				Entity:   EntityDevelopmentPlan,
				EntityID: after.ID,
			})
		}
	}
	return res, nil
}
