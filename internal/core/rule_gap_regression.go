package core

import (
	"context"
	"fmt"

	"talentcore/pkg/domain"
)

// GapRegressionRule warns when a newly created gap duplicates a resolved gap
// for the same employee at an unchanged required level. The create still
// commits; the warning signals a competency regression to the caller.
func GapRegressionRule() domain.Rule {
	return gapRegressionRule{}
}

type gapRegressionRule struct{}

func (gapRegressionRule) Name() string { return "gap_regression" }

func (gapRegressionRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != EntityGap || change.Action != ActionCreate {
			continue
		}
		created, ok := change.After.(Gap)
		if !ok {
			continue
		}
		for _, existing := range view.ListGaps() {
			if existing.ID == created.ID || existing.Status != GapStatusResolved {
				continue
			}
			if existing.EmployeeID == created.EmployeeID &&
				existing.Name == created.Name &&
				existing.RequiredLevel == created.RequiredLevel {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "gap_regression",
					Severity: SeverityWarn,
					Message:  fmt.Sprintf("gap %s reopens competency %q previously resolved as %s for employee %s", created.ID, created.Name, existing.ID, created.EmployeeID),
					Entity:   EntityGap,
					EntityID: created.ID,
				})
				break
			}
		}
	}
	return res, nil
}
