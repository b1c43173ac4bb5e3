package core

import (
	"context"
	"fmt"

	"talentcore/pkg/domain"
)

// GapConsistencyRule blocks commits that would leave any gap with a stored
// size diverging from its levels, or a resolved gap with remaining size.
// The transaction layer already normalizes these on write, so a violation
// here indicates a drifted import or a bug upstream.
func GapConsistencyRule() domain.Rule {
	return gapConsistencyRule{}
}

type gapConsistencyRule struct{}

func (gapConsistencyRule) Name() string { return "gap_consistency" }

func (gapConsistencyRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != EntityGap {
			continue
		}
		gap, ok := change.After.(Gap)
		if !ok {
			continue
		}
		if want := domain.GapSizeOf(gap.RequiredLevel, gap.CurrentLevel); gap.GapSize != want {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "gap_consistency",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("gap %s stores size %d but levels derive %d", gap.ID, gap.GapSize, want),
				Entity:   EntityGap,
				EntityID: gap.ID,
			})
		}
		if gap.Status == GapStatusResolved && gap.GapSize != 0 {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "gap_consistency",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("gap %s is resolved with remaining size %d", gap.ID, gap.GapSize),
				Entity:   EntityGap,
				EntityID: gap.ID,
			})
		}
	}
	return res, nil
}
