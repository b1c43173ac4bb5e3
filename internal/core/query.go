package core

import (
	"sort"

	"talentcore/pkg/domain"
)

// The query layer is read-only: everything here works on snapshot slices
// obtained from a TransactionView and never mutates source records. Empty
// collections yield empty results, never errors.

// Filter returns the items matching the predicate.
func Filter[T any](items []T, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// GroupCount counts items per group key.
func GroupCount[T any, K comparable](items []T, key func(T) K) map[K]int {
	out := make(map[K]int)
	for _, item := range items {
		out[key(item)]++
	}
	return out
}

// GroupSum sums a numeric field per group key.
func GroupSum[T any, K comparable](items []T, key func(T) K, value func(T) float64) map[K]float64 {
	out := make(map[K]float64)
	for _, item := range items {
		out[key(item)] += value(item)
	}
	return out
}

// GroupMean averages a numeric field per group key.
func GroupMean[T any, K comparable](items []T, key func(T) K, value func(T) float64) map[K]float64 {
	sums := make(map[K]float64)
	counts := make(map[K]int)
	for _, item := range items {
		k := key(item)
		sums[k] += value(item)
		counts[k]++
	}
	out := make(map[K]float64, len(sums))
	for k, sum := range sums {
		out[k] = sum / float64(counts[k])
	}
	return out
}

// GapOverviewRow is the inner join of a gap with its employee and the
// employee's organization unit.
type GapOverviewRow struct {
	Gap      Gap
	Employee Employee
	Unit     OrganizationUnit
}

// GapOverview joins every gap to its employee and unit. Gaps whose employee
// or unit cannot be resolved are omitted (inner join semantics).
func GapOverview(view domain.TransactionView) []GapOverviewRow {
	rows := make([]GapOverviewRow, 0)
	for _, gap := range view.ListGaps() {
		employee, ok := view.FindEmployee(gap.EmployeeID)
		if !ok {
			continue
		}
		unit, ok := view.FindOrganizationUnit(employee.UnitCode)
		if !ok {
			continue
		}
		rows = append(rows, GapOverviewRow{Gap: gap, Employee: employee, Unit: unit})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Gap.ID < rows[j].Gap.ID })
	return rows
}

// PlanOverviewRow is the inner join of a plan with its gap and the gap's
// employee.
type PlanOverviewRow struct {
	Plan     DevelopmentPlan
	Gap      Gap
	Employee Employee
}

// PlanOverview joins every development plan to its gap and employee.
func PlanOverview(view domain.TransactionView) []PlanOverviewRow {
	rows := make([]PlanOverviewRow, 0)
	for _, plan := range view.ListDevelopmentPlans() {
		gap, ok := view.FindGap(plan.GapID)
		if !ok {
			continue
		}
		employee, ok := view.FindEmployee(gap.EmployeeID)
		if !ok {
			continue
		}
		rows = append(rows, PlanOverviewRow{Plan: plan, Gap: gap, Employee: employee})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Plan.ID < rows[j].Plan.ID })
	return rows
}

// GapCountByUnit counts open and total gaps per unit code.
func GapCountByUnit(view domain.TransactionView) map[string]int {
	return GroupCount(GapOverview(view), func(r GapOverviewRow) string { return r.Unit.Code })
}

// GapCountByCategory counts gaps per competency category.
func GapCountByCategory(view domain.TransactionView) map[domain.CompetencyCategory]int {
	return GroupCount(view.ListGaps(), func(g Gap) domain.CompetencyCategory { return g.Category })
}

// HeadcountByUnit counts active employees per unit code.
func HeadcountByUnit(view domain.TransactionView) map[string]int {
	active := Filter(view.ListEmployees(), func(e Employee) bool { return e.Active })
	return GroupCount(active, func(e Employee) string { return e.UnitCode })
}

// MotivationByCareerStage averages motivation scores per career stage.
func MotivationByCareerStage(view domain.TransactionView) map[CareerStage]float64 {
	return GroupMean(view.ListEmployees(),
		func(e Employee) CareerStage { return e.CareerStage },
		func(e Employee) float64 { return float64(e.MotivationScore) })
}

// UrgencyImpactMatrix cross-tabulates gap urgency against team impact.
func UrgencyImpactMatrix(view domain.TransactionView) map[Rating]map[Rating]int {
	matrix := make(map[Rating]map[Rating]int)
	for _, gap := range view.ListGaps() {
		row, ok := matrix[gap.Urgency]
		if !ok {
			row = make(map[Rating]int)
			matrix[gap.Urgency] = row
		}
		row[gap.ImpactOnTeam]++
	}
	return matrix
}

// CostByPlanType sums plan costs per plan type.
func CostByPlanType(view domain.TransactionView) map[domain.PlanType]float64 {
	return GroupSum(view.ListDevelopmentPlans(),
		func(p DevelopmentPlan) domain.PlanType { return p.Type },
		func(p DevelopmentPlan) float64 { return p.Cost })
}

// CostByPlanStatus sums plan costs per status.
func CostByPlanStatus(view domain.TransactionView) map[domain.PlanStatus]float64 {
	return GroupSum(view.ListDevelopmentPlans(),
		func(p DevelopmentPlan) domain.PlanStatus { return p.Status },
		func(p DevelopmentPlan) float64 { return p.Cost })
}

// MeanProgressByPlanType averages plan progress per plan type.
func MeanProgressByPlanType(view domain.TransactionView) map[domain.PlanType]float64 {
	return GroupMean(view.ListDevelopmentPlans(),
		func(p DevelopmentPlan) domain.PlanType { return p.Type },
		func(p DevelopmentPlan) float64 { return float64(p.Progress) })
}

// CriticalGaps returns the joined rows for gaps at or above the size
// threshold, largest first.
func CriticalGaps(view domain.TransactionView, minSize int) []GapOverviewRow {
	rows := Filter(GapOverview(view), func(r GapOverviewRow) bool { return r.Gap.GapSize >= minSize })
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Gap.GapSize != rows[j].Gap.GapSize {
			return rows[i].Gap.GapSize > rows[j].Gap.GapSize
		}
		return rows[i].Gap.ID < rows[j].Gap.ID
	})
	return rows
}

// EffectivenessSummary aggregates plan completion and investment totals.
type EffectivenessSummary struct {
	TotalPlans      int
	CompletedPlans  int
	CompletionRate  float64
	TotalInvestment float64
	PlannedCost     float64
	PlannedPlans    int
}

// Effectiveness computes the plan completion summary over the snapshot.
func Effectiveness(view domain.TransactionView) EffectivenessSummary {
	plans := view.ListDevelopmentPlans()
	summary := EffectivenessSummary{TotalPlans: len(plans)}
	for _, p := range plans {
		summary.TotalInvestment += p.Cost
		switch p.Status {
		case PlanStatusCompleted:
			summary.CompletedPlans++
		case PlanStatusPlanned:
			summary.PlannedPlans++
			summary.PlannedCost += p.Cost
		}
	}
	summary.CompletionRate = domain.CompletionRate(summary.CompletedPlans, summary.TotalPlans)
	return summary
}

// ROIRow pairs a plan with its cost-normalized priority score.
type ROIRow struct {
	Plan  DevelopmentPlan
	Gap   Gap
	Score float64
}

// ROIRanking scores every plan that joins to a gap and sorts descending by
// score. Plans with zero cost carry the zero sentinel score.
func ROIRanking(view domain.TransactionView, cfg domain.DerivationConfig) []ROIRow {
	rows := make([]ROIRow, 0)
	for _, joined := range PlanOverview(view) {
		rows = append(rows, ROIRow{
			Plan:  joined.Plan,
			Gap:   joined.Gap,
			Score: domain.ROIScore(joined.Gap, joined.Plan.Cost, cfg),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Plan.ID < rows[j].Plan.ID
	})
	return rows
}
