package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"talentcore/pkg/domain"
)

var testNow = time.Date(2026, 4, 15, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	opts = append([]ServiceOption{WithClock(ClockFunc(func() time.Time { return testNow }))}, opts...)
	return NewInMemoryService(nil, opts...)
}

type fixture struct {
	employee Employee
	gap      Gap
	plan     DevelopmentPlan
}

func seedFixture(t *testing.T, svc *Service) fixture {
	t.Helper()
	ctx := context.Background()
	if _, _, err := svc.CreateOrganizationUnit(ctx, OrganizationUnit{Code: "ENG", Title: "Engineering", Headcount: 10}); err != nil {
		t.Fatalf("create unit: %v", err)
	}
	employee, _, err := svc.CreateEmployee(ctx, Employee{
		FullName:        "Sara Ahmadi",
		JobCode:         "ENG-BE",
		UnitCode:        "ENG",
		CareerStage:     domain.StageProfessional,
		MotivationScore: 7,
		Active:          true,
	})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	gap, _, err := svc.CreateGap(ctx, Gap{
		EmployeeID:    employee.ID,
		JobCode:       "ENG-BE",
		Name:          "Distributed Systems",
		Category:      domain.CategoryTechnical,
		RequiredLevel: 4,
		CurrentLevel:  2,
		Urgency:       domain.RatingHigh,
		ImpactOnTeam:  domain.RatingMedium,
		ImpactOnOrg:   domain.RatingHigh,
		CostEstimate:  45_000_000,
	})
	if err != nil {
		t.Fatalf("create gap: %v", err)
	}
	plan, _, err := svc.CreateDevelopmentPlan(ctx, DevelopmentPlan{
		GapID:     gap.ID,
		Name:      "DS upskilling",
		Type:      domain.PlanTypeTraining,
		StartDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Cost:      30_000_000,
	})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return fixture{employee: employee, gap: gap, plan: plan}
}

func TestCreateDevelopmentPlanMovesGapInProgress(t *testing.T) {
	svc := newTestService(t)
	fix := seedFixture(t, svc)

	gap, err := svc.GetGap(fix.gap.ID)
	if err != nil {
		t.Fatalf("get gap: %v", err)
	}
	if gap.Status != GapStatusInProgress {
		t.Fatalf("gap status = %s, want in_progress", gap.Status)
	}
}

func TestPlanCompletionCascade(t *testing.T) {
	svc := newTestService(t)
	fix := seedFixture(t, svc)
	ctx := context.Background()

	plan, _, err := svc.UpdatePlanProgress(ctx, fix.plan.ID, 100, PlanStatusCompleted, nil)
	if err != nil {
		t.Fatalf("complete plan: %v", err)
	}
	if plan.Status != PlanStatusCompleted || plan.Progress != 100 {
		t.Fatalf("plan = %+v", plan)
	}
	if !plan.EndDate.Equal(testNow) {
		t.Fatalf("end date = %v, want clock time %v", plan.EndDate, testNow)
	}

	gap, err := svc.GetGap(fix.gap.ID)
	if err != nil {
		t.Fatalf("get gap: %v", err)
	}
	if gap.Status != GapStatusResolved {
		t.Fatalf("gap status = %s, want resolved", gap.Status)
	}
	if gap.CurrentLevel != gap.RequiredLevel {
		t.Fatalf("current level = %d, required = %d", gap.CurrentLevel, gap.RequiredLevel)
	}
	if gap.GapSize != 0 {
		t.Fatalf("gap size = %d, want 0", gap.GapSize)
	}
}

func TestPlanCompletionUsesExplicitDate(t *testing.T) {
	svc := newTestService(t)
	fix := seedFixture(t, svc)
	when := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	plan, _, err := svc.UpdatePlanProgress(context.Background(), fix.plan.ID, 100, PlanStatusCompleted, &when)
	if err != nil {
		t.Fatalf("complete plan: %v", err)
	}
	if !plan.EndDate.Equal(when) {
		t.Fatalf("end date = %v, want %v", plan.EndDate, when)
	}
}

func TestProgressUpdateWithoutCompletionDoesNotCascade(t *testing.T) {
	svc := newTestService(t)
	fix := seedFixture(t, svc)

	plan, _, err := svc.UpdatePlanProgress(context.Background(), fix.plan.ID, 60, PlanStatusInProgress, nil)
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if plan.Progress != 60 || plan.Status != PlanStatusInProgress {
		t.Fatalf("plan = %+v", plan)
	}
	if !plan.EndDate.IsZero() {
		t.Fatalf("end date stamped on non-completion: %v", plan.EndDate)
	}

	gap, _ := svc.GetGap(fix.gap.ID)
	if gap.Status != GapStatusInProgress || gap.CurrentLevel != 2 {
		t.Fatalf("gap changed without completion: %+v", gap)
	}
}

func TestCompletionRequiresFullProgress(t *testing.T) {
	svc := newTestService(t)
	fix := seedFixture(t, svc)

	_, _, err := svc.UpdatePlanProgress(context.Background(), fix.plan.ID, 80, PlanStatusCompleted, nil)
	if !domain.IsInvalidTransition(err) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}

	plan, _ := svc.GetDevelopmentPlan(fix.plan.ID)
	if plan.Status != PlanStatusPlanned || plan.Progress != 0 {
		t.Fatalf("rejected completion leaked: %+v", plan)
	}
	gap, _ := svc.GetGap(fix.gap.ID)
	if gap.Status == GapStatusResolved {
		t.Fatal("gap resolved despite rejected completion")
	}
}

func TestGenericUpdateCannotCompletePlan(t *testing.T) {
	svc := newTestService(t)
	fix := seedFixture(t, svc)
	ctx := context.Background()

	_, _, err := svc.UpdateDevelopmentPlan(ctx, fix.plan.ID, func(p *DevelopmentPlan) error {
		p.Progress = 30
		p.Status = PlanStatusCompleted
		return nil
	})
	if !domain.IsInvalidTransition(err) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}

	plan, _ := svc.GetDevelopmentPlan(fix.plan.ID)
	if plan.Status != PlanStatusPlanned || plan.Progress != 0 {
		t.Fatalf("rejected update leaked: %+v", plan)
	}
	gap, _ := svc.GetGap(fix.gap.ID)
	if gap.Status != GapStatusInProgress {
		t.Fatalf("gap status = %s, want in_progress", gap.Status)
	}
}

func TestGenericUpdateCannotBypassCompletionCascade(t *testing.T) {
	svc := newTestService(t)
	fix := seedFixture(t, svc)
	ctx := context.Background()

	_, _, err := svc.UpdateDevelopmentPlan(ctx, fix.plan.ID, func(p *DevelopmentPlan) error {
		p.Progress = 100
		p.Status = PlanStatusCompleted
		return nil
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("err = %v, want RuleViolationError", err)
	}

	plan, _ := svc.GetDevelopmentPlan(fix.plan.ID)
	if plan.Status == PlanStatusCompleted {
		t.Fatal("plan completed without resolving its gap")
	}
	gap, _ := svc.GetGap(fix.gap.ID)
	if gap.Status != GapStatusInProgress {
		t.Fatalf("gap status = %s, want in_progress", gap.Status)
	}
}

func TestUpdatePlanProgressMissingPlan(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.UpdatePlanProgress(context.Background(), "PLAN-404", 100, PlanStatusCompleted, nil)
	if !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestCompletionResolvesStalledGap(t *testing.T) {
	svc := newTestService(t)
	fix := seedFixture(t, svc)
	ctx := context.Background()

	if _, _, err := svc.StallGap(ctx, fix.gap.ID); err != nil {
		t.Fatalf("stall gap: %v", err)
	}
	if _, _, err := svc.UpdatePlanProgress(ctx, fix.plan.ID, 100, PlanStatusCompleted, nil); err != nil {
		t.Fatalf("complete plan: %v", err)
	}
	gap, _ := svc.GetGap(fix.gap.ID)
	if gap.Status != GapStatusResolved {
		t.Fatalf("gap status = %s, want resolved", gap.Status)
	}
}

func TestCompletedPlanIsTerminal(t *testing.T) {
	svc := newTestService(t)
	fix := seedFixture(t, svc)
	ctx := context.Background()

	if _, _, err := svc.UpdatePlanProgress(ctx, fix.plan.ID, 100, PlanStatusCompleted, nil); err != nil {
		t.Fatalf("complete plan: %v", err)
	}
	_, _, err := svc.UpdatePlanProgress(ctx, fix.plan.ID, 50, PlanStatusInProgress, nil)
	if !domain.IsInvalidTransition(err) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
}

func TestRepeatedCompletionIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	fix := seedFixture(t, svc)
	ctx := context.Background()

	if _, _, err := svc.UpdatePlanProgress(ctx, fix.plan.ID, 100, PlanStatusCompleted, nil); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	first, _ := svc.GetDevelopmentPlan(fix.plan.ID)

	if _, _, err := svc.UpdatePlanProgress(ctx, fix.plan.ID, 100, PlanStatusCompleted, nil); err != nil {
		t.Fatalf("second completion: %v", err)
	}
	second, _ := svc.GetDevelopmentPlan(fix.plan.ID)
	if !second.EndDate.Equal(first.EndDate) {
		t.Fatalf("end date rewritten: %v -> %v", first.EndDate, second.EndDate)
	}
}

func TestCancelPlanLeavesGapUntouched(t *testing.T) {
	svc := newTestService(t)
	fix := seedFixture(t, svc)

	if _, _, err := svc.CancelDevelopmentPlan(context.Background(), fix.plan.ID); err != nil {
		t.Fatalf("cancel plan: %v", err)
	}
	gap, _ := svc.GetGap(fix.gap.ID)
	if gap.Status != GapStatusInProgress || gap.CurrentLevel != 2 {
		t.Fatalf("gap changed by cancellation: %+v", gap)
	}
}

func TestGapRegressionWarning(t *testing.T) {
	svc := newTestService(t)
	fix := seedFixture(t, svc)
	ctx := context.Background()

	if _, _, err := svc.UpdatePlanProgress(ctx, fix.plan.ID, 100, PlanStatusCompleted, nil); err != nil {
		t.Fatalf("complete plan: %v", err)
	}

	_, res, err := svc.CreateGap(ctx, Gap{
		EmployeeID:    fix.employee.ID,
		JobCode:       "ENG-BE",
		Name:          "Distributed Systems",
		Category:      domain.CategoryTechnical,
		RequiredLevel: 4,
		CurrentLevel:  1,
	})
	if err != nil {
		t.Fatalf("recreate gap: %v", err)
	}
	if !hasWarning(res, "gap_regression") {
		t.Fatalf("expected gap_regression warning, got %+v", res.Violations)
	}
}

func TestActivePlanWarning(t *testing.T) {
	svc := newTestService(t)
	fix := seedFixture(t, svc)

	_, res, err := svc.CreateDevelopmentPlan(context.Background(), DevelopmentPlan{
		GapID: fix.gap.ID,
		Name:  "Mentoring track",
		Type:  domain.PlanTypeMentoring,
	})
	if err != nil {
		t.Fatalf("create second plan: %v", err)
	}
	if !hasWarning(res, "active_plan") {
		t.Fatalf("expected active_plan warning, got %+v", res.Violations)
	}
}

func hasWarning(res Result, rule string) bool {
	for _, v := range res.Warnings() {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

func TestDeactivateEmployeeKeepsReferences(t *testing.T) {
	svc := newTestService(t)
	fix := seedFixture(t, svc)
	ctx := context.Background()

	employee, _, err := svc.DeactivateEmployee(ctx, fix.employee.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if employee.Active {
		t.Fatal("employee still active")
	}
	gap, err := svc.GetGap(fix.gap.ID)
	if err != nil {
		t.Fatalf("gap lookup after deactivation: %v", err)
	}
	if gap.EmployeeID != fix.employee.ID {
		t.Fatalf("gap reference changed: %s", gap.EmployeeID)
	}
}

type captureRecorder struct {
	mu  sync.Mutex
	ops []string
	ok  []bool
}

func (c *captureRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, op)
	c.ok = append(c.ok, success)
}

func TestMetricsRecorderObservesOperations(t *testing.T) {
	rec := &captureRecorder{}
	svc := newTestService(t, WithMetricsRecorder(rec))
	fix := seedFixture(t, svc)
	ctx := context.Background()

	if _, _, err := svc.UpdatePlanProgress(ctx, fix.plan.ID, 100, PlanStatusCompleted, nil); err != nil {
		t.Fatalf("complete plan: %v", err)
	}
	if _, _, err := svc.UpdatePlanProgress(ctx, "PLAN-404", 10, PlanStatusInProgress, nil); err == nil {
		t.Fatal("expected not found")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	var completedOK, missingFailed bool
	for i, op := range rec.ops {
		if op == "update_plan_progress" {
			if rec.ok[i] {
				completedOK = true
			} else {
				missingFailed = true
			}
		}
	}
	if !completedOK || !missingFailed {
		t.Fatalf("observed ops = %v ok = %v", rec.ops, rec.ok)
	}
}

func TestGetMissingRecordsReturnNotFound(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.GetEmployee("EMP-404"); !domain.IsNotFound(err) {
		t.Fatalf("employee err = %v", err)
	}
	if _, err := svc.GetGap("GAP-404"); !domain.IsNotFound(err) {
		t.Fatalf("gap err = %v", err)
	}
	if _, err := svc.GetDevelopmentPlan("PLAN-404"); !domain.IsNotFound(err) {
		t.Fatalf("plan err = %v", err)
	}
}
