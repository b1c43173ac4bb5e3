package core

import (
	"context"
	"time"

	"talentcore/pkg/domain"
)

// Service exposes the transactional operations of the talent engine: CRUD
// with referential validation, the plan-completion cascade, and snapshot
// reads for the query layer.
type Service struct {
	store   domain.PersistentStore
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	derive  domain.DerivationConfig
}

type clockConfigurable interface {
	SetNowFunc(func() time.Time)
}

type deriveConfigurable interface {
	SetDerivationConfig(domain.DerivationConfig)
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	options := defaultServiceOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if c, ok := store.(clockConfigurable); ok {
		c.SetNowFunc(options.clock.Now)
	}
	if d, ok := store.(deriveConfigurable); ok {
		d.SetDerivationConfig(options.derive)
	}
	return &Service{
		store:   store,
		clock:   options.clock,
		logger:  options.logger,
		metrics: options.metrics,
		derive:  options.derive,
	}
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore { return s.store }

// DerivationConfig returns the thresholds the service derives with.
func (s *Service) DerivationConfig() domain.DerivationConfig { return s.derive }

func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	}
	if err != nil {
		s.logger.Warn("operation rejected", "op", op, "error", err)
	}
}

func (s *Service) logWarnings(op string, res Result) {
	for _, v := range res.Warnings() {
		s.logger.Warn("rule warning", "op", op, "rule", v.Rule, "entity", string(v.Entity), "id", v.EntityID, "message", v.Message)
	}
}

func (s *Service) run(ctx context.Context, op string, fn func(tx domain.Transaction) error) (Result, error) {
	start := time.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	s.observe(ctx, op, start, err)
	if err == nil {
		s.logWarnings(op, res)
	}
	return res, err
}

// CreateEmployee persists a new employee.
func (s *Service) CreateEmployee(ctx context.Context, employee Employee) (Employee, Result, error) {
	var created Employee
	res, err := s.run(ctx, "create_employee", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateEmployee(employee)
		return err
	})
	return created, res, err
}

// UpdateEmployee mutates an employee using the provided mutator.
func (s *Service) UpdateEmployee(ctx context.Context, id string, mutator func(*Employee) error) (Employee, Result, error) {
	var updated Employee
	res, err := s.run(ctx, "update_employee", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateEmployee(id, mutator)
		return err
	})
	return updated, res, err
}

// DeactivateEmployee retires an employee without deleting the record, so
// gaps, KPIs, and training history keep resolving.
func (s *Service) DeactivateEmployee(ctx context.Context, id string) (Employee, Result, error) {
	return s.UpdateEmployee(ctx, id, func(e *Employee) error {
		e.Active = false
		return nil
	})
}

// CreateOrganizationUnit persists a new org tree node.
func (s *Service) CreateOrganizationUnit(ctx context.Context, unit OrganizationUnit) (OrganizationUnit, Result, error) {
	var created OrganizationUnit
	res, err := s.run(ctx, "create_unit", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateOrganizationUnit(unit)
		return err
	})
	return created, res, err
}

// UpdateOrganizationUnit mutates an org tree node by code.
func (s *Service) UpdateOrganizationUnit(ctx context.Context, code string, mutator func(*OrganizationUnit) error) (OrganizationUnit, Result, error) {
	var updated OrganizationUnit
	res, err := s.run(ctx, "update_unit", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateOrganizationUnit(code, mutator)
		return err
	})
	return updated, res, err
}

// CreateCompetency persists a job competency requirement.
func (s *Service) CreateCompetency(ctx context.Context, competency Competency) (Competency, Result, error) {
	var created Competency
	res, err := s.run(ctx, "create_competency", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateCompetency(competency)
		return err
	})
	return created, res, err
}

// UpdateCompetency mutates a competency by its (job code, name) key.
func (s *Service) UpdateCompetency(ctx context.Context, key string, mutator func(*Competency) error) (Competency, Result, error) {
	var updated Competency
	res, err := s.run(ctx, "update_competency", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateCompetency(key, mutator)
		return err
	})
	return updated, res, err
}

// CreateGap persists a new competency gap. A warning is attached to the
// result when the gap duplicates a previously resolved one.
func (s *Service) CreateGap(ctx context.Context, gap Gap) (Gap, Result, error) {
	var created Gap
	res, err := s.run(ctx, "create_gap", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateGap(gap)
		return err
	})
	return created, res, err
}

// UpdateGap mutates a gap. Status moves are validated against the gap state
// machine; GapSize is rederived from the levels.
func (s *Service) UpdateGap(ctx context.Context, id string, mutator func(*Gap) error) (Gap, Result, error) {
	var updated Gap
	res, err := s.run(ctx, "update_gap", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateGap(id, mutator)
		return err
	})
	return updated, res, err
}

// StallGap parks a gap that cannot currently be worked.
func (s *Service) StallGap(ctx context.Context, id string) (Gap, Result, error) {
	return s.UpdateGap(ctx, id, func(g *Gap) error {
		g.Status = GapStatusStalled
		return nil
	})
}

// ReopenGap moves a stalled gap back into progress.
func (s *Service) ReopenGap(ctx context.Context, id string) (Gap, Result, error) {
	return s.UpdateGap(ctx, id, func(g *Gap) error {
		g.Status = GapStatusInProgress
		return nil
	})
}

// CreateDevelopmentPlan persists a plan for an existing gap and moves a New
// gap to InProgress within the same transaction.
func (s *Service) CreateDevelopmentPlan(ctx context.Context, plan DevelopmentPlan) (DevelopmentPlan, Result, error) {
	var created DevelopmentPlan
	res, err := s.run(ctx, "create_plan", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateDevelopmentPlan(plan)
		if err != nil {
			return err
		}
		gap, ok := tx.FindGap(created.GapID)
		if !ok {
			return domain.ReferenceBrokenError{Entity: EntityDevelopmentPlan, ID: created.ID, Ref: EntityGap, RefID: created.GapID}
		}
		if gap.Status == GapStatusNew {
			_, err = tx.UpdateGap(gap.ID, func(g *Gap) error {
				g.Status = GapStatusInProgress
				return nil
			})
		}
		return err
	})
	return created, res, err
}

// UpdateDevelopmentPlan mutates a plan outside the progress entry point.
// Moving a plan into Completed is rejected here: completion goes through
// UpdatePlanProgress so the gap resolution commits in the same transaction.
func (s *Service) UpdateDevelopmentPlan(ctx context.Context, id string, mutator func(*DevelopmentPlan) error) (DevelopmentPlan, Result, error) {
	var updated DevelopmentPlan
	res, err := s.run(ctx, "update_plan", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateDevelopmentPlan(id, mutator)
		return err
	})
	return updated, res, err
}

// CancelDevelopmentPlan abandons a non-terminal plan. The gap is left as-is:
// cancelling one plan says nothing about the gap's remediation state.
func (s *Service) CancelDevelopmentPlan(ctx context.Context, id string) (DevelopmentPlan, Result, error) {
	return s.UpdateDevelopmentPlan(ctx, id, func(p *DevelopmentPlan) error {
		p.Status = PlanStatusCancelled
		return nil
	})
}

// UpdatePlanProgress is the sole entry point that can fire the completion
// cascade. Marking a plan Completed requires progress 100 and atomically
// stamps the plan's end date, lifts the gap's current level to its required
// level, zeroes the gap size, and resolves the gap. Any failure aborts the
// whole transaction with the plan unchanged.
func (s *Service) UpdatePlanProgress(ctx context.Context, planID string, progress int, status domain.PlanStatus, completionDate *time.Time) (DevelopmentPlan, Result, error) {
	var updated DevelopmentPlan
	res, err := s.run(ctx, "update_plan_progress", func(tx domain.Transaction) error {
		plan, ok := tx.FindDevelopmentPlan(planID)
		if !ok {
			return domain.NotFoundError{Entity: EntityDevelopmentPlan, ID: planID}
		}
		if status == PlanStatusCompleted && progress != 100 {
			return domain.InvalidTransitionError{
				Entity: EntityDevelopmentPlan,
				ID:     planID,
				From:   string(plan.Status),
				To:     string(status),
				Reason: "completion requires progress 100",
			}
		}
		completes := status == PlanStatusCompleted && plan.Status != PlanStatusCompleted

		var err error
		updated, err = tx.UpdateDevelopmentPlan(planID, func(p *DevelopmentPlan) error {
			p.Progress = progress
			p.Status = status
			if completes {
				when := s.clock.Now()
				if completionDate != nil {
					when = *completionDate
				}
				p.EndDate = when
			}
			return nil
		})
		if err != nil {
			return err
		}
		if !completes {
			return nil
		}

		gap, ok := tx.FindGap(updated.GapID)
		if !ok {
			// Gaps cannot be deleted, so this is purely defensive; a missing
			// gap aborts the cascade with the plan untouched.
			return domain.ReferenceBrokenError{Entity: EntityDevelopmentPlan, ID: planID, Ref: EntityGap, RefID: updated.GapID}
		}
		if gap.Status == GapStatusNew || gap.Status == GapStatusStalled {
			if _, err := tx.UpdateGap(gap.ID, func(g *Gap) error {
				g.Status = GapStatusInProgress
				return nil
			}); err != nil {
				return err
			}
		}
		_, err = tx.UpdateGap(updated.GapID, func(g *Gap) error {
			g.CurrentLevel = g.RequiredLevel
			g.Status = GapStatusResolved
			return nil
		})
		if err == nil {
			s.logger.Info("plan completed, gap resolved", "plan", planID, "gap", updated.GapID)
		}
		return err
	})
	return updated, res, err
}

// CreateCourse persists a catalogue entry.
func (s *Service) CreateCourse(ctx context.Context, course Course) (Course, Result, error) {
	var created Course
	res, err := s.run(ctx, "create_course", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateCourse(course)
		return err
	})
	return created, res, err
}

// UpdateCourse mutates a catalogue entry.
func (s *Service) UpdateCourse(ctx context.Context, id string, mutator func(*Course) error) (Course, Result, error) {
	var updated Course
	res, err := s.run(ctx, "update_course", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateCourse(id, mutator)
		return err
	})
	return updated, res, err
}

// CreateTrainingRecord persists a course attendance record.
func (s *Service) CreateTrainingRecord(ctx context.Context, record TrainingRecord) (TrainingRecord, Result, error) {
	var created TrainingRecord
	res, err := s.run(ctx, "create_training_record", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateTrainingRecord(record)
		return err
	})
	return created, res, err
}

// CreateKPI persists a performance measurement.
func (s *Service) CreateKPI(ctx context.Context, kpi KPI) (KPI, Result, error) {
	var created KPI
	res, err := s.run(ctx, "create_kpi", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateKPI(kpi)
		return err
	})
	return created, res, err
}

// UpdateKPI mutates a measurement and rederives its variance and status.
func (s *Service) UpdateKPI(ctx context.Context, id string, mutator func(*KPI) error) (KPI, Result, error) {
	var updated KPI
	res, err := s.run(ctx, "update_kpi", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateKPI(id, mutator)
		return err
	})
	return updated, res, err
}

// GetEmployee returns an employee by id.
func (s *Service) GetEmployee(id string) (Employee, error) {
	if e, ok := s.store.GetEmployee(id); ok {
		return e, nil
	}
	return Employee{}, domain.NotFoundError{Entity: EntityEmployee, ID: id}
}

// GetGap returns a gap by id.
func (s *Service) GetGap(id string) (Gap, error) {
	if g, ok := s.store.GetGap(id); ok {
		return g, nil
	}
	return Gap{}, domain.NotFoundError{Entity: EntityGap, ID: id}
}

// GetDevelopmentPlan returns a plan by id.
func (s *Service) GetDevelopmentPlan(id string) (DevelopmentPlan, error) {
	if p, ok := s.store.GetDevelopmentPlan(id); ok {
		return p, nil
	}
	return DevelopmentPlan{}, domain.NotFoundError{Entity: EntityDevelopmentPlan, ID: id}
}

// View executes fn against a read-only snapshot of the store.
func (s *Service) View(ctx context.Context, fn func(domain.TransactionView) error) error {
	return s.store.View(ctx, fn)
}
