package memory

import (
	"strings"
	"time"

	"talentcore/pkg/domain"
)

// transaction mutates a private clone of the store state. Every create and
// update validates identifiers, references, and field domains before the
// clone is touched, so a failed operation leaves no residue even within the
// transaction scope.
type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
	derive  domain.DerivationConfig
}

var _ domain.Transaction = (*transaction)(nil)

func (tx *transaction) Snapshot() TransactionView {
	return memoryView{state: &tx.state}
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// CreateEmployee stores a new employee within the transaction.
func (tx *transaction) CreateEmployee(e Employee) (Employee, error) {
	if e.ID == "" {
		e.ID = nextID(&tx.state, domain.EntityEmployee, func(id string) bool {
			_, taken := tx.state.employees[id]
			return taken
		})
	}
	if _, exists := tx.state.employees[e.ID]; exists {
		return Employee{}, domain.DuplicateIDError{Entity: domain.EntityEmployee, ID: e.ID}
	}
	if err := tx.validateEmployee(e); err != nil {
		return Employee{}, err
	}
	e.CreatedAt = tx.now
	e.UpdatedAt = tx.now
	tx.state.employees[e.ID] = e
	tx.recordChange(Change{Entity: domain.EntityEmployee, Action: domain.ActionCreate, After: e})
	return e, nil
}

// UpdateEmployee mutates an employee using the provided mutator function.
func (tx *transaction) UpdateEmployee(id string, mutator func(*Employee) error) (Employee, error) {
	current, ok := tx.state.employees[id]
	if !ok {
		return Employee{}, domain.NotFoundError{Entity: domain.EntityEmployee, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Employee{}, err
	}
	current.ID = id
	if err := tx.validateEmployee(current); err != nil {
		return Employee{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.employees[id] = current
	tx.recordChange(Change{Entity: domain.EntityEmployee, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

func (tx *transaction) validateEmployee(e Employee) error {
	if strings.TrimSpace(e.FullName) == "" {
		return domain.ValidationError{Entity: domain.EntityEmployee, Field: "full_name", Reason: "must not be empty"}
	}
	if e.MotivationScore < 1 || e.MotivationScore > 10 {
		return domain.ValidationError{Entity: domain.EntityEmployee, Field: "motivation_score", Reason: "must be between 1 and 10"}
	}
	if !validCareerStage(e.CareerStage) {
		return domain.ValidationError{Entity: domain.EntityEmployee, Field: "career_stage", Reason: "unknown stage " + string(e.CareerStage)}
	}
	if e.UnitCode != "" {
		if _, ok := tx.state.units[e.UnitCode]; !ok {
			return domain.ReferenceBrokenError{Entity: domain.EntityEmployee, ID: e.ID, Ref: domain.EntityOrganizationUnit, RefID: e.UnitCode}
		}
	}
	if e.ManagerID != nil && *e.ManagerID != "" && *e.ManagerID != e.ID {
		if _, ok := tx.state.employees[*e.ManagerID]; !ok {
			return domain.ReferenceBrokenError{Entity: domain.EntityEmployee, ID: e.ID, Ref: domain.EntityEmployee, RefID: *e.ManagerID}
		}
	}
	return nil
}

func validCareerStage(s domain.CareerStage) bool {
	for _, stage := range domain.CareerStages {
		if s == stage {
			return true
		}
	}
	return false
}

// CreateOrganizationUnit stores a new unit keyed by its code.
func (tx *transaction) CreateOrganizationUnit(u OrganizationUnit) (OrganizationUnit, error) {
	if strings.TrimSpace(u.Code) == "" {
		return OrganizationUnit{}, domain.ValidationError{Entity: domain.EntityOrganizationUnit, Field: "code", Reason: "must not be empty"}
	}
	if _, exists := tx.state.units[u.Code]; exists {
		return OrganizationUnit{}, domain.DuplicateIDError{Entity: domain.EntityOrganizationUnit, ID: u.Code}
	}
	u.ID = u.Code
	if err := tx.validateUnit(u); err != nil {
		return OrganizationUnit{}, err
	}
	u.CreatedAt = tx.now
	u.UpdatedAt = tx.now
	tx.state.units[u.Code] = u
	tx.recordChange(Change{Entity: domain.EntityOrganizationUnit, Action: domain.ActionCreate, After: u})
	return u, nil
}

// UpdateOrganizationUnit mutates an existing unit. The code is immutable.
func (tx *transaction) UpdateOrganizationUnit(code string, mutator func(*OrganizationUnit) error) (OrganizationUnit, error) {
	current, ok := tx.state.units[code]
	if !ok {
		return OrganizationUnit{}, domain.NotFoundError{Entity: domain.EntityOrganizationUnit, ID: code}
	}
	before := current
	if err := mutator(&current); err != nil {
		return OrganizationUnit{}, err
	}
	current.Code = code
	current.ID = code
	if err := tx.validateUnit(current); err != nil {
		return OrganizationUnit{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.units[code] = current
	tx.recordChange(Change{Entity: domain.EntityOrganizationUnit, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

func (tx *transaction) validateUnit(u OrganizationUnit) error {
	if u.Headcount < 0 {
		return domain.ValidationError{Entity: domain.EntityOrganizationUnit, Field: "headcount", Reason: "must not be negative"}
	}
	if u.ParentCode == "" {
		return nil
	}
	if u.ParentCode == u.Code {
		return domain.ValidationError{Entity: domain.EntityOrganizationUnit, Field: "parent_code", Reason: "unit cannot be its own parent"}
	}
	if _, ok := tx.state.units[u.ParentCode]; !ok {
		return domain.ReferenceBrokenError{Entity: domain.EntityOrganizationUnit, ID: u.Code, Ref: domain.EntityOrganizationUnit, RefID: u.ParentCode}
	}
	// Walk the parent chain; revisiting the unit under validation means the
	// edit would close a cycle.
	seen := map[string]struct{}{u.Code: {}}
	next := u.ParentCode
	for next != "" {
		if _, dup := seen[next]; dup {
			return domain.ValidationError{Entity: domain.EntityOrganizationUnit, Field: "parent_code", Reason: "parent chain forms a cycle"}
		}
		seen[next] = struct{}{}
		parent, ok := tx.state.units[next]
		if !ok {
			break
		}
		next = parent.ParentCode
	}
	return nil
}

// CreateCompetency stores a new competency keyed by (job code, name).
func (tx *transaction) CreateCompetency(c Competency) (Competency, error) {
	if strings.TrimSpace(c.JobCode) == "" || strings.TrimSpace(c.Name) == "" {
		return Competency{}, domain.ValidationError{Entity: domain.EntityCompetency, Field: "job_code/name", Reason: "must not be empty"}
	}
	key := c.Key()
	if _, exists := tx.state.competencies[key]; exists {
		return Competency{}, domain.DuplicateIDError{Entity: domain.EntityCompetency, ID: key}
	}
	if err := tx.validateCompetency(c); err != nil {
		return Competency{}, err
	}
	c.ID = key
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.competencies[key] = cloneCompetency(c)
	tx.recordChange(Change{Entity: domain.EntityCompetency, Action: domain.ActionCreate, After: cloneCompetency(c)})
	return c, nil
}

// UpdateCompetency mutates an existing competency. The key is immutable.
func (tx *transaction) UpdateCompetency(key string, mutator func(*Competency) error) (Competency, error) {
	current, ok := tx.state.competencies[key]
	if !ok {
		return Competency{}, domain.NotFoundError{Entity: domain.EntityCompetency, ID: key}
	}
	before := cloneCompetency(current)
	working := cloneCompetency(current)
	if err := mutator(&working); err != nil {
		return Competency{}, err
	}
	working.JobCode = current.JobCode
	working.Name = current.Name
	working.ID = key
	if err := tx.validateCompetency(working); err != nil {
		return Competency{}, err
	}
	working.UpdatedAt = tx.now
	tx.state.competencies[key] = cloneCompetency(working)
	tx.recordChange(Change{Entity: domain.EntityCompetency, Action: domain.ActionUpdate, Before: before, After: cloneCompetency(working)})
	return working, nil
}

func (tx *transaction) validateCompetency(c Competency) error {
	if c.RequiredLevel < 1 || c.RequiredLevel > 5 {
		return domain.ValidationError{Entity: domain.EntityCompetency, Field: "required_level", Reason: "must be between 1 and 5"}
	}
	for _, courseID := range c.LinkedCourseIDs {
		if _, ok := tx.state.courses[courseID]; !ok {
			return domain.ReferenceBrokenError{Entity: domain.EntityCompetency, ID: c.Key(), Ref: domain.EntityCourse, RefID: courseID}
		}
	}
	return nil
}

// CreateGap stores a new gap. The referenced employee must exist, levels
// must be in range with current <= required, and GapSize is recomputed from
// the levels regardless of any caller-supplied value.
func (tx *transaction) CreateGap(g Gap) (Gap, error) {
	if g.ID == "" {
		g.ID = nextID(&tx.state, domain.EntityGap, func(id string) bool {
			_, taken := tx.state.gaps[id]
			return taken
		})
	}
	if _, exists := tx.state.gaps[g.ID]; exists {
		return Gap{}, domain.DuplicateIDError{Entity: domain.EntityGap, ID: g.ID}
	}
	if _, ok := tx.state.employees[g.EmployeeID]; !ok {
		return Gap{}, domain.ReferenceBrokenError{Entity: domain.EntityGap, ID: g.ID, Ref: domain.EntityEmployee, RefID: g.EmployeeID}
	}
	if g.Status == "" {
		g.Status = domain.GapStatusNew
	}
	if err := validateGap(g); err != nil {
		return Gap{}, err
	}
	g.GapSize = domain.GapSizeOf(g.RequiredLevel, g.CurrentLevel)
	g.CreatedAt = tx.now
	g.UpdatedAt = tx.now
	tx.state.gaps[g.ID] = g
	tx.recordChange(Change{Entity: domain.EntityGap, Action: domain.ActionCreate, After: g})
	return g, nil
}

// UpdateGap mutates a gap. Status changes are checked against the gap state
// machine; GapSize is recomputed from the levels after the mutator runs.
func (tx *transaction) UpdateGap(id string, mutator func(*Gap) error) (Gap, error) {
	current, ok := tx.state.gaps[id]
	if !ok {
		return Gap{}, domain.NotFoundError{Entity: domain.EntityGap, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Gap{}, err
	}
	current.ID = id
	if current.EmployeeID != before.EmployeeID {
		if _, ok := tx.state.employees[current.EmployeeID]; !ok {
			return Gap{}, domain.ReferenceBrokenError{Entity: domain.EntityGap, ID: id, Ref: domain.EntityEmployee, RefID: current.EmployeeID}
		}
	}
	if err := validateGap(current); err != nil {
		return Gap{}, err
	}
	if !domain.CanGapTransition(before.Status, current.Status) {
		return Gap{}, domain.InvalidTransitionError{
			Entity: domain.EntityGap,
			ID:     id,
			From:   string(before.Status),
			To:     string(current.Status),
		}
	}
	current.GapSize = domain.GapSizeOf(current.RequiredLevel, current.CurrentLevel)
	current.UpdatedAt = tx.now
	tx.state.gaps[id] = current
	tx.recordChange(Change{Entity: domain.EntityGap, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

func validateGap(g Gap) error {
	if g.RequiredLevel < 1 || g.RequiredLevel > 5 {
		return domain.ValidationError{Entity: domain.EntityGap, Field: "required_level", Reason: "must be between 1 and 5"}
	}
	if g.CurrentLevel < 0 || g.CurrentLevel > 5 {
		return domain.ValidationError{Entity: domain.EntityGap, Field: "current_level", Reason: "must be between 0 and 5"}
	}
	if g.CurrentLevel > g.RequiredLevel {
		return domain.ValidationError{Entity: domain.EntityGap, Field: "current_level", Reason: "must not exceed required level"}
	}
	if g.CostEstimate < 0 {
		return domain.ValidationError{Entity: domain.EntityGap, Field: "cost_estimate", Reason: "must not be negative"}
	}
	if !domain.ValidGapStatus(g.Status) {
		return domain.ValidationError{Entity: domain.EntityGap, Field: "status", Reason: "unknown status " + string(g.Status)}
	}
	if g.Status == domain.GapStatusResolved && g.CurrentLevel != g.RequiredLevel {
		return domain.ValidationError{Entity: domain.EntityGap, Field: "status", Reason: "resolved gap must have current level equal to required level"}
	}
	return nil
}

// CreateDevelopmentPlan stores a new plan targeting an existing gap.
func (tx *transaction) CreateDevelopmentPlan(p DevelopmentPlan) (DevelopmentPlan, error) {
	if p.ID == "" {
		p.ID = nextID(&tx.state, domain.EntityDevelopmentPlan, func(id string) bool {
			_, taken := tx.state.plans[id]
			return taken
		})
	}
	if _, exists := tx.state.plans[p.ID]; exists {
		return DevelopmentPlan{}, domain.DuplicateIDError{Entity: domain.EntityDevelopmentPlan, ID: p.ID}
	}
	if _, ok := tx.state.gaps[p.GapID]; !ok {
		return DevelopmentPlan{}, domain.ReferenceBrokenError{Entity: domain.EntityDevelopmentPlan, ID: p.ID, Ref: domain.EntityGap, RefID: p.GapID}
	}
	if p.Status == "" {
		p.Status = domain.PlanStatusPlanned
	}
	if err := validatePlan(p); err != nil {
		return DevelopmentPlan{}, err
	}
	if p.Status == domain.PlanStatusCompleted && p.Progress != 100 {
		return DevelopmentPlan{}, domain.ValidationError{Entity: domain.EntityDevelopmentPlan, Field: "progress", Reason: "completed plan requires progress 100"}
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.plans[p.ID] = p
	tx.recordChange(Change{Entity: domain.EntityDevelopmentPlan, Action: domain.ActionCreate, After: p})
	return p, nil
}

// UpdateDevelopmentPlan mutates a plan. Status changes are checked against
// the plan state machine, including terminal-state protection.
func (tx *transaction) UpdateDevelopmentPlan(id string, mutator func(*DevelopmentPlan) error) (DevelopmentPlan, error) {
	current, ok := tx.state.plans[id]
	if !ok {
		return DevelopmentPlan{}, domain.NotFoundError{Entity: domain.EntityDevelopmentPlan, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return DevelopmentPlan{}, err
	}
	current.ID = id
	if current.GapID != before.GapID {
		if _, ok := tx.state.gaps[current.GapID]; !ok {
			return DevelopmentPlan{}, domain.ReferenceBrokenError{Entity: domain.EntityDevelopmentPlan, ID: id, Ref: domain.EntityGap, RefID: current.GapID}
		}
	}
	if err := validatePlan(current); err != nil {
		return DevelopmentPlan{}, err
	}
	if !domain.CanPlanTransition(before.Status, current.Status) {
		return DevelopmentPlan{}, domain.InvalidTransitionError{
			Entity: domain.EntityDevelopmentPlan,
			ID:     id,
			From:   string(before.Status),
			To:     string(current.Status),
		}
	}
	if current.Status == domain.PlanStatusCompleted && current.Progress != 100 {
		return DevelopmentPlan{}, domain.InvalidTransitionError{
			Entity: domain.EntityDevelopmentPlan,
			ID:     id,
			From:   string(before.Status),
			To:     string(current.Status),
			Reason: "completion requires progress 100",
		}
	}
	current.UpdatedAt = tx.now
	tx.state.plans[id] = current
	tx.recordChange(Change{Entity: domain.EntityDevelopmentPlan, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

func validatePlan(p DevelopmentPlan) error {
	if p.Progress < 0 || p.Progress > 100 {
		return domain.ValidationError{Entity: domain.EntityDevelopmentPlan, Field: "progress", Reason: "must be between 0 and 100"}
	}
	if p.Cost < 0 {
		return domain.ValidationError{Entity: domain.EntityDevelopmentPlan, Field: "cost", Reason: "must not be negative"}
	}
	if p.EstimatedHours < 0 {
		return domain.ValidationError{Entity: domain.EntityDevelopmentPlan, Field: "estimated_hours", Reason: "must not be negative"}
	}
	if !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate) {
		return domain.ValidationError{Entity: domain.EntityDevelopmentPlan, Field: "end_date", Reason: "must not precede start date"}
	}
	if !domain.ValidPlanStatus(p.Status) {
		return domain.ValidationError{Entity: domain.EntityDevelopmentPlan, Field: "status", Reason: "unknown status " + string(p.Status)}
	}
	return nil
}

// CreateCourse stores a new catalogue entry.
func (tx *transaction) CreateCourse(c Course) (Course, error) {
	if c.ID == "" {
		c.ID = nextID(&tx.state, domain.EntityCourse, func(id string) bool {
			_, taken := tx.state.courses[id]
			return taken
		})
	}
	if _, exists := tx.state.courses[c.ID]; exists {
		return Course{}, domain.DuplicateIDError{Entity: domain.EntityCourse, ID: c.ID}
	}
	if err := validateCourse(c); err != nil {
		return Course{}, err
	}
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.courses[c.ID] = c
	tx.recordChange(Change{Entity: domain.EntityCourse, Action: domain.ActionCreate, After: c})
	return c, nil
}

// UpdateCourse mutates a catalogue entry.
func (tx *transaction) UpdateCourse(id string, mutator func(*Course) error) (Course, error) {
	current, ok := tx.state.courses[id]
	if !ok {
		return Course{}, domain.NotFoundError{Entity: domain.EntityCourse, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Course{}, err
	}
	current.ID = id
	if err := validateCourse(current); err != nil {
		return Course{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.courses[id] = current
	tx.recordChange(Change{Entity: domain.EntityCourse, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

func validateCourse(c Course) error {
	if strings.TrimSpace(c.Name) == "" {
		return domain.ValidationError{Entity: domain.EntityCourse, Field: "name", Reason: "must not be empty"}
	}
	if c.Cost < 0 {
		return domain.ValidationError{Entity: domain.EntityCourse, Field: "cost", Reason: "must not be negative"}
	}
	if c.DurationHours < 0 {
		return domain.ValidationError{Entity: domain.EntityCourse, Field: "duration_hours", Reason: "must not be negative"}
	}
	return nil
}

// CreateTrainingRecord stores an attendance record. Both the employee and
// the course must exist; Improvement is derived from the two test scores.
func (tx *transaction) CreateTrainingRecord(r TrainingRecord) (TrainingRecord, error) {
	if r.ID == "" {
		r.ID = nextID(&tx.state, domain.EntityTrainingRecord, func(id string) bool {
			_, taken := tx.state.trainings[id]
			return taken
		})
	}
	if _, exists := tx.state.trainings[r.ID]; exists {
		return TrainingRecord{}, domain.DuplicateIDError{Entity: domain.EntityTrainingRecord, ID: r.ID}
	}
	if _, ok := tx.state.employees[r.EmployeeID]; !ok {
		return TrainingRecord{}, domain.ReferenceBrokenError{Entity: domain.EntityTrainingRecord, ID: r.ID, Ref: domain.EntityEmployee, RefID: r.EmployeeID}
	}
	if _, ok := tx.state.courses[r.CourseID]; !ok {
		return TrainingRecord{}, domain.ReferenceBrokenError{Entity: domain.EntityTrainingRecord, ID: r.ID, Ref: domain.EntityCourse, RefID: r.CourseID}
	}
	r.Improvement = domain.ImprovementOf(r.PreTestScore, r.PostTestScore)
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	tx.state.trainings[r.ID] = r
	tx.recordChange(Change{Entity: domain.EntityTrainingRecord, Action: domain.ActionCreate, After: r})
	return r, nil
}

// CreateKPI stores a measurement. Variance and status are derived from the
// value/target pair; caller-supplied values for either are ignored.
func (tx *transaction) CreateKPI(k KPI) (KPI, error) {
	if k.ID == "" {
		k.ID = nextID(&tx.state, domain.EntityKPI, func(id string) bool {
			_, taken := tx.state.kpis[id]
			return taken
		})
	}
	if _, exists := tx.state.kpis[k.ID]; exists {
		return KPI{}, domain.DuplicateIDError{Entity: domain.EntityKPI, ID: k.ID}
	}
	if err := tx.validateKPIRefs(k); err != nil {
		return KPI{}, err
	}
	tx.deriveKPI(&k)
	k.CreatedAt = tx.now
	k.UpdatedAt = tx.now
	tx.state.kpis[k.ID] = k
	tx.recordChange(Change{Entity: domain.EntityKPI, Action: domain.ActionCreate, After: k})
	return k, nil
}

// UpdateKPI mutates a measurement and rederives variance and status.
func (tx *transaction) UpdateKPI(id string, mutator func(*KPI) error) (KPI, error) {
	current, ok := tx.state.kpis[id]
	if !ok {
		return KPI{}, domain.NotFoundError{Entity: domain.EntityKPI, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return KPI{}, err
	}
	current.ID = id
	if err := tx.validateKPIRefs(current); err != nil {
		return KPI{}, err
	}
	tx.deriveKPI(&current)
	current.UpdatedAt = tx.now
	tx.state.kpis[id] = current
	tx.recordChange(Change{Entity: domain.EntityKPI, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

func (tx *transaction) validateKPIRefs(k KPI) error {
	if _, ok := tx.state.employees[k.EmployeeID]; !ok {
		return domain.ReferenceBrokenError{Entity: domain.EntityKPI, ID: k.ID, Ref: domain.EntityEmployee, RefID: k.EmployeeID}
	}
	if k.LinkedGapID != nil && *k.LinkedGapID != "" {
		if _, ok := tx.state.gaps[*k.LinkedGapID]; !ok {
			return domain.ReferenceBrokenError{Entity: domain.EntityKPI, ID: k.ID, Ref: domain.EntityGap, RefID: *k.LinkedGapID}
		}
	}
	return nil
}

func (tx *transaction) deriveKPI(k *KPI) {
	k.Variance = domain.VarianceOf(k.Value, k.Target)
	k.Status = domain.KPIStatusFor(k.Value, k.Target, tx.derive)
}

// FindEmployee retrieves an employee from the transaction state.
func (tx *transaction) FindEmployee(id string) (Employee, bool) {
	e, ok := tx.state.employees[id]
	return e, ok
}

// FindGap retrieves a gap from the transaction state.
func (tx *transaction) FindGap(id string) (Gap, bool) {
	g, ok := tx.state.gaps[id]
	return g, ok
}

// FindDevelopmentPlan retrieves a plan from the transaction state.
func (tx *transaction) FindDevelopmentPlan(id string) (DevelopmentPlan, bool) {
	p, ok := tx.state.plans[id]
	return p, ok
}
