// Package memory provides the canonical in-memory implementation of the core
// persistence store. Durable backends wrap it and snapshot its state.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"talentcore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Employee aliases domain.Employee for in-memory persistence operations.
	Employee = domain.Employee
	// OrganizationUnit aliases domain.OrganizationUnit.
	OrganizationUnit = domain.OrganizationUnit
	// Competency aliases domain.Competency.
	Competency = domain.Competency
	// Gap aliases domain.Gap.
	Gap = domain.Gap
	// DevelopmentPlan aliases domain.DevelopmentPlan.
	DevelopmentPlan = domain.DevelopmentPlan
	// Course aliases domain.Course.
	Course = domain.Course
	// TrainingRecord aliases domain.TrainingRecord.
	TrainingRecord = domain.TrainingRecord
	// KPI aliases domain.KPI.
	KPI = domain.KPI
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	employees    map[string]Employee
	units        map[string]OrganizationUnit
	competencies map[string]Competency
	gaps         map[string]Gap
	plans        map[string]DevelopmentPlan
	courses      map[string]Course
	trainings    map[string]TrainingRecord
	kpis         map[string]KPI
	sequences    map[domain.EntityType]uint64
}

func newMemoryState() memoryState {
	return memoryState{
		employees:    make(map[string]Employee),
		units:        make(map[string]OrganizationUnit),
		competencies: make(map[string]Competency),
		gaps:         make(map[string]Gap),
		plans:        make(map[string]DevelopmentPlan),
		courses:      make(map[string]Course),
		trainings:    make(map[string]TrainingRecord),
		kpis:         make(map[string]KPI),
		sequences:    make(map[domain.EntityType]uint64),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.employees {
		cloned.employees[k] = v
	}
	for k, v := range s.units {
		cloned.units[k] = v
	}
	for k, v := range s.competencies {
		cloned.competencies[k] = cloneCompetency(v)
	}
	for k, v := range s.gaps {
		cloned.gaps[k] = v
	}
	for k, v := range s.plans {
		cloned.plans[k] = v
	}
	for k, v := range s.courses {
		cloned.courses[k] = v
	}
	for k, v := range s.trainings {
		cloned.trainings[k] = v
	}
	for k, v := range s.kpis {
		cloned.kpis[k] = v
	}
	for k, v := range s.sequences {
		cloned.sequences[k] = v
	}
	return cloned
}

func cloneCompetency(c Competency) Competency {
	cp := c
	cp.LinkedCourseIDs = append([]string(nil), c.LinkedCourseIDs...)
	return cp
}

// idPrefixes map entity kinds to their human-readable sequence prefixes.
var idPrefixes = map[domain.EntityType]string{
	domain.EntityEmployee:        "EMP",
	domain.EntityGap:             "GAP",
	domain.EntityDevelopmentPlan: "PLAN",
	domain.EntityCourse:          "CRS",
	domain.EntityTrainingRecord:  "TRN",
	domain.EntityKPI:             "KPI",
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
	derive domain.DerivationConfig
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
		derive: domain.DefaultDerivationConfig(),
	}
}

// SetNowFunc overrides the transaction clock. Intended for tests and for
// callers that need deterministic timestamps.
func (s *Store) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.nowFn = now
	}
}

// SetDerivationConfig overrides the thresholds used when recomputing
// derived fields on write.
func (s *Store) SetDerivationConfig(cfg domain.DerivationConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.derive = cfg
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The copy is committed only when fn succeeds and no registered rule
// reports a blocking violation; otherwise the prior state is left untouched.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state:  s.state.clone(),
		now:    s.nowFn(),
		derive: s.derive,
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := memoryView{state: &tx.state}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(memoryView{state: &snapshot})
}

// GetEmployee returns an employee by id.
func (s *Store) GetEmployee(id string) (Employee, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.employees[id]
	return e, ok
}

// GetGap returns a gap by id.
func (s *Store) GetGap(id string) (Gap, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.state.gaps[id]
	return g, ok
}

// GetDevelopmentPlan returns a development plan by id.
func (s *Store) GetDevelopmentPlan(id string) (DevelopmentPlan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.plans[id]
	return p, ok
}

// ListEmployees returns all employees.
func (s *Store) ListEmployees() []Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.state.employees, func(e Employee) Employee { return e })
}

// ListOrganizationUnits returns all organization units.
func (s *Store) ListOrganizationUnits() []OrganizationUnit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.state.units, func(u OrganizationUnit) OrganizationUnit { return u })
}

// ListCompetencies returns all competencies.
func (s *Store) ListCompetencies() []Competency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.state.competencies, cloneCompetency)
}

// ListGaps returns all gaps.
func (s *Store) ListGaps() []Gap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.state.gaps, func(g Gap) Gap { return g })
}

// ListDevelopmentPlans returns all development plans.
func (s *Store) ListDevelopmentPlans() []DevelopmentPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.state.plans, func(p DevelopmentPlan) DevelopmentPlan { return p })
}

// ListCourses returns all courses.
func (s *Store) ListCourses() []Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.state.courses, func(c Course) Course { return c })
}

// ListTrainingRecords returns all training records.
func (s *Store) ListTrainingRecords() []TrainingRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.state.trainings, func(r TrainingRecord) TrainingRecord { return r })
}

// ListKPIs returns all KPI measurements.
func (s *Store) ListKPIs() []KPI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.state.kpis, func(k KPI) KPI { return k })
}

func collect[T any](m map[string]T, clone func(T) T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, clone(v))
	}
	return out
}

// memoryView exposes a read-only snapshot of state to rules and queries.
type memoryView struct {
	state *memoryState
}

var _ domain.RuleView = memoryView{}

func (v memoryView) ListEmployees() []Employee {
	return collect(v.state.employees, func(e Employee) Employee { return e })
}

func (v memoryView) ListOrganizationUnits() []OrganizationUnit {
	return collect(v.state.units, func(u OrganizationUnit) OrganizationUnit { return u })
}

func (v memoryView) ListCompetencies() []Competency {
	return collect(v.state.competencies, cloneCompetency)
}

func (v memoryView) ListGaps() []Gap {
	return collect(v.state.gaps, func(g Gap) Gap { return g })
}

func (v memoryView) ListDevelopmentPlans() []DevelopmentPlan {
	return collect(v.state.plans, func(p DevelopmentPlan) DevelopmentPlan { return p })
}

func (v memoryView) ListCourses() []Course {
	return collect(v.state.courses, func(c Course) Course { return c })
}

func (v memoryView) ListTrainingRecords() []TrainingRecord {
	return collect(v.state.trainings, func(r TrainingRecord) TrainingRecord { return r })
}

func (v memoryView) ListKPIs() []KPI {
	return collect(v.state.kpis, func(k KPI) KPI { return k })
}

func (v memoryView) FindEmployee(id string) (Employee, bool) {
	e, ok := v.state.employees[id]
	return e, ok
}

func (v memoryView) FindOrganizationUnit(code string) (OrganizationUnit, bool) {
	u, ok := v.state.units[code]
	return u, ok
}

func (v memoryView) FindCompetency(key string) (Competency, bool) {
	c, ok := v.state.competencies[key]
	if !ok {
		return Competency{}, false
	}
	return cloneCompetency(c), true
}

func (v memoryView) FindGap(id string) (Gap, bool) {
	g, ok := v.state.gaps[id]
	return g, ok
}

func (v memoryView) FindDevelopmentPlan(id string) (DevelopmentPlan, bool) {
	p, ok := v.state.plans[id]
	return p, ok
}

func (v memoryView) FindCourse(id string) (Course, bool) {
	c, ok := v.state.courses[id]
	return c, ok
}

func (v memoryView) FindKPI(id string) (KPI, bool) {
	k, ok := v.state.kpis[id]
	return k, ok
}

func nextID(state *memoryState, kind domain.EntityType, taken func(string) bool) string {
	prefix, ok := idPrefixes[kind]
	if !ok {
		prefix = "REC"
	}
	for {
		state.sequences[kind]++
		id := fmt.Sprintf("%s-%03d", prefix, state.sequences[kind])
		if !taken(id) {
			return id
		}
	}
}
