package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Employees, gaps, and plans have no
// delete operation: lifecycle status fields model retirement instead, so
// downstream references can never dangle.
type Transaction interface {
	Snapshot() TransactionView
	CreateEmployee(Employee) (Employee, error)
	UpdateEmployee(id string, mutator func(*Employee) error) (Employee, error)
	CreateOrganizationUnit(OrganizationUnit) (OrganizationUnit, error)
	UpdateOrganizationUnit(code string, mutator func(*OrganizationUnit) error) (OrganizationUnit, error)
	CreateCompetency(Competency) (Competency, error)
	UpdateCompetency(key string, mutator func(*Competency) error) (Competency, error)
	CreateGap(Gap) (Gap, error)
	UpdateGap(id string, mutator func(*Gap) error) (Gap, error)
	CreateDevelopmentPlan(DevelopmentPlan) (DevelopmentPlan, error)
	UpdateDevelopmentPlan(id string, mutator func(*DevelopmentPlan) error) (DevelopmentPlan, error)
	CreateCourse(Course) (Course, error)
	UpdateCourse(id string, mutator func(*Course) error) (Course, error)
	CreateTrainingRecord(TrainingRecord) (TrainingRecord, error)
	CreateKPI(KPI) (KPI, error)
	UpdateKPI(id string, mutator func(*KPI) error) (KPI, error)
	FindEmployee(id string) (Employee, bool)
	FindGap(id string) (Gap, bool)
	FindDevelopmentPlan(id string) (DevelopmentPlan, bool)
}

// TransactionView provides read-only access to snapshot data for rules and
// the query layer.
type TransactionView = RuleView

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetEmployee(id string) (Employee, bool)
	GetGap(id string) (Gap, bool)
	GetDevelopmentPlan(id string) (DevelopmentPlan, bool)
	ListEmployees() []Employee
	ListOrganizationUnits() []OrganizationUnit
	ListCompetencies() []Competency
	ListGaps() []Gap
	ListDevelopmentPlans() []DevelopmentPlan
	ListCourses() []Course
	ListTrainingRecords() []TrainingRecord
	ListKPIs() []KPI
}
