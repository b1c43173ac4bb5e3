// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by talentcore.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityEmployee identifies an employee record.
	EntityEmployee EntityType = "employee"
	// EntityOrganizationUnit identifies an organization unit record.
	EntityOrganizationUnit EntityType = "organization_unit"
	// EntityCompetency identifies a job competency requirement record.
	EntityCompetency EntityType = "competency"
	// EntityGap identifies a competency gap record.
	EntityGap EntityType = "gap"
	// EntityDevelopmentPlan identifies a development plan record.
	EntityDevelopmentPlan EntityType = "development_plan"
	// EntityCourse identifies a training course record.
	EntityCourse EntityType = "course"
	// EntityTrainingRecord identifies a training attendance record.
	EntityTrainingRecord EntityType = "training_record"
	// EntityKPI identifies a performance indicator record.
	EntityKPI EntityType = "kpi"
)

// CareerStage represents the canonical career progression stages.
type CareerStage string

// Canonical career stages used for staffing and succession reporting.
const (
	StageNewHire      CareerStage = "new_hire"
	StageDeveloping   CareerStage = "developing"
	StageProfessional CareerStage = "professional"
	StageSenior       CareerStage = "senior"
	StageExpert       CareerStage = "expert"
)

// CareerStages lists all valid career stages.
var CareerStages = []CareerStage{StageNewHire, StageDeveloping, StageProfessional, StageSenior, StageExpert}

// Rating is a qualitative Low/Medium/High weighting used for gap urgency
// and impact assessments.
type Rating string

// Canonical ratings ordered by weight.
const (
	RatingLow    Rating = "low"
	RatingMedium Rating = "medium"
	RatingHigh   Rating = "high"
)

// GapStatus enumerates gap workflow states.
type GapStatus string

// Canonical gap statuses. Resolved is terminal; Stalled can be reopened.
const (
	GapStatusNew        GapStatus = "new"
	GapStatusInProgress GapStatus = "in_progress"
	GapStatusResolved   GapStatus = "resolved"
	GapStatusStalled    GapStatus = "stalled"
)

// PlanStatus enumerates development plan workflow states.
type PlanStatus string

// Canonical plan statuses. Completed and Cancelled are terminal.
const (
	PlanStatusPlanned    PlanStatus = "planned"
	PlanStatusInProgress PlanStatus = "in_progress"
	PlanStatusCompleted  PlanStatus = "completed"
	PlanStatusCancelled  PlanStatus = "cancelled"
)

// PlanType enumerates supported development plan delivery formats.
type PlanType string

// Canonical plan types mirrored from the intake catalogue.
const (
	PlanTypeTraining  PlanType = "training"
	PlanTypeMentoring PlanType = "mentoring"
	PlanTypeProject   PlanType = "project"
	PlanTypeSelfStudy PlanType = "self_study"
	PlanTypeWorkshop  PlanType = "workshop"
)

// CompetencyCategory distinguishes technical from behavioral requirements.
type CompetencyCategory string

// Canonical competency categories.
const (
	CategoryTechnical  CompetencyCategory = "technical"
	CategoryBehavioral CompetencyCategory = "behavioral"
)

// KPIStatus is the derived traffic-light classification of a measurement.
type KPIStatus string

// Canonical KPI statuses derived from variance against target.
const (
	KPIStatusGreen  KPIStatus = "green"
	KPIStatusYellow KPIStatus = "yellow"
	KPIStatusRed    KPIStatus = "red"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Employee represents a tracked staff member. Employees are never deleted;
// Active toggles lifecycle instead so downstream references stay intact.
type Employee struct {
	Base
	FullName        string      `json:"full_name"`
	JobCode         string      `json:"job_code"`
	JobTitle        string      `json:"job_title"`
	UnitCode        string      `json:"unit_code"`
	ManagerID       *string     `json:"manager_id"`
	HireDate        time.Time   `json:"hire_date"`
	EducationLevel  string      `json:"education_level"`
	CareerStage     CareerStage `json:"career_stage"`
	MotivationScore int         `json:"motivation_score"`
	SuccessionPool  string      `json:"succession_pool"`
	Active          bool        `json:"active"`
}

// OrganizationUnit is a node in the org tree. The root unit has an empty
// parent code; every other unit's parent must exist and the graph stays acyclic.
type OrganizationUnit struct {
	Base
	Code       string  `json:"code"`
	Title      string  `json:"title"`
	ParentCode string  `json:"parent_code"`
	HeadID     *string `json:"head_id"`
	Headcount  int     `json:"headcount"`
}

// Competency describes a required proficiency for a job code. Competencies
// are keyed by (job code, name).
type Competency struct {
	Base
	JobCode          string             `json:"job_code"`
	Name             string             `json:"name"`
	Category         CompetencyCategory `json:"category"`
	RequiredLevel    int                `json:"required_level"`
	AssessmentMethod string             `json:"assessment_method"`
	LinkedCourseIDs  []string           `json:"linked_course_ids"`
	Priority         Rating             `json:"priority"`
}

// Key returns the composite lookup key for a competency.
func (c Competency) Key() string { return CompetencyKey(c.JobCode, c.Name) }

// CompetencyKey builds the composite (job code, name) key.
func CompetencyKey(jobCode, name string) string { return jobCode + "/" + name }

// Gap records a deficiency between an employee's current competency level
// and the level required by their job. GapSize and the Resolved status are
// derived: they are written by the cascade, never by direct edits.
type Gap struct {
	Base
	EmployeeID    string             `json:"employee_id"`
	JobCode       string             `json:"job_code"`
	Name          string             `json:"name"`
	Category      CompetencyCategory `json:"category"`
	RequiredLevel int                `json:"required_level"`
	CurrentLevel  int                `json:"current_level"`
	GapSize       int                `json:"gap_size"`
	Urgency       Rating             `json:"urgency"`
	ImpactOnTeam  Rating             `json:"impact_on_team"`
	ImpactOnOrg   Rating             `json:"impact_on_org"`
	CostEstimate  float64            `json:"cost_estimate"`
	RootCause     string             `json:"root_cause"`
	Owner         string             `json:"owner"`
	SuccessMetric string             `json:"success_metric"`
	Status        GapStatus          `json:"status"`
}

// DevelopmentPlan is a remediation effort targeting a single gap.
type DevelopmentPlan struct {
	Base
	GapID          string     `json:"gap_id"`
	Name           string     `json:"name"`
	Type           PlanType   `json:"type"`
	Provider       string     `json:"provider"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	EstimatedHours int        `json:"estimated_hours"`
	Cost           float64    `json:"cost"`
	Owner          string     `json:"owner"`
	TargetOutcome  string     `json:"target_outcome"`
	Progress       int        `json:"progress"`
	Status         PlanStatus `json:"status"`
}

// Active reports whether the plan still counts toward its gap's remediation.
func (p DevelopmentPlan) Active() bool {
	return p.Status != PlanStatusCancelled && p.Status != PlanStatusCompleted
}

// Course is a catalogue entry that development plans and competencies link to.
type Course struct {
	Base
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	Provider         string  `json:"provider"`
	DurationHours    int     `json:"duration_hours"`
	Cost             float64 `json:"cost"`
	LinkedCompetency string  `json:"linked_competency"`
	DeliveryType     string  `json:"delivery_type"`
	ExpectedLevel    int     `json:"expected_level"`
}

// TrainingRecord captures a single course attendance with before/after scores.
// Improvement is derived from the two scores.
type TrainingRecord struct {
	Base
	EmployeeID     string    `json:"employee_id"`
	CourseID       string    `json:"course_id"`
	AttendanceDate time.Time `json:"attendance_date"`
	PreTestScore   float64   `json:"pre_test_score"`
	PostTestScore  float64   `json:"post_test_score"`
	Improvement    float64   `json:"improvement"`
	Status         string    `json:"status"`
}

// KPI is a dated performance measurement against a target. Variance and
// Status are derived and recomputed on every write.
type KPI struct {
	Base
	EmployeeID       string    `json:"employee_id"`
	Name             string    `json:"name"`
	Date             time.Time `json:"date"`
	Value            float64   `json:"value"`
	Target           float64   `json:"target"`
	Variance         float64   `json:"variance"`
	Status           KPIStatus `json:"status"`
	LinkedCompetency string    `json:"linked_competency"`
	LinkedGapID      *string   `json:"linked_gap_id"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured per transaction.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Warnings returns the non-blocking violations.
func (r Result) Warnings() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity != SeverityBlock {
			out = append(out, v)
		}
	}
	return out
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
