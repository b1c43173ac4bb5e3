package core

import "talentcore/pkg/domain"

type (
	EntityType         = domain.EntityType
	CareerStage        = domain.CareerStage
	Rating             = domain.Rating
	Severity           = domain.Severity
	Base               = domain.Base
	Employee           = domain.Employee
	OrganizationUnit   = domain.OrganizationUnit
	Competency         = domain.Competency
	Gap                = domain.Gap
	DevelopmentPlan    = domain.DevelopmentPlan
	Course             = domain.Course
	TrainingRecord     = domain.TrainingRecord
	KPI                = domain.KPI
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	Rule               = domain.Rule
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityEmployee         = domain.EntityEmployee
	EntityOrganizationUnit = domain.EntityOrganizationUnit
	EntityCompetency       = domain.EntityCompetency
	EntityGap              = domain.EntityGap
	EntityDevelopmentPlan  = domain.EntityDevelopmentPlan
	EntityCourse           = domain.EntityCourse
	EntityTrainingRecord   = domain.EntityTrainingRecord
	EntityKPI              = domain.EntityKPI
)

const (
	GapStatusNew        = domain.GapStatusNew
	GapStatusInProgress = domain.GapStatusInProgress
	GapStatusResolved   = domain.GapStatusResolved
	GapStatusStalled    = domain.GapStatusStalled
)

const (
	PlanStatusPlanned    = domain.PlanStatusPlanned
	PlanStatusInProgress = domain.PlanStatusInProgress
	PlanStatusCompleted  = domain.PlanStatusCompleted
	PlanStatusCancelled  = domain.PlanStatusCancelled
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
)
