package core

import "talentcore/pkg/domain"

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(GapConsistencyRule())
	engine.Register(GapRegressionRule())
	engine.Register(ActivePlanRule())
	engine.Register(PlanCompletionRule())
	return engine
}
