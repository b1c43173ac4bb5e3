package memory

import "talentcore/pkg/domain"

// Snapshot captures a point-in-time clone of the store state, including the
// per-kind identifier sequence counters so generated ids stay deterministic
// across restore.
type Snapshot struct {
	Employees    map[string]Employee         `json:"employees"`
	Units        map[string]OrganizationUnit `json:"units"`
	Competencies map[string]Competency       `json:"competencies"`
	Gaps         map[string]Gap              `json:"gaps"`
	Plans        map[string]DevelopmentPlan  `json:"plans"`
	Courses      map[string]Course           `json:"courses"`
	Trainings    map[string]TrainingRecord   `json:"trainings"`
	KPIs         map[string]KPI              `json:"kpis"`
	Sequences    map[string]uint64           `json:"sequences"`
}

// ExportState returns a deep copy of the current state for persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.state.clone()
	snapshot := Snapshot{
		Employees:    state.employees,
		Units:        state.units,
		Competencies: state.competencies,
		Gaps:         state.gaps,
		Plans:        state.plans,
		Courses:      state.courses,
		Trainings:    state.trainings,
		KPIs:         state.kpis,
		Sequences:    make(map[string]uint64, len(state.sequences)),
	}
	for kind, seq := range state.sequences {
		snapshot.Sequences[string(kind)] = seq
	}
	return snapshot
}

// ImportState replaces the current state with the supplied snapshot. Nil
// buckets hydrate as empty collections so partially-populated snapshots load
// cleanly.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := newMemoryState()
	for k, v := range snapshot.Employees {
		state.employees[k] = v
	}
	for k, v := range snapshot.Units {
		state.units[k] = v
	}
	for k, v := range snapshot.Competencies {
		state.competencies[k] = cloneCompetency(v)
	}
	for k, v := range snapshot.Gaps {
		state.gaps[k] = v
	}
	for k, v := range snapshot.Plans {
		state.plans[k] = v
	}
	for k, v := range snapshot.Courses {
		state.courses[k] = v
	}
	for k, v := range snapshot.Trainings {
		state.trainings[k] = v
	}
	for k, v := range snapshot.KPIs {
		state.kpis[k] = v
	}
	for kind, seq := range snapshot.Sequences {
		state.sequences[domain.EntityType(kind)] = seq
	}
	s.state = state
}
