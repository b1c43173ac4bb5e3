// Package export renders talent snapshots into a blob store. One CSV object
// per collection plus a JSON manifest, all addressable under a caller-chosen
// key prefix.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strconv"
	"time"

	blobcore "talentcore/internal/blob/core"
	"talentcore/internal/infra/persistence/memory"
)

// Format identifies an artifact encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Artifact describes one stored export object.
type Artifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Rows        int       `json:"rows"`
	CreatedAt   time.Time `json:"created_at"`
}

// Manifest summarizes a completed snapshot export.
type Manifest struct {
	Prefix     string     `json:"prefix"`
	Artifacts  []Artifact `json:"artifacts"`
	ExportedAt time.Time  `json:"exported_at"`
}

// StateExporter yields a consistent snapshot of the record store. The
// in-memory store and both persistent wrappers satisfy it.
type StateExporter interface {
	ExportState() memory.Snapshot
}

// Exporter writes snapshot artifacts to a blob store.
type Exporter struct {
	blobs blobcore.Store
	nowFn func() time.Time
}

// New constructs an Exporter over the given blob store.
func New(blobs blobcore.Store) *Exporter {
	return &Exporter{blobs: blobs, nowFn: func() time.Time { return time.Now().UTC() }}
}

// SetNowFunc overrides the clock, for deterministic artifact timestamps in tests.
func (e *Exporter) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		e.nowFn = fn
	}
}

// ExportSnapshot writes one CSV per collection plus a JSON manifest under
// prefix. Empty collections still produce a header-only CSV so downstream
// loaders see a stable schema.
func (e *Exporter) ExportSnapshot(ctx context.Context, src StateExporter, prefix string) (Manifest, error) {
	if src == nil {
		return Manifest{}, fmt.Errorf("nil state source")
	}
	snap := src.ExportState()
	now := e.nowFn()

	tables := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{"employees", employeeHeader, employeeRows(snap)},
		{"organization_units", unitHeader, unitRows(snap)},
		{"competencies", competencyHeader, competencyRows(snap)},
		{"gaps", gapHeader, gapRows(snap)},
		{"development_plans", planHeader, planRows(snap)},
		{"courses", courseHeader, courseRows(snap)},
		{"training_records", trainingHeader, trainingRows(snap)},
		{"kpis", kpiHeader, kpiRows(snap)},
	}

	manifest := Manifest{Prefix: prefix, ExportedAt: now}
	for _, table := range tables {
		payload, err := renderCSV(table.header, table.rows)
		if err != nil {
			return Manifest{}, fmt.Errorf("render %s: %w", table.name, err)
		}
		key := path.Join(prefix, table.name+".csv")
		if _, err := e.blobs.Put(ctx, key, bytes.NewReader(payload), blobcore.PutOptions{ContentType: "text/csv"}); err != nil {
			return Manifest{}, fmt.Errorf("store %s: %w", key, err)
		}
		manifest.Artifacts = append(manifest.Artifacts, Artifact{
			Key:         key,
			Format:      FormatCSV,
			ContentType: "text/csv",
			SizeBytes:   int64(len(payload)),
			Rows:        len(table.rows),
			CreatedAt:   now,
		})
	}

	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return Manifest{}, err
	}
	key := path.Join(prefix, "manifest.json")
	if _, err := e.blobs.Put(ctx, key, bytes.NewReader(payload), blobcore.PutOptions{ContentType: "application/json"}); err != nil {
		return Manifest{}, fmt.Errorf("store %s: %w", key, err)
	}
	return manifest, nil
}

func renderCSV(header []string, rows [][]string) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var (
	employeeHeader   = []string{"id", "full_name", "job_code", "job_title", "unit_code", "manager_id", "hire_date", "career_stage", "motivation_score", "active"}
	unitHeader       = []string{"code", "title", "parent_code", "headcount"}
	competencyHeader = []string{"id", "job_code", "name", "category", "required_level", "priority"}
	gapHeader        = []string{"id", "employee_id", "name", "category", "required_level", "current_level", "gap_size", "urgency", "impact_on_team", "impact_on_org", "cost_estimate", "status"}
	planHeader       = []string{"id", "gap_id", "name", "type", "status", "progress", "cost", "estimated_hours", "start_date", "end_date"}
	courseHeader     = []string{"id", "name", "provider", "duration_hours", "cost"}
	trainingHeader   = []string{"id", "employee_id", "course_id", "pre_test_score", "post_test_score", "improvement", "attendance_date"}
	kpiHeader        = []string{"id", "employee_id", "linked_gap_id", "name", "target", "value", "variance", "status", "date"}
)

func employeeRows(snap memory.Snapshot) [][]string {
	rows := make([][]string, 0, len(snap.Employees))
	for _, id := range sortedKeys(snap.Employees) {
		emp := snap.Employees[id]
		rows = append(rows, []string{
			emp.ID, emp.FullName, emp.JobCode, emp.JobTitle, emp.UnitCode,
			optional(emp.ManagerID), formatDate(emp.HireDate), string(emp.CareerStage),
			strconv.Itoa(emp.MotivationScore), strconv.FormatBool(emp.Active),
		})
	}
	return rows
}

func unitRows(snap memory.Snapshot) [][]string {
	rows := make([][]string, 0, len(snap.Units))
	for _, code := range sortedKeys(snap.Units) {
		unit := snap.Units[code]
		rows = append(rows, []string{unit.Code, unit.Title, unit.ParentCode, strconv.Itoa(unit.Headcount)})
	}
	return rows
}

func competencyRows(snap memory.Snapshot) [][]string {
	rows := make([][]string, 0, len(snap.Competencies))
	for _, id := range sortedKeys(snap.Competencies) {
		comp := snap.Competencies[id]
		rows = append(rows, []string{
			comp.ID, comp.JobCode, comp.Name, string(comp.Category),
			strconv.Itoa(comp.RequiredLevel), string(comp.Priority),
		})
	}
	return rows
}

func gapRows(snap memory.Snapshot) [][]string {
	rows := make([][]string, 0, len(snap.Gaps))
	for _, id := range sortedKeys(snap.Gaps) {
		gap := snap.Gaps[id]
		rows = append(rows, []string{
			gap.ID, gap.EmployeeID, gap.Name, string(gap.Category),
			strconv.Itoa(gap.RequiredLevel), strconv.Itoa(gap.CurrentLevel), strconv.Itoa(gap.GapSize),
			string(gap.Urgency), string(gap.ImpactOnTeam), string(gap.ImpactOnOrg),
			formatFloat(gap.CostEstimate), string(gap.Status),
		})
	}
	return rows
}

func planRows(snap memory.Snapshot) [][]string {
	rows := make([][]string, 0, len(snap.Plans))
	for _, id := range sortedKeys(snap.Plans) {
		plan := snap.Plans[id]
		rows = append(rows, []string{
			plan.ID, plan.GapID, plan.Name, string(plan.Type), string(plan.Status),
			strconv.Itoa(plan.Progress), formatFloat(plan.Cost), strconv.Itoa(plan.EstimatedHours),
			formatDate(plan.StartDate), formatDate(plan.EndDate),
		})
	}
	return rows
}

func courseRows(snap memory.Snapshot) [][]string {
	rows := make([][]string, 0, len(snap.Courses))
	for _, id := range sortedKeys(snap.Courses) {
		course := snap.Courses[id]
		rows = append(rows, []string{
			course.ID, course.Name, course.Provider,
			strconv.Itoa(course.DurationHours), formatFloat(course.Cost),
		})
	}
	return rows
}

func trainingRows(snap memory.Snapshot) [][]string {
	rows := make([][]string, 0, len(snap.Trainings))
	for _, id := range sortedKeys(snap.Trainings) {
		rec := snap.Trainings[id]
		rows = append(rows, []string{
			rec.ID, rec.EmployeeID, rec.CourseID,
			formatFloat(rec.PreTestScore), formatFloat(rec.PostTestScore), formatFloat(rec.Improvement),
			formatDate(rec.AttendanceDate),
		})
	}
	return rows
}

func kpiRows(snap memory.Snapshot) [][]string {
	rows := make([][]string, 0, len(snap.KPIs))
	for _, id := range sortedKeys(snap.KPIs) {
		kpi := snap.KPIs[id]
		rows = append(rows, []string{
			kpi.ID, kpi.EmployeeID, optional(kpi.LinkedGapID), kpi.Name,
			formatFloat(kpi.Target), formatFloat(kpi.Value), formatFloat(kpi.Variance),
			string(kpi.Status), formatDate(kpi.Date),
		})
	}
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func optional(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
