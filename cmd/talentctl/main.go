// Command talentctl operates a talentcore store from the command line: seed
// sample data, print workforce reports, and export snapshots to blob storage.
//
// Storage and blob backends are selected through the TALENTCORE_* environment
// variables documented in internal/core and internal/blob.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"talentcore/internal/adapters/export"
	"talentcore/internal/blob"
	"talentcore/internal/core"
	"talentcore/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "talentctl:", err)
		exitFunc(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return fmt.Errorf("subcommand required")
	}
	ctx := context.Background()
	switch args[0] {
	case "seed":
		return runSeed(ctx, args[1:], out)
	case "report":
		return runReport(ctx, args[1:], out)
	case "export":
		return runExport(ctx, args[1:], out)
	case "help", "-h", "--help":
		usage(out)
		return nil
	default:
		usage(out)
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func usage(out io.Writer) {
	fmt.Fprintln(out, `usage: talentctl <subcommand> [flags]

subcommands:
  seed     load a small sample dataset into the configured store
  report   print gap, plan, and ROI reports from the configured store
  export   write a CSV snapshot of the store to the configured blob backend`)
}

func openService() (*core.Service, error) {
	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine())
	if err != nil {
		return nil, err
	}
	logger := core.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	return core.NewService(store, core.WithLogger(logger)), nil
}

func runSeed(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	svc, err := openService()
	if err != nil {
		return err
	}

	unit, _, err := svc.CreateOrganizationUnit(ctx, domain.OrganizationUnit{Code: "ENG", Title: "Engineering", Headcount: 12})
	if err != nil {
		return fmt.Errorf("seed unit: %w", err)
	}
	employee, _, err := svc.CreateEmployee(ctx, domain.Employee{
		FullName:        "Sara Ahmadi",
		JobCode:         "ENG-BE",
		JobTitle:        "Backend Engineer",
		UnitCode:        unit.Code,
		HireDate:        time.Date(2022, 3, 14, 0, 0, 0, 0, time.UTC),
		CareerStage:     domain.StageProfessional,
		MotivationScore: 7,
		Active:          true,
	})
	if err != nil {
		return fmt.Errorf("seed employee: %w", err)
	}
	if _, _, err := svc.CreateCompetency(ctx, domain.Competency{
		JobCode:       "ENG-BE",
		Name:          "Distributed Systems",
		Category:      domain.CategoryTechnical,
		RequiredLevel: 4,
		Priority:      domain.RatingHigh,
	}); err != nil {
		return fmt.Errorf("seed competency: %w", err)
	}
	gap, _, err := svc.CreateGap(ctx, domain.Gap{
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
		return fmt.Errorf("seed gap: %w", err)
	}
	course, _, err := svc.CreateCourse(ctx, domain.Course{
		Name:          "Designing Data-Intensive Systems",
		Provider:      "Internal Academy",
		DurationHours: 24,
		Cost:          30_000_000,
		ExpectedLevel: 4,
	})
	if err != nil {
		return fmt.Errorf("seed course: %w", err)
	}
	plan, _, err := svc.CreateDevelopmentPlan(ctx, domain.DevelopmentPlan{
		GapID:          gap.ID,
		Name:           "Distributed systems upskilling",
		Type:           domain.PlanTypeTraining,
		Provider:       course.Provider,
		StartDate:      time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		EstimatedHours: 24,
		Cost:           30_000_000,
	})
	if err != nil {
		return fmt.Errorf("seed plan: %w", err)
	}
	if _, _, err := svc.CreateTrainingRecord(ctx, domain.TrainingRecord{
		EmployeeID:     employee.ID,
		CourseID:       course.ID,
		AttendanceDate: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		PreTestScore:   55,
		PostTestScore:  80,
	}); err != nil {
		return fmt.Errorf("seed training record: %w", err)
	}
	if _, _, err := svc.CreateKPI(ctx, domain.KPI{
		EmployeeID:  employee.ID,
		Name:        "Deployment frequency",
		Date:        time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		Value:       9,
		Target:      10,
		LinkedGapID: &gap.ID,
	}); err != nil {
		return fmt.Errorf("seed kpi: %w", err)
	}

	fmt.Fprintf(out, "seeded employee %s, gap %s, plan %s\n", employee.ID, gap.ID, plan.ID)
	return nil
}

func runReport(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(out)
	minGap := fs.Int("min-gap", 2, "minimum gap size for the critical gaps table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	svc, err := openService()
	if err != nil {
		return err
	}

	return svc.View(ctx, func(view domain.TransactionView) error {
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

		fmt.Fprintln(w, "CRITICAL GAPS")
		fmt.Fprintln(w, "GAP\tEMPLOYEE\tUNIT\tCOMPETENCY\tSIZE\tSTATUS")
		for _, row := range core.CriticalGaps(view, *minGap) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				row.Gap.ID, row.Employee.FullName, row.Unit.Code, row.Gap.Name, row.Gap.GapSize, row.Gap.Status)
		}

		fmt.Fprintln(w, "\nROI RANKING")
		fmt.Fprintln(w, "PLAN\tGAP\tCOST\tSCORE")
		for _, row := range core.ROIRanking(view, svc.DerivationConfig()) {
			fmt.Fprintf(w, "%s\t%s\t%.0f\t%.2f\n", row.Plan.ID, row.Gap.ID, row.Plan.Cost, row.Score)
		}

		fmt.Fprintln(w, "\nGAPS BY UNIT")
		fmt.Fprintln(w, "UNIT\tGAPS")
		counts := core.GapCountByUnit(view)
		for _, unit := range sortedMapKeys(counts) {
			fmt.Fprintf(w, "%s\t%d\n", unit, counts[unit])
		}

		summary := core.Effectiveness(view)
		fmt.Fprintf(w, "\nPLANS: %d total, %d completed (%.1f%%), investment %.0f\n",
			summary.TotalPlans, summary.CompletedPlans, summary.CompletionRate, summary.TotalInvestment)
		return w.Flush()
	})
}

func runExport(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(out)
	prefix := fs.String("prefix", "", "key prefix for exported objects (default snapshots/<date>)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	svc, err := openService()
	if err != nil {
		return err
	}
	src, ok := svc.Store().(export.StateExporter)
	if !ok {
		return fmt.Errorf("storage driver does not support snapshot export")
	}

	blobs, err := blob.Open(ctx)
	if err != nil {
		return err
	}
	key := *prefix
	if key == "" {
		key = "snapshots/" + time.Now().UTC().Format("2006-01-02")
	}
	manifest, err := export.New(blobs).ExportSnapshot(ctx, src, key)
	if err != nil {
		return err
	}
	for _, artifact := range manifest.Artifacts {
		fmt.Fprintf(out, "%s\t%d rows\t%d bytes\n", artifact.Key, artifact.Rows, artifact.SizeBytes)
	}
	fmt.Fprintf(out, "exported %d objects under %s (%s driver)\n", len(manifest.Artifacts)+1, key, blobs.Driver())
	return nil
}

func sortedMapKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
