package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"testing"
	"time"

	"talentcore/internal/blob"
	"talentcore/internal/infra/persistence/memory"
	"talentcore/pkg/domain"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore(domain.NewRulesEngine())
	store.SetNowFunc(func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) })
	_, err := store.RunInTransaction(context.Background(), func(tx memory.Transaction) error {
		if _, err := tx.CreateOrganizationUnit(domain.OrganizationUnit{Code: "ENG", Title: "Engineering"}); err != nil {
			return err
		}
		employee, err := tx.CreateEmployee(domain.Employee{
			FullName:        "Sara Ahmadi",
			UnitCode:        "ENG",
			CareerStage:     domain.StageProfessional,
			MotivationScore: 7,
			Active:          true,
		})
		if err != nil {
			return err
		}
		gap, err := tx.CreateGap(domain.Gap{EmployeeID: employee.ID, Name: "SQL", RequiredLevel: 3, CurrentLevel: 1})
		if err != nil {
			return err
		}
		_, err = tx.CreateDevelopmentPlan(domain.DevelopmentPlan{GapID: gap.ID, Name: "SQL course", Type: domain.PlanTypeTraining, Cost: 500})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func TestExportSnapshotWritesAllCollections(t *testing.T) {
	store := seedStore(t)
	blobs := blob.NewMemory()
	exporter := New(blobs)
	exporter.SetNowFunc(func() time.Time { return time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC) })
	ctx := context.Background()

	manifest, err := exporter.ExportSnapshot(ctx, store, "snapshots/2026-05-02")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(manifest.Artifacts) != 8 {
		t.Fatalf("artifacts = %d, want 8", len(manifest.Artifacts))
	}

	infos, err := blobs.List(ctx, "snapshots/2026-05-02/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// 8 CSVs plus the manifest.
	if len(infos) != 9 {
		t.Fatalf("stored objects = %d, want 9", len(infos))
	}
}

func TestExportSnapshotCSVContent(t *testing.T) {
	store := seedStore(t)
	blobs := blob.NewMemory()
	ctx := context.Background()

	if _, err := New(blobs).ExportSnapshot(ctx, store, "snap"); err != nil {
		t.Fatalf("export: %v", err)
	}

	_, rc, err := blobs.Get(ctx, "snap/gaps.csv")
	if err != nil {
		t.Fatalf("get gaps.csv: %v", err)
	}
	defer rc.Close()
	records, err := csv.NewReader(rc).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(records))
	}
	header, row := records[0], records[1]
	if header[0] != "id" || header[6] != "gap_size" {
		t.Fatalf("header = %v", header)
	}
	if row[0] != "GAP-001" || row[6] != "2" {
		t.Fatalf("row = %v", row)
	}
}

func TestExportSnapshotEmptyStoreStillWritesHeaders(t *testing.T) {
	store := memory.NewStore(domain.NewRulesEngine())
	blobs := blob.NewMemory()
	ctx := context.Background()

	manifest, err := New(blobs).ExportSnapshot(ctx, store, "empty")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, artifact := range manifest.Artifacts {
		if artifact.Rows != 0 {
			t.Fatalf("artifact %s reports %d rows", artifact.Key, artifact.Rows)
		}
		if artifact.SizeBytes == 0 {
			t.Fatalf("artifact %s has no header bytes", artifact.Key)
		}
	}
}

func TestExportManifestRoundTrips(t *testing.T) {
	store := seedStore(t)
	blobs := blob.NewMemory()
	ctx := context.Background()

	manifest, err := New(blobs).ExportSnapshot(ctx, store, "snap")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	_, rc, err := blobs.Get(ctx, "snap/manifest.json")
	if err != nil {
		t.Fatalf("get manifest: %v", err)
	}
	raw, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var stored Manifest
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if stored.Prefix != manifest.Prefix || len(stored.Artifacts) != len(manifest.Artifacts) {
		t.Fatalf("manifest mismatch: %+v vs %+v", stored, manifest)
	}
}

func TestExportSnapshotNilSource(t *testing.T) {
	if _, err := New(blob.NewMemory()).ExportSnapshot(context.Background(), nil, "x"); err == nil {
		t.Fatal("expected error for nil source")
	}
}
