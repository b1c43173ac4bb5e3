package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"talentcore/pkg/domain"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talent.db")
	ctx := context.Background()

	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	var employee domain.Employee
	var gap domain.Gap
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		employee, err = tx.CreateEmployee(domain.Employee{
			FullName:        "Sara Ahmadi",
			CareerStage:     domain.StageProfessional,
			MotivationScore: 7,
			Active:          true,
		})
		if err != nil {
			return err
		}
		gap, err = tx.CreateGap(domain.Gap{EmployeeID: employee.ID, Name: "SQL", RequiredLevel: 3, CurrentLevel: 1})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, ok := reopened.GetEmployee(employee.ID)
	if !ok || got.FullName != "Sara Ahmadi" {
		t.Fatalf("employee after reload = %+v, ok=%v", got, ok)
	}
	loadedGap, ok := reopened.GetGap(gap.ID)
	if !ok || loadedGap.GapSize != 2 {
		t.Fatalf("gap after reload = %+v, ok=%v", loadedGap, ok)
	}

	// Sequences survive the restart, so new ids continue from the file.
	var second domain.Employee
	if _, err := reopened.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		second, err = tx.CreateEmployee(domain.Employee{
			FullName:        "Reza Karimi",
			CareerStage:     domain.StageDeveloping,
			MotivationScore: 6,
			Active:          true,
		})
		return err
	}); err != nil {
		t.Fatalf("create after reload: %v", err)
	}
	if second.ID != "EMP-002" {
		t.Fatalf("post-reload id = %s, want EMP-002", second.ID)
	}
}

func TestStoreRejectedTransactionNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talent.db")
	ctx := context.Background()

	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateGap(domain.Gap{EmployeeID: "EMP-404", RequiredLevel: 3})
		return err
	})
	if !domain.IsReferenceBroken(err) {
		t.Fatalf("err = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if got := len(reopened.ListGaps()); got != 0 {
		t.Fatalf("rejected write persisted: %d gaps", got)
	}
}
