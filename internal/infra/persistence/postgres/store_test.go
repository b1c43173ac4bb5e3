package postgres

import (
	"context"
	"os"
	"testing"

	"talentcore/pkg/domain"
)

// Integration test; requires a reachable server. Set
// TALENTCORE_POSTGRES_TEST_DSN to run it.
func TestStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("TALENTCORE_POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("TALENTCORE_POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()

	store, err := NewStore(dsn, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_, _ = store.DB().ExecContext(ctx, `DROP TABLE IF EXISTS state`)
		_ = store.Close()
	})

	var employee domain.Employee
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		employee, err = tx.CreateEmployee(domain.Employee{
			FullName:        "Sara Ahmadi",
			CareerStage:     domain.StageProfessional,
			MotivationScore: 7,
			Active:          true,
		})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	reopened, err := NewStore(dsn, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, ok := reopened.GetEmployee(employee.ID)
	if !ok || got.FullName != employee.FullName {
		t.Fatalf("employee after reload = %+v, ok=%v", got, ok)
	}
}
