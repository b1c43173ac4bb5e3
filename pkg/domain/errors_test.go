package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindPredicates(t *testing.T) {
	cases := []struct {
		name string
		err  error
		pred func(error) bool
	}{
		{"not found", NotFoundError{Entity: EntityGap, ID: "GAP-001"}, IsNotFound},
		{"duplicate", DuplicateIDError{Entity: EntityOrganizationUnit, ID: "ENG"}, IsDuplicateID},
		{"reference broken", ReferenceBrokenError{Entity: EntityGap, ID: "GAP-001", Ref: EntityEmployee, RefID: "EMP-404"}, IsReferenceBroken},
		{"invalid transition", InvalidTransitionError{Entity: EntityDevelopmentPlan, ID: "PLAN-001", From: "completed", To: "in_progress"}, IsInvalidTransition},
		{"validation", ValidationError{Entity: EntityEmployee, Field: "motivation_score", Reason: "out of range"}, IsValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.pred(tc.err) {
				t.Fatalf("predicate rejected %v", tc.err)
			}
			wrapped := fmt.Errorf("tx: %w", tc.err)
			if !tc.pred(wrapped) {
				t.Fatalf("predicate rejected wrapped %v", wrapped)
			}
			if tc.pred(errors.New("other")) {
				t.Fatal("predicate accepted unrelated error")
			}
		})
	}
}

func TestPersistenceErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := PersistenceError{Op: "save", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("PersistenceError should unwrap to cause")
	}
	if err.Error() != "persistence save: disk full" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	err := InvalidTransitionError{Entity: EntityDevelopmentPlan, ID: "PLAN-002", From: "in_progress", To: "completed", Reason: "progress below 100"}
	want := `development_plan "PLAN-002" cannot move from in_progress to completed: progress below 100`
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}
