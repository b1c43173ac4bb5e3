package domain

import (
	"errors"
	"fmt"
)

// NotFoundError reports a lookup for an id with no matching record.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// DuplicateIDError reports a create with an already-used identifier.
type DuplicateIDError struct {
	Entity EntityType
	ID     string
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Entity, e.ID)
}

// ReferenceBrokenError reports a foreign key whose target record is missing.
type ReferenceBrokenError struct {
	Entity EntityType
	ID     string
	Ref    EntityType
	RefID  string
}

func (e ReferenceBrokenError) Error() string {
	return fmt.Sprintf("%s %q references missing %s %q", e.Entity, e.ID, e.Ref, e.RefID)
}

// InvalidTransitionError reports a status change the state machine forbids.
type InvalidTransitionError struct {
	Entity EntityType
	ID     string
	From   string
	To     string
	Reason string
}

func (e InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("%s %q cannot move from %s to %s", e.Entity, e.ID, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// ValidationError reports a field outside its allowed domain.
type ValidationError struct {
	Entity EntityType
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s field %s invalid: %s", e.Entity, e.Field, e.Reason)
}

// PersistenceError wraps a durable-storage I/O failure. The core never
// retries; retry policy belongs to the adapter or its caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

// IsDuplicateID reports whether err is (or wraps) a DuplicateIDError.
func IsDuplicateID(err error) bool {
	var target DuplicateIDError
	return errors.As(err, &target)
}

// IsReferenceBroken reports whether err is (or wraps) a ReferenceBrokenError.
func IsReferenceBroken(err error) bool {
	var target ReferenceBrokenError
	return errors.As(err, &target)
}

// IsInvalidTransition reports whether err is (or wraps) an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var target InvalidTransitionError
	return errors.As(err, &target)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}
