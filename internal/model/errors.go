package model

import "fmt"

// ValidationError reports malformed or missing caller input. Recoverable by
// resubmission.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown transaction identifier.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("transaction %q not found", e.ID)
}

// InvalidTransitionError reports a state-machine precondition violation.
type InvalidTransitionError struct {
	ID   string
	From Status
	Op   string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s transaction %q in state %q", e.Op, e.ID, e.From)
}

// InvalidAllocationError reports a non-numeric or negative allocation value.
type InvalidAllocationError struct {
	Key    string
	Reason string
}

func (e InvalidAllocationError) Error() string {
	return fmt.Sprintf("invalid allocation for %q: %s", e.Key, e.Reason)
}
