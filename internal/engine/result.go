package engine

import (
	"errors"
	"fmt"

	"github.com/v2kk/stackctl/internal/resource"
)

// Action describes what the engine did (or would do) for a declaration.
type Action string

const (
	// ActionCreate materializes a new resource.
	ActionCreate Action = "create"
	// ActionReplace deletes and recreates a resource whose inputs changed.
	ActionReplace Action = "replace"
	// ActionNoop reuses stored outputs without any provider call.
	ActionNoop Action = "no-op"
	// ActionRead refreshes a read-only declaration.
	ActionRead Action = "read"
	// ActionDelete removes a resource during destroy.
	ActionDelete Action = "delete"
)

// Outcome records what happened to one declaration during a run.
type Outcome struct {
	// Key is the declaration's "<kind>/<name>" key.
	Key string
	// Kind is the declaration's resource kind.
	Kind resource.Kind
	// Name is the declaration's logical name.
	Name string
	// Action is what the engine did for the declaration.
	Action Action
	// Status is the declaration's final lifecycle status.
	Status resource.Status
	// ID is the provider-assigned identifier, when resolved.
	ID string
	// Outputs holds the resolved output attributes, when resolved.
	Outputs resource.Outputs
	// Err is the failure cause for failed declarations.
	Err error
	// SkippedBecause names the failed dependency for skipped declarations.
	SkippedBecause string
}

// Result reports a full run: which declarations succeeded, which failed, and
// which were skipped due to a failed dependency, in apply order.
type Result struct {
	// RunID uniquely identifies the run.
	RunID string
	// Stack is the applied stack's name.
	Stack string
	// Outcomes lists per-declaration outcomes in apply order.
	Outcomes []Outcome
}

// Counts summarizes a result for display.
type Counts struct {
	Resolved int
	Failed   int
	Skipped  int
	NoOp     int
}

// Counts tallies the outcomes by final status.
func (r *Result) Counts() Counts {
	var c Counts
	for _, o := range r.Outcomes {
		switch o.Status {
		case resource.StatusResolved:
			if o.Action == ActionNoop {
				c.NoOp++
			}
			c.Resolved++
		case resource.StatusFailed:
			c.Failed++
		case resource.StatusSkipped:
			c.Skipped++
		}
	}
	return c
}

// Err returns an aggregate error when any declaration failed, nil otherwise.
func (r *Result) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Status == resource.StatusFailed && o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

// ApplyError wraps a provider failure with the declaration it belongs to.
type ApplyError struct {
	// Key is the failed declaration's key.
	Key string
	// Err is the underlying provider error.
	Err error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply %s: %v", e.Key, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// IsApplyError reports whether err is an ApplyError.
func IsApplyError(err error) bool {
	var target *ApplyError
	return errors.As(err, &target)
}
