// Package resource defines the declaration model: desired-state descriptions
// of cloud objects, their properties, and references between them.
package resource

import (
	"fmt"
	"strings"
	"sync"
)

// Kind is a provider-qualified resource type tag, e.g. "aws:identitystore:Group".
// The segment before the first colon names the provider namespace.
type Kind string

// Namespace returns the provider namespace of the kind (e.g. "aws").
func (k Kind) Namespace() string {
	s := string(k)
	if i := strings.Index(s, ":"); i >= 0 {
		return s[:i]
	}
	return s
}

func (k Kind) String() string {
	return string(k)
}

// Status tracks the resolution lifecycle of a declaration within a single run.
type Status int

const (
	// StatusPending means the declaration has not been picked up yet.
	StatusPending Status = iota
	// StatusResolving means an apply call for the declaration is in flight.
	StatusResolving
	// StatusResolved means the declaration has provider-issued outputs.
	StatusResolved
	// StatusFailed means the provider call for the declaration failed.
	StatusFailed
	// StatusSkipped means a transitive dependency failed, so the declaration
	// was never sent to its provider.
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusResolving:
		return "resolving"
	case StatusResolved:
		return "resolved"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Properties maps property names to desired values. Values are literals
// (string, bool, number), nested maps/slices, or Reference placeholders.
type Properties map[string]any

// Outputs holds the provider-assigned attributes of a resolved declaration.
type Outputs map[string]string

// Declaration describes one desired cloud object within a stack.
type Declaration struct {
	// Name is the logical name, unique per kind namespace within a stack.
	Name string
	// Kind is the provider-qualified resource type.
	Kind Kind
	// Properties holds the desired attributes; values may contain References.
	Properties Properties
	// ReadOnly marks data-source style declarations whose resolution reads
	// provider state but never mutates it.
	ReadOnly bool

	// explicit dependency keys, beyond what Properties references imply
	deps []string

	mu      sync.Mutex
	status  Status
	outputs Outputs
}

// Key returns the graph/state key of the declaration: "<kind>/<name>".
func (d *Declaration) Key() string {
	return Key(d.Kind, d.Name)
}

// Key builds the canonical "<kind>/<name>" lookup key.
func Key(kind Kind, name string) string {
	return string(kind) + "/" + name
}

// Ref returns a Reference to one of this declaration's output attributes.
// Building the reference registers nothing by itself; the dependency edge is
// discovered when the reference is embedded in another declaration's
// properties, so the graph is constructible without any provider call.
func (d *Declaration) Ref(attribute string) Reference {
	return Reference{SourceKind: d.Kind, SourceName: d.Name, Attribute: attribute}
}

// DependsOn records explicit ordering dependencies on other declarations and
// returns the declaration for chaining.
func (d *Declaration) DependsOn(others ...*Declaration) *Declaration {
	for _, o := range others {
		if o == nil {
			continue
		}
		d.deps = append(d.deps, o.Key())
	}
	return d
}

// Dependencies returns the explicit dependency keys recorded via DependsOn.
func (d *Declaration) Dependencies() []string {
	return d.deps
}

// Status returns the current lifecycle status.
func (d *Declaration) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Outputs returns the provider-assigned outputs once resolved, nil otherwise.
func (d *Declaration) Outputs() Outputs {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.outputs
}

// BeginResolving transitions Pending -> Resolving. It reports false when the
// declaration is not pending, so a second apply attempt cannot double-apply.
func (d *Declaration) BeginResolving() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status != StatusPending {
		return false
	}
	d.status = StatusResolving
	return true
}

// MarkResolved transitions Resolving -> Resolved and records the outputs.
func (d *Declaration) MarkResolved(outputs Outputs) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = StatusResolved
	d.outputs = outputs
}

// MarkFailed transitions the declaration to Failed.
func (d *Declaration) MarkFailed() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = StatusFailed
}

// MarkSkipped transitions Pending -> Skipped for declarations whose
// dependencies failed. No-op when the declaration already left Pending.
func (d *Declaration) MarkSkipped() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status == StatusPending {
		d.status = StatusSkipped
	}
}
