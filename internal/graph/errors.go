package graph

import (
	"errors"
	"fmt"
	"strings"
)

// DanglingReferenceError indicates a declaration references a logical name
// that is not declared in the stack.
type DanglingReferenceError struct {
	// Declaration is the key of the declaration holding the bad reference.
	Declaration string
	// Reference identifies the missing target (and attribute, when known).
	Reference string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("declaration %s references undeclared resource %s", e.Declaration, e.Reference)
}

// IsDanglingReference reports whether err is a DanglingReferenceError.
func IsDanglingReference(err error) bool {
	var target *DanglingReferenceError
	return errors.As(err, &target)
}

// CyclicDependencyError indicates the reference graph contains a cycle.
type CyclicDependencyError struct {
	// Members lists the declaration keys forming the cycle, in path order.
	Members []string
}

func (e *CyclicDependencyError) Error() string {
	if len(e.Members) == 0 {
		return "dependency cycle detected"
	}
	return fmt.Sprintf("dependency cycle detected: %s -> %s", strings.Join(e.Members, " -> "), e.Members[0])
}

// IsCyclicDependency reports whether err is a CyclicDependencyError.
func IsCyclicDependency(err error) bool {
	var target *CyclicDependencyError
	return errors.As(err, &target)
}
