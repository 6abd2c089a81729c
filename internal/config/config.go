// Package config contains the loader for the stackctl.yaml project file and
// the per-stack configuration set consumed by stack builders.
package config

import (
	"errors"
	"fmt"
)

// Set is the read-only configuration of one stack: a mapping from key to
// externally supplied value.
type Set struct {
	stack  string
	values map[string]string
}

// NewSet builds a Set scoped to the given stack name.
func NewSet(stack string, values map[string]string) *Set {
	if values == nil {
		values = map[string]string{}
	}
	return &Set{stack: stack, values: values}
}

// Stack returns the stack name the set is scoped to.
func (s *Set) Stack() string {
	return s.stack
}

// Get returns the configured value for key and whether it is present.
func (s *Set) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetOr returns the configured value for key, or def when absent.
func (s *Set) GetOr(key, def string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Require returns the configured value for key or a MissingConfigurationError
// identifying the key and the stack.
func (s *Set) Require(key string) (string, error) {
	v, ok := s.values[key]
	if !ok || v == "" {
		return "", &MissingConfigurationError{Stack: s.stack, Key: key}
	}
	return v, nil
}

// MissingConfigurationError indicates a required configuration key is absent
// for the active stack.
type MissingConfigurationError struct {
	// Stack is the stack the key was required for.
	Stack string
	// Key is the missing configuration key.
	Key string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("stack %q: required configuration key %q is not set", e.Stack, e.Key)
}

// IsMissingConfiguration reports whether err is a MissingConfigurationError.
func IsMissingConfiguration(err error) bool {
	var target *MissingConfigurationError
	return errors.As(err, &target)
}
