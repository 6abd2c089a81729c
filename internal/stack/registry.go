package stack

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/v2kk/stackctl/internal/config"
)

// BuilderFunc builds a stack's declaration set from its configuration.
// Configuration errors (missing required keys) surface here, before any
// provider call.
type BuilderFunc func(cfg *config.Set) (*Stack, error)

// Registry maps stack names to registered builder functions. The set of
// stacks is closed at startup: loading an unregistered name is an
// UnknownStackError, not a late lookup failure.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register adds a stack builder under the given name.
func (r *Registry) Register(name string, fn BuilderFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("stack name is empty")
	}
	if fn == nil {
		return fmt.Errorf("stack %q: builder func is nil", name)
	}
	if _, exists := r.builders[name]; exists {
		return fmt.Errorf("stack %q is already registered", name)
	}
	r.builders[name] = fn
	return nil
}

// Names returns the registered stack names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load resolves the stack name to its builder and builds the declaration set.
func (r *Registry) Load(name string, cfg *config.Set) (*Stack, error) {
	r.mu.RLock()
	fn, ok := r.builders[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &UnknownStackError{Name: name, Known: r.Names()}
	}
	return fn(cfg)
}

// UnknownStackError indicates the requested stack is not registered.
type UnknownStackError struct {
	// Name is the requested stack name.
	Name string
	// Known lists the registered stack names.
	Known []string
}

func (e *UnknownStackError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown stack %q", e.Name)
	}
	return fmt.Sprintf("unknown stack %q (registered stacks: %s)", e.Name, strings.Join(e.Known, ", "))
}

// IsUnknownStack reports whether err is an UnknownStackError.
func IsUnknownStack(err error) bool {
	var target *UnknownStackError
	return errors.As(err, &target)
}
