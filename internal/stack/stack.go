// Package stack groups resource declarations under a named stack and maps
// stack names to registered builder functions.
package stack

import (
	"errors"
	"fmt"

	"github.com/v2kk/stackctl/internal/config"
	"github.com/v2kk/stackctl/internal/resource"
)

// Stack is a named, ordered set of resource declarations plus the
// configuration set it was built from. Exactly one stack is active per run.
type Stack struct {
	name   string
	config *config.Set
	decls  []*resource.Declaration
}

// Name returns the stack name.
func (s *Stack) Name() string {
	return s.name
}

// Config returns the configuration set the stack was built with.
func (s *Stack) Config() *config.Set {
	return s.config
}

// Declarations returns the declarations in declaration order.
func (s *Stack) Declarations() []*resource.Declaration {
	return s.decls
}

// Namespaces returns the provider namespaces used by the stack's
// declarations, in first-use order.
func (s *Stack) Namespaces() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range s.decls {
		ns := d.Kind.Namespace()
		if _, ok := seen[ns]; !ok {
			seen[ns] = struct{}{}
			out = append(out, ns)
		}
	}
	return out
}

// Builder collects declarations for one stack. It replaces the ambient
// "current stack" global of typical IaC SDKs: every declaration attaches to
// the builder it was made through, never to shared state.
type Builder struct {
	name  string
	cfg   *config.Set
	decls []*resource.Declaration
	keys  map[string]struct{}
	errs  []error
}

// NewBuilder starts a builder for the named stack using the given
// configuration set.
func NewBuilder(name string, cfg *config.Set) *Builder {
	if cfg == nil {
		cfg = config.NewSet(name, nil)
	}
	return &Builder{
		name: name,
		cfg:  cfg,
		keys: make(map[string]struct{}),
	}
}

// Declare adds a declaration for a mutable cloud resource and returns its
// handle for references and explicit dependencies.
func (b *Builder) Declare(name string, kind resource.Kind, props resource.Properties) *resource.Declaration {
	return b.add(name, kind, props, false)
}

// Lookup adds a read-only (data source) declaration whose resolution reads
// provider state without mutating it.
func (b *Builder) Lookup(name string, kind resource.Kind, props resource.Properties) *resource.Declaration {
	return b.add(name, kind, props, true)
}

func (b *Builder) add(name string, kind resource.Kind, props resource.Properties, readOnly bool) *resource.Declaration {
	d := &resource.Declaration{
		Name:       name,
		Kind:       kind,
		Properties: props,
		ReadOnly:   readOnly,
	}

	if _, dup := b.keys[d.Key()]; dup {
		b.errs = append(b.errs, &DuplicateDeclarationError{Stack: b.name, Key: d.Key()})
		return d
	}
	b.keys[d.Key()] = struct{}{}
	b.decls = append(b.decls, d)
	return d
}

// Build finalizes the stack. Declaration errors collected during building
// (duplicate logical names) surface here, before any graph or provider work.
func (b *Builder) Build() (*Stack, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return &Stack{name: b.name, config: b.cfg, decls: b.decls}, nil
}

// DuplicateDeclarationError indicates two declarations in the same stack share
// a kind and logical name.
type DuplicateDeclarationError struct {
	// Stack is the stack being built.
	Stack string
	// Key is the duplicated "<kind>/<name>" key.
	Key string
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("stack %q declares %s more than once", e.Stack, e.Key)
}

// IsDuplicateDeclaration reports whether err is a DuplicateDeclarationError.
func IsDuplicateDeclaration(err error) bool {
	var target *DuplicateDeclarationError
	return errors.As(err, &target)
}
