// Package provider defines the interface between the apply executor and the
// cloud provider clients, plus a registry keyed by provider namespace.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/v2kk/stackctl/internal/resource"
)

// Created is the result of materializing a declaration.
type Created struct {
	// ID is the provider-assigned identifier used for later deletion.
	ID string
	// Outputs are the provider-assigned attributes consumed by references.
	Outputs resource.Outputs
}

// Provider materializes declarations of one namespace (e.g. "aws", "hcloud").
// Properties passed in are fully resolved: all references already substituted
// with concrete values.
type Provider interface {
	// Name returns the provider namespace.
	Name() string
	// Create materializes a declaration and returns its identity and outputs.
	Create(ctx context.Context, kind resource.Kind, name string, props resource.Properties) (*Created, error)
	// Read resolves a read-only declaration without mutating provider state.
	Read(ctx context.Context, kind resource.Kind, name string, props resource.Properties) (resource.Outputs, error)
	// Delete removes a previously created resource by provider ID.
	Delete(ctx context.Context, kind resource.Kind, id string, props resource.Properties) error
}

// Factory lazily constructs a provider; providers are only built for the
// namespaces the active stack actually uses, so applying the Hetzner stack
// needs no AWS credentials and vice versa.
type Factory func(ctx context.Context, logger *slog.Logger) (Provider, error)

// Registry holds the providers available to an apply run, keyed by namespace.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider under its namespace.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ns := p.Name()
	if _, exists := r.providers[ns]; exists {
		return fmt.Errorf("provider %q is already registered", ns)
	}
	r.providers[ns] = p
	return nil
}

// ForKind returns the provider responsible for the given kind.
func (r *Registry) ForKind(kind resource.Kind) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ns := kind.Namespace()
	p, ok := r.providers[ns]
	if !ok {
		return nil, &UnknownProviderError{Namespace: ns, Kind: kind}
	}
	return p, nil
}

// UnknownProviderError indicates no provider is registered for a kind's
// namespace.
type UnknownProviderError struct {
	// Namespace is the missing provider namespace.
	Namespace string
	// Kind is the kind that triggered the lookup.
	Kind resource.Kind
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("no provider registered for namespace %q (kind %s)", e.Namespace, e.Kind)
}

// UnsupportedKindError indicates a provider was asked to handle a kind it
// does not implement.
type UnsupportedKindError struct {
	// Provider is the provider namespace.
	Provider string
	// Kind is the unsupported kind.
	Kind resource.Kind
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("provider %q does not support kind %s", e.Provider, e.Kind)
}

// IsUnsupportedKind reports whether err is an UnsupportedKindError.
func IsUnsupportedKind(err error) bool {
	var target *UnsupportedKindError
	return errors.As(err, &target)
}
