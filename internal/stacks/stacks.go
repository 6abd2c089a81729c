// Package stacks holds the concrete stack definitions deployed by stackctl
// and the registry the CLI dispatches on.
package stacks

import (
	"fmt"

	"github.com/v2kk/stackctl/internal/stack"
)

// Stack names as selected with --stack.
const (
	// StackAWS provisions IAM Identity Center and the sops KMS key.
	StackAWS = "aws"
	// StackVMHcloud provisions the Hetzner Cloud network and server.
	StackVMHcloud = "vm-hcloud"
)

// NewRegistry returns a registry with every deployable stack registered.
func NewRegistry() (*stack.Registry, error) {
	r := stack.NewRegistry()
	register := map[string]stack.BuilderFunc{
		StackAWS:      BuildAWS,
		StackVMHcloud: BuildVMHcloud,
	}
	for name, fn := range register {
		if err := r.Register(name, fn); err != nil {
			return nil, fmt.Errorf("register stack %q: %w", name, err)
		}
	}
	return r, nil
}
