package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/v2kk/stackctl/internal/config"
	"github.com/v2kk/stackctl/internal/engine"
	"github.com/v2kk/stackctl/internal/provider"
	"github.com/v2kk/stackctl/internal/stack"
	"github.com/v2kk/stackctl/internal/stacks"
	"github.com/v2kk/stackctl/internal/state"
)

// loadStack loads the project file and builds the selected stack's
// declaration set. Configuration errors (missing required keys, duplicate
// declarations, unknown stack names) surface here, before any provider work.
func loadStack(cmd *cobra.Command, opts *Options) (*stack.Stack, *config.Project, error) {
	if opts.StackName == "" {
		return nil, nil, fmt.Errorf("no stack selected, pass --stack (one of: %v)", registryNames())
	}

	inlineVars, err := config.ParseInlineVars(cmd.Flag("set").Value.String())
	if err != nil {
		return nil, nil, err
	}

	project, err := config.Load(opts.ConfigPath, inlineVars)
	if err != nil {
		return nil, nil, err
	}

	registry, err := stacks.NewRegistry()
	if err != nil {
		return nil, nil, err
	}

	stk, err := registry.Load(opts.StackName, project.ConfigSet(opts.StackName))
	if err != nil {
		return nil, nil, err
	}
	return stk, project, nil
}

// newEngine opens the state store and builds an engine with providers for
// exactly the namespaces the stack uses, so applying the Hetzner stack needs
// no AWS credentials and vice versa.
func newEngine(ctx context.Context, logger *slog.Logger, stk *stack.Stack, project *config.Project, opts *Options) (*engine.Engine, error) {
	statePath := opts.StatePath
	if statePath == "" {
		statePath = project.StatePath()
	}
	store, err := state.Open(statePath, logger)
	if err != nil {
		return nil, err
	}

	providers := provider.NewRegistry()
	for _, ns := range stk.Namespaces() {
		factory, ok := providerFactories[ns]
		if !ok {
			return nil, fmt.Errorf("no provider factory for namespace %q", ns)
		}
		p, err := factory(ctx, logger)
		if err != nil {
			return nil, fmt.Errorf("build provider %q: %w", ns, err)
		}
		if err := providers.Register(p); err != nil {
			return nil, err
		}
	}

	engOpts, err := engine.OptionsFromEnv()
	if err != nil {
		return nil, err
	}
	return engine.New(providers, store, logger, engOpts), nil
}

// newPlanEngine builds an engine with no providers registered. Planning only
// reads the state store, so no credentials are needed.
func newPlanEngine(logger *slog.Logger, project *config.Project, opts *Options) (*engine.Engine, error) {
	statePath := opts.StatePath
	if statePath == "" {
		statePath = project.StatePath()
	}
	store, err := state.Open(statePath, logger)
	if err != nil {
		return nil, err
	}
	return engine.New(provider.NewRegistry(), store, logger, engine.Options{Parallelism: 1}), nil
}

// registryNames lists the registered stack names for error messages.
func registryNames() []string {
	registry, err := stacks.NewRegistry()
	if err != nil {
		return nil
	}
	return registry.Names()
}

// addSetFlag registers the --set flag shared by commands that load a stack.
func addSetFlag(cmd *cobra.Command) {
	cmd.Flags().String("set", "", "Configuration overrides in k=v,k2=v2 format")
}
