package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/v2kk/stackctl/internal/config"
	"github.com/v2kk/stackctl/internal/state"
)

// newStateCommand creates the "state" subcommand that shows the recorded
// resources of the selected stack.
func newStateCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the selected stack's recorded resources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			if opts.StackName == "" {
				return fmt.Errorf("no stack selected, pass --stack (one of: %v)", registryNames())
			}

			project, err := config.Load(opts.ConfigPath, nil)
			if err != nil {
				return err
			}

			statePath := opts.StatePath
			if statePath == "" {
				statePath = project.StatePath()
			}
			store, err := state.Open(statePath, logger)
			if err != nil {
				return err
			}

			return renderState(os.Stdout, opts.StackName, store.Records(opts.StackName))
		},
	}
}
