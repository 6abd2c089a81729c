package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// newPlanCommand creates the "plan" subcommand that previews the actions an
// apply would take. Planning never calls a provider, so it needs no
// credentials.
func newPlanCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview the actions an apply would take",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			stk, project, err := loadStack(cmd, opts)
			if err != nil {
				return err
			}

			eng, err := newPlanEngine(logger, project, opts)
			if err != nil {
				return err
			}

			steps, err := eng.Plan(stk)
			if err != nil {
				return err
			}
			return renderPlan(os.Stdout, stk.Name(), steps)
		},
	}

	addSetFlag(cmd)
	return cmd
}
