package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// newApplyCommand creates the "apply" subcommand that materializes the
// selected stack's declarations through their providers.
func newApplyCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the selected stack's declarations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			stk, project, err := loadStack(cmd, opts)
			if err != nil {
				return err
			}

			eng, err := newEngine(cmd.Context(), logger, stk, project, opts)
			if err != nil {
				return err
			}

			res, err := eng.Apply(cmd.Context(), stk)
			if err != nil {
				return err
			}
			if err := renderResult(os.Stdout, res); err != nil {
				return err
			}
			return res.Err()
		},
	}

	addSetFlag(cmd)
	return cmd
}
