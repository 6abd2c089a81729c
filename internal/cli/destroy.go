package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// newDestroyCommand creates the "destroy" subcommand that deletes the
// selected stack's recorded resources in reverse dependency order.
func newDestroyCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the selected stack's recorded resources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			stk, project, err := loadStack(cmd, opts)
			if err != nil {
				return err
			}

			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				ok, err := confirm(fmt.Sprintf("Destroy all resources of stack %q? [y/N]: ", stk.Name()))
				if err != nil {
					return err
				}
				if !ok {
					logger.Info("destroy cancelled", "stack", stk.Name())
					return nil
				}
			}

			eng, err := newEngine(cmd.Context(), logger, stk, project, opts)
			if err != nil {
				return err
			}

			res, err := eng.Destroy(cmd.Context(), stk)
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
	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	return cmd
}

func confirm(prompt string) (bool, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
