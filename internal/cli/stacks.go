package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/v2kk/stackctl/internal/stacks"
)

// newStacksCommand creates the "stacks" subcommand that lists the registered
// stack names.
func newStacksCommand(_ *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "stacks",
		Short: "List the registered stacks",
		RunE: func(_ *cobra.Command, _ []string) error {
			registry, err := stacks.NewRegistry()
			if err != nil {
				return err
			}
			for _, name := range registry.Names() {
				fmt.Fprintln(os.Stdout, name)
			}
			return nil
		},
	}
}
