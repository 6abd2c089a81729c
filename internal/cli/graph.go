package cli

import (
	"os"

	"github.com/ddddddO/gtree"
	"github.com/spf13/cobra"

	"github.com/v2kk/stackctl/internal/graph"
)

// newGraphCommand creates the "graph" subcommand that prints the selected
// stack's dependency graph in apply order. Graph validation (cycles, dangling
// references) runs here too, so the command doubles as a dry check.
func newGraphCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the selected stack's dependency graph",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stk, _, err := loadStack(cmd, opts)
			if err != nil {
				return err
			}

			g, err := graph.Build(stk.Declarations())
			if err != nil {
				return err
			}
			order, err := g.Order()
			if err != nil {
				return err
			}

			root := gtree.NewRoot(stk.Name())
			for _, d := range order {
				node := root.Add(d.Key())
				for _, dep := range g.Dependencies(d.Key()) {
					node.Add(dep)
				}
			}
			return gtree.OutputFromRoot(os.Stdout, root)
		},
	}

	addSetFlag(cmd)
	return cmd
}
