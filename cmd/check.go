package cmd

import (
	"fmt"
	"os"

	"github.com/carvecad/carve/pkg/engine"
	"github.com/carvecad/carve/pkg/graph"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.carve>",
	Short: "Evaluate and validate a design script without tessellating",
	Long: `Evaluates a Carve Lisp script and runs structural validation on the
resulting design graph: cycles, dangling references, duplicate names and
shape constraints. No geometry is generated, so this is fast enough for
editor integrations.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		eng := engine.NewEngine()
		g, evalErrs, err := eng.Evaluate(string(source))
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
		if len(evalErrs) > 0 {
			for _, e := range evalErrs {
				fmt.Fprintf(os.Stderr, "error: %s\n", e.Error())
			}
			return fmt.Errorf("%d eval error(s)", len(evalErrs))
		}

		findings := graph.Validate(g)
		for _, f := range findings {
			fmt.Fprintf(os.Stderr, "%s\n", f.Error())
		}
		if graph.HasErrors(findings) {
			return fmt.Errorf("validation failed")
		}

		fmt.Printf("ok: %d node(s), %d root(s)\n", g.NodeCount(), len(g.Roots))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
