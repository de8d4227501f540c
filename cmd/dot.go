package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CraigKelly/chainmar/inference"
	"github.com/CraigKelly/chainmar/model"
)

func newDotCmd(sp *startupParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Print a chain as a graphviz graph",
		Long: `dot writes the chain as an undirected graphviz graph. With --marginals
each node is labeled with its exact (scaled mode) marginal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dotOutput(sp)
		},
	}

	cmd.Flags().StringP("model", "m", "", "Model file to read (.npy or .uai)")
	cmd.Flags().Bool("marginals", false, "Label nodes with exact marginals")

	return cmd
}

// dotOutput reads a given chain and outputs a graphviz description
func dotOutput(sp *startupParams) error {
	c, err := loadChain(sp)
	if err != nil {
		return err
	}

	var m model.Marginals
	if sp.v.GetBool("marginals") {
		m, err = inference.ExactMode(c, inference.Scaled)
		if err != nil {
			return err
		}
	}

	// Start graph
	fmt.Fprintf(sp.out, "strict graph G {\n")

	// Output vars
	for n := 0; n < c.N; n++ {
		label := fmt.Sprintf("X%d", n)
		if m != nil {
			vals := make([]string, len(m[n]))
			for k, p := range m[n] {
				vals[k] = fmt.Sprintf("%.3f", p)
			}
			label += "\\n" + strings.Join(vals, " ")
		}
		fmt.Fprintf(sp.out, "    X%d [label=\"%s\"];\n", n, label)
	}

	// Output links
	for n := 0; n < c.N-1; n++ {
		fmt.Fprintf(sp.out, "    X%d -- X%d;\n", n, n+1)
	}

	// Finish graph
	fmt.Fprintf(sp.out, "}\n")

	return nil
}
