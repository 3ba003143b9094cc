package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/factstack-labs/factgraph/pkg/formula"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show the fact dependency graph",
		Long: `Graph validates the store and prints the dependency graph as
execution levels: facts in level 0 depend on nothing, facts in level N
depend only on facts in earlier levels.`,
		Example: `  # Show the dependency graph
  factgraph graph

  # Show the graph as JSON
  factgraph graph --output json`,
		RunE: runGraph,
	}

	return cmd
}

func runGraph(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	if err := cmdCtx.Engine.Validate(); err != nil {
		return err
	}

	g := cmdCtx.Engine.Graph()
	levels, err := g.ExecutionLevels()
	if err != nil {
		return err
	}

	if cmdCtx.Config.Output == "json" {
		return graphJSON(cmd, levels, g.EdgeCount())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Dependency graph: %d facts, %d dependencies\n\n", g.NodeCount(), g.EdgeCount())
	for i, level := range levels {
		names := make([]string, len(level))
		for j, key := range level {
			names[j] = key.String()
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Level %d: %s\n", i, strings.Join(names, ", "))
	}
	return nil
}

type graphOutput struct {
	Nodes  int        `json:"nodes"`
	Edges  int        `json:"edges"`
	Levels [][]string `json:"levels"`
}

func graphJSON(cmd *cobra.Command, levels [][]formula.FactKey, edges int) error {
	out := graphOutput{Edges: edges, Levels: make([][]string, len(levels))}
	for i, level := range levels {
		out.Levels[i] = make([]string, len(level))
		for j, key := range level {
			out.Levels[i][j] = key.String()
		}
		out.Nodes += len(level)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
