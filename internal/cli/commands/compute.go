package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/factstack-labs/factgraph/internal/engine"
)

// NewComputeCommand creates the compute command.
func NewComputeCommand() *cobra.Command {
	var showInputs bool

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute all derived facts",
		Long: `Compute validates the store, then evaluates every derived fact in
dependency order. Independent facts within one level run in parallel.`,
		Example: `  # Compute every derived fact
  factgraph compute

  # Include the leaf facts each result was derived from
  factgraph compute --show-inputs

  # Emit results as JSON
  factgraph compute --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompute(cmd, showInputs)
		},
	}

	cmd.Flags().BoolVar(&showInputs, "show-inputs", false, "Show the leaf facts behind each result")
	return cmd
}

func runCompute(cmd *cobra.Command, showInputs bool) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	results, err := cmdCtx.Engine.ComputeAll(cmd.Context())
	if err != nil {
		return err
	}

	if cmdCtx.Config.Output == "json" {
		return computeJSON(cmd, results)
	}
	return computeText(cmd, results, showInputs)
}

func computeText(cmd *cobra.Command, results []engine.Computed, showInputs bool) error {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Fact", "Value", "Inputs"})

	for _, res := range results {
		t.AppendRow(table.Row{res.Key.String(), strconv.FormatFloat(res.Numeric, 'g', -1, 64), len(res.Inputs)})
	}

	t.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "(%d derived facts)\n", len(results))

	if showInputs {
		for _, res := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", res.Key.String())
			for _, in := range res.Inputs {
				line := fmt.Sprintf("  %s = %s", in.Ref.String(), in.Value)
				if in.AsOf != "" {
					line += fmt.Sprintf(" (as of %s)", in.AsOf)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
		}
	}
	return nil
}

type computedOutput struct {
	Fact    string        `json:"fact"`
	Numeric float64       `json:"numeric"`
	Inputs  []inputOutput `json:"inputs"`
}

type inputOutput struct {
	Ref   string `json:"ref"`
	Value string `json:"value,omitempty"`
	AsOf  string `json:"asOf,omitempty"`
}

func computeJSON(cmd *cobra.Command, results []engine.Computed) error {
	out := make([]computedOutput, 0, len(results))
	for _, res := range results {
		c := computedOutput{Fact: res.Key.String(), Numeric: res.Numeric, Inputs: []inputOutput{}}
		for _, in := range res.Inputs {
			c.Inputs = append(c.Inputs, inputOutput{Ref: in.Ref.String(), Value: in.Value, AsOf: in.AsOf})
		}
		out = append(out, c)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
