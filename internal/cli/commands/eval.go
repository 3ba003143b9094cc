package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/factstack-labs/factgraph/internal/engine"
	"github.com/factstack-labs/factgraph/internal/format"
)

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	var (
		formatMode string
		precision  int
		prefix     string
		suffix     string
	)

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an ad-hoc expression against the fact store",
		Long: `Eval parses and evaluates a one-off expression. Fact references use
{entity.factId} syntax and may name leaf or derived facts. The result is
formatted for display and never written back into the store.`,
		Example: `  # Evaluate a simple expression
  factgraph eval '{acme.revenue} - {acme.cogs}'

  # Force currency formatting
  factgraph eval '{acme.revenue} * 2' --format currency

  # Percent with explicit precision
  factgraph eval '{acme.profit} / {acme.revenue}' --format percent --precision 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			mode := cmdCtx.Config.DefaultFormat
			if cmd.Flags().Changed("format") {
				mode = formatMode
			}

			opts := engine.Options{
				Format: format.Mode(mode),
				Prefix: prefix,
				Suffix: suffix,
			}
			if cmd.Flags().Changed("precision") {
				opts.Precision = &precision
			}

			res, err := cmdCtx.Engine.EvalExpression(args[0], opts)
			if err != nil {
				return err
			}

			if cmdCtx.Config.Output == "json" {
				return evalJSON(cmd, args[0], res)
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Display)
			for _, in := range res.Inputs {
				line := fmt.Sprintf("  %s = %s", in.Ref.String(), in.Value)
				if in.AsOf != "" {
					line += fmt.Sprintf(" (as of %s)", in.AsOf)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatMode, "format", "f", "", "Display format (auto|currency|percent|number)")
	cmd.Flags().IntVarP(&precision, "precision", "p", 0, "Decimal places (overrides the format default)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Literal prefix for the displayed value")
	cmd.Flags().StringVar(&suffix, "suffix", "", "Literal suffix for the displayed value")
	return cmd
}

type evalOutput struct {
	Expression string        `json:"expression"`
	Numeric    float64       `json:"numeric"`
	Display    string        `json:"display"`
	Inputs     []inputOutput `json:"inputs"`
}

func evalJSON(cmd *cobra.Command, src string, res *engine.EvaluationResult) error {
	out := evalOutput{Expression: src, Numeric: res.Numeric, Display: res.Display, Inputs: []inputOutput{}}
	for _, in := range res.Inputs {
		out.Inputs = append(out.Inputs, inputOutput{Ref: in.Ref.String(), Value: in.Value, AsOf: in.AsOf})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
