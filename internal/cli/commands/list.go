package commands

import (
	"encoding/json"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/factstack-labs/factgraph/internal/store"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [entity]",
		Short: "List all facts in the store",
		Long: `List every loaded fact with its kind, value or formula, and metadata.
With an entity argument, only that entity's facts are listed.

Use --output json for machine-readable output.`,
		Example: `  # List all facts
  factgraph list

  # List facts for one entity
  factgraph list acme

  # List facts as JSON
  factgraph list --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity := ""
			if len(args) > 0 {
				entity = args[0]
			}
			return runList(cmd, entity)
		},
	}

	return cmd
}

type factInfo struct {
	Entity  string   `json:"entity"`
	FactID  string   `json:"factId"`
	Kind    string   `json:"kind"`
	Value   string   `json:"value,omitempty"`
	Numeric *float64 `json:"numeric,omitempty"`
	Compute string   `json:"compute,omitempty"`
	AsOf    string   `json:"asOf,omitempty"`
	Source  string   `json:"source,omitempty"`
	Note    string   `json:"note,omitempty"`
}

func runList(cmd *cobra.Command, entity string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	var facts []*store.Fact
	if entity != "" {
		facts = cmdCtx.Engine.Store().ForEntity(entity)
	} else {
		facts = cmdCtx.Engine.Store().All()
	}

	if cmdCtx.Config.Output == "json" {
		return listJSON(cmd, facts)
	}
	return listText(cmd, facts)
}

func listText(cmd *cobra.Command, facts []*store.Fact) error {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Fact", "Kind", "Value", "As Of", "Source"})

	for _, f := range facts {
		kind := "leaf"
		value := f.Value
		if f.Derived() {
			kind = "derived"
			value = f.Compute
		} else if value == "" && f.Numeric != nil {
			value = strconv.FormatFloat(*f.Numeric, 'g', -1, 64)
		}
		t.AppendRow(table.Row{f.Key.String(), kind, value, f.AsOf, f.Source})
	}

	t.Render()
	return nil
}

func listJSON(cmd *cobra.Command, facts []*store.Fact) error {
	infos := make([]factInfo, 0, len(facts))
	for _, f := range facts {
		kind := "leaf"
		if f.Derived() {
			kind = "derived"
		}
		infos = append(infos, factInfo{
			Entity:  f.Key.Entity,
			FactID:  f.Key.Fact,
			Kind:    kind,
			Value:   f.Value,
			Numeric: f.Numeric,
			Compute: f.Compute,
			AsOf:    f.AsOf,
			Source:  f.Source,
			Note:    f.Note,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(infos)
}
