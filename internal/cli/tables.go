package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/oddsgrid/tables"
)

func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the table presets and their filterable columns",
		Run: func(cmd *cobra.Command, _ []string) {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Table", "Endpoint", "Column", "Field", "Filter"})
			for _, name := range tables.Names() {
				p, _ := tables.Lookup(name, nil)
				for _, c := range p.Columns {
					t.AppendRow(table.Row{p.Name, p.Endpoint, c.Title, c.Field, c.Control.String()})
				}
				t.AppendSeparator()
			}
			t.Render()
		},
	}
}
