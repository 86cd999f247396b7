package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/unkn0wn-root/oddsgrid/tables"
)

func render(w io.Writer, format string, m *tables.Mounted, cols []tables.ColumnSpec, limit int) error {
	if strings.EqualFold(format, "json") {
		return renderJSON(w, m, cols, limit)
	}

	header, cells := m.Table.Render()
	index := make(map[string]int, len(header))
	for i, c := range m.Table.Columns() {
		index[c.Field] = i
	}
	total := len(cells)
	if limit > 0 && len(cells) > limit {
		cells = cells[:limit]
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	hdr := make(table.Row, len(cols))
	for i, c := range cols {
		hdr[i] = header[index[c.Field]]
	}
	t.AppendHeader(hdr)
	for _, line := range cells {
		r := make(table.Row, len(cols))
		for i, c := range cols {
			r[i] = line[index[c.Field]]
		}
		t.AppendRow(r)
	}
	t.SetCaption("%s", caption(m, total))

	switch strings.ToLower(format) {
	case "", "table":
		t.Render()
	case "markdown", "md":
		t.RenderMarkdown()
	case "csv":
		t.RenderCSV()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}

// caption summarizes row counts and the restricted set filters.
func caption(m *tables.Mounted, visible int) string {
	parts := []string{fmt.Sprintf("%d of %d rows", visible, m.Table.RowCount())}
	fields := make([]string, 0, len(m.Sets))
	for f := range m.Sets {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		if label := m.Sets[f].Label(); label != "All" {
			title := f
			if c, ok := m.Preset.Spec(f); ok && c.Title != "" {
				title = c.Title
			}
			parts = append(parts, title+": "+label)
		}
	}
	return strings.Join(parts, " | ")
}

func renderJSON(w io.Writer, m *tables.Mounted, cols []tables.ColumnSpec, limit int) error {
	visible := m.Table.Visible()
	if limit > 0 && len(visible) > limit {
		visible = visible[:limit]
	}
	out := make([]map[string]any, len(visible))
	for i, r := range visible {
		o := make(map[string]any, len(cols))
		for _, c := range cols {
			o[c.Field] = r[c.Field]
		}
		out[i] = o
	}
	b, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
