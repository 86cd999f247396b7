package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/oddsgrid"
	"github.com/unkn0wn-root/oddsgrid/grid"
	"github.com/unkn0wn-root/oddsgrid/tables"
	"github.com/unkn0wn-root/oddsgrid/widget"
)

type showOptions struct {
	in       []string
	ranges   []string
	like     []string
	bankroll string
	sort     []string
	columns  []string
	limit    int
	refresh  bool
	output   string
}

func NewShowCommand() *cobra.Command {
	var opts showOptions
	cmd := &cobra.Command{
		Use:   "show <table|endpoint>",
		Short: "Load a table and print its filtered rows",
		Long: `Load a table through the cache and print the rows that pass the given filters.

The argument is a preset name (see "oddsgrid tables") or a raw endpoint; raw
endpoints get one text-filtered column per field.

Examples:
  oddsgrid show game-odds --in "Game Book=DK,FD" --range "Game Odds=100:" --bankroll 1000
  oddsgrid show matchups --like "Matchup=duke"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&opts.in, "in", nil, `keep rows whose column is one of the values, e.g. "Game Book=DK,FD"`)
	f.StringArrayVar(&opts.ranges, "range", nil, `numeric bounds, e.g. "Game Line=-5:5"; either side may be empty`)
	f.StringArrayVar(&opts.like, "like", nil, `case-insensitive substring filter, e.g. "Matchup=duke"`)
	f.StringVar(&opts.bankroll, "bankroll", "", `bankroll for bet sizing: "1000", or "Bet Size=1000" for one column`)
	f.StringArrayVar(&opts.sort, "sort", nil, `sort order, e.g. "EV %:desc" (repeatable, first wins)`)
	f.StringSliceVar(&opts.columns, "columns", nil, "columns to print, by field or title")
	f.IntVar(&opts.limit, "limit", 0, "print at most n rows (0 = all)")
	f.BoolVar(&opts.refresh, "refresh", false, "drop cached rows before loading")
	f.StringVarP(&opts.output, "output", "o", "table", "output format (table|markdown|csv|json)")

	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "markdown", "csv", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func runShow(cmd *cobra.Command, name string, opts showOptions) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx, configFrom(ctx), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())
	s := rt.session

	preset, known := tables.Lookup(name, s.Bankroll)
	if !known {
		if opts.refresh {
			rt.refresh(ctx, name)
		}
		rows, err := s.Source.Load(ctx, name)
		if err != nil {
			return err
		}
		preset = tables.Infer(name, rows)
	} else if opts.refresh {
		rt.refresh(ctx, preset.Endpoint)
	}

	m := tables.Mount(s, preset)
	defer m.Destroy()
	if err := m.Load(ctx); err != nil {
		return fmt.Errorf("loading %s: %w", preset.Endpoint, err)
	}
	m.LoadValues()

	if err := applyFilters(m, opts); err != nil {
		return err
	}
	m.Flush()

	if len(opts.sort) > 0 {
		sorters, err := parseSorters(preset, opts.sort)
		if err != nil {
			return err
		}
		m.Table.SetSort(sorters...)
	}

	cols, err := selectColumns(preset, opts.columns)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), opts.output, m, cols, opts.limit)
}

func (r *runtime) refresh(ctx context.Context, endpoint string) {
	if err := r.session.Source.Refresh(ctx, endpoint); err != nil {
		r.log.Warn("refresh failed", oddsgrid.Fields{"endpoint": endpoint, "err": err})
	}
}

// splitAssign splits "column=value".
func splitAssign(flag, s string) (string, string, error) {
	col, val, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(col) == "" {
		return "", "", fmt.Errorf("--%s %q: want column=value", flag, s)
	}
	return strings.TrimSpace(col), strings.TrimSpace(val), nil
}

func resolve(p tables.Preset, flag, name string) (tables.ColumnSpec, error) {
	c, ok := p.Resolve(name)
	if !ok {
		return tables.ColumnSpec{}, fmt.Errorf("--%s: table %s has no column %q", flag, p.Name, name)
	}
	return c, nil
}

func applyFilters(m *tables.Mounted, opts showOptions) error {
	p := m.Preset
	for _, spec := range opts.in {
		name, vals, err := splitAssign("in", spec)
		if err != nil {
			return err
		}
		c, err := resolve(p, "in", name)
		if err != nil {
			return err
		}
		sf, ok := m.Sets[c.Field]
		if !ok {
			return fmt.Errorf("--in: column %q has no value list; try --like", c.Field)
		}
		if err := selectOnly(sf, splitList(vals)); err != nil {
			return err
		}
	}

	for _, spec := range opts.ranges {
		name, bounds, err := splitAssign("range", spec)
		if err != nil {
			return err
		}
		c, err := resolve(p, "range", name)
		if err != nil {
			return err
		}
		rf, ok := m.Ranges[c.Field]
		if !ok {
			return fmt.Errorf("--range: column %q is not numeric", c.Field)
		}
		lo, hi, ok := strings.Cut(bounds, ":")
		if !ok {
			return fmt.Errorf("--range %q: want min:max", spec)
		}
		rf.SetMin(lo)
		rf.SetMax(hi)
	}

	for _, spec := range opts.like {
		name, text, err := splitAssign("like", spec)
		if err != nil {
			return err
		}
		c, err := resolve(p, "like", name)
		if err != nil {
			return err
		}
		m.Table.SetHeaderFilterValue(c.Field, text)
	}

	if opts.bankroll != "" {
		return applyBankroll(m, opts.bankroll)
	}
	return nil
}

// selectOnly leaves exactly want selected. Values the column does not hold
// are an error, listing what it does hold.
func selectOnly(sf *widget.SetFilter, want []string) error {
	all := sf.AllValues()
	for _, v := range want {
		if !slices.Contains(all, v) {
			return fmt.Errorf("--in: %q is not a value of %q (have: %s)", v, sf.Field(), quoteAll(all))
		}
	}
	for _, v := range sf.Selected() {
		sf.Toggle(v)
	}
	for _, v := range want {
		if !slices.Contains(sf.Selected(), v) {
			sf.Toggle(v)
		}
	}
	return nil
}

func applyBankroll(m *tables.Mounted, spec string) error {
	if len(m.Bankrolls) == 0 {
		return fmt.Errorf("--bankroll: table %s has no bet size column", m.Preset.Name)
	}
	if name, amount, ok := strings.Cut(spec, "="); ok {
		c, err := resolve(m.Preset, "bankroll", strings.TrimSpace(name))
		if err != nil {
			return err
		}
		b, ok := m.Bankrolls[c.Field]
		if !ok {
			return fmt.Errorf("--bankroll: column %q takes no bankroll", c.Field)
		}
		b.Input(strings.TrimSpace(amount))
		return nil
	}
	for _, b := range m.Bankrolls {
		b.Input(spec)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseSorters reads "column[:asc|desc]"; the column may itself contain ':'.
func parseSorters(p tables.Preset, specs []string) ([]grid.Sorter, error) {
	out := make([]grid.Sorter, 0, len(specs))
	for _, spec := range specs {
		name, dir := spec, grid.Asc
		if i := strings.LastIndex(spec, ":"); i >= 0 {
			switch d := strings.ToLower(strings.TrimSpace(spec[i+1:])); d {
			case "asc":
				name = spec[:i]
			case "desc":
				name, dir = spec[:i], grid.Desc
			}
		}
		c, err := resolve(p, "sort", strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		out = append(out, grid.Sorter{Field: c.Field, Dir: dir})
	}
	return out, nil
}

func selectColumns(p tables.Preset, names []string) ([]tables.ColumnSpec, error) {
	if len(names) == 0 {
		return p.Columns, nil
	}
	out := make([]tables.ColumnSpec, 0, len(names))
	for _, n := range names {
		c, err := resolve(p, "columns", strings.TrimSpace(n))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func quoteAll(vals []string) string {
	q := make([]string, len(vals))
	for i, v := range vals {
		q[i] = strconv.Quote(v)
	}
	return strings.Join(q, ", ")
}
