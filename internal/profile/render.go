package profile

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Write renders p as text, json or yaml.
func Write(w io.Writer, p *Profile, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return WriteText(w, p)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonSafe(p))
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("profile: unknown format %q", format)
	}
}

// WriteText prints the shape, the per-column quality table and the two
// describe tables.
func WriteText(w io.Writer, p *Profile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "shape: %d rows x %d columns\n", p.Rows, len(p.Columns))
	fmt.Fprintf(tw, "exact duplicate rows: %d\n\n", p.Duplicates)

	fmt.Fprintln(tw, "COLUMN\tKINDS\tMISSING\t% MISSING")
	for _, c := range p.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\n", c.Name, kindList(c.Kinds), c.Missing, c.MissingPct)
	}

	var header bool
	for _, c := range p.Columns {
		d := c.Numeric
		if d == nil {
			continue
		}
		if !header {
			fmt.Fprintln(tw, "\nCOLUMN\tCOUNT\tMEAN\tSTD\tMIN\t25%\t50%\t75%\tMAX")
			header = true
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Name, d.Count, num(d.Mean), num(d.Std), num(d.Min), num(d.P25), num(d.P50), num(d.P75), num(d.Max))
	}

	header = false
	for _, c := range p.Columns {
		d := c.Categorical
		if d == nil {
			continue
		}
		if !header {
			fmt.Fprintln(tw, "\nCOLUMN\tCOUNT\tUNIQUE\tTOP\tFREQ")
			header = true
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%d\n", c.Name, d.Count, d.Unique, d.Top, d.Freq)
	}
	return tw.Flush()
}

// kindList renders the kind mix in a stable order, e.g. "number:3 string:1".
func kindList(kinds map[string]int) string {
	if len(kinds) == 0 {
		return "-"
	}
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s:%d", k, kinds[k])
	}
	return strings.Join(parts, " ")
}

func num(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", f)
}

// jsonSafe zeroes NaN standard deviations, which encoding/json rejects.
func jsonSafe(p *Profile) *Profile {
	out := *p
	out.Columns = make([]Column, len(p.Columns))
	for i, c := range p.Columns {
		if c.Numeric != nil && math.IsNaN(c.Numeric.Std) {
			d := *c.Numeric
			d.Std = 0
			c.Numeric = &d
		}
		out.Columns[i] = c
	}
	return &out
}
