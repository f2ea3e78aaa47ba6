package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"
)

// Formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Write renders r to w in the given format.
func Write(w io.Writer, r *Report, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return WriteText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}

// WriteText renders a human-oriented summary: before/after shape, one line
// per stage and column, then the skipped-column table and outlier bounds.
func WriteText(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "run %s state=%s duration=%s\n", r.RunID, r.State, r.Duration.Truncate(time.Microsecond))
	fmt.Fprintf(tw, "rows: %d -> %d\n\n", r.Before.Rows, r.After.Rows)

	fmt.Fprintln(tw, "STAGE\tROWS IN\tROWS OUT\tREMOVED\tCOLUMNS")
	for _, e := range r.Entries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", e.Stage, e.RowsIn, e.RowsOut, e.RowsRemoved, strings.Join(e.ColumnsTouched(), ","))
	}

	fmt.Fprintln(tw, "\nSTAGE\tCOLUMN\tACTION\tFILLED\tDROPPED\tCHANGED\tFAILURES\tFLAGGED\tDETAIL")
	for _, e := range r.Entries {
		for _, c := range e.Columns {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
				e.Stage, c.Column, c.Action, c.Filled, c.Dropped, c.Changed, c.Failures, c.Flagged, c.Detail)
		}
	}

	if skips := r.SkippedColumns(); len(skips) > 0 {
		fmt.Fprintln(tw, "\nSTAGE\tCOLUMN\tREASON\tCOUNT")
		for _, s := range skips {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.Stage, s.Column, s.Reason, s.Count)
		}
	}

	if len(r.Bounds) > 0 {
		fmt.Fprintln(tw, "\nCOLUMN\tN\tQ1\tQ3\tIQR\tLOWER\tUPPER")
		for _, b := range r.Bounds {
			fmt.Fprintf(tw, "%s\t%d\t%g\t%g\t%g\t%g\t%g\n", b.Column, b.N, b.Q1, b.Q3, b.IQR, b.Lower, b.Upper)
		}
	}

	fmt.Fprintln(tw, "\nCOLUMN\tKIND\tMISSING BEFORE\tMISSING AFTER")
	after := make(map[string]ColumnSummary, len(r.After.Columns))
	for _, c := range r.After.Columns {
		after[c.Name] = c
	}
	for _, c := range r.Before.Columns {
		a, ok := after[c.Name]
		if !ok {
			fmt.Fprintf(tw, "%s\t%s\t%.2f%%\t-\n", c.Name, c.Kind, c.MissingPct)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f%%\t%.2f%%\n", c.Name, a.Kind, c.MissingPct, a.MissingPct)
	}
	return tw.Flush()
}
