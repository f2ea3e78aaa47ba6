package builtin

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"tabclean/internal/report"
	"tabclean/internal/schema"
	"tabclean/internal/stats"
	"tabclean/internal/transformer"
	"tabclean/pkg/records"
)

// Strategy selects how missing values of a column are treated.
type Strategy string

const (
	StrategyMedian  Strategy = "median"
	StrategyMean    Strategy = "mean"
	StrategyMode    Strategy = "mode"
	StrategyDropRow Strategy = "drop-row"
)

// ParseStrategy maps user input onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "median":
		return StrategyMedian, nil
	case "mean", "average":
		return StrategyMean, nil
	case "mode", "most-frequent":
		return StrategyMode, nil
	case "drop-row", "drop", "dropna":
		return StrategyDropRow, nil
	default:
		return "", fmt.Errorf("unknown imputation strategy %q", s)
	}
}

// Numeric reports whether the strategy needs numeric values.
func (s Strategy) Numeric() bool { return s == StrategyMedian || s == StrategyMean }

// ImputeRule binds a strategy to a column.
type ImputeRule struct {
	Column   string
	Strategy Strategy
}

// Impute fills or drops missing values per column.
//
// Median and mean are computed over the input, before any drop-row rule
// removes rows. Mode is computed over the rows that survive the drops. All
// fill values are computed concurrently and applied afterwards; no fill sees
// another's output.
type Impute struct {
	Rules []ImputeRule
}

func (Impute) Name() string { return "impute" }

func (im Impute) Apply(ctx context.Context, in *records.Snapshot, present schema.Present) (*records.Snapshot, report.Entry, error) {
	entry := report.NewEntry(im.Name(), in.Len())

	var drop []string
	var fills []ImputeRule
	for _, r := range im.Rules {
		if !transformer.Available(in, present, r.Column) {
			transformer.NoteAbsent(&entry, r.Column)
			continue
		}
		switch r.Strategy {
		case StrategyDropRow:
			drop = append(drop, r.Column)
		case StrategyMedian, StrategyMean, StrategyMode:
			fills = append(fills, r)
		default:
			return nil, entry, &transformer.InvalidStrategyError{Column: r.Column, Strategy: string(r.Strategy), Reason: "unknown strategy"}
		}
	}

	out := in
	if len(drop) > 0 {
		var dropped map[string]int
		out, dropped = Require{Fields: drop}.Apply(in)
		for _, c := range drop {
			entry.Touch(report.ColumnEffect{Column: c, Action: string(StrategyDropRow), Dropped: dropped[c]})
		}
	}

	values := make([]records.Value, len(fills))
	found := make([]bool, len(fills))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range fills {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src := out
			if r.Strategy.Numeric() {
				src = in
			}
			v, ok, err := fillValue(src.Column(r.Column), r)
			values[i], found[i] = v, ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, entry, err
	}

	for i, r := range fills {
		if !found[i] {
			entry.Note(report.Notice{
				Kind:    report.NoticeNoData,
				Column:  r.Column,
				Count:   out.MissingCount(r.Column),
				Message: fmt.Sprintf("no non-missing values to compute %s", r.Strategy),
			})
			continue
		}
		fill := values[i]
		var filled int
		out, filled = out.MapColumn(r.Column, func(v records.Value) records.Value {
			if v.IsMissing() {
				return fill
			}
			return v
		})
		entry.Touch(report.ColumnEffect{Column: r.Column, Action: string(r.Strategy), Filled: filled, Detail: fill.String()})
	}

	entry.Finish(out.Len())
	return out, entry, nil
}

// fillValue computes the replacement for missing values of one column. ok is
// false when the column has no non-missing value at all.
func fillValue(col []records.Value, r ImputeRule) (records.Value, bool, error) {
	if r.Strategy == StrategyMode {
		v, ok := Mode(col)
		return v, ok, nil
	}
	nums, err := numbers(col, r.Column, string(r.Strategy))
	if err != nil {
		return records.Missing(), false, err
	}
	if len(nums) == 0 {
		return records.Missing(), false, nil
	}
	var f float64
	if r.Strategy == StrategyMedian {
		f, err = stats.Median(nums)
	} else {
		f, err = stats.Mean(nums)
	}
	if err != nil {
		return records.Missing(), false, err
	}
	return records.Number(f), true, nil
}

// numbers extracts the non-missing values of a column, which must all be
// numbers.
func numbers(col []records.Value, column, strategy string) ([]float64, error) {
	out := make([]float64, 0, len(col))
	for i, v := range col {
		if v.IsMissing() {
			continue
		}
		f, ok := v.Float()
		if !ok {
			return nil, &transformer.InvalidStrategyError{
				Column:   column,
				Strategy: strategy,
				Reason:   fmt.Sprintf("row %d holds a %s value %q", i, v.Kind(), v.String()),
			}
		}
		out = append(out, f)
	}
	return out, nil
}

// Mode returns the most frequent non-missing value. Ties go to the value
// encountered first in row order.
func Mode(col []records.Value) (records.Value, bool) {
	type tally struct {
		v     records.Value
		count int
	}
	index := make(map[string]int)
	var order []tally
	var key []byte
	for _, v := range col {
		if v.IsMissing() {
			continue
		}
		key = v.AppendKey(key[:0])
		if i, ok := index[string(key)]; ok {
			order[i].count++
			continue
		}
		index[string(key)] = len(order)
		order = append(order, tally{v: v, count: 1})
	}
	if len(order) == 0 {
		return records.Missing(), false
	}
	best := order[0]
	for _, t := range order[1:] {
		if t.count > best.count {
			best = t
		}
	}
	return best.v, true
}
