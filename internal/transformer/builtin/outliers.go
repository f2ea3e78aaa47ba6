package builtin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"tabclean/internal/report"
	"tabclean/internal/schema"
	"tabclean/internal/stats"
	"tabclean/internal/transformer"
	"tabclean/pkg/records"
)

// OutlierPolicy decides what happens to values outside the IQR fence.
type OutlierPolicy string

const (
	OutlierFilter OutlierPolicy = "filter"
	OutlierFlag   OutlierPolicy = "flag"
)

func ParseOutlierPolicy(s string) (OutlierPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "filter", "drop", "remove":
		return OutlierFilter, nil
	case "flag", "mark":
		return OutlierFlag, nil
	default:
		return "", fmt.Errorf("unknown outlier policy %q", s)
	}
}

// OutlierRule treats one numeric column. K <= 0 means 1.5. FlagColumn
// defaults to "<Column>_outlier".
type OutlierRule struct {
	Column     string
	Policy     OutlierPolicy
	K          float64
	FlagColumn string
}

// FlagColumnName is the boolean column the flag policy appends.
func (r OutlierRule) FlagColumnName() string {
	if r.FlagColumn != "" {
		return r.FlagColumn
	}
	return r.Column + "_outlier"
}

// Outliers applies IQR fences per column. All fences are computed against
// the stage input, so filtering one column never shifts another column's
// bounds. Rows whose value is missing are never treated as outliers.
type Outliers struct {
	Rules []OutlierRule
}

func (Outliers) Name() string { return "outliers" }

func (o Outliers) Apply(ctx context.Context, in *records.Snapshot, present schema.Present) (*records.Snapshot, report.Entry, error) {
	entry := report.NewEntry(o.Name(), in.Len())

	var rules []OutlierRule
	for _, r := range o.Rules {
		if !transformer.Available(in, present, r.Column) {
			transformer.NoteAbsent(&entry, r.Column)
			continue
		}
		switch r.Policy {
		case OutlierFilter, OutlierFlag:
		default:
			return nil, entry, &transformer.InvalidStrategyError{Column: r.Column, Strategy: string(r.Policy), Reason: "unknown outlier policy"}
		}
		rules = append(rules, r)
	}

	fences := make([]stats.Fence, len(rules))
	enough := make([]bool, len(rules))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range rules {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			nums, err := numbers(in.Column(r.Column), r.Column, "outlier-"+string(r.Policy))
			if err != nil {
				return err
			}
			f, err := stats.IQRBounds(nums, r.K)
			switch {
			case errors.Is(err, stats.ErrInsufficientData):
				fences[i] = f
				return nil
			case err != nil:
				return fmt.Errorf("column %q: %w", r.Column, err)
			}
			fences[i], enough[i] = f, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, entry, err
	}

	out := in
	for i, r := range rules {
		f := fences[i]
		if !enough[i] {
			entry.Note(report.Notice{
				Kind:    report.NoticeInsufficientData,
				Column:  r.Column,
				Count:   f.N,
				Message: fmt.Sprintf("%d non-missing value(s); at least %d needed for IQR bounds", f.N, stats.MinBoundsSample),
			})
			continue
		}
		b := report.Bounds{Column: r.Column, N: f.N, Q1: f.Q1, Q3: f.Q3, IQR: f.IQR, K: f.K, Lower: f.Lower, Upper: f.Upper}
		entry.Bounds = append(entry.Bounds, b)

		outside := func(rec records.Record) bool {
			x, ok := rec[r.Column].Float()
			return ok && !b.Contains(x)
		}

		switch r.Policy {
		case OutlierFilter:
			var removed int
			out, removed = out.Filter(func(rec records.Record) bool { return !outside(rec) })
			entry.Touch(report.ColumnEffect{Column: r.Column, Action: string(r.Policy), Dropped: removed, Detail: boundsDetail(b)})
		case OutlierFlag:
			flags := make([]records.Value, out.Len())
			flagged := 0
			for j := range flags {
				hit := outside(out.Row(j))
				if hit {
					flagged++
				}
				flags[j] = records.Bool(hit)
			}
			var err error
			if out, err = out.WithColumn(r.FlagColumnName(), flags); err != nil {
				return nil, entry, err
			}
			entry.Touch(report.ColumnEffect{Column: r.Column, Action: string(r.Policy), Flagged: flagged, Detail: boundsDetail(b)})
		}
	}

	entry.Finish(out.Len())
	return out, entry, nil
}

func boundsDetail(b report.Bounds) string {
	return fmt.Sprintf("[%g, %g]", b.Lower, b.Upper)
}
