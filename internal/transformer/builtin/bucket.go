package builtin

import (
	"context"
	"fmt"
	"math"

	"tabclean/internal/report"
	"tabclean/internal/schema"
	"tabclean/internal/transformer"
	"tabclean/pkg/records"
)

// BucketRule maps a numeric source column onto labelled bins. Bins are
// half-open [Edges[i], Edges[i+1]) except the last, which includes its upper
// edge. Target defaults to "<Column>_bucket".
type BucketRule struct {
	Column string
	Target string
	Edges  []float64
	Labels []string
}

func (r BucketRule) TargetColumn() string {
	if r.Target != "" {
		return r.Target
	}
	return r.Column + "_bucket"
}

// Validate checks the edge/label shape. Errors match ErrInvalidBuckets.
func (r BucketRule) Validate() error {
	if len(r.Edges) < 2 {
		return fmt.Errorf("column %q: %w: need at least 2 edges, got %d", r.Column, transformer.ErrInvalidBuckets, len(r.Edges))
	}
	if len(r.Labels) != len(r.Edges)-1 {
		return fmt.Errorf("column %q: %w: %d edges need %d labels, got %d",
			r.Column, transformer.ErrInvalidBuckets, len(r.Edges), len(r.Edges)-1, len(r.Labels))
	}
	for i, e := range r.Edges {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return fmt.Errorf("column %q: %w: edge %d is not finite", r.Column, transformer.ErrInvalidBuckets, i)
		}
		if i > 0 && e <= r.Edges[i-1] {
			return fmt.Errorf("column %q: %w: edges must be strictly increasing (%g after %g)",
				r.Column, transformer.ErrInvalidBuckets, e, r.Edges[i-1])
		}
	}
	if r.TargetColumn() == r.Column {
		return fmt.Errorf("column %q: %w: target must differ from source", r.Column, transformer.ErrInvalidBuckets)
	}
	return nil
}

// Label returns the label for x, or false when x lies outside every bin.
func (r BucketRule) Label(x float64) (string, bool) {
	n := len(r.Edges)
	if n < 2 || x < r.Edges[0] || x > r.Edges[n-1] {
		return "", false
	}
	for i := 0; i < n-1; i++ {
		if x < r.Edges[i+1] {
			return r.Labels[i], true
		}
	}
	return r.Labels[n-2], true
}

// Bucketize appends one derived category column per rule. Missing,
// non-numeric and out-of-range source values map to Missing. Source columns
// are never modified. A target column already in the data is replaced and
// noted.
type Bucketize struct {
	Rules []BucketRule
}

func (Bucketize) Name() string { return "bucketize" }

func (b Bucketize) Apply(ctx context.Context, in *records.Snapshot, present schema.Present) (*records.Snapshot, report.Entry, error) {
	entry := report.NewEntry(b.Name(), in.Len())
	out := in
	for _, r := range b.Rules {
		if err := ctx.Err(); err != nil {
			return nil, entry, err
		}
		if err := r.Validate(); err != nil {
			return nil, entry, err
		}
		if !transformer.Available(in, present, r.Column) {
			transformer.NoteAbsent(&entry, r.Column)
			continue
		}
		values := make([]records.Value, out.Len())
		assigned := 0
		for i := range values {
			values[i] = records.Missing()
			x, ok := out.Row(i)[r.Column].Float()
			if !ok {
				continue
			}
			if label, ok := r.Label(x); ok {
				values[i] = records.String(label)
				assigned++
			}
		}
		if out.Has(r.TargetColumn()) {
			entry.Note(report.Notice{
				Kind:    report.NoticeColumnReplaced,
				Column:  r.TargetColumn(),
				Count:   out.Len() - out.MissingCount(r.TargetColumn()),
				Message: fmt.Sprintf("existing column %q replaced by buckets of %q", r.TargetColumn(), r.Column),
			})
		}
		var err error
		if out, err = out.WithColumn(r.TargetColumn(), values); err != nil {
			return nil, entry, err
		}
		entry.Touch(report.ColumnEffect{
			Column:  r.TargetColumn(),
			Action:  "bucketize:" + r.Column,
			Changed: assigned,
			Detail:  fmt.Sprintf("%d unassigned", len(values)-assigned),
		})
	}
	entry.Finish(out.Len())
	return out, entry, nil
}
