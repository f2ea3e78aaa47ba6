// Package transformer defines the contract shared by every cleaning stage.
//
// A Stage consumes one immutable snapshot and produces a new snapshot plus
// exactly one report entry. Stages never modify their input, never retain it
// after returning, and only act on columns present in the snapshot; declared
// but absent columns produce a missing-column notice and are otherwise a
// no-op. Concrete stages live in the builtin subpackage.
package transformer

import (
	"context"

	"tabclean/internal/report"
	"tabclean/internal/schema"
	"tabclean/pkg/records"
)

// Stage is one step of the cleaning pipeline.
type Stage interface {
	// Name is the stable stage name used in logs, metrics and reports.
	Name() string
	// Apply runs the stage. present is the set of declared columns that exist
	// in 'in'; stages must not rely on any other column existing. A non-nil
	// error is fatal for the run.
	Apply(ctx context.Context, in *records.Snapshot, present schema.Present) (*records.Snapshot, report.Entry, error)
}

// NoteAbsent records that column was configured for e's stage but is not in
// the snapshot.
func NoteAbsent(e *report.Entry, column string) {
	e.Note(report.Notice{
		Kind:    report.NoticeMissingColumn,
		Column:  column,
		Message: "column not present in dataset; skipped",
	})
}

// Available reports whether column can be acted on: it must be in present
// when present is non-nil, and it must exist in the snapshot either way.
func Available(in *records.Snapshot, present schema.Present, column string) bool {
	if present != nil && !present.Has(column) {
		return false
	}
	return in.Has(column)
}
