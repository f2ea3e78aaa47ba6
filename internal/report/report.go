// Package report holds the action log produced by a pipeline run: one Entry
// per stage, per-column effects and notices, outlier bounds, and before/after
// summaries of the table. It is format-agnostic; render.go turns it into
// text, JSON or YAML for display.
package report

import (
	"time"

	"tabclean/pkg/records"
)

// NoticeKind classifies recoverable conditions. They never stop a run.
type NoticeKind string

const (
	// NoticeMissingColumn: a declared column is absent from the snapshot.
	NoticeMissingColumn NoticeKind = "missing-column"
	// NoticeInsufficientData: too few values to compute outlier bounds.
	NoticeInsufficientData NoticeKind = "insufficient-data"
	// NoticeCoercionFailure: values turned into the missing marker by coercion.
	NoticeCoercionFailure NoticeKind = "coercion-failure"
	// NoticeNoData: a column has no non-missing value to derive a fill from.
	NoticeNoData NoticeKind = "no-data"
	// NoticeColumnReplaced: a derived column overwrote one already in the data.
	NoticeColumnReplaced NoticeKind = "column-replaced"
)

// Notice is a recoverable, per-column condition recorded by a stage.
type Notice struct {
	Kind    NoticeKind `json:"kind" yaml:"kind"`
	Column  string     `json:"column" yaml:"column"`
	Count   int        `json:"count,omitempty" yaml:"count,omitempty"`
	Message string     `json:"message,omitempty" yaml:"message,omitempty"`
}

// ColumnEffect records what a stage did to one column.
type ColumnEffect struct {
	Column   string `json:"column" yaml:"column"`
	Action   string `json:"action" yaml:"action"`
	Filled   int    `json:"filled,omitempty" yaml:"filled,omitempty"`
	Dropped  int    `json:"dropped,omitempty" yaml:"dropped,omitempty"`
	Changed  int    `json:"changed,omitempty" yaml:"changed,omitempty"`
	Failures int    `json:"failures,omitempty" yaml:"failures,omitempty"`
	Flagged  int    `json:"flagged,omitempty" yaml:"flagged,omitempty"`
	// Detail is a short free-form note, e.g. the fill value.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Entry is the log record of one stage run. Entries are appended to a Report
// and never modified afterwards.
type Entry struct {
	Stage       string         `json:"stage" yaml:"stage"`
	RowsIn      int            `json:"rows_in" yaml:"rows_in"`
	RowsOut     int            `json:"rows_out" yaml:"rows_out"`
	RowsRemoved int            `json:"rows_removed" yaml:"rows_removed"`
	Columns     []ColumnEffect `json:"columns,omitempty" yaml:"columns,omitempty"`
	Notices     []Notice       `json:"notices,omitempty" yaml:"notices,omitempty"`
	Bounds      []Bounds       `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Duration    time.Duration  `json:"duration" yaml:"duration"`
}

// NewEntry starts an entry for stage over a snapshot of rowsIn rows.
func NewEntry(stage string, rowsIn int) Entry {
	return Entry{Stage: stage, RowsIn: rowsIn, RowsOut: rowsIn}
}

// Touch records a column effect.
func (e *Entry) Touch(eff ColumnEffect) { e.Columns = append(e.Columns, eff) }

// Note records a notice.
func (e *Entry) Note(n Notice) { e.Notices = append(e.Notices, n) }

// Finish sets the row counts from the output snapshot size.
func (e *Entry) Finish(rowsOut int) {
	e.RowsOut = rowsOut
	e.RowsRemoved = e.RowsIn - rowsOut
}

// ColumnsTouched returns the column names the stage acted on, in order.
func (e Entry) ColumnsTouched() []string {
	out := make([]string, 0, len(e.Columns))
	for _, c := range e.Columns {
		out = append(out, c.Column)
	}
	return out
}

// Effect returns the effect recorded for column, if any.
func (e Entry) Effect(column string) (ColumnEffect, bool) {
	for _, c := range e.Columns {
		if c.Column == column {
			return c, true
		}
	}
	return ColumnEffect{}, false
}

// Bounds are the IQR outlier bounds of one numeric column.
type Bounds struct {
	Column string  `json:"column" yaml:"column"`
	N      int     `json:"n" yaml:"n"`
	Q1     float64 `json:"q1" yaml:"q1"`
	Q3     float64 `json:"q3" yaml:"q3"`
	IQR    float64 `json:"iqr" yaml:"iqr"`
	K      float64 `json:"k" yaml:"k"`
	Lower  float64 `json:"lower" yaml:"lower"`
	Upper  float64 `json:"upper" yaml:"upper"`
}

// Contains reports whether x lies within [Lower, Upper].
func (b Bounds) Contains(x float64) bool { return x >= b.Lower && x <= b.Upper }

// ColumnSummary is the missing-value profile of one column.
type ColumnSummary struct {
	Name       string  `json:"name" yaml:"name"`
	Kind       string  `json:"kind" yaml:"kind"`
	Missing    int     `json:"missing" yaml:"missing"`
	MissingPct float64 `json:"missing_pct" yaml:"missing_pct"`
}

// Summary describes a snapshot at one point of the run.
type Summary struct {
	Rows    int             `json:"rows" yaml:"rows"`
	Columns []ColumnSummary `json:"columns" yaml:"columns"`
}

// Summarize computes row count and per-column missing percentages. Kind is
// the single runtime kind of the non-missing values, or "mixed".
func Summarize(s *records.Snapshot) Summary {
	out := Summary{Rows: s.Len()}
	for _, c := range s.Columns() {
		cs := ColumnSummary{Name: c, Kind: records.KindMissing.String()}
		var kind records.Kind
		mixed := false
		for _, v := range s.Column(c) {
			if v.IsMissing() {
				cs.Missing++
				continue
			}
			switch {
			case kind == records.KindMissing:
				kind = v.Kind()
			case kind != v.Kind():
				mixed = true
			}
		}
		if mixed {
			cs.Kind = "mixed"
		} else {
			cs.Kind = kind.String()
		}
		if out.Rows > 0 {
			cs.MissingPct = float64(cs.Missing) * 100 / float64(out.Rows)
		}
		out.Columns = append(out.Columns, cs)
	}
	return out
}

// Report is the complete, ordered action log of one pipeline run.
type Report struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	Job       string        `json:"job,omitempty" yaml:"job,omitempty"`
	State     string        `json:"state" yaml:"state"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Before    Summary       `json:"before" yaml:"before"`
	After     Summary       `json:"after" yaml:"after"`
	Entries   []Entry       `json:"entries" yaml:"entries"`
	Bounds    []Bounds      `json:"bounds,omitempty" yaml:"bounds,omitempty"`
}

// Append adds e to the log.
func (r *Report) Append(e Entry) { r.Entries = append(r.Entries, e) }

// Entry returns the first entry for stage.
func (r *Report) Entry(stage string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Stage == stage {
			return e, true
		}
	}
	return Entry{}, false
}

// Skip is one traceable data-quality issue: a column a stage could not fully
// act on, and why.
type Skip struct {
	Stage  string     `json:"stage" yaml:"stage"`
	Column string     `json:"column" yaml:"column"`
	Reason NoticeKind `json:"reason" yaml:"reason"`
	Count  int        `json:"count,omitempty" yaml:"count,omitempty"`
}

// SkippedColumns flattens every notice of every entry, so absence, insufficient data
// and value-level coercion failures stay distinguishable per column.
func (r *Report) SkippedColumns() []Skip {
	var out []Skip
	for _, e := range r.Entries {
		for _, n := range e.Notices {
			out = append(out, Skip{Stage: e.Stage, Column: n.Column, Reason: n.Kind, Count: n.Count})
		}
	}
	return out
}
