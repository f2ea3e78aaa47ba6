package records

import "fmt"

// Record is one row keyed by column name.
type Record map[string]Value

// Clone returns a shallow copy of r. Values are immutable, so this is a full
// copy for all practical purposes.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Snapshot is an ordered set of rows sharing one ordered column set. A
// Snapshot is never modified after construction; every helper that changes
// data returns a new Snapshot and clones only the rows it rewrites, so rows
// may be shared between consecutive snapshots.
type Snapshot struct {
	columns []string
	index   map[string]int
	rows    []Record
}

// NewSnapshot validates and copies rows into a new Snapshot. Keys absent from
// a row are filled with Missing; keys not listed in columns are an error.
func NewSnapshot(columns []string, rows []Record) (*Snapshot, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if c == "" {
			return nil, fmt.Errorf("records: column %d has an empty name", i)
		}
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("records: duplicate column %q", c)
		}
		index[c] = i
	}
	out := make([]Record, len(rows))
	for i, r := range rows {
		for k := range r {
			if _, ok := index[k]; !ok {
				return nil, fmt.Errorf("records: row %d has undeclared column %q", i, k)
			}
		}
		rec := make(Record, len(columns))
		for _, c := range columns {
			rec[c] = r[c]
		}
		out[i] = rec
	}
	return &Snapshot{columns: append([]string(nil), columns...), index: index, rows: out}, nil
}

// MustSnapshot is NewSnapshot for fixtures; it panics on error.
func MustSnapshot(columns []string, rows []Record) *Snapshot {
	s, err := NewSnapshot(columns, rows)
	if err != nil {
		panic(err)
	}
	return s
}

// derive builds a snapshot that shares the column metadata of s.
func (s *Snapshot) derive(rows []Record) *Snapshot {
	return &Snapshot{columns: s.columns, index: s.index, rows: rows}
}

// Len returns the number of rows.
func (s *Snapshot) Len() int { return len(s.rows) }

// Columns returns a copy of the ordered column names.
func (s *Snapshot) Columns() []string { return append([]string(nil), s.columns...) }

// Has reports whether column exists in s.
func (s *Snapshot) Has(column string) bool {
	_, ok := s.index[column]
	return ok
}

// Row returns row i. Callers must treat the result as read-only.
func (s *Snapshot) Row(i int) Record { return s.rows[i] }

// Rows returns the row slice. Callers must treat the rows as read-only.
func (s *Snapshot) Rows() []Record { return append([]Record(nil), s.rows...) }

// Column returns the values of column in row order, or nil if absent.
func (s *Snapshot) Column(column string) []Value {
	if !s.Has(column) {
		return nil
	}
	out := make([]Value, len(s.rows))
	for i, r := range s.rows {
		out[i] = r[column]
	}
	return out
}

// MissingCount returns how many rows have a missing value in column.
func (s *Snapshot) MissingCount(column string) int {
	if !s.Has(column) {
		return 0
	}
	n := 0
	for _, r := range s.rows {
		if r[column].IsMissing() {
			n++
		}
	}
	return n
}

// Filter returns the rows for which keep returns true, plus the number of rows
// removed.
func (s *Snapshot) Filter(keep func(Record) bool) (*Snapshot, int) {
	out := make([]Record, 0, len(s.rows))
	for _, r := range s.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return s.derive(out), len(s.rows) - len(out)
}

// MapColumn rewrites column through fn and returns the new snapshot plus the
// number of values that changed. An absent column yields s unchanged.
func (s *Snapshot) MapColumn(column string, fn func(Value) Value) (*Snapshot, int) {
	if !s.Has(column) {
		return s, 0
	}
	out := make([]Record, len(s.rows))
	changed := 0
	for i, r := range s.rows {
		old := r[column]
		nv := fn(old)
		if nv.Equal(old) {
			out[i] = r
			continue
		}
		c := r.Clone()
		c[column] = nv
		out[i] = c
		changed++
	}
	return s.derive(out), changed
}

// WithColumn returns a snapshot where column holds values, one per row. The
// column is appended when new and replaced in place otherwise.
func (s *Snapshot) WithColumn(column string, values []Value) (*Snapshot, error) {
	if column == "" {
		return nil, fmt.Errorf("records: empty column name")
	}
	if len(values) != len(s.rows) {
		return nil, fmt.Errorf("records: column %q has %d values for %d rows", column, len(values), len(s.rows))
	}
	cols, index := s.columns, s.index
	if !s.Has(column) {
		cols = append(append(make([]string, 0, len(s.columns)+1), s.columns...), column)
		index = make(map[string]int, len(cols))
		for i, c := range cols {
			index[c] = i
		}
	}
	out := make([]Record, len(s.rows))
	for i, r := range s.rows {
		c := r.Clone()
		c[column] = values[i]
		out[i] = c
	}
	return &Snapshot{columns: cols, index: index, rows: out}, nil
}

// Equal reports whether s and o have the same columns in the same order and
// pairwise Equal rows.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if len(s.columns) != len(o.columns) || len(s.rows) != len(o.rows) {
		return false
	}
	for i, c := range s.columns {
		if o.columns[i] != c {
			return false
		}
	}
	for i := range s.rows {
		for _, c := range s.columns {
			if !s.rows[i][c].Equal(o.rows[i][c]) {
				return false
			}
		}
	}
	return true
}
