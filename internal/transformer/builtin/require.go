// Package builtin contains the concrete cleaning stages: imputation,
// de-duplication, type coercion, text normalization, outlier treatment and
// bucketing.
package builtin

import "tabclean/pkg/records"

// Require removes any record with a missing value in one of Fields.
type Require struct {
	Fields []string
}

// Apply returns the surviving rows and, per field, how many rows were dropped
// because of it. A row missing several fields is charged to the first one in
// Fields order. Fields absent from the snapshot are ignored.
func (r Require) Apply(in *records.Snapshot) (*records.Snapshot, map[string]int) {
	dropped := make(map[string]int, len(r.Fields))
	fields := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		if in.Has(f) {
			fields = append(fields, f)
			dropped[f] = 0
		}
	}
	if len(fields) == 0 {
		return in, dropped
	}
	out, _ := in.Filter(func(rec records.Record) bool {
		for _, f := range fields {
			if rec[f].IsMissing() {
				dropped[f]++
				return false
			}
		}
		return true
	})
	return out, dropped
}
