package ddl

import (
	"fmt"

	"tabclean/pkg/records"
)

// ColumnKind is the single kind of the non-missing values of column.
// Mixed and all-missing columns are reported as KindString, which every
// dialect can store.
func ColumnKind(s *records.Snapshot, column string) records.Kind {
	kind := records.KindMissing
	for _, v := range s.Column(column) {
		switch {
		case v.IsMissing():
		case kind == records.KindMissing:
			kind = v.Kind()
		case kind != v.Kind():
			return records.KindString
		}
	}
	if kind == records.KindMissing {
		return records.KindString
	}
	return kind
}

// FromSnapshot builds a table definition with one nullable column per
// snapshot column, typed by mapKind.
func FromSnapshot(table string, s *records.Snapshot, mapKind func(records.Kind) string) (TableDef, error) {
	if table == "" {
		return TableDef{}, fmt.Errorf("ddl: missing table")
	}
	if mapKind == nil {
		return TableDef{}, fmt.Errorf("ddl: no type mapping")
	}
	def := TableDef{FQN: table}
	for _, c := range s.Columns() {
		def.Columns = append(def.Columns, ColumnDef{Name: c, SQLType: mapKind(ColumnKind(s, c)), Nullable: true})
	}
	return def, nil
}
