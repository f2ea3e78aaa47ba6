package ddl

// ColumnDef describes a single column of a TableDef. Name is unquoted;
// quoting happens at render time.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name, in dotted form when schema-qualified, and
// the ordered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
