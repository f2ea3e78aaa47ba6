// Package ddl defines a small, backend-agnostic model for SQL DDL, infers it
// from a snapshot, and renders CREATE TABLE statements from it.
//
// Backends (internal/storage/sqlite, postgres, mssql) supply a Style for
// identifier quoting and map value kinds to their own SQL types.
package ddl

import (
	"fmt"
	"strings"
)

// Style controls dialect details of BuildCreateTableSQL.
type Style struct {
	// Quote quotes one identifier segment. Nil emits names as-is.
	Quote func(string) string
	// IfNotExists adds IF NOT EXISTS after CREATE TABLE.
	IfNotExists bool
}

func (s Style) ident(name string) string {
	if s.Quote == nil {
		return name
	}
	return s.Quote(name)
}

// QualifiedName quotes each dot-separated segment of fqn.
func (s Style) QualifiedName(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, s.ident(p))
		}
	}
	return strings.Join(out, ".")
}

// BuildCreateTableSQL renders
//
//	CREATE TABLE [IF NOT EXISTS] <FQN> (
//	  <col> <TYPE> [NOT NULL] [DEFAULT <expr>],
//	  ...,
//	  [PRIMARY KEY (<pk-cols>)]
//	);
//
// Primary-key columns are always NOT NULL. Default is emitted as raw SQL.
func BuildCreateTableSQL(t TableDef, st Style) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(st.ident(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())
		if c.PrimaryKey {
			pks = append(pks, st.ident(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	create := "CREATE TABLE"
	if st.IfNotExists {
		create += " IF NOT EXISTS"
	}
	return fmt.Sprintf("%s %s (\n  %s\n);", create, st.QualifiedName(fqn), strings.Join(cols, ",\n  ")), nil
}
