package ddl

import (
	"strings"
	"testing"

	"tabclean/pkg/records"
)

func quote(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		style       Style
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty FQN returns error",
			def:         TableDef{Columns: []ColumnDef{{Name: "id", SQLType: "INT"}}},
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns returns error",
			def:         TableDef{FQN: "public.t"},
			errContains: "at least one column is required",
		},
		{
			name:        "column with empty name returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{SQLType: "INT"}}},
			errContains: "column with empty name",
		},
		{
			name:        "column without type returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			errContains: "missing SQLType",
		},
		{
			name: "plain style",
			def: TableDef{FQN: "t", Columns: []ColumnDef{
				{Name: "id", SQLType: "INT", PrimaryKey: true, Nullable: true},
				{Name: "name", SQLType: "TEXT", Nullable: true, Default: "'anon'"},
			}},
			wantSQL: "CREATE TABLE t (\n  id INT NOT NULL,\n  name TEXT DEFAULT 'anon',\n  PRIMARY KEY (id)\n);",
		},
		{
			name:  "quoted qualified name",
			def:   TableDef{FQN: "public.my table", Columns: []ColumnDef{{Name: `we"ird`, SQLType: "TEXT"}}},
			style: Style{Quote: quote, IfNotExists: true},
			wantSQL: "CREATE TABLE IF NOT EXISTS \"public\".\"my table\" (\n" +
				"  \"we\"\"ird\" TEXT NOT NULL\n);",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildCreateTableSQL(tc.def, tc.style)
			if tc.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tc.errContains) {
					t.Fatalf("err = %v, want containing %q", err, tc.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.wantSQL {
				t.Fatalf("SQL mismatch\n got: %q\nwant: %q", got, tc.wantSQL)
			}
		})
	}
}

func TestFromSnapshot(t *testing.T) {
	t.Parallel()

	s := records.MustSnapshot([]string{"id", "name", "mixed", "empty", "flag"}, []records.Record{
		{"id": records.Number(1), "name": records.String("a"), "mixed": records.Number(1), "flag": records.Bool(true)},
		{"id": records.Number(2), "mixed": records.String("x")},
	})
	mapKind := func(k records.Kind) string { return strings.ToUpper(k.String()) }

	def, err := FromSnapshot("people", s, mapKind)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	want := []string{"NUMBER", "STRING", "STRING", "STRING", "BOOL"}
	if len(def.Columns) != len(want) {
		t.Fatalf("columns = %d, want %d", len(def.Columns), len(want))
	}
	for i, c := range def.Columns {
		if c.SQLType != want[i] || !c.Nullable {
			t.Errorf("column %s = %+v, want type %s nullable", c.Name, c, want[i])
		}
	}

	if _, err := FromSnapshot("", s, mapKind); err == nil {
		t.Error("expected error for empty table")
	}
}
