package mssql

import (
	"context"
	"strings"
	"testing"

	"tabclean/internal/ddl"
	"tabclean/internal/storage"
	"tabclean/pkg/records"
)

func TestCreateTableSQL(t *testing.T) {
	got, err := CreateTableSQL(ddl.TableDef{FQN: "dbo.customers", Columns: []ddl.ColumnDef{
		{Name: "Age", SQLType: MapKind(records.KindNumber), Nullable: true},
		{Name: "is]premium", SQLType: MapKind(records.KindBool), Nullable: true},
	}})
	if err != nil {
		t.Fatal(err)
	}
	want := "IF OBJECT_ID(N'[dbo].[customers]', N'U') IS NULL\n" +
		"CREATE TABLE [dbo].[customers] (\n  [Age] FLOAT,\n  [is]]premium] BIT\n);"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestFactoryUsesHook(t *testing.T) {
	var got Config
	orig := newRepository
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		got = cfg
		return &Repository{cfg: cfg}, func() {}, nil
	}
	t.Cleanup(func() { newRepository = orig })

	repo, err := storage.New(context.Background(), storage.Config{Kind: "mssql", DSN: "sqlserver://sa@db", Table: "dbo.customers"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()
	if got.Table != "dbo.customers" || !strings.HasPrefix(got.DSN, "sqlserver://") {
		t.Fatalf("config = %+v", got)
	}
	if n, err := repo.CopyFrom(context.Background(), []string{"a"}, nil); n != 0 || err != nil {
		t.Fatalf("empty CopyFrom = %d, %v", n, err)
	}
}

func TestMapKind(t *testing.T) {
	cases := map[records.Kind]string{
		records.KindNumber: "FLOAT",
		records.KindBool:   "BIT",
		records.KindDate:   "DATETIME2",
		records.KindString: "NVARCHAR(MAX)",
	}
	for k, want := range cases {
		if got := MapKind(k); got != want {
			t.Errorf("MapKind(%s) = %s, want %s", k, got, want)
		}
	}
}
