package postgres

import (
	"context"
	"errors"
	"testing"

	"tabclean/internal/ddl"
	"tabclean/internal/storage"
	"tabclean/pkg/records"
)

func TestFactoryUsesHook(t *testing.T) {
	want := errors.New("no database here")
	var got Config
	orig := newRepository
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		got = cfg
		return nil, nil, want
	}
	t.Cleanup(func() { newRepository = orig })

	_, err := storage.New(context.Background(), storage.Config{Kind: "postgres", DSN: "postgres://x", Table: "public.customers"})
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
	if got.DSN != "postgres://x" || got.Table != "public.customers" {
		t.Fatalf("config = %+v", got)
	}
}

func TestCreateTableSQL(t *testing.T) {
	got, err := CreateTableSQL(ddl.TableDef{FQN: "public.customers", Columns: []ddl.ColumnDef{
		{Name: "Age", SQLType: MapKind(records.KindNumber), Nullable: true},
		{Name: "is_premium", SQLType: MapKind(records.KindBool), Nullable: true},
		{Name: "registration_date", SQLType: MapKind(records.KindDate), Nullable: true},
		{Name: "email", SQLType: MapKind(records.KindString), Nullable: true},
	}})
	if err != nil {
		t.Fatal(err)
	}
	want := "CREATE TABLE IF NOT EXISTS \"public\".\"customers\" (\n" +
		"  \"Age\" DOUBLE PRECISION,\n  \"is_premium\" BOOLEAN,\n  \"registration_date\" TIMESTAMPTZ,\n  \"email\" TEXT\n);"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestSplitFQN(t *testing.T) {
	id := splitFQN("public.customers")
	if len(id) != 2 || id[0] != "public" || id[1] != "customers" {
		t.Fatalf("splitFQN = %v", id)
	}
	if id := splitFQN("t"); len(id) != 1 {
		t.Fatalf("splitFQN(t) = %v", id)
	}
}
