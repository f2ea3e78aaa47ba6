package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabclean/internal/storage"
	_ "tabclean/internal/storage/all"
)

type memRepo struct {
	cfg  storage.Config
	rows [][]any
}

func (m *memRepo) CopyFrom(_ context.Context, _ []string, rows [][]any) (int64, error) {
	m.rows = append(m.rows, rows...)
	return int64(len(rows)), nil
}
func (m *memRepo) Exec(context.Context, string) error { return nil }
func (m *memRepo) Close()                             {}

func TestListKinds_BuiltinBackends(t *testing.T) {
	kinds := storage.ListKinds()
	assert.Subset(t, kinds, []string{"mssql", "mysql", "postgres", "sqlite"})
	assert.IsNonDecreasing(t, kinds)

	kinds[0] = "mutated"
	assert.NotContains(t, storage.ListKinds(), "mutated", "ListKinds returns a copy")
}

func TestNew_PassesConfigToFactory(t *testing.T) {
	var seen storage.Config
	storage.Register("memory-cfg", func(_ context.Context, cfg storage.Config) (storage.Repository, error) {
		seen = cfg
		return &memRepo{cfg: cfg}, nil
	})

	cfg := storage.Config{Kind: "memory-cfg", DSN: "mem://", Table: "customers", Columns: []string{"CustomerID", "Age"}}
	repo, err := storage.New(context.Background(), cfg)
	require.NoError(t, err)
	defer repo.Close()

	assert.Equal(t, cfg, seen)
	assert.Contains(t, storage.ListKinds(), "memory-cfg")
}

func TestRegister_ReplacesFactory(t *testing.T) {
	first, second := &memRepo{}, &memRepo{}
	storage.Register("memory-swap", func(context.Context, storage.Config) (storage.Repository, error) { return first, nil })
	storage.Register("memory-swap", func(context.Context, storage.Config) (storage.Repository, error) { return second, nil })

	repo, err := storage.New(context.Background(), storage.Config{Kind: "memory-swap"})
	require.NoError(t, err)
	assert.Same(t, second, repo)
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := storage.New(context.Background(), storage.Config{Kind: "oracle"})
	assert.EqualError(t, err, "unsupported storage.kind=oracle")
}

func TestNew_SQLiteThroughRegistry(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: ":memory:", Table: "customers", Columns: []string{"CustomerID"}})
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.Exec(ctx, `CREATE TABLE "customers" ("CustomerID" REAL)`))
	n, err := repo.CopyFrom(ctx, []string{"CustomerID"}, [][]any{{1.0}, {2.0}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
