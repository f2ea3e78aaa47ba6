package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"tabclean/internal/storage"
	"tabclean/pkg/records"
)

func cleanedCustomers() *records.Snapshot {
	n, s := records.Number, records.String
	return records.MustSnapshot([]string{"CustomerID", "first_name", "AnnualIncome", "is_premium"}, []records.Record{
		{"CustomerID": n(1), "first_name": s("Alice"), "AnnualIncome": n(50000), "is_premium": records.Bool(true)},
		{"CustomerID": n(2), "first_name": s("Bob"), "AnnualIncome": n(60000), "is_premium": records.Bool(false)},
		{"CustomerID": n(3), "first_name": s("Dina"), "is_premium": records.Bool(true)},
		{"CustomerID": n(5), "first_name": s("Fay"), "AnnualIncome": n(55000)},
		{"CustomerID": n(6), "first_name": s("Gus"), "AnnualIncome": n(72000), "is_premium": records.Bool(false)},
	})
}

// feed sends every row of s as driver values and closes the channel.
func feed(s *records.Snapshot) <-chan []any {
	ch := make(chan []any, s.Len())
	for i := 0; i < s.Len(); i++ {
		ch <- storage.DriverRow(s.Row(i), s.Columns())
	}
	close(ch)
	return ch
}

func TestLoadBatches_DriverRowsInBatches(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	snap := cleanedCustomers()

	var got [][][]any
	copyFn := func(_ context.Context, cols []string, rows [][]any) (int64, error) {
		assert.Equal(t, snap.Columns(), cols)
		got = append(got, append([][]any(nil), rows...))
		return int64(len(rows)), nil
	}

	total, err := storage.LoadBatches(context.Background(), snap.Columns(), feed(snap), 2, copyFn, zap.New(core))
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)

	require.Len(t, got, 3)
	assert.Equal(t, []int{2, 2, 1}, []int{len(got[0]), len(got[1]), len(got[2])})
	assert.Equal(t, []any{1.0, "Alice", 50000.0, true}, got[0][0])
	assert.Equal(t, []any{3.0, "Dina", nil, true}, got[1][0], "missing income becomes nil")
	assert.Equal(t, []any{6.0, "Gus", 72000.0, false}, got[2][0])

	flushed := logs.FilterMessage("batch flushed").All()
	require.Len(t, flushed, 3)
	last := flushed[2].ContextMap()
	assert.EqualValues(t, 3, last["batch"])
	assert.EqualValues(t, 1, last["inserted"])
	assert.EqualValues(t, 5, last["total"])
	assert.Zero(t, logs.FilterMessage("batch copy failed").Len())
}

func TestLoadBatches_CopyFailureIsLoggedAndReturned(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	snap := cleanedCustomers()
	errFull := errors.New("table full")

	calls := 0
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		calls++
		if calls == 2 {
			return 1, errFull
		}
		return int64(len(rows)), nil
	}

	total, err := storage.LoadBatches(context.Background(), snap.Columns(), feed(snap), 2, copyFn, zap.New(core))
	require.ErrorIs(t, err, errFull)
	assert.Equal(t, 2, calls, "no batch after the failing one")
	assert.EqualValues(t, 3, total, "partial count of the failed batch is kept")

	failed := logs.FilterMessage("batch copy failed").All()
	require.Len(t, failed, 1)
	fields := failed[0].ContextMap()
	assert.EqualValues(t, 1, fields["inserted"])
	assert.EqualValues(t, 3, fields["total"])
	assert.Equal(t, 1, logs.FilterMessage("batch flushed").Len())
}

func TestLoadBatches_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := make(chan []any) // never written
	total, err := storage.LoadBatches(ctx, []string{"CustomerID"}, in, 10, func(context.Context, []string, [][]any) (int64, error) {
		t.Fatal("copy must not run")
		return 0, nil
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, total)
}

func TestLoadBatches_EmptyInputCopiesNothing(t *testing.T) {
	empty := records.MustSnapshot([]string{"CustomerID"}, nil)
	called := false
	total, err := storage.LoadBatches(context.Background(), empty.Columns(), feed(empty), 10, func(context.Context, []string, [][]any) (int64, error) {
		called = true
		return 0, nil
	}, nil)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.False(t, called)
}

func TestLoadBatches_RejectsBadArguments(t *testing.T) {
	noop := func(context.Context, []string, [][]any) (int64, error) { return 0, nil }

	_, err := storage.LoadBatches(context.Background(), nil, nil, 0, noop, nil)
	assert.ErrorContains(t, err, "batchSize")

	_, err = storage.LoadBatches(context.Background(), nil, nil, 1, nil, nil)
	assert.ErrorContains(t, err, "copyFn")
}
