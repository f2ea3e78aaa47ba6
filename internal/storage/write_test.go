package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"tabclean/internal/ddl"
	"tabclean/internal/metrics"
	"tabclean/pkg/records"
)

type recordingRepo struct {
	mu      sync.Mutex
	batches [][][]any
	execs   []string
	failAt  int
}

func (r *recordingRepo) CopyFrom(_ context.Context, _ []string, rows [][]any) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([][]any, len(rows))
	copy(cp, rows)
	r.batches = append(r.batches, cp)
	if r.failAt > 0 && len(r.batches) == r.failAt {
		return 0, errors.New("disk full")
	}
	return int64(len(rows)), nil
}
func (r *recordingRepo) Exec(_ context.Context, sql string) error {
	r.execs = append(r.execs, sql)
	return nil
}
func (r *recordingRepo) Close() {}

type countingBackend struct {
	mu     sync.Mutex
	counts map[string]float64
}

func (c *countingBackend) IncCounter(name string, d float64, l metrics.Labels) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[name+"/"+l["kind"]] += d
}
func (c *countingBackend) ObserveHistogram(string, float64, metrics.Labels) {}
func (c *countingBackend) Flush() error                                     { return nil }

func sample(n int) *records.Snapshot {
	rows := make([]records.Record, n)
	for i := range rows {
		rows[i] = records.Record{"id": records.Number(float64(i + 1)), "name": records.String("x")}
	}
	rows[0]["name"] = records.Missing()
	return records.MustSnapshot([]string{"id", "name"}, rows)
}

func TestWriteSnapshot(t *testing.T) {
	mb := &countingBackend{counts: map[string]float64{}}
	metrics.SetBackend(mb)
	t.Cleanup(metrics.Reset)

	repo := &recordingRepo{}
	n, err := WriteSnapshot(context.Background(), repo, sample(5), WriteOptions{Job: "j", BatchSize: 2})
	if err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if n != 5 {
		t.Fatalf("inserted = %d, want 5", n)
	}
	if len(repo.batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(repo.batches))
	}
	first := repo.batches[0][0]
	if first[0] != 1.0 || first[1] != nil {
		t.Fatalf("first row = %v, want [1 <nil>]", first)
	}
	if mb.counts[metrics.BatchesTotal+"/"] != 3 {
		t.Errorf("batches metric = %v", mb.counts)
	}
	if mb.counts[metrics.RecordsTotal+"/"+metrics.KindRowsWritten] != 5 {
		t.Errorf("rows_written metric = %v", mb.counts)
	}
}

func TestWriteSnapshot_CopyError(t *testing.T) {
	repo := &recordingRepo{failAt: 2}
	n, err := WriteSnapshot(context.Background(), repo, sample(10), WriteOptions{BatchSize: 3})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v, want disk full", err)
	}
	if n != 3 {
		t.Fatalf("inserted = %d, want 3", n)
	}
}

func TestWriteSnapshot_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan error, 1)
	go func() {
		_, err := WriteSnapshot(ctx, &recordingRepo{}, sample(1000), WriteOptions{BatchSize: 10})
		done <- err
	}()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WriteSnapshot did not return after cancel")
	}
}

func TestEnsureTable(t *testing.T) {
	RegisterDDL("fake-ddl", Dialect{
		MapKind: func(k records.Kind) string { return strings.ToUpper(k.String()) },
		CreateTable: func(def ddl.TableDef) (string, error) {
			return ddl.BuildCreateTableSQL(def, ddl.Style{IfNotExists: true})
		},
	})
	repo := &recordingRepo{}
	if err := EnsureTable(context.Background(), "fake-ddl", repo, "people", sample(2)); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS people (\n  id NUMBER,\n  name STRING\n);"
	if len(repo.execs) != 1 || repo.execs[0] != want {
		t.Fatalf("execs = %q, want %q", repo.execs, want)
	}

	if err := EnsureTable(context.Background(), "nope", repo, "people", sample(1)); err == nil {
		t.Fatal("expected error for unregistered dialect")
	}
}
