package storage

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"tabclean/internal/metrics"
	"tabclean/pkg/records"
)

// DefaultBatchSize is used when WriteOptions.BatchSize is not positive.
const DefaultBatchSize = 500

// WriteOptions tunes WriteSnapshot.
type WriteOptions struct {
	Job       string
	BatchSize int
	Logger    *zap.Logger
}

// WriteSnapshot streams every row of s into repo in batches and returns the
// number of rows inserted. Batches and rows written are counted in metrics
// under opt.Job.
func WriteSnapshot(ctx context.Context, repo Repository, s *records.Snapshot, opt WriteOptions) (int64, error) {
	size := opt.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	cols := s.Columns()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan []any, size)
	go func() {
		defer close(in)
		for i := 0; i < s.Len(); i++ {
			select {
			case in <- DriverRow(s.Row(i), cols):
			case <-ctx.Done():
				return
			}
		}
	}()

	var batches atomic.Int64
	counted := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		n, err := repo.CopyFrom(ctx, columns, rows)
		if err == nil {
			batches.Add(1)
		}
		return n, err
	}

	total, err := LoadBatches(ctx, cols, in, size, counted, opt.Logger)
	metrics.RecordBatches(opt.Job, batches.Load())
	metrics.RecordRow(opt.Job, metrics.KindRowsWritten, total)
	return total, err
}

// DriverRow converts rec into database/sql-friendly values ordered by cols.
// Missing becomes nil.
func DriverRow(rec records.Record, cols []string) []any {
	row := make([]any, len(cols))
	for i, c := range cols {
		row[i] = rec[c].Any()
	}
	return row
}
