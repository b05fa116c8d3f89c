package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"layoffs/internal/schema"
)

// DefaultBatchSize is used when PersistOptions.BatchSize is not positive.
const DefaultBatchSize = 1000

// PersistOptions controls a Persist call.
type PersistOptions struct {
	// Table receives the rows. It is only used by Truncate; CopyFrom targets
	// the table the repository was opened with.
	Table     string
	BatchSize int

	// Truncate deletes every existing row before loading.
	Truncate bool

	Log *zap.Logger
}

// Persist writes recs in schema.Columns order. A producer goroutine feeds a
// bounded channel drained by LoadBatches; the first error from either side
// cancels the other.
func Persist(ctx context.Context, repo Repository, recs []schema.Record, opt PersistOptions) (Loaded, error) {
	if opt.BatchSize <= 0 {
		opt.BatchSize = DefaultBatchSize
	}
	if opt.Truncate {
		if opt.Table == "" {
			return Loaded{}, fmt.Errorf("persist: truncate requires a table name")
		}
		if err := repo.Exec(ctx, "DELETE FROM "+opt.Table); err != nil {
			return Loaded{}, fmt.Errorf("persist: truncate %s: %w", opt.Table, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	rows := make(chan []any, opt.BatchSize)

	g.Go(func() error {
		defer close(rows)
		for _, r := range recs {
			select {
			case rows <- r.Values():
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var res Loaded
	g.Go(func() error {
		var err error
		res, err = LoadBatches(gctx, schema.Columns, rows, opt.BatchSize, repo.CopyFrom, opt.Log)
		return err
	})

	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("persist: %w", err)
	}
	return res, nil
}
