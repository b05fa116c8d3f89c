package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CopyFn abstracts a backend's bulk insert. Implementations insert rows
// aligned to columns and return the number of rows inserted. It must cancel
// promptly when ctx is done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// Loaded reports what LoadBatches wrote.
type Loaded struct {
	Rows    int64
	Batches int64
}

// LoadBatches drains rows from in, groups them into batches of batchSize and
// calls copyFn for each non-empty batch. It returns the running totals and the
// first error encountered; on cancellation it returns ctx.Err().
//
// Progress is logged at debug level on every successful flush.
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
	log *zap.Logger,
) (Loaded, error) {
	var res Loaded
	if batchSize <= 0 {
		return res, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return res, fmt.Errorf("copyFn must not be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	var (
		batch     = make([][]any, 0, batchSize)
		start     = time.Now()
		lastFlush = start
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		res.Rows += n
		batch = batch[:0]
		if err != nil {
			log.Warn("loader: copy failed", zap.Int64("after", n), zap.Int64("total", res.Rows), zap.Error(err))
			return err
		}

		res.Batches++
		now := time.Now()
		since := now.Sub(lastFlush)
		rps := float64(0)
		if since > 0 {
			rps = float64(n) / since.Seconds()
		}
		log.Debug("loader: batch flushed",
			zap.Int64("batch", res.Batches),
			zap.Int64("inserted", n),
			zap.Int64("total_inserted", res.Rows),
			zap.Float64("rps", rps),
			zap.Duration("elapsed", now.Sub(start).Truncate(time.Millisecond)),
		)
		lastFlush = now
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return res, ctx.Err()

		case row, ok := <-in:
			if !ok {
				final := len(batch)
				if err := flush(); err != nil {
					return res, err
				}
				log.Debug("loader: input closed", zap.Int("final_flush", final), zap.Int64("total_inserted", res.Rows))
				return res, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return res, err
				}
			}
		}
	}
}
