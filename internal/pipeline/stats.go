package pipeline

import (
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"layoffs/internal/metrics"
)

const defaultSampleLimit = 10

// Stats are the row counters of one run.
type Stats struct {
	Loaded         int64 `json:"loaded"`
	ParseErrors    int64 `json:"parse_errors"`
	Normalized     int64 `json:"normalized"` // modified cells
	Deduped        int64 `json:"deduped"`
	DegradedRows   int64 `json:"degraded_rows"`
	DegradedFields int64 `json:"degraded_fields"`
	Filtered       int64 `json:"filtered"`
	Imputed        int64 `json:"imputed"`
	Invalid        int64 `json:"invalid"` // kept rows with contract violations
	Inserted       int64 `json:"inserted"`
	Batches        int64 `json:"batches"`
}

func (s Stats) record(job string) {
	for _, kv := range []struct {
		kind string
		n    int64
	}{
		{"loaded", s.Loaded},
		{"parse_errors", s.ParseErrors},
		{"normalized", s.Normalized},
		{"deduped", s.Deduped},
		{"degraded_rows", s.DegradedRows},
		{"filtered", s.Filtered},
		{"imputed", s.Imputed},
		{"invalid", s.Invalid},
		{"inserted", s.Inserted},
	} {
		metrics.RecordRow(job, kv.kind, kv.n)
	}
	metrics.RecordBatches(job, s.Batches)
}

// logSummary prints the final counters of the run.
//
// Rows are conserved through cleaning:
//
//	loaded == deduped + filtered + records
func logSummary(log *zap.Logger, s Stats, records int) {
	log.Info("summary: "+humanize.Comma(s.Loaded)+" rows loaded, "+
		humanize.Comma(int64(records))+" kept, "+
		humanize.Comma(s.Inserted)+" inserted",
		zap.Int64("loaded", s.Loaded),
		zap.Int64("parse_errors", s.ParseErrors),
		zap.Int64("normalized", s.Normalized),
		zap.Int64("deduped", s.Deduped),
		zap.Int64("degraded_rows", s.DegradedRows),
		zap.Int64("degraded_fields", s.DegradedFields),
		zap.Int64("filtered", s.Filtered),
		zap.Int64("imputed", s.Imputed),
		zap.Int64("invalid", s.Invalid),
		zap.Int64("inserted", s.Inserted),
		zap.Int64("batches", s.Batches),
	)

	if accounted := s.Deduped + s.Filtered + int64(records); accounted != s.Loaded {
		log.Warn("summary: row accounting mismatch",
			zap.Int64("loaded", s.Loaded),
			zap.Int64("accounted", accounted),
		)
	}
}

// errAgg keeps a count of diagnostics and the first few messages.
type errAgg struct {
	mu    sync.Mutex
	limit int
	count int
	first []string
}

func newErrAgg(limit int) *errAgg {
	return &errAgg{limit: limit}
}

func (a *errAgg) add(msg string) {
	a.mu.Lock()
	if a.count < a.limit {
		a.first = append(a.first, msg)
	}
	a.count++
	a.mu.Unlock()
}
