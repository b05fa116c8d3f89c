// Package pipeline wires the layoffs cleaning run: read the source, clean it,
// summarize it, then optionally persist the table and write reports.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"layoffs/internal/aggregate"
	"layoffs/internal/config"
	"layoffs/internal/datasource"
	"layoffs/internal/datasource/file"
	"layoffs/internal/logging"
	"layoffs/internal/metrics"
	"layoffs/internal/metrics/datadog"
	"layoffs/internal/metrics/prompush"
	csvparser "layoffs/internal/parser/csv"
	jsonparser "layoffs/internal/parser/json"
	"layoffs/internal/report"
	"layoffs/internal/schema"
	"layoffs/internal/storage"
	_ "layoffs/internal/storage/all"
)

// Result is the outcome of a successful run.
type Result struct {
	RunID   string
	Records []schema.Record
	Summary aggregate.Summary
	Stats   Stats

	// Reports lists the files written by the report step.
	Reports []string
}

// Option customizes Run.
type Option func(*runOptions)

type runOptions struct {
	log    *zap.Logger
	hasLog bool
	source datasource.Source
}

// WithLogger makes Run log to l instead of building a logger from the
// config. A nil l discards all output.
func WithLogger(l *zap.Logger) Option {
	return func(o *runOptions) {
		o.log = logging.OrNop(l)
		o.hasLog = true
	}
}

// WithSource reads input from src instead of the configured source.
func WithSource(src datasource.Source) Option {
	return func(o *runOptions) { o.source = src }
}

// Test seams.
var (
	openSourceFn    = openSource
	newRepositoryFn = storage.New
)

// Run executes one full pipeline run described by cfg. An invalid config
// wraps config.ErrInvalid and nothing is read. Schema violations wrap
// schema.ErrSchema. Any failure after parsing fails the whole run; there is
// no partial result.
func Run(ctx context.Context, cfg config.Pipeline, opts ...Option) (*Result, error) {
	var o runOptions
	for _, fn := range opts {
		fn(&o)
	}

	cfg = cfg.WithDefaults()
	warnings, err := check(cfg, o.source != nil)
	if err != nil {
		return nil, err
	}

	log := o.log
	if !o.hasLog {
		if log, err = logging.New(cfg.Log); err != nil {
			return nil, err
		}
		defer func() { _ = log.Sync() }()
	}
	res := &Result{RunID: uuid.NewString()}
	log = log.With(zap.String("job", cfg.Job), zap.String("run_id", res.RunID))
	for _, w := range warnings {
		log.Warn("config: "+w.Message, zap.String("path", w.Path))
	}

	done, err := setupMetrics(cfg, log)
	if err != nil {
		return nil, err
	}
	defer done()

	step := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		metrics.RecordStep(cfg.Job, name, err, time.Since(start))
		if err != nil {
			log.Error(name+": failed", zap.Error(err))
		}
		return err
	}

	src := o.source
	if src == nil {
		if src, err = openSourceFn(cfg.Source); err != nil {
			return nil, err
		}
	}

	var raw []schema.Raw
	parseErrs := newErrAgg(defaultSampleLimit)
	if err := step("parse", func() (err error) {
		raw, err = parse(ctx, src, cfg.Parser, parseErrs)
		return err
	}); err != nil {
		return nil, err
	}
	if parseErrs.count > 0 {
		log.Warn(fmt.Sprintf("parse errors: %d (showing first %d)", parseErrs.count, len(parseErrs.first)),
			zap.Strings("first", parseErrs.first))
	}

	var cleaned CleanResult
	if err := step("clean", func() (err error) {
		co := CleanOptionsFromConfig(cfg)
		co.Log = log
		cleaned, err = Clean(ctx, raw, co)
		return err
	}); err != nil {
		return nil, err
	}
	res.Records = cleaned.Records
	res.Stats = cleaned.Stats
	res.Stats.ParseErrors = int64(parseErrs.count)

	_ = step("summarize", func() error {
		res.Summary = aggregate.Summarize(res.Records, cfg.Report.TopN)
		return nil
	})

	if cfg.Storage.Kind != "" {
		if err := step("persist", func() error {
			loaded, err := persist(ctx, cfg, res.Records, log)
			res.Stats.Inserted = loaded.Rows
			res.Stats.Batches = loaded.Batches
			return err
		}); err != nil {
			return nil, err
		}
	}

	if cfg.Report.Dir != "" || cfg.Report.JSONPath != "" {
		if err := step("report", func() (err error) {
			res.Reports, err = writeReports(cfg.Report, res.Summary)
			return err
		}); err != nil {
			return nil, err
		}
	}

	res.Stats.record(cfg.Job)
	logSummary(log, res.Stats, len(res.Records))
	return res, nil
}

// check validates cfg like config.Check. Source issues are ignored when the
// caller supplies the source directly.
func check(cfg config.Pipeline, injected bool) ([]config.Issue, error) {
	var (
		warnings []config.Issue
		errs     []error
	)
	for _, iss := range config.ValidatePipeline(cfg) {
		if injected && strings.HasPrefix(iss.Path, "source.") {
			continue
		}
		if iss.Severity == config.SeverityError {
			errs = append(errs, iss)
			continue
		}
		warnings = append(warnings, iss)
	}
	if len(errs) > 0 {
		return warnings, fmt.Errorf("%w: %w", config.ErrInvalid, errors.Join(errs...))
	}
	return warnings, nil
}

func openSource(s config.Source) (datasource.Source, error) {
	switch s.Kind {
	case "file":
		return file.NewLocal(s.File.Path), nil
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", s.Kind)
	}
}

func parse(ctx context.Context, src datasource.Source, p config.Parser, errs *errAgg) ([]schema.Raw, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	defer rc.Close()

	var raw []schema.Raw
	switch p.Kind {
	case "csv":
		raw, err = csvparser.ReadRaw(ctx, rc, csvparser.FromConfigOptions(p.Options), func(line int, err error) {
			errs.add(fmt.Sprintf("line %d: %v", line, err))
		})
	case "json":
		raw, err = jsonparser.ReadRaw(ctx, rc, jsonparser.FromConfigOptions(p.Options))
	default:
		return nil, fmt.Errorf("unsupported parser.kind=%s", p.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.Kind, err)
	}
	return raw, nil
}

func persist(ctx context.Context, cfg config.Pipeline, recs []schema.Record, log *zap.Logger) (storage.Loaded, error) {
	st := cfg.Storage
	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:    st.Kind,
		DSN:     st.DB.DSN,
		Table:   st.DB.Table,
		Columns: schema.Columns,
	})
	if err != nil {
		return storage.Loaded{}, fmt.Errorf("storage: %w", err)
	}
	defer repo.Close()

	if st.DB.AutoCreateTable {
		if err := storage.EnsureTable(ctx, st.Kind, repo, st.DB.Table); err != nil {
			return storage.Loaded{}, fmt.Errorf("ensure table: %w", err)
		}
	}
	return storage.Persist(ctx, repo, recs, storage.PersistOptions{
		Table:     st.DB.Table,
		BatchSize: st.BatchSize,
		Truncate:  st.DB.Truncate,
		Log:       log,
	})
}

func writeReports(cfg config.Report, s aggregate.Summary) ([]string, error) {
	var paths []string
	if cfg.Dir != "" {
		p, err := report.WriteCSV(cfg.Dir, s)
		if err != nil {
			return p, err
		}
		paths = append(paths, p...)
	}
	if cfg.JSONPath != "" {
		if err := report.WriteJSONFile(cfg.JSONPath, s); err != nil {
			return paths, err
		}
		paths = append(paths, cfg.JSONPath)
	}
	return paths, nil
}

// setupMetrics installs the configured metrics backend. The returned func
// flushes it and restores the no-op backend.
func setupMetrics(cfg config.Pipeline, log *zap.Logger) (func(), error) {
	m := cfg.Metrics
	var (
		b   metrics.Backend
		err error
	)
	switch m.Backend {
	case "", "none":
		return func() {}, nil
	case "pushgateway":
		url := m.PushgatewayURL
		if url == "" {
			url = "http://localhost:9091"
		}
		b, err = prompush.NewBackend(cfg.Job, url)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       m.StatsdAddr,
			Namespace:  m.Namespace,
			GlobalTags: m.Tags,
		})
	default:
		log.Warn("metrics: unknown backend; metrics disabled", zap.String("backend", m.Backend))
		return func() {}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics: flush failed", zap.Error(err))
		}
		metrics.Reset()
	}, nil
}
