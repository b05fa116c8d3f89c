package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"layoffs/internal/config"
	"layoffs/internal/schema"
	"layoffs/internal/transformer"
	"layoffs/internal/transformer/builtin"
)

// CleanOptions configures the in-memory cleaning stages.
type CleanOptions struct {
	// Rules are the normalizer rules, applied in order.
	Rules []builtin.Rule

	// Dedupe enables the DeDup stage after normalization.
	Dedupe       bool
	DedupePolicy string
	DedupeKeys   []string

	DateLayout string
	NullTokens []string

	// SampleLimit bounds the degraded-cell samples kept for logging.
	SampleLimit int

	Log *zap.Logger
}

// CleanOptionsFromConfig maps the pipeline config onto CleanOptions.
// Configured rules run after the built-in ones unless ReplaceDefaults is set.
func CleanOptionsFromConfig(p config.Pipeline) CleanOptions {
	var rules []builtin.Rule
	if !p.Normalize.ReplaceDefaults {
		rules = builtin.DefaultRules()
	}
	for _, r := range p.Normalize.Rules {
		rules = append(rules, builtin.Rule{
			Field:      r.Field,
			Prefix:     r.Prefix,
			Canonical:  r.Canonical,
			TrimSuffix: r.TrimSuffix,
		})
	}
	return CleanOptions{
		Rules:        rules,
		Dedupe:       p.Normalize.Dedupe,
		DedupePolicy: p.Normalize.DedupePolicy,
		DedupeKeys:   p.Normalize.DedupeKeys,
		DateLayout:   p.Coerce.DateLayout,
		NullTokens:   p.Coerce.NullTokens,
	}
}

// CleanResult is the cleaned working set and the counters of the stages
// that produced it.
type CleanResult struct {
	Records []schema.Record
	Stats   Stats

	// Degraded counts nil-ed cells per field.
	Degraded map[string]int
}

// Clean runs Load, Normalize, DeDup (optional), Coerce, Require and Impute
// over src, then reports contract violations of the result without dropping
// anything. src itself is never modified. Only a done context stops it.
func Clean(ctx context.Context, src []schema.Raw, opts CleanOptions) (CleanResult, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	limit := opts.SampleLimit
	if limit <= 0 {
		limit = defaultSampleLimit
	}

	var st Stats
	rows := builtin.Load(src)
	st.Loaded = int64(len(rows))

	if err := ctx.Err(); err != nil {
		return CleanResult{}, err
	}
	textStages := transformer.Chain{builtin.Normalize{
		Rules:   opts.Rules,
		Changed: func(int, string) { st.Normalized++ },
	}}
	if opts.Dedupe {
		textStages = append(textStages, builtin.DeDup{
			Keys:    opts.DedupeKeys,
			Policy:  opts.DedupePolicy,
			Dropped: func(int) { st.Deduped++ },
		})
	}
	rows = textStages.Apply(rows)

	if err := ctx.Err(); err != nil {
		return CleanResult{}, err
	}
	degraded := newErrAgg(limit)
	recs, cs := builtin.Coerce{
		Layout:     opts.DateLayout,
		NullTokens: opts.NullTokens,
		OnDegrade: func(line int, field, value string) {
			degraded.add(fmt.Sprintf("line %d: %s=%q", line, field, value))
		},
	}.Apply(rows)
	st.DegradedRows = int64(cs.DegradedRows)
	st.DegradedFields = int64(cs.DegradedFields())
	if degraded.count > 0 {
		log.Warn("coerce: degraded",
			zap.Int64("rows", st.DegradedRows),
			zap.Int64("fields", st.DegradedFields),
			zap.Strings("first", degraded.first),
		)
	}

	if err := ctx.Err(); err != nil {
		return CleanResult{}, err
	}
	recs = transformer.RecordChain{
		builtin.Require{Dropped: func(schema.Record) { st.Filtered++ }},
		builtin.Impute{Filled: func(schema.Record) { st.Imputed++ }},
	}.Apply(recs)

	violations := newErrAgg(limit)
	st.Invalid = int64(builtin.Validate{
		Contract: schema.Layoffs,
		Flag:     func(v builtin.Violation) { violations.add(v.String()) },
	}.Check(recs))
	if violations.count > 0 {
		log.Warn("validate: contract violations",
			zap.Int64("rows", st.Invalid),
			zap.Int("violations", violations.count),
			zap.Strings("first", violations.first),
		)
	}

	log.Debug("clean: done",
		zap.Int64("loaded", st.Loaded),
		zap.Int64("normalized", st.Normalized),
		zap.Int64("deduped", st.Deduped),
		zap.Int64("filtered", st.Filtered),
		zap.Int64("imputed", st.Imputed),
		zap.Int("records", len(recs)),
	)
	return CleanResult{Records: recs, Stats: st, Degraded: cs.Degraded}, nil
}
