package config

import (
	"errors"
	"fmt"
	"strings"

	"layoffs/internal/schema"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Pipeline. Path is a
// dotted path into the config (e.g. "storage.kind", "normalize.rules[1]").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate p; callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateNormalize(p.Normalize)...)
	issues = append(issues, validateCoerce(p.Coerce)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

// Check runs ValidatePipeline and folds error-severity issues into a single
// error wrapping ErrInvalid. Warnings are returned separately.
func Check(p Pipeline) (warnings []Issue, err error) {
	var errs []error
	for _, iss := range ValidatePipeline(p) {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
			continue
		}
		warnings = append(warnings, iss)
	}
	if len(errs) > 0 {
		return warnings, fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return warnings, nil
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch strings.TrimSpace(s.Kind) {
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unsupported source kind %q", s.Kind),
		})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	switch p.Kind {
	case "csv":
		if s := p.Options.String("comma", ","); len([]rune(s)) != 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options.comma",
				Message:  fmt.Sprintf("comma must be a single character, got %q", s),
			})
		}
		if !p.Options.Bool("has_header", true) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "parser.options.has_header",
				Message:  "csv without header is mapped positionally; column order must match the layoffs schema",
			})
		}
	case "json":
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  "parser.kind must not be empty",
		})
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q", p.Kind),
		})
	}
	return issues
}

func validateNormalize(n Normalize) []Issue {
	var issues []Issue

	known := make(map[string]struct{}, len(schema.Columns))
	for _, c := range schema.Columns {
		known[c] = struct{}{}
	}

	for i, r := range n.Rules {
		path := fmt.Sprintf("normalize.rules[%d]", i)
		if _, ok := known[r.Field]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".field",
				Message:  fmt.Sprintf("unknown column %q", r.Field),
			})
		}
		if r.Prefix == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".prefix",
				Message:  "prefix must not be empty; an empty prefix would match every value",
			})
		}
		if r.Canonical == "" && r.TrimSuffix == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  "rule has neither canonical nor trim_suffix and changes nothing",
			})
		}
	}
	switch n.DedupePolicy {
	case "", "keep-first", "keep-last", "most-complete":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "normalize.dedupe_policy",
			Message:  fmt.Sprintf("unknown dedupe policy %q; want keep-first, keep-last or most-complete", n.DedupePolicy),
		})
	}
	for i, k := range n.DedupeKeys {
		if _, ok := known[k]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("normalize.dedupe_keys[%d]", i),
				Message:  fmt.Sprintf("unknown column %q", k),
			})
		}
	}
	if !n.Dedupe && (n.DedupePolicy != "" || len(n.DedupeKeys) > 0) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "normalize.dedupe",
			Message:  "dedupe_policy/dedupe_keys set but dedupe is disabled",
		})
	}
	if n.ReplaceDefaults && len(n.Rules) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "normalize.replace_defaults",
			Message:  "built-in rules replaced by an empty rule set; only company trimming applies",
		})
	}
	return issues
}

func validateCoerce(c Coerce) []Issue {
	var issues []Issue
	if c.DateLayout != "" && !strings.Contains(c.DateLayout, "06") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "coerce.date_layout",
			Message:  fmt.Sprintf("date_layout %q has no year component", c.DateLayout),
		})
	}
	for i, tok := range c.NullTokens {
		if tok == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("coerce.null_tokens[%d]", i),
				Message:  "empty null token is redundant; empty cells are always null",
			})
		}
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return nil
	}

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if s.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.batch_size",
			Message:  "batch_size must not be negative",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if m.PushgatewayURL == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend without URL; http://localhost:9091 is assumed",
			})
		}
	case "datadog":
		if m.StatsdAddr == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.statsd_addr",
				Message:  "datadog backend requires statsd_addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend),
		})
	}
	return issues
}
