// Package config defines the JSON/YAML-serializable configuration model for
// the layoffs cleaning pipeline. Pipelines can be loaded from disk and passed
// through the program without additional glue code.
//
// Example (trimmed):
//
//	{
//	  "job":      "layoffs",
//	  "source":   { "kind": "file", "file": { "path": "data/layoffs.csv" } },
//	  "parser":   { "kind": "csv", "options": { "has_header": true } },
//	  "normalize":{ "rules": [ { "field": "industry", "prefix": "fin", "canonical": "Finance" } ] },
//	  "coerce":   { "date_layout": "1/2/2006" },
//	  "storage":  { "kind": "sqlite", "db": { "dsn": "layoffs.db", "table": "layoffs_clean" } },
//	  "report":   { "dir": "out" }
//	}
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a pipeline fails validation.
var ErrInvalid = errors.New("invalid pipeline config")

// Defaults applied by Load and Pipeline.WithDefaults.
const (
	DefaultJob        = "layoffs"
	DefaultDateLayout = "1/2/2006"
	DefaultTable      = "layoffs_clean"
	DefaultBatchSize  = 1000
	DefaultTopN       = 5
)

// DefaultNullTokens are always treated as SQL NULL. Configured tokens are
// added to them, never substituted.
var DefaultNullTokens = []string{"NULL", "null"}

// MergeNullTokens returns DefaultNullTokens followed by the tokens of extra
// that are not already present.
func MergeNullTokens(extra []string) []string {
	out := append([]string(nil), DefaultNullTokens...)
	for _, tok := range extra {
		if !slices.Contains(out, tok) {
			out = append(out, tok)
		}
	}
	return out
}

// Pipeline describes a full cleaning run. It is the top-level object decoded
// from a pipeline file.
type Pipeline struct {
	// Job names the run for logs and metrics.
	Job string `json:"job" yaml:"job"`

	Source    Source    `json:"source" yaml:"source"`
	Parser    Parser    `json:"parser" yaml:"parser"`
	Normalize Normalize `json:"normalize" yaml:"normalize"`
	Coerce    Coerce    `json:"coerce" yaml:"coerce"`

	// Storage is optional; an empty Kind skips persistence.
	Storage Storage `json:"storage" yaml:"storage"`
	Report  Report  `json:"report" yaml:"report"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
	Log     Log     `json:"log" yaml:"log"`
}

// Source identifies where input bytes come from.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string     `json:"kind" yaml:"kind"`
	File SourceFile `json:"file" yaml:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path" yaml:"path"`
}

// Parser selects how raw bytes become source rows.
type Parser struct {
	// Kind is "csv" or "json".
	Kind string `json:"kind" yaml:"kind"`

	// Options is interpreted by the parser. For CSV: has_header (bool),
	// comma (string), trim_space (bool), lazy_quotes (bool),
	// header_map (object). For JSON: allow_arrays (bool).
	Options Options `json:"options" yaml:"options"`
}

// Rule is one canonicalization rule applied by the normalizer.
type Rule struct {
	Field      string `json:"field" yaml:"field"`
	Prefix     string `json:"prefix" yaml:"prefix"`
	Canonical  string `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	TrimSuffix string `json:"trim_suffix,omitempty" yaml:"trim_suffix,omitempty"`
}

// Normalize configures text canonicalization.
type Normalize struct {
	// Rules are appended after the built-in rules.
	Rules []Rule `json:"rules" yaml:"rules"`

	// ReplaceDefaults drops the built-in rules so only Rules apply.
	ReplaceDefaults bool `json:"replace_defaults" yaml:"replace_defaults"`

	// Dedupe removes duplicate rows after normalization.
	Dedupe bool `json:"dedupe" yaml:"dedupe"`

	// DedupePolicy picks the surviving row: "keep-first" (default),
	// "keep-last" or "most-complete".
	DedupePolicy string `json:"dedupe_policy,omitempty" yaml:"dedupe_policy,omitempty"`

	// DedupeKeys are the columns that identify a duplicate. Empty means
	// every column.
	DedupeKeys []string `json:"dedupe_keys,omitempty" yaml:"dedupe_keys,omitempty"`
}

// Coerce configures type coercion.
type Coerce struct {
	// DateLayout is a Go time layout for the date column.
	DateLayout string `json:"date_layout" yaml:"date_layout"`

	// NullTokens are text values treated as SQL NULL in any column.
	NullTokens []string `json:"null_tokens" yaml:"null_tokens"`
}

// Storage selects the sink used to persist the cleaned table.
type Storage struct {
	// Kind is "sqlite", "postgres", "mssql" or "mysql". Empty disables
	// persistence.
	Kind string   `json:"kind" yaml:"kind"`
	DB   DBConfig `json:"db" yaml:"db"`

	// BatchSize is the number of rows per bulk insert.
	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	DSN   string `json:"dsn" yaml:"dsn"`
	Table string `json:"table" yaml:"table"`

	// AutoCreateTable issues CREATE TABLE IF NOT EXISTS before loading.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`

	// Truncate deletes existing rows before loading so reruns replace the
	// previous result instead of appending to it.
	Truncate bool `json:"truncate" yaml:"truncate"`
}

// Report configures export of the aggregate results.
type Report struct {
	// Dir receives one CSV file per aggregate. Empty disables CSV export.
	Dir string `json:"dir" yaml:"dir"`

	// JSONPath receives the full summary as JSON. Empty disables it.
	JSONPath string `json:"json_path" yaml:"json_path"`

	// TopN bounds the per-year company ranking.
	TopN int `json:"top_n" yaml:"top_n"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "pushgateway", "datadog" or "none".
	Backend        string   `json:"backend" yaml:"backend"`
	PushgatewayURL string   `json:"pushgateway_url" yaml:"pushgateway_url"`
	StatsdAddr     string   `json:"statsd_addr" yaml:"statsd_addr"`
	Namespace      string   `json:"namespace" yaml:"namespace"`
	Tags           []string `json:"tags" yaml:"tags"`
}

// Log configures the structured logger.
type Log struct {
	Level string `json:"level" yaml:"level"`
	JSON  bool   `json:"json" yaml:"json"`
}

// WithDefaults returns a copy of p with zero values replaced by defaults.
func (p Pipeline) WithDefaults() Pipeline {
	if p.Job == "" {
		p.Job = DefaultJob
	}
	if p.Parser.Kind == "" {
		p.Parser.Kind = "csv"
	}
	if p.Parser.Options == nil {
		p.Parser.Options = Options{}
	}
	if p.Coerce.DateLayout == "" {
		p.Coerce.DateLayout = DefaultDateLayout
	}
	p.Coerce.NullTokens = MergeNullTokens(p.Coerce.NullTokens)
	if p.Storage.Kind != "" && p.Storage.DB.Table == "" {
		p.Storage.DB.Table = DefaultTable
	}
	if p.Storage.BatchSize <= 0 {
		p.Storage.BatchSize = DefaultBatchSize
	}
	if p.Report.TopN <= 0 {
		p.Report.TopN = DefaultTopN
	}
	if p.Metrics.Backend == "" {
		p.Metrics.Backend = "none"
	}
	if p.Log.Level == "" {
		p.Log.Level = "info"
	}
	return p
}

// Load reads a pipeline file. ".yaml"/".yml" files are decoded with
// yaml.v3, everything else as JSON. Environment overrides are applied after
// decoding, then defaults.
func Load(path string) (Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config: %w", err)
	}
	p, err := Decode(b, filepath.Ext(path))
	if err != nil {
		return Pipeline{}, err
	}
	return ApplyEnv(p, os.Getenv).WithDefaults(), nil
}

// Decode parses b as YAML when ext is ".yaml" or ".yml" and as JSON
// otherwise.
func Decode(b []byte, ext string) (Pipeline, error) {
	var p Pipeline
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &p); err != nil {
			return Pipeline{}, fmt.Errorf("decode yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(b, &p); err != nil {
			return Pipeline{}, fmt.Errorf("decode json config: %w", err)
		}
	}
	return p, nil
}

// ApplyEnv overlays environment overrides (12-factor style):
//
//	LAYOFFS_DSN, LAYOFFS_BATCH_SIZE, METRICS_BACKEND, PUSHGATEWAY_URL
func ApplyEnv(p Pipeline, getenv func(string) string) Pipeline {
	if v := getenv("LAYOFFS_DSN"); v != "" {
		p.Storage.DB.DSN = v
	}
	if v := getenv("LAYOFFS_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Storage.BatchSize = n
		}
	}
	if v := getenv("METRICS_BACKEND"); v != "" {
		p.Metrics.Backend = v
	}
	if v := getenv("PUSHGATEWAY_URL"); v != "" {
		p.Metrics.PushgatewayURL = v
	}
	return p
}
