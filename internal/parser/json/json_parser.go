// Package json reads layoff records encoded as JSON into schema.Raw rows.
//
// Two shapes are accepted:
//
//   - newline-delimited objects (NDJSON):
//     {"company":"Acme","total_laid_off":10}
//     {"company":"Beta","total_laid_off":null}
//   - a single top-level array of objects, when allow_arrays is set.
//
// Values must be strings, numbers or null. Numbers keep their literal text
// (json.Number) so the coercion stage sees exactly what the file said.
package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"layoffs/internal/config"
	csvparser "layoffs/internal/parser/csv"
	"layoffs/internal/schema"
)

// Options configures the JSON reader.
type Options struct {
	// AllowArrays accepts a top-level array of objects in addition to NDJSON.
	AllowArrays bool

	// HeaderMap maps raw object keys (or their normalized form) onto columns.
	HeaderMap map[string]string
}

// FromConfigOptions constructs Options from the pipeline parser options.
func FromConfigOptions(o config.Options) Options {
	return Options{
		AllowArrays: o.Bool("allow_arrays", false),
		HeaderMap:   o.StringMap("header_map"),
	}
}

// Decoder yields one JSON object per call, expanding a top-level array when
// allowed.
type Decoder struct {
	dec     *json.Decoder
	opt     Options
	pending []any
	n       int
}

// NewDecoder constructs a Decoder over r.
func NewDecoder(r io.Reader, opt Options) *Decoder {
	d := json.NewDecoder(r)
	d.UseNumber()
	return &Decoder{dec: d, opt: opt}
}

// Next returns the next object and its 1-based position in the stream.
// io.EOF marks the end. A non-object value is a schema.ErrSchema.
func (d *Decoder) Next() (map[string]any, int, error) {
	for len(d.pending) == 0 {
		var v any
		if err := d.dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, 0, io.EOF
			}
			return nil, d.n + 1, fmt.Errorf("json parser: decode: %w", err)
		}
		switch t := v.(type) {
		case map[string]any:
			d.n++
			return t, d.n, nil
		case []any:
			if !d.opt.AllowArrays {
				return nil, d.n + 1, fmt.Errorf("%w: top-level array but allow_arrays=false", schema.ErrSchema)
			}
			d.pending = t
		default:
			return nil, d.n + 1, fmt.Errorf("%w: top-level %s is not an object", schema.ErrSchema, typeName(v))
		}
	}
	v := d.pending[0]
	d.pending = d.pending[1:]
	d.n++
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, d.n, fmt.Errorf("%w: element %d is %s, not an object", schema.ErrSchema, d.n, typeName(v))
	}
	return obj, d.n, nil
}

// ReadRaw decodes every object in r into a schema.Raw row.
//
// Keys are matched the way CSV headers are (csvparser.HeaderKey, then
// HeaderMap, then contract aliases); unknown keys are ignored and absent
// columns are nil. Any structural problem is fatal: JSON has no line-level
// resynchronization, so a bad element aborts the read.
func ReadRaw(ctx context.Context, r io.Reader, opt Options) ([]schema.Raw, error) {
	d := NewDecoder(r, opt)
	out := []schema.Raw{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		obj, n, err := d.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		row, err := toRaw(obj, opt.HeaderMap)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", n, err)
		}
		row.Line = n
		out = append(out, row)
	}
}

func toRaw(obj map[string]any, headerMap map[string]string) (schema.Raw, error) {
	var row schema.Raw
	seen := make(map[string]string, len(schema.Columns))
	for k, v := range obj {
		key := csvparser.HeaderKey(k)
		if mapped, ok := headerMap[k]; ok {
			key = mapped
		} else if mapped, ok := headerMap[key]; ok {
			key = mapped
		}
		col := schema.Layoffs.Canonical(key)
		dst := row.Field(col)
		if dst == nil {
			continue
		}
		if prev, dup := seen[col]; dup {
			a, b := prev, k
			if b < a {
				a, b = b, a
			}
			return schema.Raw{}, fmt.Errorf("%w: keys %q and %q both map to column %s", schema.ErrSchema, a, b, col)
		}
		seen[col] = k
		switch t := v.(type) {
		case nil:
			*dst = nil
		case string:
			if t != "" {
				*dst = schema.Str(t)
			}
		case json.Number:
			*dst = schema.Str(t.String())
		default:
			return schema.Raw{}, fmt.Errorf("%w: field %q holds %s", schema.ErrSchema, k, typeName(v))
		}
	}
	return row, nil
}

func typeName(v any) string {
	switch v.(type) {
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case bool:
		return "a boolean"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
