// Package csv reads layoff CSV files into untyped source rows aligned to the
// layoffs schema.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"layoffs/internal/config"
	"layoffs/internal/schema"
)

// Options configures the CSV reader.
type Options struct {
	HasHeader  bool
	Comma      rune
	TrimSpace  bool
	LazyQuotes bool

	// HeaderMap maps raw header text (or its normalized key) onto a column.
	HeaderMap map[string]string
}

// FromConfigOptions builds Options from the pipeline parser options.
func FromConfigOptions(o config.Options) Options {
	return Options{
		HasHeader:  o.Bool("has_header", true),
		Comma:      o.Rune("comma", ','),
		TrimSpace:  o.Bool("trim_space", true),
		LazyQuotes: o.Bool("lazy_quotes", false),
		HeaderMap:  o.StringMap("header_map"),
	}
}

// ReadRaw reads every data row of r into schema.Raw values.
//
// With a header, columns are located by name (HeaderKey, then HeaderMap,
// then the contract aliases); a missing layoffs column is a fatal
// schema.ErrSchema. Without a header, cells are mapped positionally in
// schema.Columns order.
//
// Empty cells become nil. Malformed lines are passed to onErr and skipped.
func ReadRaw(ctx context.Context, r io.Reader, opt Options, onErr func(line int, err error)) ([]schema.Raw, error) {
	if opt.Comma == 0 {
		opt.Comma = ','
	}
	cr := csv.NewReader(r)
	cr.Comma = opt.Comma
	cr.LazyQuotes = opt.LazyQuotes
	cr.FieldsPerRecord = -1

	// colIx[target] = source index
	colIx := make([]int, len(schema.Columns))
	for i := range colIx {
		colIx[i] = i
	}

	if opt.HasHeader {
		hdr, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return []schema.Raw{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		colIx, err = mapHeader(hdr, opt.HeaderMap)
		if err != nil {
			return nil, err
		}
	}

	out := []schema.Raw{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			if onErr != nil {
				onErr(line, fmt.Errorf("csv read: %w", err))
			}
			continue
		}
		line, _ := cr.FieldPos(0)
		if !opt.HasHeader && len(rec) < len(schema.Columns) {
			if onErr != nil {
				onErr(line, fmt.Errorf("csv read: %d fields, want %d", len(rec), len(schema.Columns)))
			}
			continue
		}

		row := schema.Raw{Line: line}
		for t, col := range schema.Columns {
			si := colIx[t]
			if si >= len(rec) {
				continue
			}
			v := rec[si]
			if opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			if v == "" {
				continue
			}
			*row.Field(col) = &v
		}
		out = append(out, row)
	}
}

// mapHeader builds the dest->source index for the layoffs columns.
func mapHeader(hdr []string, headerMap map[string]string) ([]int, error) {
	srcToIdx := make(map[string]int, len(hdr))
	for i, h := range hdr {
		key := HeaderKey(h)
		if mapped, ok := headerMap[strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))]; ok {
			key = mapped
		} else if mapped, ok := headerMap[key]; ok {
			key = mapped
		}
		key = schema.Layoffs.Canonical(key)
		if _, dup := srcToIdx[key]; !dup {
			srcToIdx[key] = i
		}
	}
	if missing := schema.Layoffs.Missing(srcToIdx); len(missing) > 0 {
		return nil, fmt.Errorf("%w: header missing columns %s", schema.ErrSchema, strings.Join(missing, ", "))
	}
	colIx := make([]int, len(schema.Columns))
	for t, col := range schema.Columns {
		colIx[t] = srcToIdx[col]
	}
	return colIx, nil
}
