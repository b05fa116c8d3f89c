// Package transformer defines the stage interfaces of the cleaning pipeline.
// Raw stages run before type coercion, Record stages after it.
package transformer

import "layoffs/internal/schema"

// Transformer rewrites a set of untyped rows.
type Transformer interface {
	Apply([]schema.Raw) []schema.Raw
}

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []schema.Raw) []schema.Raw {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// RecordTransformer rewrites a set of typed records.
type RecordTransformer interface {
	Apply([]schema.Record) []schema.Record
}

// RecordChain is an ordered list of record transformers.
type RecordChain []RecordTransformer

func (c RecordChain) Apply(in []schema.Record) []schema.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
