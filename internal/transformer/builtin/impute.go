package builtin

import "layoffs/internal/schema"

// Impute backfills a nil Industry from another record of the same company.
// The donor is the first record of that company, in working-set order, with
// a non-nil Industry. One pass, no transitive chains: a company with no
// donor keeps its nil industries.
type Impute struct {
	// Filled, if set, is called for every record that received a value.
	Filled func(rec schema.Record)
}

func (m Impute) Apply(in []schema.Record) []schema.Record {
	m.Fill(in)
	return in
}

// Fill imputes in place and returns the number of records filled.
func (m Impute) Fill(in []schema.Record) int {
	donors := make(map[string]string)
	for _, rec := range in {
		if rec.Industry == nil {
			continue
		}
		if _, ok := donors[rec.Company]; !ok {
			donors[rec.Company] = *rec.Industry
		}
	}

	n := 0
	for i := range in {
		rec := &in[i]
		if rec.Industry != nil {
			continue
		}
		v, ok := donors[rec.Company]
		if !ok {
			continue
		}
		rec.Industry = &v
		n++
		if m.Filled != nil {
			m.Filled(*rec)
		}
	}
	return n
}
