package builtin

import "layoffs/internal/schema"

// Require removes records that carry no layoff count at all: both
// TotalLaidOff and PercentageLaidOff are nil. It is the only stage that
// drops rows in the default pipeline.
type Require struct {
	// Dropped, if set, is called for every removed record.
	Dropped func(rec schema.Record)
}

// Apply returns a new slice with the surviving records in input order.
func (r Require) Apply(in []schema.Record) []schema.Record {
	out := make([]schema.Record, 0, len(in))
	for _, rec := range in {
		if rec.TotalLaidOff == nil && rec.PercentageLaidOff == nil {
			if r.Dropped != nil {
				r.Dropped(rec)
			}
			continue
		}
		out = append(out, rec)
	}
	return out
}
