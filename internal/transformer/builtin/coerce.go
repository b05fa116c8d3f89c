package builtin

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"layoffs/internal/schema"
)

// DefaultNullTokens are the literal cell values always treated as SQL NULL.
var DefaultNullTokens = []string{"NULL", "null"}

// nullTokens returns DefaultNullTokens plus the extra tokens not already in it.
func nullTokens(extra []string) []string {
	out := append([]string(nil), DefaultNullTokens...)
	for _, tok := range extra {
		if !slices.Contains(out, tok) {
			out = append(out, tok)
		}
	}
	return out
}

// Coerce converts untyped rows into typed records. Null tokens on any field
// become nil, as do blank values; NullTokens extend DefaultNullTokens.
// Values that fail to parse also become nil and are counted as degraded.
// Coercion never fails the run.
type Coerce struct {
	// Layout is the expected date layout. A two-digit-year variant of it
	// and the ISO layout are tried as fallbacks.
	Layout     string
	NullTokens []string

	// OnDegrade, if set, is called for every cell that could not be parsed.
	OnDegrade func(line int, field, value string)
}

// Stats describes one Coerce pass.
type Stats struct {
	Rows         int
	DegradedRows int
	Degraded     map[string]int // field -> cells set to nil by a failed parse
}

// DegradedFields is the total number of degraded cells.
func (s Stats) DegradedFields() int {
	n := 0
	for _, c := range s.Degraded {
		n += c
	}
	return n
}

func (c Coerce) Apply(in []schema.Raw) ([]schema.Record, Stats) {
	st := Stats{Rows: len(in), Degraded: map[string]int{}}
	nulls := nullTokens(c.NullTokens)
	layouts := dateLayouts(c.Layout)

	out := make([]schema.Record, len(in))
	for i, r := range in {
		cv := cellCoercer{nulls: nulls, line: r.Line, stats: &st, onDegrade: c.OnDegrade}

		rec := schema.Record{
			Location: cv.text(r.Location),
			Industry: cv.text(r.Industry),
			Stage:    cv.text(r.Stage),
			Country:  cv.text(r.Country),
			Line:     r.Line,
		}
		if company := cv.text(r.Company); company != nil {
			rec.Company = *company
		} else {
			cv.degrade(schema.ColCompany, deref(r.Company))
		}
		if s := cv.text(r.TotalLaidOff); s != nil {
			if n, ok := parseInt(*s); ok {
				rec.TotalLaidOff = &n
			} else {
				cv.degrade(schema.ColTotalLaidOff, *s)
			}
		}
		if s := cv.text(r.PercentageLaidOff); s != nil {
			if f, ok := parseFloat(*s, ""); ok {
				rec.PercentageLaidOff = &f
			} else {
				cv.degrade(schema.ColPercentageLaidOff, *s)
			}
		}
		if s := cv.text(r.FundsRaised); s != nil {
			if f, ok := parseFloat(*s, "$"); ok {
				rec.FundsRaised = &f
			} else {
				cv.degrade(schema.ColFundsRaised, *s)
			}
		}
		if s := cv.text(r.Date); s != nil {
			if d, ok := parseDate(*s, layouts); ok {
				rec.Date = &d
			} else {
				cv.degrade(schema.ColDate, *s)
			}
		}

		if cv.degraded {
			st.DegradedRows++
		}
		out[i] = rec
	}
	return out, st
}

type cellCoercer struct {
	nulls     []string
	line      int
	stats     *Stats
	onDegrade func(line int, field, value string)
	degraded  bool
}

// text maps null tokens and blank values to nil and returns a fresh pointer
// otherwise.
func (c *cellCoercer) text(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	if strings.TrimSpace(v) == "" {
		return nil
	}
	for _, tok := range c.nulls {
		if v == tok {
			return nil
		}
	}
	return &v
}

func (c *cellCoercer) degrade(field, value string) {
	c.degraded = true
	c.stats.Degraded[field]++
	if c.onDegrade != nil {
		c.onDegrade(c.line, field, value)
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// dateLayouts returns the layout followed by its two-digit-year variant and
// the canonical ISO layout, without duplicates.
func dateLayouts(layout string) []string {
	if layout == "" {
		layout = "1/2/2006"
	}
	out := []string{layout}
	if short := strings.Replace(layout, "2006", "06", 1); short != layout {
		out = append(out, short)
	}
	if layout != schema.DateLayout {
		out = append(out, schema.DateLayout)
	}
	return out
}

func parseDate(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseInt accepts plain integers, thousands separators and integral floats
// such as "12.0".
func parseInt(s string) (int64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// parseFloat parses s after removing thousands separators and the given
// currency prefix.
func parseFloat(s, currency string) (float64, bool) {
	s = strings.TrimSpace(s)
	if currency != "" {
		s = strings.TrimPrefix(s, currency)
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
