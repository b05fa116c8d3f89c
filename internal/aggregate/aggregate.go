// Package aggregate computes the read-only summaries over a cleaned layoff
// set. Every function is pure: it never mutates its input and always returns
// a non-nil slice.
//
// Null handling follows SQL aggregate semantics: nil inputs are skipped by
// SUM, MIN and MAX, and a group whose inputs are all nil yields a nil result.
// Nil group keys (industry, country) form their own group.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"layoffs/internal/schema"
)

// CompanyExtreme is the largest and smallest single layoff of a company.
type CompanyExtreme struct {
	Company  string `json:"company"`
	MaxTotal *int64 `json:"max_total_laid_off"`
	MinTotal *int64 `json:"min_total_laid_off"`
}

// CompanyTotal sums both layoff measures per company.
type CompanyTotal struct {
	Company           string   `json:"company"`
	TotalLaidOff      *int64   `json:"total_laid_off"`
	PercentageLaidOff *float64 `json:"percentage_laid_off"`
}

// GroupTotal is a layoff sum keyed by a nullable text column.
type GroupTotal struct {
	Key          *string `json:"key"`
	TotalLaidOff *int64  `json:"total_laid_off"`
}

// YearTotal is a layoff sum per calendar year.
type YearTotal struct {
	Year         int    `json:"year"`
	TotalLaidOff *int64 `json:"total_laid_off"`
}

// MonthTotal is a layoff sum per "YYYY-MM" month.
type MonthTotal struct {
	Month        string `json:"month"`
	TotalLaidOff *int64 `json:"total_laid_off"`
}

// RollingMonth adds the running total up to and including Month.
type RollingMonth struct {
	Month        string `json:"month"`
	TotalLaidOff *int64 `json:"total_laid_off"`
	Rolling      int64  `json:"rolling_total"`
}

// RankedCompany is one company's yearly layoffs and its dense rank within
// that year (1 = most layoffs).
type RankedCompany struct {
	Year         int    `json:"year"`
	Company      string `json:"company"`
	TotalLaidOff int64  `json:"total_laid_off"`
	Rank         int    `json:"rank"`
}

// Headlines holds the headline figures of the cleaned set.
type Headlines struct {
	Rows          int        `json:"rows"`
	MaxTotal      *int64     `json:"max_total_laid_off"`
	MaxPercentage *float64   `json:"max_percentage_laid_off"`
	FirstDate     *time.Time `json:"first_date"`
	LastDate      *time.Time `json:"last_date"`
}

// sum accumulates an int64 SUM with SQL null semantics.
type sum struct {
	v  int64
	ok bool
}

func (s *sum) add(p *int64) {
	if p == nil {
		return
	}
	s.v += *p
	s.ok = true
}

func (s sum) ptr() *int64 {
	if !s.ok {
		return nil
	}
	v := s.v
	return &v
}

type fsum struct {
	v  float64
	ok bool
}

func (s *fsum) add(p *float64) {
	if p == nil {
		return
	}
	s.v += *p
	s.ok = true
}

func (s fsum) ptr() *float64 {
	if !s.ok {
		return nil
	}
	v := s.v
	return &v
}

// desc orders nullable sums descending with nil last; the bool reports
// whether a and b decide the order.
func desc(a, b *int64) (less, decided bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return false, true
	case b == nil:
		return true, true
	case *a != *b:
		return *a > *b, true
	}
	return false, false
}

// keyLess orders nullable keys ascending with nil last.
func keyLess(a, b *string) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	}
	return *a < *b
}

// CompanyExtremes returns MAX and MIN total_laid_off per company, ordered by
// company.
func CompanyExtremes(recs []schema.Record) []CompanyExtreme {
	idx := map[string]int{}
	out := []CompanyExtreme{}
	for _, r := range recs {
		i, ok := idx[r.Company]
		if !ok {
			i = len(out)
			idx[r.Company] = i
			out = append(out, CompanyExtreme{Company: r.Company})
		}
		if r.TotalLaidOff == nil {
			continue
		}
		v := *r.TotalLaidOff
		e := &out[i]
		if e.MaxTotal == nil || v > *e.MaxTotal {
			e.MaxTotal = &v
		}
		if e.MinTotal == nil || v < *e.MinTotal {
			e.MinTotal = &v
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Company < out[j].Company })
	return out
}

// CompanyTotals returns SUM(total_laid_off) and SUM(percentage_laid_off) per
// company, largest total first.
func CompanyTotals(recs []schema.Record) []CompanyTotal {
	type acc struct {
		total sum
		pct   fsum
	}
	idx := map[string]*acc{}
	var order []string
	for _, r := range recs {
		a, ok := idx[r.Company]
		if !ok {
			a = &acc{}
			idx[r.Company] = a
			order = append(order, r.Company)
		}
		a.total.add(r.TotalLaidOff)
		a.pct.add(r.PercentageLaidOff)
	}
	out := make([]CompanyTotal, 0, len(order))
	for _, c := range order {
		a := idx[c]
		out = append(out, CompanyTotal{Company: c, TotalLaidOff: a.total.ptr(), PercentageLaidOff: a.pct.ptr()})
	}
	sort.Slice(out, func(i, j int) bool {
		if less, ok := desc(out[i].TotalLaidOff, out[j].TotalLaidOff); ok {
			return less
		}
		return out[i].Company < out[j].Company
	})
	return out
}

// IndustryTotals returns SUM(total_laid_off) per industry, largest first.
func IndustryTotals(recs []schema.Record) []GroupTotal {
	return groupTotals(recs, func(r schema.Record) *string { return r.Industry })
}

// CountryTotals returns SUM(total_laid_off) per country, largest first.
func CountryTotals(recs []schema.Record) []GroupTotal {
	return groupTotals(recs, func(r schema.Record) *string { return r.Country })
}

func groupTotals(recs []schema.Record, key func(schema.Record) *string) []GroupTotal {
	sums := map[string]*sum{}
	var keys []*string
	var nilSum *sum
	for _, r := range recs {
		k := key(r)
		var s *sum
		if k == nil {
			if nilSum == nil {
				nilSum = &sum{}
				keys = append(keys, nil)
			}
			s = nilSum
		} else if s = sums[*k]; s == nil {
			s = &sum{}
			sums[*k] = s
			v := *k
			keys = append(keys, &v)
		}
		s.add(r.TotalLaidOff)
	}
	out := make([]GroupTotal, 0, len(keys))
	for _, k := range keys {
		s := nilSum
		if k != nil {
			s = sums[*k]
		}
		out = append(out, GroupTotal{Key: k, TotalLaidOff: s.ptr()})
	}
	sort.Slice(out, func(i, j int) bool {
		if less, ok := desc(out[i].TotalLaidOff, out[j].TotalLaidOff); ok {
			return less
		}
		return keyLess(out[i].Key, out[j].Key)
	})
	return out
}

// YearTotals returns SUM(total_laid_off) per year of date, latest year
// first. Records without a date are excluded.
func YearTotals(recs []schema.Record) []YearTotal {
	sums := map[int]*sum{}
	for _, r := range recs {
		if r.Date == nil {
			continue
		}
		y := r.Date.Year()
		if sums[y] == nil {
			sums[y] = &sum{}
		}
		sums[y].add(r.TotalLaidOff)
	}
	out := make([]YearTotal, 0, len(sums))
	for y, s := range sums {
		out = append(out, YearTotal{Year: y, TotalLaidOff: s.ptr()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out
}

// MonthKey renders the "YYYY-MM" bucket of t.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// MonthTotals returns SUM(total_laid_off) per month, oldest first. Records
// without a date are excluded.
func MonthTotals(recs []schema.Record) []MonthTotal {
	sums := map[string]*sum{}
	for _, r := range recs {
		if r.Date == nil {
			continue
		}
		m := MonthKey(*r.Date)
		if sums[m] == nil {
			sums[m] = &sum{}
		}
		sums[m].add(r.TotalLaidOff)
	}
	out := make([]MonthTotal, 0, len(sums))
	for m, s := range sums {
		out = append(out, MonthTotal{Month: m, TotalLaidOff: s.ptr()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// RollingMonthly extends MonthTotals with a cumulative total. Months whose
// sum is nil add nothing to the running total.
func RollingMonthly(recs []schema.Record) []RollingMonth {
	months := MonthTotals(recs)
	out := make([]RollingMonth, 0, len(months))
	var running int64
	for _, m := range months {
		if m.TotalLaidOff != nil {
			running += *m.TotalLaidOff
		}
		out = append(out, RollingMonth{Month: m.Month, TotalLaidOff: m.TotalLaidOff, Rolling: running})
	}
	return out
}

// TopCompaniesPerYear ranks companies within each year by SUM(total_laid_off)
// using dense ranking and keeps ranks up to n. Records without a date and
// company-years without any count are not ranked. Output is ordered by year,
// rank, then company.
func TopCompaniesPerYear(recs []schema.Record, n int) []RankedCompany {
	type key struct {
		year    int
		company string
	}
	sums := map[key]*sum{}
	for _, r := range recs {
		if r.Date == nil {
			continue
		}
		k := key{r.Date.Year(), r.Company}
		if sums[k] == nil {
			sums[k] = &sum{}
		}
		sums[k].add(r.TotalLaidOff)
	}

	all := make([]RankedCompany, 0, len(sums))
	for k, s := range sums {
		if !s.ok {
			continue
		}
		all = append(all, RankedCompany{Year: k.year, Company: k.company, TotalLaidOff: s.v})
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.TotalLaidOff != b.TotalLaidOff {
			return a.TotalLaidOff > b.TotalLaidOff
		}
		return a.Company < b.Company
	})

	out := []RankedCompany{}
	rank := 0
	for i := range all {
		switch {
		case i == 0 || all[i].Year != all[i-1].Year:
			rank = 1
		case all[i].TotalLaidOff != all[i-1].TotalLaidOff:
			rank++
		}
		if rank > n {
			continue
		}
		all[i].Rank = rank
		out = append(out, all[i])
	}
	return out
}

// Shutdowns returns records where the whole company was laid off
// (percentage_laid_off == 1), best funded first.
func Shutdowns(recs []schema.Record) []schema.Record {
	out := []schema.Record{}
	for _, r := range recs {
		if r.PercentageLaidOff != nil && *r.PercentageLaidOff == 1 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].FundsRaised, out[j].FundsRaised
		switch {
		case a != nil && b != nil && *a != *b:
			return *a > *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].Company < out[j].Company
	})
	return out
}

// Overview computes the headline figures.
func Overview(recs []schema.Record) Headlines {
	o := Headlines{Rows: len(recs)}
	for _, r := range recs {
		if p := r.TotalLaidOff; p != nil && (o.MaxTotal == nil || *p > *o.MaxTotal) {
			v := *p
			o.MaxTotal = &v
		}
		if p := r.PercentageLaidOff; p != nil && (o.MaxPercentage == nil || *p > *o.MaxPercentage) {
			v := *p
			o.MaxPercentage = &v
		}
		if d := r.Date; d != nil {
			if o.FirstDate == nil || d.Before(*o.FirstDate) {
				v := *d
				o.FirstDate = &v
			}
			if o.LastDate == nil || d.After(*o.LastDate) {
				v := *d
				o.LastDate = &v
			}
		}
	}
	return o
}
