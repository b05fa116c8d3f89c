// Package schema defines the layoff record model: the untyped source row as
// it arrives from a file and the tightened, typed record produced by the
// coercion stage.
package schema

import (
	"errors"
	"time"
)

// ErrSchema marks input whose shape does not match the expected column set.
// It is fatal: the pipeline cannot run without the full layoff schema.
var ErrSchema = errors.New("schema violation")

// DateLayout is the canonical rendering of a cleaned date.
const DateLayout = "2006-01-02"

// Raw is one source row before coercion. Every field is optional text; nil
// means the cell was absent or empty.
type Raw struct {
	Company           *string `db:"company"`
	Location          *string `db:"location"`
	Industry          *string `db:"industry"`
	TotalLaidOff      *string `db:"total_laid_off"`
	PercentageLaidOff *string `db:"percentage_laid_off"`
	Date              *string `db:"date"`
	Stage             *string `db:"stage"`
	Country           *string `db:"country"`
	FundsRaised       *string `db:"funds_raised_millions"`

	// Line is the 1-based input line (or element index for JSON sources).
	Line int `db:"-"`
}

// Record is a cleaned layoff event with proper nullable types.
type Record struct {
	Company           string     `db:"company"`
	Location          *string    `db:"location"`
	Industry          *string    `db:"industry"`
	TotalLaidOff      *int64     `db:"total_laid_off"`
	PercentageLaidOff *float64   `db:"percentage_laid_off"`
	Date              *time.Time `db:"date"`
	Stage             *string    `db:"stage"`
	Country           *string    `db:"country"`
	FundsRaised       *float64   `db:"funds_raised_millions"`

	Line int `db:"-"`
}

// Str returns a pointer to a copy of s.
func Str(s string) *string { return &s }

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}

// Clone returns a deep copy of r; no pointer is shared with the receiver.
func (r Raw) Clone() Raw {
	return Raw{
		Company:           cloneStr(r.Company),
		Location:          cloneStr(r.Location),
		Industry:          cloneStr(r.Industry),
		TotalLaidOff:      cloneStr(r.TotalLaidOff),
		PercentageLaidOff: cloneStr(r.PercentageLaidOff),
		Date:              cloneStr(r.Date),
		Stage:             cloneStr(r.Stage),
		Country:           cloneStr(r.Country),
		FundsRaised:       cloneStr(r.FundsRaised),
		Line:              r.Line,
	}
}

// Field returns the address of the named text field, or nil for an unknown
// column name. Names follow Columns.
func (r *Raw) Field(name string) **string {
	switch name {
	case ColCompany:
		return &r.Company
	case ColLocation:
		return &r.Location
	case ColIndustry:
		return &r.Industry
	case ColTotalLaidOff:
		return &r.TotalLaidOff
	case ColPercentageLaidOff:
		return &r.PercentageLaidOff
	case ColDate:
		return &r.Date
	case ColStage:
		return &r.Stage
	case ColCountry:
		return &r.Country
	case ColFundsRaised:
		return &r.FundsRaised
	}
	return nil
}

// Fields returns the nine text cells in Columns order.
func (r Raw) Fields() [9]*string {
	return [9]*string{
		r.Company, r.Location, r.Industry, r.TotalLaidOff, r.PercentageLaidOff,
		r.Date, r.Stage, r.Country, r.FundsRaised,
	}
}

// Values renders r as a storage row aligned to Columns. Nulls become nil so
// database drivers write SQL NULL.
func (r Record) Values() []any {
	v := make([]any, len(Columns))
	v[0] = r.Company
	if r.Location != nil {
		v[1] = *r.Location
	}
	if r.Industry != nil {
		v[2] = *r.Industry
	}
	if r.TotalLaidOff != nil {
		v[3] = *r.TotalLaidOff
	}
	if r.PercentageLaidOff != nil {
		v[4] = *r.PercentageLaidOff
	}
	if r.Date != nil {
		v[5] = *r.Date
	}
	if r.Stage != nil {
		v[6] = *r.Stage
	}
	if r.Country != nil {
		v[7] = *r.Country
	}
	if r.FundsRaised != nil {
		v[8] = *r.FundsRaised
	}
	return v
}
