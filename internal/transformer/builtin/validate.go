package builtin

import (
	"fmt"

	"layoffs/internal/schema"
)

// Violation describes one contract check a typed record failed.
type Violation struct {
	Line   int
	Field  string
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("line %d: %s: %s", v.Line, v.Field, v.Reason)
}

// Validate checks typed records against a schema.Contract and reports what it
// finds through Flag. It never drops or modifies a record:
//
//   - a Required field must hold a non-empty value;
//   - "int" and "float" fields must not be negative;
//   - percentage_laid_off must lie within [0, 1].
type Validate struct {
	Contract schema.Contract

	// Flag, if set, is called once per violation.
	Flag func(Violation)
}

type fieldCheck struct {
	name     string
	idx      int // position in schema.Columns / Record.Values
	kind     string
	required bool
}

func (v Validate) checks() []fieldCheck {
	pos := make(map[string]int, len(schema.Columns))
	for i, c := range schema.Columns {
		pos[c] = i
	}
	out := make([]fieldCheck, 0, len(v.Contract.Fields))
	for _, f := range v.Contract.Fields {
		i, ok := pos[f.Name]
		if !ok {
			continue
		}
		out = append(out, fieldCheck{name: f.Name, idx: i, kind: f.Type, required: f.Required})
	}
	return out
}

func (v Validate) Apply(in []schema.Record) []schema.Record {
	v.Check(in)
	return in
}

// Check validates in and returns the number of records with at least one
// violation.
func (v Validate) Check(in []schema.Record) int {
	checks := v.checks()
	bad := 0
	for _, rec := range in {
		vals := rec.Values()
		failed := false
		for _, c := range checks {
			if reason := checkValue(c, vals[c.idx]); reason != "" {
				failed = true
				if v.Flag != nil {
					v.Flag(Violation{Line: rec.Line, Field: c.name, Reason: reason})
				}
			}
		}
		if failed {
			bad++
		}
	}
	return bad
}

func checkValue(c fieldCheck, val any) string {
	if val == nil || val == "" {
		if c.required {
			return "required value missing"
		}
		return ""
	}
	var f float64
	switch n := val.(type) {
	case int64:
		f = float64(n)
	case float64:
		f = n
	default:
		return ""
	}
	if f < 0 {
		return fmt.Sprintf("negative %s %v", c.kind, val)
	}
	if c.name == schema.ColPercentageLaidOff && f > 1 {
		return fmt.Sprintf("fraction %v above 1", val)
	}
	return ""
}
