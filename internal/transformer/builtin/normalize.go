package builtin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"layoffs/internal/schema"
)

const nbspace = "\u00a0"

// Rule canonicalizes one text column. It matches when the value starts with
// Prefix, compared case-insensitively. On a match the value is replaced by
// Canonical (if set), then any trailing runes in TrimSuffix are removed.
type Rule struct {
	Field      string
	Prefix     string
	Canonical  string
	TrimSuffix string
}

// DefaultRules returns the canonicalization table applied to every run.
func DefaultRules() []Rule {
	return []Rule{
		{Field: schema.ColIndustry, Prefix: "crypto", Canonical: "Crypto"},
		{Field: schema.ColCountry, Prefix: "United States", TrimSuffix: "."},
	}
}

// Normalize trims and NFC-normalizes company names and applies Rules in
// order. Values no rule matches are left as they are.
type Normalize struct {
	Rules []Rule

	// Changed, if set, is called once per modified cell.
	Changed func(line int, field string)
}

func (n Normalize) Apply(in []schema.Raw) []schema.Raw {
	for i := range in {
		r := &in[i]
		if r.Company != nil {
			if c := normalizeCompany(*r.Company); c != *r.Company {
				r.Company = &c
				n.changed(r.Line, schema.ColCompany)
			}
		}
		for _, rule := range n.Rules {
			p := r.Field(rule.Field)
			if p == nil || *p == nil {
				continue
			}
			if v, ok := rule.apply(**p); ok {
				*p = &v
				n.changed(r.Line, rule.Field)
			}
		}
	}
	return in
}

func (n Normalize) changed(line int, field string) {
	if n.Changed != nil {
		n.Changed(line, field)
	}
}

// apply returns the rewritten value and whether it differs from v.
func (r Rule) apply(v string) (string, bool) {
	if r.Prefix == "" || !hasPrefixFold(v, r.Prefix) {
		return v, false
	}
	out := v
	if r.Canonical != "" {
		out = r.Canonical
	}
	if r.TrimSuffix != "" {
		out = strings.TrimRight(out, r.TrimSuffix)
	}
	return out, out != v
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func normalizeCompany(s string) string {
	if strings.Contains(s, nbspace) {
		s = strings.ReplaceAll(s, "\u00c2"+nbspace, " ")
		s = strings.ReplaceAll(s, nbspace, " ")
	}
	s = strings.TrimSpace(s)
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	return s
}
