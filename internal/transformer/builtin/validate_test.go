package builtin

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"layoffs/internal/schema"
)

func TestValidateCheck(t *testing.T) {
	t.Parallel()

	in := []schema.Record{
		{Company: "Acme", TotalLaidOff: i64(10), PercentageLaidOff: f64(0.5), Line: 2},
		{Company: "", TotalLaidOff: i64(-3), Line: 3},
		{Company: "Beta", PercentageLaidOff: f64(1.5), FundsRaised: f64(-1), Line: 4},
		{Company: "Gamma", PercentageLaidOff: f64(1), Line: 5},
	}
	var got []Violation
	v := Validate{Contract: schema.Layoffs, Flag: func(x Violation) { got = append(got, x) }}

	out := v.Apply(in)
	if len(out) != len(in) {
		t.Fatalf("Validate dropped records: %d -> %d", len(in), len(out))
	}
	want := []Violation{
		{Line: 3, Field: schema.ColCompany, Reason: "required value missing"},
		{Line: 3, Field: schema.ColTotalLaidOff, Reason: "negative int -3"},
		{Line: 4, Field: schema.ColPercentageLaidOff, Reason: "fraction 1.5 above 1"},
		{Line: 4, Field: schema.ColFundsRaised, Reason: "negative float -1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violations (-want +got):\n%s", diff)
	}
	if n := v.Check(in); n != 2 {
		t.Fatalf("Check = %d, want 2 records", n)
	}
	if s := got[0].String(); s != "line 3: company: required value missing" {
		t.Fatalf("String() = %q", s)
	}
}

func TestValidateCheck_EmptyContract(t *testing.T) {
	t.Parallel()

	if n := (Validate{}).Check([]schema.Record{{TotalLaidOff: i64(-1)}}); n != 0 {
		t.Fatalf("empty contract flagged %d records", n)
	}
}
