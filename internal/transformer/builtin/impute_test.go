package builtin

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"layoffs/internal/schema"
)

func industries(recs []schema.Record) []*string {
	out := make([]*string, len(recs))
	for i, r := range recs {
		out[i] = r.Industry
	}
	return out
}

func TestImpute_Acme(t *testing.T) {
	t.Parallel()

	in := []schema.Record{
		{Company: "Acme", TotalLaidOff: i64(5)},
		{Company: "Acme", Industry: ptr("Retail"), TotalLaidOff: i64(7)},
	}
	n := Impute{}.Fill(in)

	if n != 1 {
		t.Fatalf("filled = %d, want 1", n)
	}
	if diff := cmp.Diff([]*string{ptr("Retail"), ptr("Retail")}, industries(in)); diff != "" {
		t.Fatalf("industries (-want +got):\n%s", diff)
	}
}

/*
TestImpute_FirstDonorWins: with conflicting industries the first non-nil
value in working-set order is used, and rows that already have a value keep
it.
*/
func TestImpute_FirstDonorWins(t *testing.T) {
	t.Parallel()

	in := []schema.Record{
		{Company: "Acme"},
		{Company: "Acme", Industry: ptr("Retail")},
		{Company: "Acme", Industry: ptr("Food")},
		{Company: "Acme"},
	}
	Impute{}.Apply(in)

	want := []*string{ptr("Retail"), ptr("Retail"), ptr("Food"), ptr("Retail")}
	if diff := cmp.Diff(want, industries(in)); diff != "" {
		t.Fatalf("industries (-want +got):\n%s", diff)
	}
}

/*
TestImpute_SiblingProperty: for every company with at least one non-nil
industry no sibling is left nil; companies without a donor stay nil.
*/
func TestImpute_SiblingProperty(t *testing.T) {
	t.Parallel()

	in := []schema.Record{
		{Company: "A"}, {Company: "B"}, {Company: "A", Industry: ptr("Travel")},
		{Company: "C"}, {Company: "B"}, {Company: "a"}, {Company: "", Industry: ptr("Misc")}, {Company: ""},
	}
	var filled []string
	out := Impute{Filled: func(r schema.Record) { filled = append(filled, r.Company) }}.Apply(in)

	hasDonor := map[string]bool{}
	for _, r := range out {
		if r.Industry != nil {
			hasDonor[r.Company] = true
		}
	}
	for _, r := range out {
		if hasDonor[r.Company] && r.Industry == nil {
			t.Fatalf("company %q kept a nil industry", r.Company)
		}
	}
	if out[1].Industry != nil || out[3].Industry != nil || out[5].Industry != nil {
		t.Fatalf("companies without a donor were filled: %+v", out)
	}
	if diff := cmp.Diff([]string{"A", ""}, filled); diff != "" {
		t.Fatalf("filled (-want +got):\n%s", diff)
	}
}

func TestImpute_DoesNotAliasDonor(t *testing.T) {
	t.Parallel()

	in := []schema.Record{{Company: "A", Industry: ptr("Retail")}, {Company: "A"}}
	Impute{}.Apply(in)
	*in[1].Industry = "changed"
	if *in[0].Industry != "Retail" {
		t.Fatalf("donor industry changed through imputed pointer")
	}
}
