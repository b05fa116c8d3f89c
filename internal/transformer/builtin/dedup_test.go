package builtin

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"layoffs/internal/schema"
)

func mk(company, industry string, line int) schema.Raw {
	r := schema.Raw{Company: ptr(company), Line: line}
	if industry != "" {
		r.Industry = ptr(industry)
	}
	return r
}

func lines(rows []schema.Raw) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Line
	}
	return out
}

func TestDeDup_FullRowKeepFirst(t *testing.T) {
	t.Parallel()

	in := []schema.Raw{
		mk("Acme", "Retail", 1),
		mk("Acme", "Retail", 2),
		mk("Acme", "", 3),
		mk("Beta", "Retail", 4),
		mk("Acme", "Retail", 5),
	}
	var dropped []int
	got := DeDup{Dropped: func(line int) { dropped = append(dropped, line) }}.Apply(in)

	if diff := cmp.Diff([]int{1, 3, 4}, lines(got)); diff != "" {
		t.Fatalf("survivors (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 5}, dropped); diff != "" {
		t.Fatalf("dropped (-want +got):\n%s", diff)
	}
}

func TestDeDup_Policies(t *testing.T) {
	t.Parallel()

	in := []schema.Raw{
		mk("Acme", "", 1),
		{Company: ptr("Acme"), Industry: ptr("Retail"), Stage: ptr("Seed"), Line: 2},
		mk("Acme", "Retail", 3),
		mk("Beta", "", 4),
	}
	keys := []string{schema.ColCompany}

	tests := []struct {
		policy string
		want   []int
	}{
		{policy: "", want: []int{1, 4}},
		{policy: "keep-first", want: []int{1, 4}},
		{policy: "keep-last", want: []int{3, 4}},
		{policy: "most-complete", want: []int{2, 4}},
	}
	for _, tt := range tests {
		t.Run("policy="+tt.policy, func(t *testing.T) {
			t.Parallel()
			got := DeDup{Keys: keys, Policy: tt.policy}.Apply(Load(in))
			if diff := cmp.Diff(tt.want, lines(got)); diff != "" {
				t.Fatalf("survivors (-want +got):\n%s", diff)
			}
		})
	}
}

/*
TestDeDup_FingerprintCollisionVerified builds two rows whose fingerprints are
equal by construction (nil and "\x00" encode the same) and checks that both
survive because their fields differ.
*/
func TestDeDup_FingerprintCollisionVerified(t *testing.T) {
	t.Parallel()

	a := schema.Raw{Company: ptr("Acme"), Line: 1}
	b := schema.Raw{Company: ptr("Acme"), Stage: ptr("\x00"), Line: 2}
	if fingerprint(&a, schema.Columns) != fingerprint(&b, schema.Columns) {
		t.Fatalf("test rows should share a fingerprint")
	}

	got := DeDup{}.Apply([]schema.Raw{a, b})
	if len(got) != 2 {
		t.Fatalf("distinct rows collapsed: %+v", got)
	}
}

func TestDeDup_Empty(t *testing.T) {
	t.Parallel()

	if got := (DeDup{}).Apply([]schema.Raw{}); got == nil || len(got) != 0 {
		t.Fatalf("DeDup.Apply(empty) = %#v", got)
	}
}
