package pipeline

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"layoffs/internal/config"
	"layoffs/internal/schema"
	"layoffs/internal/transformer/builtin"
)

func raw(line int, cells ...string) schema.Raw {
	r := schema.Raw{Line: line}
	for i, c := range cells {
		if c == "" {
			continue
		}
		v := c
		*r.Field(schema.Columns[i]) = &v
	}
	return r
}

func TestCleanOptionsFromConfig(t *testing.T) {
	t.Parallel()

	custom := config.Rule{Field: "industry", Prefix: "fin", Canonical: "Finance"}
	p := config.Pipeline{Normalize: config.Normalize{Rules: []config.Rule{custom}, Dedupe: true}}.WithDefaults()

	got := CleanOptionsFromConfig(p)
	want := append(builtin.DefaultRules(), builtin.Rule{Field: "industry", Prefix: "fin", Canonical: "Finance"})
	if diff := cmp.Diff(want, got.Rules); diff != "" {
		t.Fatalf("rules (-want +got):\n%s", diff)
	}
	if !got.Dedupe || got.DateLayout != config.DefaultDateLayout {
		t.Fatalf("options = %+v", got)
	}

	p.Normalize.ReplaceDefaults = true
	if got := CleanOptionsFromConfig(p).Rules; len(got) != 1 || got[0].Prefix != "fin" {
		t.Fatalf("replace defaults: rules = %+v", got)
	}
}

/*
TestClean_Counters runs every stage once and checks the counters and the
row conservation rule: loaded == deduped + filtered + kept.
*/
func TestClean_Counters(t *testing.T) {
	t.Parallel()

	src := []schema.Raw{
		raw(2, "Acme", "NYC", "", "10", "", "1/2/2023"),
		raw(3, "Acme", "NYC", "", "10", "", "1/2/2023"),
		raw(4, " Acme ", "NYC", "Retail", "NULL", "0.5", "bogus"),
		raw(5, "Ghost", "LA", "Tech", "NULL", "null"),
	}
	opts := CleanOptions{Rules: builtin.DefaultRules(), Dedupe: true, DateLayout: "1/2/2006"}

	res, err := Clean(context.Background(), src, opts)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	want := Stats{
		Loaded:         4,
		Normalized:     1,
		Deduped:        1,
		DegradedRows:   1,
		DegradedFields: 1,
		Filtered:       1,
		Imputed:        1,
	}
	if diff := cmp.Diff(want, res.Stats); diff != "" {
		t.Fatalf("stats (-want +got):\n%s", diff)
	}
	if n := res.Stats.Deduped + res.Stats.Filtered + int64(len(res.Records)); n != res.Stats.Loaded {
		t.Fatalf("accounting: %d != %d", n, res.Stats.Loaded)
	}
	if res.Degraded[schema.ColDate] != 1 {
		t.Fatalf("degraded = %v", res.Degraded)
	}
	if *src[2].Company != " Acme " {
		t.Fatalf("source row was modified: %q", *src[2].Company)
	}
}

func TestClean_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Clean(ctx, []schema.Raw{raw(1, "Acme")}, CleanOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestErrAgg_KeepsFirstN(t *testing.T) {
	t.Parallel()

	a := newErrAgg(2)
	for _, m := range []string{"a", "b", "c"} {
		a.add(m)
	}
	if a.count != 3 || !cmp.Equal(a.first, []string{"a", "b"}) {
		t.Fatalf("agg = %d %v", a.count, a.first)
	}
}

/*
TestClean_NoNullOrBlankIndustry configures an extra null token and a rule
that can strip a value down to nothing. Industry must still never be the
NULL/null text or an empty string, and rows with a NULL industry stay
eligible for imputation.
*/
func TestClean_NoNullOrBlankIndustry(t *testing.T) {
	t.Parallel()

	p := config.Pipeline{
		Normalize: config.Normalize{Rules: []config.Rule{{Field: "industry", Prefix: ".", TrimSuffix: "."}}},
		Coerce:    config.Coerce{NullTokens: []string{"N/A"}},
	}.WithDefaults()
	src := []schema.Raw{
		raw(2, "Acme", "NYC", "NULL", "1200"),
		raw(3, "Acme", "NYC", "Retail", "10"),
		raw(4, "Zed", "NYC", "null", "5"),
		raw(5, "Dot", "NYC", "...", "5"),
		raw(6, "Na", "NYC", "N/A", "5"),
	}

	res, err := Clean(context.Background(), src, CleanOptionsFromConfig(p))
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	for _, r := range res.Records {
		if r.Industry == nil {
			continue
		}
		switch v := *r.Industry; v {
		case "NULL", "null", "":
			t.Fatalf("line %d: industry %q survived cleaning", r.Line, v)
		}
	}
	if got := res.Records[0].Industry; got == nil || *got != "Retail" {
		t.Fatalf("Acme industry = %v, want Retail", got)
	}
	if res.Stats.Imputed != 1 {
		t.Fatalf("imputed = %d, want 1", res.Stats.Imputed)
	}
}

func TestClean_DedupePolicyFromConfig(t *testing.T) {
	t.Parallel()

	p := config.Pipeline{Normalize: config.Normalize{
		Dedupe:       true,
		DedupePolicy: "most-complete",
		DedupeKeys:   []string{schema.ColCompany, schema.ColDate},
	}}.WithDefaults()
	src := []schema.Raw{
		raw(2, "Acme", "", "", "10", "", "1/2/2023"),
		raw(3, "Acme", "NYC", "Retail", "10", "0.5", "1/2/2023"),
		raw(4, "Acme", "NYC", "Retail", "10", "0.5", "2/2/2023"),
	}

	res, err := Clean(context.Background(), src, CleanOptionsFromConfig(p))
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if res.Stats.Deduped != 1 || len(res.Records) != 2 {
		t.Fatalf("deduped = %d, records = %d", res.Stats.Deduped, len(res.Records))
	}
	if res.Records[0].Line != 3 {
		t.Fatalf("survivor line = %d, want the more complete row 3", res.Records[0].Line)
	}
}

func TestClean_ContractViolationsAreCountedNotDropped(t *testing.T) {
	t.Parallel()

	src := []schema.Raw{
		raw(2, "Acme", "NYC", "Retail", "10", "2.5"),
		raw(3, "NULL", "NYC", "Retail", "-4"),
		raw(4, "Beta", "NYC", "Retail", "4", "0.2"),
	}
	res, err := Clean(context.Background(), src, CleanOptions{})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if len(res.Records) != 3 || res.Stats.Invalid != 2 {
		t.Fatalf("records = %d invalid = %d, want 3 and 2", len(res.Records), res.Stats.Invalid)
	}
}
