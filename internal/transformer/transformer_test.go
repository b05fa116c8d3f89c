package transformer

import (
	"reflect"
	"strconv"
	"sync/atomic"
	"testing"

	"layoffs/internal/schema"
)

/*
identityTransformer is a no-op transformer used in tests/benchmarks.
It returns the input slice without allocating or modifying it.
*/
type identityTransformer struct{}

func (identityTransformer) Apply(in []schema.Raw) []schema.Raw { return in }

/*
setStage mutates each row in place by setting Stage. Used to verify mutation
flows through Chain.
*/
type setStage struct{ val string }

func (t setStage) Apply(in []schema.Raw) []schema.Raw {
	for i := range in {
		in[i].Stage = schema.Str(t.val)
	}
	return in
}

/*
requireCompany keeps only rows with a non-nil company; it filters in place by
reslicing the input.
*/
type requireCompany struct{}

func (requireCompany) Apply(in []schema.Raw) []schema.Raw {
	out := in[:0]
	for _, r := range in {
		if r.Company != nil {
			out = append(out, r)
		}
	}
	return out
}

/*
counterTransformer increments *calls whenever Apply is invoked and stamps the
row Line with its rank, so the last transformer to run is observable.
*/
type counterTransformer struct {
	calls *int32
	rank  int
}

func (t counterTransformer) Apply(in []schema.Raw) []schema.Raw {
	atomic.AddInt32(t.calls, 1)
	for i := range in {
		in[i].Line = t.rank
	}
	return in
}

type dropFirst struct{}

func (dropFirst) Apply(in []schema.Record) []schema.Record {
	if len(in) == 0 {
		return in
	}
	return in[1:]
}

func makeRows(n int) []schema.Raw {
	rows := make([]schema.Raw, n)
	for i := range rows {
		rows[i] = schema.Raw{Company: schema.Str("c" + strconv.Itoa(i)), Line: i + 1}
	}
	return rows
}

/*
TestChainApply_FilterThenMutate verifies that in-place filtering followed by a
mutating transform yields the expected survivors and mutated fields.
*/
func TestChainApply_FilterThenMutate(t *testing.T) {
	t.Parallel()

	in := []schema.Raw{
		{Company: schema.Str("a")},
		{},
		{Company: schema.Str("b")},
	}
	c := Chain{requireCompany{}, setStage{val: "Seed"}}

	out := c.Apply(in)
	if len(out) != 2 {
		t.Fatalf("len(out)=%d; want 2", len(out))
	}
	for _, r := range out {
		if r.Stage == nil || *r.Stage != "Seed" {
			t.Fatalf("mutate-after-filter missing stage on %+v", r)
		}
	}
}

/*
TestChainApply_NilAndEmptyChain verifies that applying a nil or empty Chain
returns the input unchanged.
*/
func TestChainApply_NilAndEmptyChain(t *testing.T) {
	t.Parallel()

	in := makeRows(3)

	var cNil Chain
	outNil := cNil.Apply(in)
	if !reflect.DeepEqual(outNil, in) || &outNil[0] != &in[0] {
		t.Fatalf("nil chain should return the same slice")
	}
	if out := (Chain{}).Apply(in); !reflect.DeepEqual(out, in) {
		t.Fatalf("empty chain mutated output")
	}
}

/*
TestChainApply_TransformerCalledOnce ensures each transformer in the chain is
invoked exactly once per Apply call, left to right.
*/
func TestChainApply_TransformerCalledOnce(t *testing.T) {
	t.Parallel()

	var calls int32
	in := makeRows(2)
	c := Chain{
		counterTransformer{calls: &calls, rank: 1},
		counterTransformer{calls: &calls, rank: 2},
		counterTransformer{calls: &calls, rank: 3},
	}
	out := c.Apply(in)
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("calls=%d; want 3", got)
	}
	for _, r := range out {
		if r.Line != 3 {
			t.Fatalf("last transformer did not run last: %+v", r)
		}
	}
}

func TestChainApply_NilInput(t *testing.T) {
	t.Parallel()

	if out := (Chain{identityTransformer{}}).Apply(nil); out != nil {
		t.Fatalf("Apply(nil) => %#v; want nil", out)
	}
}

func TestRecordChainApply(t *testing.T) {
	t.Parallel()

	in := []schema.Record{{Company: "a"}, {Company: "b"}, {Company: "c"}}
	out := RecordChain{dropFirst{}, dropFirst{}}.Apply(in)
	if len(out) != 1 || out[0].Company != "c" {
		t.Fatalf("RecordChain.Apply = %+v", out)
	}
}

/*
BenchmarkChain_Identity measures overhead of Chain.Apply with no-op
transformers over a medium batch of rows.
*/
func BenchmarkChain_Identity(b *testing.B) {
	in := makeRows(20000)
	c := Chain{identityTransformer{}, identityTransformer{}, identityTransformer{}}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Apply(in)
	}
}
