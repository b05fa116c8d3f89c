package builtin

import (
	"strings"

	"github.com/zeebo/xxh3"

	"layoffs/internal/schema"
)

// DeDup collapses duplicate rows and chooses a winner according to Policy:
//
//   - "keep-first"   : keep the earliest occurrence (default)
//   - "keep-last"    : keep the latest occurrence
//   - "most-complete": keep the row with the most non-nil fields; ties keep
//     the earliest
//
// Rows are keyed by the columns in Keys, or by all columns when Keys is
// empty. Keys are fingerprinted with xxh3; equal fingerprints are confirmed
// by comparing the key columns before a row is treated as a duplicate.
// Survivors keep their relative input order.
type DeDup struct {
	Keys   []string
	Policy string

	// Dropped, if set, is called for every discarded row.
	Dropped func(line int)
}

func (d DeDup) Apply(in []schema.Raw) []schema.Raw {
	if len(in) == 0 {
		return in
	}
	keys := d.Keys
	if len(keys) == 0 {
		keys = schema.Columns
	}
	policy := strings.ToLower(strings.TrimSpace(d.Policy))

	// buckets maps fingerprint -> indexes of current winners with that print.
	buckets := make(map[uint64][]int, len(in))
	winner := make([]bool, len(in))

	for i := range in {
		fp := fingerprint(&in[i], keys)
		slot := -1
		for j, w := range buckets[fp] {
			if sameKey(&in[w], &in[i], keys) {
				slot = j
				break
			}
		}
		if slot < 0 {
			buckets[fp] = append(buckets[fp], i)
			winner[i] = true
			continue
		}
		prev := buckets[fp][slot]
		replace := false
		switch policy {
		case "keep-last":
			replace = true
		case "most-complete":
			replace = completeness(in[i]) > completeness(in[prev])
		}
		if replace {
			buckets[fp][slot] = i
			winner[prev], winner[i] = false, true
		}
	}

	out := make([]schema.Raw, 0, len(in))
	for i, r := range in {
		if winner[i] {
			out = append(out, r)
		} else if d.Dropped != nil {
			d.Dropped(r.Line)
		}
	}
	return out
}

func fingerprint(r *schema.Raw, keys []string) uint64 {
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		if p := r.Field(k); p != nil && *p != nil {
			b.WriteString(**p)
		} else {
			b.WriteByte('\x00')
		}
	}
	return xxh3.HashString(b.String())
}

func sameKey(a, b *schema.Raw, keys []string) bool {
	for _, k := range keys {
		pa, pb := a.Field(k), b.Field(k)
		if pa == nil || pb == nil {
			continue
		}
		va, vb := *pa, *pb
		if (va == nil) != (vb == nil) {
			return false
		}
		if va != nil && *va != *vb {
			return false
		}
	}
	return true
}

func completeness(r schema.Raw) int {
	n := 0
	for _, f := range r.Fields() {
		if f != nil {
			n++
		}
	}
	return n
}
