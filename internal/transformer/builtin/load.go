// Package builtin contains the cleaning stages of the layoffs pipeline.
package builtin

import "layoffs/internal/schema"

// Load returns an isolated working copy of src. Later stages mutate the
// copy in place; src is never touched. An empty source yields an empty,
// non-nil working set.
func Load(src []schema.Raw) []schema.Raw {
	out := make([]schema.Raw, len(src))
	for i, r := range src {
		out[i] = r.Clone()
	}
	return out
}
