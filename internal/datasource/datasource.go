// Package datasource abstracts where the raw layoff records come from.
package datasource

import (
	"bytes"
	"context"
	"io"
)

// Source opens a stream of raw input bytes.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Bytes is an in-memory Source. Every Open returns a fresh reader over the
// same content.
type Bytes []byte

// Open implements Source.
func (b Bytes) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}
