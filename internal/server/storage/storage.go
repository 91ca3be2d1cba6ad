// Package storage holds the block-storage backends. A backend stores opaque
// byte objects under caller-chosen names; block naming and metadata live in
// the repositories layer.
package storage

import "context"

// Backend is a flat object store for block payloads.
type Backend interface {
	// Write stores data under name. Names are unique per block write, so
	// Write never needs to overwrite an existing object.
	Write(ctx context.Context, name string, data []byte) error

	// Read returns the bytes previously stored under name.
	Read(ctx context.Context, name string) ([]byte, error)
}
