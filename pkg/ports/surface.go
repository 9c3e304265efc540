// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"image"
)

// Surface abstracts a live visual surface that can be rasterized on demand.
// A Surface is owned by the host; recording components only read from it and
// never manage its lifetime.
type Surface interface {
	// Bounds returns the current pixel dimensions of the surface.
	Bounds() (width, height int)

	// Rasterize captures the surface into an in-memory bitmap snapshot.
	// The returned image is read-only after handoff and is never mutated
	// by the surface afterwards.
	Rasterize(ctx context.Context) (image.Image, error)

	// Attached reports whether the surface is still available for capture.
	// A detached surface makes capture attempts no-ops rather than errors.
	Attached() bool
}
