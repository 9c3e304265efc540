// Package imagesurface provides a Surface backed by an in-memory image.
// It is a deterministic capture source for tests and demos.
package imagesurface

import (
	"context"
	"image"
	"sync"

	"github.com/user/viewcast/pkg/ports"
)

// Surface implements ports.Surface over a caller-supplied image.
type Surface struct {
	mu       sync.Mutex
	img      image.Image
	detached bool
}

// New creates a Surface showing img. The image must not be mutated by the
// caller after being handed in; use Swap to change content between captures.
func New(img image.Image) *Surface {
	return &Surface{img: img}
}

// Bounds returns the pixel dimensions of the current image.
func (s *Surface) Bounds() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == nil {
		return 0, 0
	}
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Rasterize returns the current image. The returned snapshot stays valid
// across later Swap calls because Swap replaces the image rather than
// mutating it.
func (s *Surface) Rasterize(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img, nil
}

// Attached reports whether the surface is still available.
func (s *Surface) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.detached && s.img != nil
}

// Swap replaces the displayed image, simulating a live surface changing
// between ticks.
func (s *Surface) Swap(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = img
}

// Detach makes the surface unavailable; subsequent ticks become no-ops.
func (s *Surface) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detached = true
}

// Ensure Surface implements ports.Surface
var _ ports.Surface = (*Surface)(nil)
