// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"image"
	"sync"

	"github.com/user/viewcast/pkg/ports"
)

// Surface is a mock implementation of ports.Surface.
type Surface struct {
	BoundsFunc    func() (width, height int)
	RasterizeFunc func(ctx context.Context) (image.Image, error)
	AttachedFunc  func() bool

	// Recorded calls for verification
	mu             sync.Mutex
	RasterizeCalls int
}

func (m *Surface) Bounds() (int, int) {
	if m.BoundsFunc != nil {
		return m.BoundsFunc()
	}
	return 64, 48
}

func (m *Surface) Rasterize(ctx context.Context) (image.Image, error) {
	m.mu.Lock()
	m.RasterizeCalls++
	m.mu.Unlock()
	if m.RasterizeFunc != nil {
		return m.RasterizeFunc(ctx)
	}
	w, h := m.Bounds()
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func (m *Surface) Attached() bool {
	if m.AttachedFunc != nil {
		return m.AttachedFunc()
	}
	return true
}

// Rasterized returns the number of Rasterize calls so far.
func (m *Surface) Rasterized() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RasterizeCalls
}

// Ensure Surface implements ports.Surface
var _ ports.Surface = (*Surface)(nil)
