package recorder

import (
	"image"
	"image/color"
	"testing"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRenderFrame_InBoundsSourceDrawnUnscaled(t *testing.T) {
	pool := NewBufferPool(64, 48, 1)
	defer pool.Close()
	buf, _ := pool.Acquire()

	red := color.RGBA{R: 255, A: 255}
	renderFrame(buf, solidImage(32, 24, red))

	rgba := buf.Lock()
	defer buf.Unlock()

	if got := rgba.RGBAAt(10, 10); got.R != 255 || got.G != 0 {
		t.Errorf("expected red inside source extent, got %v", got)
	}
	// Outside the source extent the buffer is cleared to black.
	if got := rgba.RGBAAt(40, 40); got.R != 0 || got.G != 0 || got.B != 0 {
		t.Errorf("expected black outside source extent, got %v", got)
	}
}

func TestRenderFrame_OversizedSourceScaledDown(t *testing.T) {
	pool := NewBufferPool(64, 48, 1)
	defer pool.Close()
	buf, _ := pool.Acquire()

	red := color.RGBA{R: 255, A: 255}
	renderFrame(buf, solidImage(128, 96, red))

	rgba := buf.Lock()
	defer buf.Unlock()

	// Both dimensions are 16-aligned, so the clamp covers the whole buffer.
	if got := rgba.RGBAAt(60, 44); got.R != 255 {
		t.Errorf("expected scaled source to cover the buffer, got %v", got)
	}
}

func TestRenderFrame_ClearsPreviousContent(t *testing.T) {
	pool := NewBufferPool(16, 16, 1)
	defer pool.Close()
	buf, _ := pool.Acquire()

	renderFrame(buf, solidImage(16, 16, color.RGBA{G: 255, A: 255}))
	renderFrame(buf, solidImage(8, 8, color.RGBA{B: 255, A: 255}))

	rgba := buf.Lock()
	defer buf.Unlock()

	// Area not covered by the second frame must be black, not green.
	if got := rgba.RGBAAt(12, 12); got.G != 0 {
		t.Errorf("expected previous content cleared, got %v", got)
	}
}

func TestRenderFrame_EmptySourceIsNoop(t *testing.T) {
	pool := NewBufferPool(16, 16, 1)
	defer pool.Close()
	buf, _ := pool.Acquire()

	renderFrame(buf, image.NewRGBA(image.Rect(0, 0, 0, 0)))

	rgba := buf.Lock()
	defer buf.Unlock()
	if got := rgba.RGBAAt(0, 0); got.R != 0 || got.G != 0 || got.B != 0 {
		t.Errorf("expected black buffer, got %v", got)
	}
}
