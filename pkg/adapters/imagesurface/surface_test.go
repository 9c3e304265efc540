package imagesurface

import (
	"context"
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestBounds(t *testing.T) {
	s := New(solid(320, 240, color.RGBA{R: 255, A: 255}))
	w, h := s.Bounds()
	if w != 320 || h != 240 {
		t.Errorf("expected 320x240, got %dx%d", w, h)
	}
}

func TestRasterize(t *testing.T) {
	red := solid(8, 8, color.RGBA{R: 255, A: 255})
	s := New(red)

	img, err := s.Rasterize(context.Background())
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if img != red {
		t.Error("expected the current image back")
	}
}

func TestRasterizeCancelledContext(t *testing.T) {
	s := New(solid(8, 8, color.RGBA{A: 255}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Rasterize(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestSwapKeepsEarlierSnapshots(t *testing.T) {
	red := solid(8, 8, color.RGBA{R: 255, A: 255})
	blue := solid(8, 8, color.RGBA{B: 255, A: 255})

	s := New(red)
	first, err := s.Rasterize(context.Background())
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}

	s.Swap(blue)
	second, err := s.Rasterize(context.Background())
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}

	if first == second {
		t.Error("expected the swap to replace the image")
	}
	if r, _, _, _ := first.At(0, 0).RGBA(); r == 0 {
		t.Error("expected the earlier snapshot to stay red after Swap")
	}
}

func TestDetach(t *testing.T) {
	s := New(solid(8, 8, color.RGBA{A: 255}))
	if !s.Attached() {
		t.Fatal("expected surface attached")
	}
	s.Detach()
	if s.Attached() {
		t.Error("expected surface detached")
	}
}

func TestNilImageNotAttached(t *testing.T) {
	s := New(nil)
	if s.Attached() {
		t.Error("expected surface with no image to report detached")
	}
	if w, h := s.Bounds(); w != 0 || h != 0 {
		t.Errorf("expected zero bounds, got %dx%d", w, h)
	}
}
