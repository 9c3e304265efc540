package recorder

import (
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// renderFrame draws src into the pixel buffer: the buffer is cleared to
// black, then the source is drawn anchored at the origin. A source larger
// than the buffer in either dimension is scaled down to the AlignedClamp of
// that dimension; a source within bounds is drawn unscaled.
//
// The buffer is locked only for the duration of drawing and unlocked on all
// exit paths.
func renderFrame(buf *PixelBuffer, src image.Image) {
	rgba := buf.Lock()
	defer buf.Unlock()

	dc := gg.NewContextForRGBA(rgba)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	srcW := src.Bounds().Dx()
	srcH := src.Bounds().Dy()
	if srcW <= 0 || srcH <= 0 {
		return
	}

	dstW := AlignedClamp(srcW, buf.Width())
	dstH := AlignedClamp(srcH, buf.Height())

	if dstW == srcW && dstH == srcH {
		dc.DrawImage(src, 0, 0)
		return
	}

	// Oversized source: scale into the clamped extent.
	dstRect := image.Rect(0, 0, dstW, dstH)
	draw.CatmullRom.Scale(rgba, dstRect, src, src.Bounds(), draw.Over, nil)
}
