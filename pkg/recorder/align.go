package recorder

// macroblockSize is the H.264 macroblock edge length the clamp policy aligns
// to when a source dimension exceeds its destination buffer.
const macroblockSize = 16

// AlignedClamp returns the drawable extent for one dimension of a source
// image being rendered into a buffer of the given limit. Sources within the
// limit pass through unscaled. An oversized dimension is clamped to the
// multiple of macroblockSize nearest the limit, rounded away from zero.
//
// The away-from-zero rounding can exceed a limit that is not itself
// 16-aligned. That quirk is preserved deliberately; encoder inputs are
// macroblock-aligned in practice, and the policy lives here so it can be
// revisited in one place.
func AlignedClamp(src, limit int) int {
	if src <= limit {
		return src
	}
	return alignAwayFromZero(limit)
}

// alignAwayFromZero rounds v to the nearest multiple of macroblockSize,
// increasing the magnitude for values between multiples.
func alignAwayFromZero(v int) int {
	if v >= 0 {
		return (v + macroblockSize - 1) / macroblockSize * macroblockSize
	}
	return -((-v + macroblockSize - 1) / macroblockSize * macroblockSize)
}
