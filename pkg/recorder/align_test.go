package recorder

import "testing"

func TestAlignedClamp(t *testing.T) {
	tests := []struct {
		name  string
		src   int
		limit int
		want  int
	}{
		{name: "within limit passes through", src: 99, limit: 100, want: 99},
		{name: "exactly at limit passes through", src: 64, limit: 64, want: 64},
		{name: "oversized clamps to aligned limit", src: 65, limit: 64, want: 64},
		{name: "unaligned limit rounds away from zero", src: 1000, limit: 990, want: 992},
		{name: "small unaligned limit rounds up", src: 70, limit: 50, want: 64},
		{name: "limit below one macroblock", src: 16, limit: 8, want: 16},
		{name: "zero source", src: 0, limit: 64, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AlignedClamp(tt.src, tt.limit)
			if got != tt.want {
				t.Errorf("AlignedClamp(%d, %d) = %d, want %d", tt.src, tt.limit, got, tt.want)
			}
		})
	}
}

func TestAlignAwayFromZero(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 0},
		{1, 16},
		{16, 16},
		{17, 32},
		{990, 992},
		{-1, -16},
		{-16, -16},
	}

	for _, tt := range tests {
		if got := alignAwayFromZero(tt.in); got != tt.want {
			t.Errorf("alignAwayFromZero(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
