package recorder

import (
	"testing"
	"time"
)

func TestTickInterval(t *testing.T) {
	tests := []struct {
		fps  int
		want time.Duration
	}{
		{fps: 60, want: 16 * time.Millisecond},
		{fps: 1, want: 1000 * time.Millisecond},
		{fps: 1000, want: 1 * time.Millisecond},
		{fps: 30, want: 33 * time.Millisecond},
		{fps: 24, want: 41 * time.Millisecond},
		{fps: 3, want: 333 * time.Millisecond},
		// Out-of-range rates clamp to the nearest bound.
		{fps: 0, want: 1000 * time.Millisecond},
		{fps: -5, want: 1000 * time.Millisecond},
		{fps: 2000, want: 1 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := TickInterval(tt.fps); got != tt.want {
			t.Errorf("TickInterval(%d) = %s, want %s", tt.fps, got, tt.want)
		}
	}
}

func TestPlaceholderProgress(t *testing.T) {
	if got := PlaceholderProgress(42 * time.Second); got != 0 {
		t.Errorf("expected placeholder progress 0, got %f", got)
	}
}
