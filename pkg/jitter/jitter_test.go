package jitter

import (
	"testing"
	"time"
)

func TestDuration_Bounds(t *testing.T) {
	base := time.Second

	for i := 0; i < 100; i++ {
		got := Duration(base, DefaultJitter)
		if got < base || got > base+base/2 {
			t.Fatalf("Duration out of [1s, 1.5s]: %s", got)
		}
	}
}

func TestExponentialBackoff_Growth(t *testing.T) {
	base := time.Second
	max := 10 * time.Second

	tests := []struct {
		attempt int
		low     time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{10, 10 * time.Second}, // ограничено max
	}

	for _, tt := range tests {
		got := ExponentialBackoff(base, max, tt.attempt, 0)
		if got != tt.low {
			t.Errorf("attempt %d: got %s, want %s", tt.attempt, got, tt.low)
		}
	}

	jittered := ExponentialBackoff(base, max, 2, DefaultJitter)
	if jittered < 4*time.Second || jittered > 6*time.Second {
		t.Errorf("jittered backoff out of [4s, 6s]: %s", jittered)
	}
}
