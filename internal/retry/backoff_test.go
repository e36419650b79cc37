package retry

import (
	"testing"
	"time"
)

func TestExponential(t *testing.T) {
	policy := Exponential(time.Second)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
	}

	for _, tt := range tests {
		if got := policy(tt.attempt); got != tt.want {
			t.Errorf("policy(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestExponentialDifferentBase(t *testing.T) {
	policy := Exponential(250 * time.Millisecond)

	if got := policy(2); got != time.Second {
		t.Errorf("policy(2) = %v, want 1s", got)
	}
}
