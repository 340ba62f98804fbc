package retention

import (
	"testing"
	"time"
)

func TestCutoff(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	p := Default()

	cutoff := p.Cutoff(now)
	want := now.Add(-30 * 24 * time.Hour).UnixMilli()
	if cutoff != want {
		t.Errorf("expected cutoff %d, got %d", want, cutoff)
	}
}

func TestKeepBoundaries(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	p := Default()

	tests := []struct {
		name string
		ts   int64
		want bool
	}{
		{"now", now.UnixMilli(), true},
		{"exactly at cutoff", p.Cutoff(now), true},
		{"1ms before cutoff", p.Cutoff(now) - 1, false},
		{"29 days old", now.Add(-29 * 24 * time.Hour).UnixMilli(), true},
		{"31 days old", now.Add(-31 * 24 * time.Hour).UnixMilli(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Keep(now, tt.ts); got != tt.want {
				t.Errorf("Keep(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestZeroWindowFallsBackToDefault(t *testing.T) {
	now := time.Now()
	p := Policy{}

	if p.Cutoff(now) != (Policy{Window: DefaultWindow}).Cutoff(now) {
		t.Error("zero window should behave like the default window")
	}
}
