package utils

import (
	"testing"
	"time"
)

func TestLatencyTrackerPercentile(t *testing.T) {
	tracker := NewLatencyTracker(10)
	for i := 1; i <= 10; i++ {
		tracker.Observe(time.Duration(i) * time.Millisecond)
	}

	if got := tracker.Count(); got != 10 {
		t.Fatalf("expected 10 samples, got %d", got)
	}
	if got := tracker.Percentile(0); got != time.Millisecond {
		t.Fatalf("p0 should be the minimum, got %s", got)
	}
	if got := tracker.Percentile(100); got != 10*time.Millisecond {
		t.Fatalf("p100 should be the maximum, got %s", got)
	}
	if got := tracker.Percentile(50); got < 4*time.Millisecond || got > 6*time.Millisecond {
		t.Fatalf("p50 out of range: %s", got)
	}
}

func TestLatencyTrackerBoundsMemory(t *testing.T) {
	tracker := NewLatencyTracker(5)
	for i := 0; i < 20; i++ {
		tracker.Observe(time.Duration(i) * time.Second)
	}
	if got := tracker.Count(); got != 5 {
		t.Fatalf("expected bounded count 5, got %d", got)
	}
	// Only the most recent samples survive.
	if got := tracker.Percentile(0); got != 15*time.Second {
		t.Fatalf("oldest surviving sample should be 15s, got %s", got)
	}
}

func TestLatencyTrackerEmpty(t *testing.T) {
	tracker := NewLatencyTracker(4)
	if got := tracker.Percentile(95); got != 0 {
		t.Fatalf("empty tracker should report 0, got %s", got)
	}
}
