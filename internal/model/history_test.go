package model

import "testing"

func TestHistoryInterpolates(t *testing.T) {
	h := NewPositionHistory(500)
	h.Push(1000, Vec3{X: 0})
	h.Push(1100, Vec3{X: 10, Z: 4})

	pos, ok := h.At(1050)
	if !ok {
		t.Fatal("At returned no position")
	}
	if pos.X != 5 || pos.Z != 2 {
		t.Errorf("midpoint = %+v, want {5 0 2}", pos)
	}

	pos, _ = h.At(1025)
	if pos.X != 2.5 {
		t.Errorf("quarter point X = %v, want 2.5", pos.X)
	}
}

func TestHistoryClampsOutsideRange(t *testing.T) {
	h := NewPositionHistory(500)
	h.Push(1000, Vec3{X: 1})
	h.Push(1100, Vec3{X: 2})

	if pos, _ := h.At(0); pos.X != 1 {
		t.Errorf("before oldest = %v, want oldest sample", pos.X)
	}
	if pos, _ := h.At(9999); pos.X != 2 {
		t.Errorf("after newest = %v, want newest sample", pos.X)
	}
}

func TestHistoryEmpty(t *testing.T) {
	h := NewPositionHistory(500)
	if _, ok := h.At(1000); ok {
		t.Error("empty history reported a position")
	}
}

func TestHistoryTrimsWindow(t *testing.T) {
	h := NewPositionHistory(300)
	for ts := int64(1000); ts <= 2000; ts += 100 {
		h.Push(ts, Vec3{X: float64(ts)})
	}

	if h.Len() > 5 {
		t.Errorf("retained %d samples for a 300ms window at 100ms cadence", h.Len())
	}
	// Samples inside the window survive exactly.
	if pos, _ := h.At(1900); pos.X != 1900 {
		t.Errorf("in-window sample = %v, want 1900", pos.X)
	}
	// Everything older clamps to the oldest retained sample, never further back.
	if pos, _ := h.At(1000); pos.X < 1700 {
		t.Errorf("pre-window query = %v, stale sample retained", pos.X)
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewPositionHistory(500)
	h.Push(1000, Vec3{X: 1})
	h.Clear()
	if h.Len() != 0 {
		t.Error("Clear left samples behind")
	}
	if _, ok := h.At(1000); ok {
		t.Error("cleared history reported a position")
	}
}

func TestHistoryDuplicateTimestamps(t *testing.T) {
	h := NewPositionHistory(500)
	h.Push(1000, Vec3{X: 1})
	h.Push(1000, Vec3{X: 2})

	// Same-timestamp samples must not divide by a zero span.
	if pos, ok := h.At(1000); !ok || (pos.X != 1 && pos.X != 2) {
		t.Errorf("duplicate-ts query = %+v, %v", pos, ok)
	}
}
