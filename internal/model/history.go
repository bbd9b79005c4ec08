package model

// PosSample is one timestamped position record.
type PosSample struct {
	Ts  int64
	Pos Vec3
}

// PositionHistory keeps a short rolling window of position samples, used for
// lag-compensated hit tests. Samples are appended in timestamp order and old
// entries are trimmed against the window on every push.
type PositionHistory struct {
	samples  []PosSample
	windowMs int64
}

// NewPositionHistory creates a history with the given retention window.
func NewPositionHistory(windowMs int64) *PositionHistory {
	return &PositionHistory{
		samples:  make([]PosSample, 0, 32),
		windowMs: windowMs,
	}
}

// Push appends a sample and drops everything older than the window.
func (h *PositionHistory) Push(ts int64, pos Vec3) {
	h.samples = append(h.samples, PosSample{Ts: ts, Pos: pos})
	cutoff := ts - h.windowMs
	i := 0
	for i < len(h.samples)-1 && h.samples[i].Ts < cutoff {
		i++
	}
	if i > 0 {
		h.samples = append(h.samples[:0], h.samples[i:]...)
	}
}

// Len returns the number of retained samples.
func (h *PositionHistory) Len() int {
	return len(h.samples)
}

// At returns the interpolated position at the given timestamp.
// Outside the retained range it clamps to the oldest/newest sample.
// ok is false when no samples exist at all.
func (h *PositionHistory) At(ts int64) (pos Vec3, ok bool) {
	n := len(h.samples)
	if n == 0 {
		return Vec3{}, false
	}
	if ts <= h.samples[0].Ts {
		return h.samples[0].Pos, true
	}
	if ts >= h.samples[n-1].Ts {
		return h.samples[n-1].Pos, true
	}
	for i := 1; i < n; i++ {
		a, b := h.samples[i-1], h.samples[i]
		if ts <= b.Ts {
			span := b.Ts - a.Ts
			if span <= 0 {
				return b.Pos, true
			}
			t := float64(ts-a.Ts) / float64(span)
			return a.Pos.Lerp(b.Pos, t), true
		}
	}
	return h.samples[n-1].Pos, true
}

// Clear drops all samples, used on respawn/teleport so stale positions are
// never interpolated across a discontinuity.
func (h *PositionHistory) Clear() {
	h.samples = h.samples[:0]
}
