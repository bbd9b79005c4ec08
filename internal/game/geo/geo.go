package geo

import (
	"math"

	"github.com/openrift/riftd/internal/model"
)

// Geometry helpers shared by hit detection and movement validation.
// Everything here treats Y as height: collision and range tests are done on
// the XZ plane, matching how targets and obstacles are authored.

// ClosestPointOnSegment returns the point on segment [a, b] closest to p,
// using XZ distances only (Y is carried through by interpolation).
func ClosestPointOnSegment(p, a, b model.Vec3) model.Vec3 {
	ab := b.Sub(a)
	abLenSq := ab.X*ab.X + ab.Z*ab.Z
	if abLenSq == 0 {
		return a
	}
	ap := p.Sub(a)
	t := (ap.X*ab.X + ap.Z*ab.Z) / abLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Lerp(b, t)
}

// DistToSegment returns the XZ-plane distance from p to segment [a, b].
func DistToSegment(p, a, b model.Vec3) float64 {
	c := ClosestPointOnSegment(p, a, b)
	dx := p.X - c.X
	dz := p.Z - c.Z
	return hypot(dx, dz)
}

// DistXZ returns the XZ-plane distance between two points.
func DistXZ(a, b model.Vec3) float64 {
	return hypot(a.X-b.X, a.Z-b.Z)
}

// Rect is an axis-aligned static obstacle footprint on the XZ plane.
type Rect struct {
	MinX float64 `json:"min_x"`
	MinZ float64 `json:"min_z"`
	MaxX float64 `json:"max_x"`
	MaxZ float64 `json:"max_z"`
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(p model.Vec3) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Z >= r.MinZ && p.Z <= r.MaxZ
}

// IntersectsSegment reports whether segment [a, b] crosses the rectangle,
// endpoints included. Uses the slab method on the XZ plane.
func (r Rect) IntersectsSegment(a, b model.Vec3) bool {
	tMin, tMax := 0.0, 1.0

	dx := b.X - a.X
	if dx == 0 {
		if a.X < r.MinX || a.X > r.MaxX {
			return false
		}
	} else {
		t1 := (r.MinX - a.X) / dx
		t2 := (r.MaxX - a.X) / dx
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return false
		}
	}

	dz := b.Z - a.Z
	if dz == 0 {
		if a.Z < r.MinZ || a.Z > r.MaxZ {
			return false
		}
	} else {
		t1 := (r.MinZ - a.Z) / dz
		t2 := (r.MaxZ - a.Z) / dz
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return false
		}
	}

	return true
}

func hypot(a, b float64) float64 {
	// math.Hypot guards against overflow we cannot hit at world scale;
	// plain sqrt keeps the hot path cheap.
	return math.Sqrt(a*a + b*b)
}
