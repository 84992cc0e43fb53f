package raster

import "math"

// Circle is an opaque filled disc: position, radius, and RGB color.
// Equality is structural (two Circles are == iff all six fields match).
type Circle struct {
	X, Y   uint32
	Radius uint32
	R, G, B uint8
}

// OverlapsCircle reports whether the two discs intersect.
func (c Circle) OverlapsCircle(other Circle) bool {
	dx := float64(int64(c.X) - int64(other.X))
	dy := float64(int64(c.Y) - int64(other.Y))
	dist := math.Sqrt(dx*dx + dy*dy)
	return dist < float64(c.Radius+other.Radius)
}

// OverlapsRegion reports whether the disc intersects the region's signed
// bounding square, via the standard circle-vs-AABB clamp test.
func (c Circle) OverlapsRegion(r Region) bool {
	cx := float64(int64(c.X))
	cy := float64(int64(c.Y))

	clampedX := clamp(cx, float64(r.MinX), float64(r.MaxX))
	clampedY := clamp(cy, float64(r.MinY), float64(r.MaxY))

	dx := cx - clampedX
	dy := cy - clampedY
	dist := math.Sqrt(dx*dx + dy*dy)
	return dist <= float64(c.Radius)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
