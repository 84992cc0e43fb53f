package raster

// Region is the axis-aligned bounding square of a circle (cx, cy, r),
// with both signed bounds (which may extend outside any canvas, an
// "overhang") and clipped unsigned "real" bounds.
type Region struct {
	CenterX, CenterY uint32
	Radius           uint32
	MinX, MinY       int32
	MaxX, MaxY       int32
}

// NewRegion computes the signed and clipped bounds of the circle
// (centerX, centerY, radius).
func NewRegion(centerX, centerY, radius uint32) Region {
	x := int32(centerX)
	y := int32(centerY)
	r := int32(radius)

	return Region{
		CenterX: centerX,
		CenterY: centerY,
		Radius:  radius,
		MinX:    x - r,
		MinY:    y - r,
		MaxX:    x + r,
		MaxY:    y + r,
	}
}

// RealOriginX is the canvas-clipped left edge of the region.
func (r Region) RealOriginX() uint32 {
	if r.MinX < 0 {
		return 0
	}
	return uint32(r.MinX)
}

// RealOriginY is the canvas-clipped top edge of the region.
func (r Region) RealOriginY() uint32 {
	if r.MinY < 0 {
		return 0
	}
	return uint32(r.MinY)
}

// RealWidth is the clipped rectangle's width.
func (r Region) RealWidth() uint32 {
	return uint32(r.MaxX) - r.RealOriginX()
}

// RealHeight is the clipped rectangle's height.
func (r Region) RealHeight() uint32 {
	return uint32(r.MaxY) - r.RealOriginY()
}

// RealCenterX is the circle's center expressed in the clipped rectangle's
// own coordinate space.
func (r Region) RealCenterX() uint32 {
	return r.CenterX - r.RealOriginX()
}

// RealCenterY is the circle's center expressed in the clipped rectangle's
// own coordinate space.
func (r Region) RealCenterY() uint32 {
	return r.CenterY - r.RealOriginY()
}
