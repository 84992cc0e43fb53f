// Package pointselector produces candidate (x,y) seeds for the Builder to
// examine next.
package pointselector

import (
	"image"
	"math/rand/v2"
	"sort"

	"github.com/cwbudde/sediment/internal/raster"
)

// PointSelector produces the next candidate point. Next returns false
// once the selector is exhausted (the Random variant never exhausts).
type PointSelector interface {
	Next() (image.Point, bool)
}

// RandomSelector draws a uniformly-random point on every call. It is
// infinite and restartable — restarting simply means constructing a new
// one, since it carries no cursor state.
type RandomSelector struct {
	width, height int
}

// NewRandomSelector builds a RandomSelector over [0,width) x [0,height).
func NewRandomSelector(width, height int) *RandomSelector {
	return &RandomSelector{width: width, height: height}
}

// Next returns a uniformly-random point; the bool is always true.
func (s *RandomSelector) Next() (image.Point, bool) {
	x := rand.N(s.width)
	y := rand.N(s.height)
	return image.Pt(x, y), true
}

// DistanceSelector precomputes the top-K pixels by PixelDelta(reference,
// current), largest first, and yields them in that order. It is finite
// and not restartable.
type DistanceSelector struct {
	points []image.Point
	next   int
}

// NewDistanceSelector scans reference and current pixel-by-pixel,
// keeping the K points with the largest PixelDelta.
func NewDistanceSelector(reference, current *raster.Canvas, k int) *DistanceSelector {
	type scored struct {
		pt    image.Point
		delta uint32
	}

	w, h := reference.Width(), reference.Height()
	candidates := make([]scored, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := raster.PixelDelta(reference.At(x, y), current.At(x, y))
			candidates = append(candidates, scored{pt: image.Pt(x, y), delta: d})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].delta > candidates[j].delta
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	points := make([]image.Point, k)
	for i := 0; i < k; i++ {
		points[i] = candidates[i].pt
	}

	return &DistanceSelector{points: points}
}

// Next returns the next-largest-delta point, or false once exhausted.
func (s *DistanceSelector) Next() (image.Point, bool) {
	if s.next >= len(s.points) {
		return image.Point{}, false
	}
	pt := s.points[s.next]
	s.next++
	return pt, true
}
