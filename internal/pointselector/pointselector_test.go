package pointselector

import (
	"testing"

	"github.com/cwbudde/sediment/internal/raster"
)

func TestRandomSelectorStaysInBounds(t *testing.T) {
	s := NewRandomSelector(10, 20)
	for i := 0; i < 1000; i++ {
		pt, ok := s.Next()
		if !ok {
			t.Fatal("RandomSelector.Next() should never exhaust")
		}
		if pt.X < 0 || pt.X >= 10 || pt.Y < 0 || pt.Y >= 20 {
			t.Fatalf("point %v out of bounds [0,10)x[0,20)", pt)
		}
	}
}

func TestDistanceSelectorOrdersByDeltaDescending(t *testing.T) {
	ref := raster.New(4, 1)
	ref.DrawCircle(raster.Circle{X: 0, Y: 0, Radius: 0, R: 255, G: 0, B: 0})
	ref.DrawCircle(raster.Circle{X: 1, Y: 0, Radius: 0, R: 0, G: 0, B: 0})
	ref.DrawCircle(raster.Circle{X: 2, Y: 0, Radius: 0, R: 128, G: 0, B: 0})
	ref.DrawCircle(raster.Circle{X: 3, Y: 0, Radius: 0, R: 0, G: 0, B: 0})

	cur := raster.New(4, 1) // all black

	sel := NewDistanceSelector(ref, cur, 2)

	first, ok := sel.Next()
	if !ok || first.X != 0 {
		t.Fatalf("first point = %v (ok=%v), want x=0 (delta 255)", first, ok)
	}
	second, ok := sel.Next()
	if !ok || second.X != 2 {
		t.Fatalf("second point = %v (ok=%v), want x=2 (delta 128)", second, ok)
	}
	if _, ok := sel.Next(); ok {
		t.Fatal("expected exhaustion after k=2 points")
	}
}

func TestDistanceSelectorClampsKToPixelCount(t *testing.T) {
	ref := raster.New(2, 2)
	cur := raster.New(2, 2)
	sel := NewDistanceSelector(ref, cur, 1000)

	count := 0
	for {
		if _, ok := sel.Next(); !ok {
			break
		}
		count++
	}
	if count != 4 {
		t.Fatalf("got %d points, want 4 (image has only 2x2 pixels)", count)
	}
}
