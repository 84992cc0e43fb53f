package renderer

import (
	"strings"
	"testing"

	"github.com/cwbudde/sediment/internal/raster"
)

func TestRenderRasterPaintersAlgorithm(t *testing.T) {
	circles := []raster.Circle{
		{X: 5, Y: 5, Radius: 5, R: 255, G: 0, B: 0},
		{X: 5, Y: 5, Radius: 2, R: 0, G: 255, B: 0},
	}
	canvas := RenderRaster(circles)
	center := canvas.At(5, 5)
	if center.R != 0 || center.G != 255 || center.B != 0 {
		t.Fatalf("center pixel = %+v, want later (green) circle to win", center)
	}
	edge := canvas.At(9, 5)
	if edge.R != 255 || edge.G != 0 {
		t.Fatalf("edge pixel = %+v, want the larger red circle visible", edge)
	}
}

func TestImageDimensionsFitAllCircles(t *testing.T) {
	circles := []raster.Circle{
		{X: 10, Y: 3, Radius: 4, R: 1, G: 2, B: 3},
		{X: 2, Y: 20, Radius: 1, R: 4, G: 5, B: 6},
	}
	if w := ImageWidth(circles); w != 14 {
		t.Fatalf("ImageWidth = %d, want 14", w)
	}
	if h := ImageHeight(circles); h != 21 {
		t.Fatalf("ImageHeight = %d, want 21", h)
	}
}

func TestRenderSVGFormat(t *testing.T) {
	circles := []raster.Circle{
		{X: 1, Y: 2, Radius: 3, R: 255, G: 0, B: 0},
	}
	svg := RenderSVG(circles)

	if !strings.HasPrefix(svg, `<svg id="sedimentSvg"`) {
		t.Fatalf("svg root missing sedimentSvg id: %q", svg)
	}
	if !strings.Contains(svg, `viewBox="0 0 4 5"`) {
		t.Fatalf("svg viewBox wrong: %q", svg)
	}
	if !strings.Contains(svg, "\t<circle cx=\"1\" cy=\"2\" r=\"3\" fill=\"#ff0000\" />") {
		t.Fatalf("svg missing expected tab-indented circle element: %q", svg)
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("svg missing closing tag: %q", svg)
	}
}

func TestRenderSVGEmptyCircleList(t *testing.T) {
	svg := RenderSVG(nil)
	if !strings.Contains(svg, `viewBox="0 0 0 0"`) {
		t.Fatalf("empty circle list should produce a 0x0 viewBox: %q", svg)
	}
}
