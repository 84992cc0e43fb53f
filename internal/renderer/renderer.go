// Package renderer rasterizes an ordered circle list back to a Canvas and
// emits it as an SVG document, the way the Builder's output is turned
// back into viewable artifacts.
package renderer

import (
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/sediment/internal/raster"
)

// ImageWidth returns the max over circles of x+radius. A circle's
// rightmost pixel column (x+radius) falls just outside this width.
func ImageWidth(circles []raster.Circle) int {
	max := 0
	for _, c := range circles {
		if w := int(c.X + c.Radius); w > max {
			max = w
		}
	}
	return max
}

// ImageHeight returns the max over circles of y+radius. A circle's
// bottom pixel row (y+radius) falls just outside this height.
func ImageHeight(circles []raster.Circle) int {
	max := 0
	for _, c := range circles {
		if h := int(c.Y + c.Radius); h > max {
			max = h
		}
	}
	return max
}

// RenderRaster allocates a black canvas of ImageWidth x ImageHeight, then
// draws each circle in input order; later circles overwrite earlier ones
// (painter's algorithm).
func RenderRaster(circles []raster.Circle) *raster.Canvas {
	canvas := raster.New(ImageWidth(circles), ImageHeight(circles))
	for _, c := range circles {
		canvas.DrawCircle(c)
	}
	return canvas
}

func hexColor(c raster.Circle) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RenderSVG emits a single <svg> root with viewBox "0 0 W H" and one
// <circle> per input circle in input order (painter's algorithm). No
// background rect is prepended.
func RenderSVG(circles []raster.Circle) string {
	width := ImageWidth(circles)
	height := ImageHeight(circles)

	var lines []string
	lines = append(lines, fmt.Sprintf(
		`<svg id="sedimentSvg" overflow="hidden" viewBox="0 0 %d %d" preserveAspectRatio="xMidYMid meet" xmlns="http://www.w3.org/2000/svg">`,
		width, height))

	for _, c := range circles {
		lines = append(lines, fmt.Sprintf(`	<circle cx="%d" cy="%d" r="%d" fill="%s" />`,
			c.X, c.Y, c.Radius, hexColor(c)))
	}

	lines = append(lines, "</svg>")
	return strings.Join(lines, "\n")
}

// SaveRaster rasterizes circles and writes the result as a PNG at path.
func SaveRaster(circles []raster.Circle, path string) error {
	return RenderRaster(circles).Save(path)
}

// SaveSVG writes RenderSVG's output to path.
func SaveSVG(circles []raster.Circle, path string) error {
	if err := os.WriteFile(path, []byte(RenderSVG(circles)), 0o644); err != nil {
		return &raster.EncodeError{Path: path, Err: err}
	}
	return nil
}
