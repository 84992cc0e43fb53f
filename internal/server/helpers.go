package server

import (
	"image"
	"image/color"
	"math"

	"github.com/cwbudde/sediment/internal/raster"
)

// computeDiffImage creates a false-color difference image between the
// reference and the job's current canvas; black is an exact match, red
// marks pixels far apart.
func computeDiffImage(ref, best *raster.Canvas) *image.NRGBA {
	w, h := ref.Width(), ref.Height()
	diff := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rp := ref.At(x, y)
			bp := best.At(x, y)

			dr := int(rp.R) - int(bp.R)
			dg := int(rp.G) - int(bp.G)
			db := int(rp.B) - int(bp.B)

			diffMag := math.Sqrt(float64(dr*dr + dg*dg + db*db))
			// Max per-channel magnitude is sqrt(3*255^2) ~= 441.7.
			normalized := uint8(math.Min(255, diffMag/1.734))

			diff.SetNRGBA(x, y, color.NRGBA{R: normalized, A: 255})
		}
	}

	return diff
}
