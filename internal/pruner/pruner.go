// Package pruner removes circles from an ordered list whose pixels are
// entirely overpainted by later circles, without changing the list's
// final rendered output.
package pruner

import (
	"log/slog"
	"sync"

	"github.com/cwbudde/sediment/internal/raster"
	"github.com/cwbudde/sediment/internal/renderer"
)

// defaultParallelism bounds how many circles are tested concurrently;
// the work is CPU-bound pixel comparison, so it is capped at a fixed 8
// goroutines regardless of the host's core count.
const defaultParallelism = 8

// Prune returns the subsequence of circles (in original order) that
// survive the redundancy test: circles[i] is kept only if drawing every
// other circle overlapping its bounding region fails to reproduce it,
// i.e. at least one of its own pixels is load-bearing. onProgress, if
// non-nil, is called once per circle tested (in no particular order),
// suitable for driving a progress bar.
func Prune(circles []raster.Circle, onProgress func()) []raster.Circle {
	reference := renderer.RenderRaster(circles)

	keep := make([]bool, len(circles))
	sem := make(chan struct{}, defaultParallelism)
	var wg sync.WaitGroup

	for i := range circles {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			keep[i] = testCircle(reference, circles, circles[i])
			if onProgress != nil {
				onProgress()
			}
		}(i)
	}
	wg.Wait()

	out := make([]raster.Circle, 0, len(circles))
	for i, k := range keep {
		if k {
			out = append(out, circles[i])
		}
	}

	slog.Info("pruner: finished", "before", len(circles), "after", len(out))
	return out
}

// testCircle reports whether candidate is load-bearing: it redraws
// every circle overlapping candidate's bounding region except candidate
// itself, and compares the result against reference within that region.
func testCircle(reference *raster.Canvas, circles []raster.Circle, candidate raster.Circle) bool {
	region := raster.NewRegion(candidate.X, candidate.Y, candidate.Radius)

	var overlapping []raster.Circle
	for _, c := range circles {
		if c.OverlapsRegion(region) {
			overlapping = append(overlapping, c)
		}
	}

	local := renderer.RenderRaster(overlapping)
	localWithoutCandidate := raster.New(local.Width(), local.Height())
	for _, c := range overlapping {
		if c == candidate {
			continue
		}
		localWithoutCandidate.DrawCircle(c)
	}

	referenceCrop := reference.Section(region)
	testCrop := localWithoutCandidate.Section(region)

	return !testCrop.IsEqual(referenceCrop)
}
