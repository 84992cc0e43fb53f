// Package builder implements the search loop that greedily grows a
// circle list toward a reference image: at each attempt it proposes one
// candidate circle, accepts it only if it strictly reduces local error,
// and shrinks its working radius as the accept rate falls off.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cwbudde/sediment/internal/persistence"
	"github.com/cwbudde/sediment/internal/pointselector"
	"github.com/cwbudde/sediment/internal/raster"
	"github.com/cwbudde/sediment/internal/ratemeter"
)

// Builder owns one build run: a reference image, the canvas it is
// incrementally painting to match it, and the accepted circle list.
type Builder struct {
	cfg       Config
	reference *raster.Canvas
	current   *raster.Canvas
	circles   []raster.Circle
	selector  pointselector.PointSelector
	bus       *Bus
	meter     *ratemeter.RateMeter

	radius          uint32
	radiusAttempts  int
	radiusSuccesses int
	totalAttempts   int
	totalSuccesses  int
	totalSkips      int

	lastUpdate time.Time
}

// New constructs a Builder over reference, ready to run. selector
// supplies candidate points; bus, if non-nil, receives Preview/Stats
// updates at most once every updatePacing milliseconds, plus one final
// update when the run completes.
func New(reference *raster.Canvas, cfg Config, selector pointselector.PointSelector, bus *Bus) *Builder {
	return &Builder{
		cfg:       cfg,
		reference: reference,
		current:   raster.New(reference.Width(), reference.Height()),
		selector:  selector,
		bus:       bus,
		meter:     ratemeter.New(rateMeterWindow),
		radius:    cfg.MaxRadius,
	}
}

// Resume constructs a Builder that continues a previous run: circles are
// redrawn onto a fresh canvas in order, the accepted list is seeded from
// circles, and the radius schedule picks up at radius instead of
// cfg.MaxRadius.
func Resume(reference *raster.Canvas, circles []raster.Circle, radius uint32, cfg Config, selector pointselector.PointSelector, bus *Bus) *Builder {
	b := New(reference, cfg, selector, bus)
	for _, c := range circles {
		b.current.DrawCircle(c)
	}
	b.circles = append([]raster.Circle(nil), circles...)
	b.radius = radius
	return b
}

// Circles returns the accepted circle list so far, in acceptance order.
func (b *Builder) Circles() []raster.Circle {
	return b.circles
}

// Current returns the canvas accumulated so far.
func (b *Builder) Current() *raster.Canvas {
	return b.current
}

// Stats returns a snapshot of build progress so far.
func (b *Builder) Stats() Stats {
	return b.stats()
}

func (b *Builder) stats() Stats {
	return Stats{
		TotalAttempts:   b.totalAttempts,
		TotalSuccesses:  b.totalSuccesses,
		TotalSkips:      b.totalSkips,
		RadiusAttempts:  b.radiusAttempts,
		RadiusSuccesses: b.radiusSuccesses,
		Radius:          b.radius,
		CircleCount:     len(b.circles),
		Delta:           b.reference.Delta(b.current),
	}
}

func (b *Builder) publish(done bool) {
	if b.bus == nil {
		return
	}
	if !done && time.Since(b.lastUpdate) < updatePacing*time.Millisecond {
		return
	}
	s := b.stats()
	s.Done = done
	b.bus.Publish(Update{Preview: b.current, Stats: &s})
	b.lastUpdate = time.Now()
}

// Run executes the search loop to completion (radius below MinRadius)
// or until ctx is cancelled. On normal completion it saves the output
// image and/or raw circle list if configured, emits a final update, and
// returns the accepted circles.
func (b *Builder) Run(ctx context.Context) ([]raster.Circle, error) {
	slog.Info("builder: starting",
		"max_radius", b.cfg.MaxRadius, "min_radius", b.cfg.MinRadius)

	for {
		if err := ctx.Err(); err != nil {
			return b.circles, err
		}

		b.totalAttempts++
		b.radiusAttempts++

		// Radius schedule check.
		if b.meter.IsBelow(float64(b.cfg.RadiusShrinkThreshold)) || b.radiusAttempts >= b.cfg.RadiusAttemptLimit {
			step := uint32(math.Floor(float64(b.radius) * float64(b.cfg.RadiusStep)))
			if step < 1 {
				step = 1
			}
			if step > b.radius {
				b.radius = 0
			} else {
				b.radius -= step
			}
			slog.Debug("builder: shrinking radius", "new_radius", b.radius, "attempts_at_radius", b.radiusAttempts)
			b.meter.Reset()
			b.radiusAttempts = 0
			b.radiusSuccesses = 0
		}

		// Termination.
		if b.radius < b.cfg.MinRadius {
			if err := b.finish(); err != nil {
				return b.circles, err
			}
			slog.Info("builder: finished",
				"circles", len(b.circles), "total_attempts", b.totalAttempts, "total_successes", b.totalSuccesses)
			return b.circles, nil
		}

		b.attempt()
		b.publish(false)
	}
}

func (b *Builder) attempt() {
	pt, ok := b.selector.Next()
	if !ok {
		// An exhausted finite selector leaves the radius where it is;
		// the attempt cap will still force a shrink eventually.
		return
	}
	cx, cy := uint32(pt.X), uint32(pt.Y)

	refPixel := b.reference.At(pt.X, pt.Y)
	curPixel := b.current.At(pt.X, pt.Y)
	if refPixel == curPixel {
		return
	}

	region := raster.NewRegion(cx, cy, b.radius)
	refCrop := b.reference.Section(region)
	curCrop := b.current.Section(region)

	refValue := refCrop.Value()
	if refValue != 0 {
		sim := float64(curCrop.Value()) / float64(refValue)
		if sim < 1 && sim > float64(b.cfg.SimilarityThreshold) {
			b.totalSkips++
			b.meter.Sample(0)
			return
		}
	}

	candidate := curCrop.Clone()
	candidate.DrawCircle(raster.Circle{
		X:      uint32(refCrop.CenterX),
		Y:      uint32(refCrop.CenterY),
		Radius: b.radius,
		R:      refPixel.R,
		G:      refPixel.G,
		B:      refPixel.B,
	})

	candidateDelta := refCrop.Delta(candidate)
	currentDelta := refCrop.Delta(curCrop)

	if candidateDelta < currentDelta {
		b.current.CopyFrom(candidate, int(region.RealOriginX()), int(region.RealOriginY()))
		b.circles = append(b.circles, raster.Circle{
			X: cx, Y: cy, Radius: b.radius,
			R: refPixel.R, G: refPixel.G, B: refPixel.B,
		})
		b.meter.Sample(1)
		b.radiusSuccesses++
		b.totalSuccesses++
		return
	}

	b.meter.Sample(0)
}

func (b *Builder) finish() error {
	if b.cfg.OutputImagePath != "" {
		if err := b.current.Save(b.cfg.OutputImagePath); err != nil {
			return fmt.Errorf("builder: failed to save output image: %w", err)
		}
	}
	if b.cfg.RawCirclePath != "" {
		if err := persistence.Save(b.circles, b.cfg.RawCirclePath); err != nil {
			return fmt.Errorf("builder: failed to save circle list: %w", err)
		}
	}
	b.publish(true)
	return nil
}
