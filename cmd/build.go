package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/cwbudde/sediment/internal/builder"
	"github.com/cwbudde/sediment/internal/pointselector"
	"github.com/cwbudde/sediment/internal/raster"
	"github.com/spf13/cobra"
)

var (
	buildInput   string
	buildOutput  string
	buildRaw     string
	buildCPUProf string
	buildMemProf string

	buildMaxRadius            uint32
	buildMinRadius            uint32
	buildRadiusShrinkThresh   float32
	buildRadiusStep           float32
	buildRadiusAttemptLimit   int
	buildSimilarityThreshold  float32
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Grow a circle list to approximate a reference image",
	Long:  `Runs the Builder search loop and writes the resulting raster and/or raw circle list.`,
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildInput, "input", "", "Reference image path (required)")
	buildCmd.Flags().StringVar(&buildOutput, "output", "out.png", "Output raster path")
	buildCmd.Flags().StringVar(&buildRaw, "raw", "", "Output raw circle list path (CSV, optional)")

	buildCmd.Flags().Uint32Var(&buildMaxRadius, "max-radius", 500, "Starting (maximum) circle radius")
	buildCmd.Flags().Uint32Var(&buildMinRadius, "min-radius", 1, "Radius below which the search loop stops")
	buildCmd.Flags().Float32Var(&buildRadiusShrinkThresh, "radius-shrink-threshold", 0.2, "Accept-rate threshold below which the radius shrinks")
	buildCmd.Flags().Float32Var(&buildRadiusStep, "radius-step", 0.1, "Fraction of the current radius removed on each shrink")
	buildCmd.Flags().IntVar(&buildRadiusAttemptLimit, "radius-attempt-limit", 5000, "Attempts per radius before a forced shrink")
	buildCmd.Flags().Float32Var(&buildSimilarityThreshold, "similarity-threshold", 0.9, "Skip a region whose current/reference brightness ratio lies above this value and below 1")

	buildCmd.Flags().StringVar(&buildCPUProf, "cpuprofile", "", "Write CPU profile to file")
	buildCmd.Flags().StringVar(&buildMemProf, "memprofile", "", "Write memory profile to file")

	buildCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildCPUProf != "" {
		f, err := os.Create(buildCPUProf)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		slog.Info("CPU profiling enabled", "output", buildCPUProf)
	}

	slog.Info("Starting build", "input", buildInput, "max_radius", buildMaxRadius, "min_radius", buildMinRadius)

	reference, err := raster.Open(buildInput)
	if err != nil {
		return fmt.Errorf("failed to open reference: %w", err)
	}

	slog.Info("Loaded reference", "width", reference.Width(), "height", reference.Height())

	cfg := builder.Config{
		MaxRadius:             buildMaxRadius,
		MinRadius:             buildMinRadius,
		RadiusShrinkThreshold: buildRadiusShrinkThresh,
		RadiusStep:            buildRadiusStep,
		RadiusAttemptLimit:    buildRadiusAttemptLimit,
		SimilarityThreshold:   buildSimilarityThreshold,
		OutputImagePath:       buildOutput,
		RawCirclePath:         buildRaw,
	}

	selector := pointselector.NewRandomSelector(reference.Width(), reference.Height())
	bldr := builder.New(reference, cfg, selector, nil)

	start := time.Now()
	circles, err := bldr.Run(context.Background())
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	elapsed := time.Since(start)

	stats := bldr.Stats()

	slog.Info("Build complete",
		"elapsed", elapsed,
		"circles", len(circles),
		"delta", stats.Delta,
		"total_attempts", stats.TotalAttempts,
		"total_successes", stats.TotalSuccesses,
	)

	fmt.Printf("Wrote %s (%d circles, delta %d, %s)\n", buildOutput, len(circles), stats.Delta, elapsed)

	if buildMemProf != "" {
		f, err := os.Create(buildMemProf)
		if err != nil {
			return fmt.Errorf("failed to create memory profile: %w", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("failed to write memory profile: %w", err)
		}
		slog.Info("Memory profile written", "output", buildMemProf)
	}

	return nil
}
