package cmd

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/sediment/internal/persistence"
	"github.com/cwbudde/sediment/internal/pruner"
	"github.com/cwbudde/sediment/internal/renderer"
	"github.com/spf13/cobra"
)

var (
	renderInput string
	renderSVG   string
	renderPNG   string
	renderPrune bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a saved circle list to SVG and/or PNG",
	Long:  `Loads a raw circle list and emits an SVG and/or raster rendering, optionally pruning redundant circles first.`,
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderInput, "input", "", "Raw circle list path (required)")
	renderCmd.Flags().StringVar(&renderSVG, "svg", "", "Output SVG path")
	renderCmd.Flags().StringVar(&renderPNG, "png", "", "Output PNG path")
	renderCmd.Flags().BoolVar(&renderPrune, "prune", false, "Drop circles that contribute nothing to the rendering")

	renderCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	circles, err := persistence.Load(renderInput)
	if err != nil {
		return fmt.Errorf("failed to load circle list: %w", err)
	}

	slog.Info("Loaded circle list", "circles", len(circles))

	if renderPrune {
		before := len(circles)
		circles = pruner.Prune(circles, nil)
		slog.Info("Pruned circle list", "before", before, "after", len(circles))
	}

	if renderSVG == "" && renderPNG == "" {
		return fmt.Errorf("at least one of --svg or --png must be set")
	}

	if renderSVG != "" {
		if err := renderer.SaveSVG(circles, renderSVG); err != nil {
			return fmt.Errorf("failed to save SVG: %w", err)
		}
		fmt.Printf("Wrote %s\n", renderSVG)
	}

	if renderPNG != "" {
		if err := renderer.SaveRaster(circles, renderPNG); err != nil {
			return fmt.Errorf("failed to save PNG: %w", err)
		}
		fmt.Printf("Wrote %s\n", renderPNG)
	}

	return nil
}
