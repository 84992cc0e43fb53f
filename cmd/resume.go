package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cwbudde/sediment/internal/builder"
	"github.com/cwbudde/sediment/internal/persistence"
	"github.com/cwbudde/sediment/internal/pointselector"
	"github.com/cwbudde/sediment/internal/raster"
	"github.com/cwbudde/sediment/internal/store"
	"github.com/spf13/cobra"
)

var (
	resumeServerURL string
	resumeLocalMode bool
	resumeOutputDir string
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume a build from a checkpoint",
	Long: `Resume a build job from a saved checkpoint.

Supports two modes:
  1. Server mode (default): POST to server's resume endpoint
  2. Local mode (--local): load the checkpoint and re-enter the Builder loop locally

Examples:
  # Resume via server
  sediment resume abc123 --server-url http://localhost:8080

  # Resume locally
  sediment resume abc123 --local --output ./resumed`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeServerURL, "server-url", "http://localhost:8080", "Server URL for remote resume")
	resumeCmd.Flags().BoolVar(&resumeLocalMode, "local", false, "Run resume locally instead of via server")
	resumeCmd.Flags().StringVar(&resumeOutputDir, "output", "./resumed", "Output directory for local mode")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	if resumeLocalMode {
		return runResumeLocal(jobID)
	}
	return runResumeServer(jobID)
}

// runResumeServer sends a resume request to the server.
func runResumeServer(jobID string) error {
	url := fmt.Sprintf("%s/api/v1/jobs/%s/resume", resumeServerURL, jobID)

	slog.Info("Resuming job via server", "job_id", jobID, "url", url)

	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("checkpoint not found for job %s", jobID)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var result struct {
		JobID   string `json:"jobId"`
		State   string `json:"state"`
		Message string `json:"message,omitempty"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("Job resumed successfully\n")
	fmt.Printf("  Job ID: %s\n", result.JobID)
	fmt.Printf("  State: %s\n", result.State)
	if result.Message != "" {
		fmt.Printf("  Message: %s\n", result.Message)
	}
	fmt.Printf("\nUse 'sediment status %s' to monitor progress\n", result.JobID)

	return nil
}

// runResumeLocal loads a checkpoint and re-enters the Builder loop locally.
func runResumeLocal(jobID string) error {
	slog.Info("Resuming job locally", "job_id", jobID)

	checkpointStore, err := store.NewFSStore("./data")
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("invalid checkpoint: %w", err)
	}

	fmt.Printf("Loaded checkpoint:\n")
	fmt.Printf("  Job ID: %s\n", checkpoint.JobID)
	fmt.Printf("  Circles: %d\n", len(checkpoint.Circles))
	fmt.Printf("  Delta: %d\n", checkpoint.Stats.Delta)
	fmt.Printf("  Radius: %d\n", checkpoint.Stats.Radius)
	fmt.Printf("  Checkpoint time: %s\n\n", checkpoint.Timestamp.Format(time.RFC3339))

	reference, err := raster.Open(checkpoint.Config.RefPath)
	if err != nil {
		return fmt.Errorf("failed to open reference: %w", err)
	}

	selector := pointselector.NewRandomSelector(reference.Width(), reference.Height())
	bldr := builder.Resume(reference, checkpoint.Circles, checkpoint.Stats.Radius, checkpoint.Config.Config, selector, nil)

	fmt.Printf("Resuming build...\n")
	start := time.Now()

	circles, err := bldr.Run(context.Background())
	if err != nil {
		return fmt.Errorf("resumed build failed: %w", err)
	}

	elapsed := time.Since(start)
	stats := bldr.Stats()

	fmt.Printf("\nBuild completed in %s\n", elapsed)
	fmt.Printf("  Previous delta: %d\n", checkpoint.Stats.Delta)
	fmt.Printf("  New delta: %d\n", stats.Delta)
	fmt.Printf("  Circles: %d -> %d\n", len(checkpoint.Circles), len(circles))

	if err := os.MkdirAll(resumeOutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outPath := filepath.Join(resumeOutputDir, fmt.Sprintf("%s_resumed.png", jobID))
	if err := bldr.Current().Save(outPath); err != nil {
		return fmt.Errorf("failed to save output image: %w", err)
	}
	fmt.Printf("\nOutput saved to: %s\n", outPath)

	rawPath := filepath.Join(resumeOutputDir, fmt.Sprintf("%s_resumed.csv", jobID))
	if err := persistence.Save(circles, rawPath); err != nil {
		slog.Warn("Failed to save resumed circle list", "error", err)
	}

	updatedCheckpoint := store.NewCheckpoint(jobID, circles, stats, checkpoint.Config)
	if err := checkpointStore.SaveCheckpoint(jobID, updatedCheckpoint); err != nil {
		slog.Warn("Failed to update checkpoint", "error", err)
	} else {
		fmt.Printf("Checkpoint updated\n")
	}

	return nil
}
