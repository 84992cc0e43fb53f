package server

import (
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cwbudde/sediment/internal/builder"
	"github.com/cwbudde/sediment/internal/persistence"
	"github.com/cwbudde/sediment/internal/pointselector"
	"github.com/cwbudde/sediment/internal/raster"
	"github.com/cwbudde/sediment/internal/renderer"
	"github.com/cwbudde/sediment/internal/store"
)

// runJob executes a build job in the background starting from scratch.
// If checkpointStore is not nil and the job has CheckpointInterval > 0,
// periodic checkpoints are saved.
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string) error {
	return runJobFrom(ctx, jm, checkpointStore, jobID, nil, 0)
}

// runResumedJob executes a build job continuing from a prior circle list
// and radius, as loaded from a checkpoint.
func runResumedJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string, circles []raster.Circle, radius uint32) error {
	return runJobFrom(ctx, jm, checkpointStore, jobID, circles, radius)
}

func runJobFrom(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string, resumeCircles []raster.Circle, resumeRadius uint32) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) { j.State = StateRunning }); err != nil {
		return err
	}

	slog.Info("worker: starting job", "job_id", jobID, "ref", job.Config.RefPath)

	reference, err := raster.Open(job.Config.RefPath)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to open reference: %w", err))
		return err
	}

	cfg := job.Config.Config
	selector := pointselector.NewRandomSelector(reference.Width(), reference.Height())
	bus := builder.NewBus(4)

	var bldr *builder.Builder
	if resumeCircles != nil {
		slog.Info("worker: resuming job", "job_id", jobID, "circles", len(resumeCircles), "radius", resumeRadius)
		bldr = builder.Resume(reference, resumeCircles, resumeRadius, cfg, selector, bus)
	} else {
		bldr = builder.New(reference, cfg, selector, bus)
	}

	var traceWriter *store.TraceWriter
	if job.Config.CheckpointInterval > 0 {
		if tw, err := store.NewTraceWriter("./data", jobID, resumeCircles != nil); err == nil {
			traceWriter = tw
			defer traceWriter.Close()
		} else {
			slog.Warn("worker: failed to create trace writer", "job_id", jobID, "error", err)
		}
	}

	start := time.Now()
	lastCheckpoint := start
	checkpointInterval := time.Duration(job.Config.CheckpointInterval) * time.Second

	var finalStats builder.Stats
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for u := range bus.Updates() {
			if u.Stats == nil {
				continue
			}
			stats := *u.Stats
			finalStats = stats
			circles := append([]raster.Circle(nil), bldr.Circles()...)

			jm.UpdateJob(jobID, func(j *Job) {
				j.Circles = circles
				j.Stats = stats
			})
			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:     jobID,
				State:     StateRunning,
				Stats:     stats,
				Timestamp: time.Now(),
			})

			if traceWriter != nil {
				traceWriter.Write(store.TraceEntry{
					TotalAttempts: stats.TotalAttempts,
					Delta:         stats.Delta,
					Radius:        stats.Radius,
					Timestamp:     time.Now(),
				})
			}

			if checkpointStore != nil && checkpointInterval > 0 && time.Since(lastCheckpoint) >= checkpointInterval {
				if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
					slog.Error("worker: failed to save checkpoint", "job_id", jobID, "error", err)
				}
				lastCheckpoint = time.Now()
			}
		}
	}()

	circles, runErr := bldr.Run(ctx)
	bus.Close()
	<-consumerDone

	if runErr != nil {
		if ctx.Err() != nil {
			markJobCancelled(jm, jobID)
			return runErr
		}
		markJobFailed(jm, jobID, runErr)
		return runErr
	}

	endTime := time.Now()
	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Circles = circles
		j.Stats = finalStats
		j.EndTime = &endTime
	}); err != nil {
		return err
	}

	if checkpointStore != nil {
		if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
			slog.Warn("worker: failed to save final checkpoint", "job_id", jobID, "error", err)
		}
	}

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCompleted,
		Stats:     finalStats,
		Timestamp: time.Now(),
	})

	slog.Info("worker: job completed",
		"job_id", jobID, "elapsed", time.Since(start), "circles", len(circles), "delta", finalStats.Delta)
	return nil
}

// markJobFailed marks a job as failed with an error message.
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("worker: job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled.
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("worker: job cancelled", "job_id", jobID)
}

// saveCheckpoint saves a checkpoint and its rendered artifacts for the
// given job's current state.
func saveCheckpoint(jm *JobManager, checkpointStore store.Store, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if len(job.Circles) == 0 {
		slog.Debug("worker: skipping checkpoint, no circles yet", "job_id", jobID)
		return nil
	}

	checkpoint := store.NewCheckpoint(jobID, job.Circles, job.Stats, job.Config)
	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("worker: checkpoint saved", "job_id", jobID, "circles", len(job.Circles), "delta", job.Stats.Delta)

	if err := saveCheckpointArtifacts(jobID, job.Config.RefPath, job.Circles); err != nil {
		slog.Warn("worker: failed to save checkpoint artifacts", "job_id", jobID, "error", err)
	}

	return nil
}

// saveCheckpointArtifacts renders best.png, diff.png, and raw.csv to the
// checkpoint's job directory. Assumes an FSStore rooted at ./data.
func saveCheckpointArtifacts(jobID, refPath string, circles []raster.Circle) error {
	jobDir := filepath.Join("./data", "jobs", jobID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}

	best := renderer.RenderRaster(circles)
	if err := best.Save(filepath.Join(jobDir, "best.png")); err != nil {
		return fmt.Errorf("failed to save best.png: %w", err)
	}

	if ref, err := raster.Open(refPath); err == nil {
		diff := computeDiffImage(ref, best)
		if f, err := os.Create(filepath.Join(jobDir, "diff.png")); err == nil {
			defer f.Close()
			png.Encode(f, diff)
		}
	}

	if err := persistence.Save(circles, filepath.Join(jobDir, "raw.csv")); err != nil {
		return fmt.Errorf("failed to save raw.csv: %w", err)
	}

	return nil
}
