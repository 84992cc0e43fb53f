package store

import (
	"fmt"
	"time"

	"github.com/cwbudde/sediment/internal/builder"
	"github.com/cwbudde/sediment/internal/raster"
)

// JobConfig holds the configuration for a build job (checkpoint copy).
// This avoids import cycles with the server package.
type JobConfig struct {
	RefPath string `json:"refPath"`
	builder.Config

	// CheckpointInterval is how often, in seconds, a running job saves a
	// checkpoint (0 = disabled).
	CheckpointInterval int `json:"checkpointInterval,omitempty"`
}

// Checkpoint represents a saved build state that can be resumed later.
//
// Unlike the teacher's population-based optimizer, the Builder's full
// state is exactly its accepted circle list plus the radius it was
// working at (Stats.Radius): resuming means redrawing the circles onto a
// fresh canvas and re-entering the search loop at that radius, with no
// separate population/velocity state to reconstruct.
type Checkpoint struct {
	// JobID is the unique identifier for this build job.
	JobID string `json:"jobId"`

	// Circles is the accepted circle list at checkpoint time.
	Circles []raster.Circle `json:"circles"`

	// Stats is the build progress snapshot at checkpoint time, including
	// the radius the schedule had reached.
	Stats builder.Stats `json:"stats"`

	// Timestamp records when this checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config holds the job configuration, needed for validation during
	// resume: we ensure that resumed jobs use a compatible reference image
	// and radius schedule.
	Config JobConfig `json:"config"`
}

// CheckpointInfo contains metadata about a checkpoint without the full
// circle list. Used for listing checkpoints efficiently.
type CheckpointInfo struct {
	JobID     string    `json:"jobId"`
	Delta     uint64    `json:"delta"`
	Circles   int       `json:"circles"`
	Radius    uint32    `json:"radius"`
	Timestamp time.Time `json:"timestamp"`
	RefPath   string    `json:"refPath"`
}

// NewCheckpoint creates a checkpoint from job state.
func NewCheckpoint(jobID string, circles []raster.Circle, stats builder.Stats, config JobConfig) *Checkpoint {
	return &Checkpoint{
		JobID:     jobID,
		Circles:   circles,
		Stats:     stats,
		Timestamp: time.Now(),
		Config:    config,
	}
}

// ToInfo converts a full Checkpoint to CheckpointInfo (metadata only).
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:     c.JobID,
		Delta:     c.Stats.Delta,
		Circles:   len(c.Circles),
		Radius:    c.Stats.Radius,
		Timestamp: c.Timestamp,
		RefPath:   c.Config.RefPath,
	}
}

// Validate checks if the checkpoint has valid data.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(c.Circles) == 0 {
		return &ValidationError{Field: "Circles", Reason: "cannot be empty"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.RefPath == "" {
		return &ValidationError{Field: "Config.RefPath", Reason: "cannot be empty"}
	}
	if c.Config.MaxRadius == 0 {
		return &ValidationError{Field: "Config.MaxRadius", Reason: "must be positive"}
	}
	if c.Stats.Radius > c.Config.MaxRadius {
		return &ValidationError{
			Field:  "Stats.Radius",
			Reason: fmt.Sprintf("checkpoint radius %d exceeds config max_radius %d", c.Stats.Radius, c.Config.MaxRadius),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can be resumed with the given
// config. Returns an error if the configs are incompatible.
func (c *Checkpoint) IsCompatible(config JobConfig) error {
	if c.Config.RefPath != config.RefPath {
		return &CompatibilityError{
			Field:    "RefPath",
			Expected: c.Config.RefPath,
			Actual:   config.RefPath,
		}
	}
	if c.Config.MaxRadius != config.MaxRadius {
		return &CompatibilityError{
			Field:    "MaxRadius",
			Expected: fmt.Sprintf("%d", c.Config.MaxRadius),
			Actual:   fmt.Sprintf("%d", config.MaxRadius),
		}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
