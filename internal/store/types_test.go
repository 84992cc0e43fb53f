package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cwbudde/sediment/internal/builder"
	"github.com/cwbudde/sediment/internal/raster"
)

func testCircles() []raster.Circle {
	return []raster.Circle{
		{X: 100, Y: 50, Radius: 25, R: 200, G: 50, B: 10},
		{X: 80, Y: 90, Radius: 12, R: 20, G: 20, B: 220},
	}
}

func testConfig() JobConfig {
	return JobConfig{
		RefPath: "assets/test.png",
		Config: builder.Config{
			MaxRadius: 500,
			MinRadius: 1,
		},
	}
}

func TestCheckpoint_JSONSerialization(t *testing.T) {
	original := &Checkpoint{
		JobID:     "test-job-123",
		Circles:   testCircles(),
		Stats:     builder.Stats{TotalAttempts: 1000, CircleCount: 2, Delta: 1234, Radius: 50},
		Timestamp: time.Date(2025, 10, 23, 10, 30, 0, 0, time.UTC),
		Config:    testConfig(),
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal checkpoint: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshaled JSON is empty")
	}

	var restored Checkpoint
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal checkpoint: %v", err)
	}

	if restored.JobID != original.JobID {
		t.Errorf("JobID mismatch: expected %s, got %s", original.JobID, restored.JobID)
	}
	if restored.Stats.Delta != original.Stats.Delta {
		t.Errorf("Stats.Delta mismatch: expected %d, got %d", original.Stats.Delta, restored.Stats.Delta)
	}
	if restored.Stats.Radius != original.Stats.Radius {
		t.Errorf("Stats.Radius mismatch: expected %d, got %d", original.Stats.Radius, restored.Stats.Radius)
	}
	if !restored.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp mismatch: expected %v, got %v", original.Timestamp, restored.Timestamp)
	}
	if len(restored.Circles) != len(original.Circles) {
		t.Fatalf("Circles length mismatch: expected %d, got %d", len(original.Circles), len(restored.Circles))
	}
	for i := range original.Circles {
		if restored.Circles[i] != original.Circles[i] {
			t.Errorf("Circles[%d] mismatch: expected %+v, got %+v", i, original.Circles[i], restored.Circles[i])
		}
	}
	if restored.Config.RefPath != original.Config.RefPath {
		t.Errorf("Config.RefPath mismatch: expected %s, got %s", original.Config.RefPath, restored.Config.RefPath)
	}
	if restored.Config.MaxRadius != original.Config.MaxRadius {
		t.Errorf("Config.MaxRadius mismatch: expected %d, got %d", original.Config.MaxRadius, restored.Config.MaxRadius)
	}
}

func TestCheckpoint_JSONIndented(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:     "test-job",
		Circles:   testCircles(),
		Stats:     builder.Stats{Delta: 10, Radius: 5},
		Timestamp: time.Now(),
		Config:    testConfig(),
	}

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal with indent: %v", err)
	}

	var restored Checkpoint
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal indented JSON: %v", err)
	}

	if restored.JobID != checkpoint.JobID {
		t.Errorf("JobID mismatch after indented serialization")
	}
}

func TestCheckpoint_Validate_Valid(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:     "valid-job",
		Circles:   testCircles(),
		Stats:     builder.Stats{Radius: 50},
		Timestamp: time.Now(),
		Config:    testConfig(),
	}

	if err := checkpoint.Validate(); err != nil {
		t.Errorf("Valid checkpoint should not have validation error: %v", err)
	}
}

func TestCheckpoint_Validate_EmptyJobID(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:     "",
		Circles:   testCircles(),
		Timestamp: time.Now(),
		Config:    testConfig(),
	}

	err := checkpoint.Validate()
	if err == nil {
		t.Fatal("Expected validation error for empty JobID")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("Expected ValidationError, got %T", err)
	}
}

func TestCheckpoint_Validate_NilCircles(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:     "test",
		Circles:   nil,
		Timestamp: time.Now(),
		Config:    testConfig(),
	}

	if err := checkpoint.Validate(); err == nil {
		t.Fatal("Expected validation error for nil Circles")
	}
}

func TestCheckpoint_Validate_EmptyCircles(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:     "test",
		Circles:   []raster.Circle{},
		Timestamp: time.Now(),
		Config:    testConfig(),
	}

	if err := checkpoint.Validate(); err == nil {
		t.Fatal("Expected validation error for empty Circles")
	}
}

func TestCheckpoint_Validate_ZeroTimestamp(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:     "test",
		Circles:   testCircles(),
		Timestamp: time.Time{},
		Config:    testConfig(),
	}

	if err := checkpoint.Validate(); err == nil {
		t.Fatal("Expected validation error for zero timestamp")
	}
}

func TestCheckpoint_Validate_InvalidConfig(t *testing.T) {
	testCases := []struct {
		name   string
		config JobConfig
	}{
		{"empty refPath", JobConfig{RefPath: "", Config: builder.Config{MaxRadius: 500}}},
		{"zero max radius", JobConfig{RefPath: "test.png", Config: builder.Config{MaxRadius: 0}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			checkpoint := &Checkpoint{
				JobID:     "test",
				Circles:   testCircles(),
				Timestamp: time.Now(),
				Config:    tc.config,
			}

			if err := checkpoint.Validate(); err == nil {
				t.Fatalf("Expected validation error for %s", tc.name)
			}
		})
	}
}

func TestCheckpoint_Validate_RadiusExceedsMax(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:     "test",
		Circles:   testCircles(),
		Stats:     builder.Stats{Radius: 600},
		Timestamp: time.Now(),
		Config:    JobConfig{RefPath: "test.png", Config: builder.Config{MaxRadius: 500}},
	}

	if err := checkpoint.Validate(); err == nil {
		t.Fatal("Expected validation error for radius exceeding max_radius")
	}
}

func TestCheckpoint_IsCompatible_Compatible(t *testing.T) {
	checkpoint := &Checkpoint{Config: testConfig()}
	err := checkpoint.IsCompatible(testConfig())
	if err != nil {
		t.Errorf("Compatible configs should not return error: %v", err)
	}
}

func TestCheckpoint_IsCompatible_DifferentRefPath(t *testing.T) {
	checkpoint := &Checkpoint{Config: JobConfig{RefPath: "test1.png", Config: builder.Config{MaxRadius: 500}}}
	config := JobConfig{RefPath: "test2.png", Config: builder.Config{MaxRadius: 500}}

	err := checkpoint.IsCompatible(config)
	if err == nil {
		t.Fatal("Expected compatibility error for different RefPath")
	}
	if _, ok := err.(*CompatibilityError); !ok {
		t.Errorf("Expected CompatibilityError, got %T", err)
	}
}

func TestCheckpoint_IsCompatible_DifferentMaxRadius(t *testing.T) {
	checkpoint := &Checkpoint{Config: JobConfig{RefPath: "test.png", Config: builder.Config{MaxRadius: 500}}}
	config := JobConfig{RefPath: "test.png", Config: builder.Config{MaxRadius: 300}}

	if err := checkpoint.IsCompatible(config); err == nil {
		t.Fatal("Expected compatibility error for different MaxRadius")
	}
}

func TestCheckpointInfo_FromCheckpoint(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:     "test-job",
		Circles:   testCircles(),
		Stats:     builder.Stats{Delta: 123, Radius: 50},
		Timestamp: time.Now(),
		Config:    testConfig(),
	}

	info := checkpoint.ToInfo()

	if info.JobID != checkpoint.JobID {
		t.Errorf("JobID mismatch: expected %s, got %s", checkpoint.JobID, info.JobID)
	}
	if info.Delta != checkpoint.Stats.Delta {
		t.Errorf("Delta mismatch: expected %d, got %d", checkpoint.Stats.Delta, info.Delta)
	}
	if info.Radius != checkpoint.Stats.Radius {
		t.Errorf("Radius mismatch: expected %d, got %d", checkpoint.Stats.Radius, info.Radius)
	}
	if info.Circles != len(checkpoint.Circles) {
		t.Errorf("Circles mismatch: expected %d, got %d", len(checkpoint.Circles), info.Circles)
	}
	if !info.Timestamp.Equal(checkpoint.Timestamp) {
		t.Errorf("Timestamp mismatch")
	}
	if info.RefPath != checkpoint.Config.RefPath {
		t.Errorf("RefPath mismatch: expected %s, got %s", checkpoint.Config.RefPath, info.RefPath)
	}
}

func TestNewCheckpoint(t *testing.T) {
	jobID := "test-job"
	circles := testCircles()
	stats := builder.Stats{Delta: 123, Radius: 50, CircleCount: len(circles)}
	config := testConfig()

	checkpoint := NewCheckpoint(jobID, circles, stats, config)

	if checkpoint.JobID != jobID {
		t.Errorf("JobID mismatch: expected %s, got %s", jobID, checkpoint.JobID)
	}
	if checkpoint.Stats.Delta != stats.Delta {
		t.Errorf("Stats.Delta mismatch: expected %d, got %d", stats.Delta, checkpoint.Stats.Delta)
	}
	if checkpoint.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if len(checkpoint.Circles) != len(circles) {
		t.Errorf("Circles length mismatch")
	}
}
