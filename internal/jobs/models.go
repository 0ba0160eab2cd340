// Package jobs runs variant-generation jobs under a bounded worker pool,
// tracking active work in a SQLite ledger and guaranteeing workspace cleanup
// on every exit path.
package jobs

import (
	"time"

	"uniqvid/internal/profile"
)

// Status is a job lifecycle state.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusRendering  Status = "rendering"
	StatusDelivering Status = "delivering"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status ends the lifecycle.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one variant-generation request moving through the pipeline.
type Job struct {
	ID           string
	Source       string // temp file holding the uploaded video
	OriginalName string
	Copies       int
	Strength     profile.Strength
	Status       Status
	ErrorMessage string
	Produced     int
	Delivered    int
	ResultDir    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
