package api

import (
	"time"

	"uniqvid/internal/jobs"
)

// JobView is the transport representation of an active job.
type JobView struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	Copies       int       `json:"copies"`
	Strength     string    `json:"strength"`
	Status       string    `json:"status"`
	Produced     int       `json:"produced"`
	Delivered    int       `json:"delivered"`
	ResultDir    string    `json:"result_dir,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FromJob converts an internal job into its wire form.
func FromJob(job *jobs.Job) JobView {
	return JobView{
		ID:           job.ID,
		OriginalName: job.OriginalName,
		Copies:       job.Copies,
		Strength:     string(job.Strength),
		Status:       string(job.Status),
		Produced:     job.Produced,
		Delivered:    job.Delivered,
		ResultDir:    job.ResultDir,
		Error:        job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}

// FromJobs converts a job list preserving order.
func FromJobs(list []*jobs.Job) []JobView {
	views := make([]JobView, 0, len(list))
	for _, job := range list {
		views = append(views, FromJob(job))
	}
	return views
}

// UploadResponse acknowledges an accepted upload.
type UploadResponse struct {
	UploadID  string    `json:"upload_id"`
	Bytes     int64     `json:"bytes"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SubmitJobRequest creates a job from a previously accepted upload.
type SubmitJobRequest struct {
	UploadID string `json:"upload_id"`
	Copies   int    `json:"copies"`
	Strength string `json:"strength"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job JobView `json:"job"`
}

// JobListResponse wraps the active-job listing.
type JobListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// HealthResponse reports daemon liveness.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries a human-readable failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}
