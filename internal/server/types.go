// Package server provides the HTTP server for the Nova Reel API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

import (
	"time"

	"github.com/maauso/novareel-api/internal/job"
)

// GenerateVideoRequest is the HTTP request body for starting a generation.
type GenerateVideoRequest struct {
	// Prompt is the text the video is generated from.
	Prompt string `json:"prompt" validate:"required"`
}

// VideoJobResponse is the HTTP response after starting a generation.
type VideoJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// JobStatusResponse is the HTTP response for a job's status.
type JobStatusResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	// Detail is the failure reason or completion note.
	Detail string `json:"detail,omitempty"`
	// VideoURL is where the finished video can be fetched. Set only when completed.
	VideoURL string `json:"video_url,omitempty"`
}

// JobSummary is one entry in a JobListResponse.
type JobSummary struct {
	JobStatusResponse
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// JobListResponse is the HTTP response for listing jobs.
type JobListResponse struct {
	Jobs []JobSummary `json:"jobs"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}

func newJobStatusResponse(j *job.Job) JobStatusResponse {
	return JobStatusResponse{
		JobID:    j.ID,
		Status:   string(j.Status),
		Detail:   j.Detail,
		VideoURL: j.VideoURL,
	}
}

func newJobSummary(j *job.Job) JobSummary {
	s := JobSummary{
		JobStatusResponse: newJobStatusResponse(j),
		CreatedAt:         j.CreatedAt,
	}
	if !j.CompletedAt.IsZero() {
		completed := j.CompletedAt
		s.CompletedAt = &completed
	}
	return s
}
