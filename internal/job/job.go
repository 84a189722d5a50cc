// Package job provides the Job aggregate for text-to-video generation jobs.
// It includes the Job entity with its forward-only state machine, the
// repository port used to store jobs, and the Service that drives a job
// from submission to a downloaded video.
package job

import (
	"errors"
	"time"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusPending indicates the job was accepted by Bedrock but has not started.
	StatusPending Status = "pending"
	// StatusInProgress indicates Bedrock is rendering the video.
	StatusInProgress Status = "in_progress"
	// StatusCompleted indicates the video was downloaded and is servable.
	StatusCompleted Status = "completed"
	// StatusFailed indicates generation or retrieval failed. Detail holds the reason.
	StatusFailed Status = "failed"
)

// IsValid returns true if s is one of the known job states.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if no further transitions are possible from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
// A single poll can observe a terminal remote state for a job that never
// reported progress, so pending may jump straight to completed or failed.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCompleted, StatusFailed},
	StatusInProgress: {StatusCompleted, StatusFailed},
	StatusCompleted:  {},
	StatusFailed:     {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Job represents a single text-to-video generation request.
//
// A Job is not safe for concurrent mutation. The Repository owns the
// canonical copy and hands out clones; mutations go through
// Repository.Update.
type Job struct {
	// ID is the unique identifier exposed to API callers.
	ID string
	// InvocationARN is the Bedrock async invocation handle. Never exposed to callers.
	InvocationARN string
	// Status is the current job state.
	Status Status
	// Detail is a human-readable failure reason or completion note.
	Detail string
	// VideoURL is the path under which the serving layer exposes the video.
	// Set only when Status is StatusCompleted.
	VideoURL string
	// LocalPath is where the downloaded video lives on disk.
	// Set only when Status is StatusCompleted.
	LocalPath string
	// StoragePrefix is the S3 prefix Bedrock writes this job's output under.
	StoragePrefix string
	// Prompt is the text the video was generated from.
	Prompt string
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// CompletedAt is when the job reached a terminal state.
	CompletedAt time.Time
}

// New creates a pending Job for an invocation Bedrock has already accepted.
func New(jobID, invocationARN, storagePrefix, prompt string) *Job {
	now := time.Now()
	return &Job{
		ID:            jobID,
		InvocationARN: invocationARN,
		Status:        StatusPending,
		StoragePrefix: storagePrefix,
		Prompt:        prompt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Re-entering the current non-terminal state is a no-op.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	if j.Status == status && !status.IsTerminal() {
		return nil
	}
	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()
	if status.IsTerminal() {
		j.CompletedAt = j.UpdatedAt
	}
	return nil
}

// Start marks the job as in progress.
func (j *Job) Start() error {
	return j.TransitionTo(StatusInProgress)
}

// Complete transitions the job to COMPLETED and records where the video lives.
func (j *Job) Complete(localPath, videoURL, detail string) error {
	if err := j.TransitionTo(StatusCompleted); err != nil {
		return err
	}
	j.LocalPath = localPath
	j.VideoURL = videoURL
	j.Detail = detail
	return nil
}

// Fail transitions the job to FAILED with a reason.
func (j *Job) Fail(detail string) error {
	if err := j.TransitionTo(StatusFailed); err != nil {
		return err
	}
	j.Detail = detail
	j.LocalPath = ""
	j.VideoURL = ""
	return nil
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// Clone creates a copy of the job for safe reads.
func (j *Job) Clone() *Job {
	c := *j
	return &c
}
