// Package generator provides the gateway to the asynchronous video
// generation service. The Bedrock adapter submits Nova Reel text-to-video
// invocations and reports their remote status.
package generator

import (
	"context"
	"errors"
	"strings"
)

// Static errors for generator operations.
var (
	// ErrSubmit is returned when a generation request cannot be started.
	ErrSubmit = errors.New("generator: submit failed")
	// ErrNoInvocationARN is returned when the service accepts a request but returns no handle.
	ErrNoInvocationARN = errors.New("generator: no invocation ARN returned")
	// ErrPoll is returned when the status of an invocation cannot be fetched.
	ErrPoll = errors.New("generator: poll failed")
	// ErrInvocationARNRequired is returned when polling without a handle.
	ErrInvocationARNRequired = errors.New("generator: invocation ARN is required")
	// ErrPromptRequired is returned when submitting an empty prompt.
	ErrPromptRequired = errors.New("generator: prompt is required")
)

// RemoteStatus is the normalized (lower-cased) status reported by the
// generation service for an invocation.
type RemoteStatus string

// Known remote statuses. Bedrock reports InProgress, Completed and Failed;
// the other spellings appear in older model integrations.
const (
	RemoteStarting          RemoteStatus = "starting"
	RemoteInProgress        RemoteStatus = "in_progress"
	RemoteInProgressCompact RemoteStatus = "inprogress"
	RemoteCompleted         RemoteStatus = "completed"
	RemoteFailed            RemoteStatus = "failed"
)

// NormalizeStatus lower-cases and trims a raw remote status.
func NormalizeStatus(raw string) RemoteStatus {
	return RemoteStatus(strings.ToLower(strings.TrimSpace(raw)))
}

// IsTerminal returns true if the status represents a final state.
func (s RemoteStatus) IsTerminal() bool {
	return s == RemoteCompleted || s == RemoteFailed
}

// SubmitOptions contains parameters for submitting a generation request.
type SubmitOptions struct {
	// OutputPrefix is the S3 prefix the service writes its output under.
	OutputPrefix string
	// ClientToken makes the submission idempotent. The job ID is used.
	ClientToken string
	// DurationSeconds is the length of the video.
	DurationSeconds int
	// FPS is the frame rate of the video.
	FPS int
	// Dimension is the resolution as WIDTHxHEIGHT.
	Dimension string
}

// DefaultSubmitOptions returns the only configuration Nova Reel v1 accepts
// for text-to-video.
func DefaultSubmitOptions() SubmitOptions {
	return SubmitOptions{
		DurationSeconds: 6,
		FPS:             24,
		Dimension:       "1280x720",
	}
}

// PollResult contains the result of polling an invocation.
type PollResult struct {
	Status         RemoteStatus // Normalized remote status
	FailureMessage string       // Set by the service when Status is RemoteFailed
}

// Generator defines the interface for the video generation service.
type Generator interface {
	// Submit starts a text-to-video generation and returns the invocation handle.
	Submit(ctx context.Context, prompt string, opts SubmitOptions) (invocationARN string, err error)

	// Poll checks the status of an invocation.
	Poll(ctx context.Context, invocationARN string) (PollResult, error)
}
