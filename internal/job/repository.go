package job

import (
	"context"
	"errors"
)

var (
	// ErrJobNotFound is returned when a job cannot be found by ID.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobExists is returned when creating a job whose ID is already stored.
	ErrJobExists = errors.New("job already exists")
)

// Repository defines the interface for job persistence.
// It acts as a port in the hexagonal architecture pattern.
// Jobs are never deleted.
type Repository interface {
	// Create stores a new job.
	// Returns ErrJobExists if a job with the same ID is already stored.
	Create(ctx context.Context, job *Job) error

	// FindByID retrieves a snapshot of a job by its unique identifier.
	// Returns ErrJobNotFound if the job does not exist.
	FindByID(ctx context.Context, id string) (*Job, error)

	// Update applies fn to the stored job atomically and returns the
	// resulting snapshot. If fn returns an error the stored job is left
	// unchanged and the error is returned.
	// Returns ErrJobNotFound if the job does not exist.
	Update(ctx context.Context, id string, fn func(*Job) error) (*Job, error)

	// List returns snapshots of all jobs.
	List(ctx context.Context) ([]*Job, error)
}
