// Package id provides unique identifier generation for jobs.
package id

import "github.com/google/uuid"

// Generate creates a new unique job ID.
// Format: random (version 4) UUID, e.g. 3f2b8c1e-5d6a-4b7e-9c0d-1a2b3c4d5e6f
func Generate() string {
	return uuid.NewString()
}
