// Package repository provides database abstraction for recorded build runs.
package repository

import "context"

// BuildRunRepository defines the interface for build-run persistence.
type BuildRunRepository interface {
	// CreateRun inserts a new run record and assigns its ID.
	CreateRun(ctx context.Context, run *BuildRun) error

	// CompleteRun fills in the final stats and marks the run completed.
	CompleteRun(ctx context.Context, runUUID string, run *BuildRun) error

	// FailRun marks a run failed with the given error message.
	FailRun(ctx context.Context, runUUID string, errMsg string) error

	// GetRunByUUID retrieves a run by its UUID.
	GetRunByUUID(ctx context.Context, runUUID string) (*BuildRun, error)

	// ListRuns retrieves the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*BuildRun, error)
}
