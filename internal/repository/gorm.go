package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GormBuildRunRepository implements BuildRunRepository using GORM.
type GormBuildRunRepository struct {
	db *gorm.DB
}

// NewGormBuildRunRepository creates a new GormBuildRunRepository.
func NewGormBuildRunRepository(db *gorm.DB) *GormBuildRunRepository {
	return &GormBuildRunRepository{db: db}
}

// CreateRun inserts a new run record and assigns its ID.
func (r *GormBuildRunRepository) CreateRun(ctx context.Context, run *BuildRun) error {
	if run.Status == "" {
		run.Status = "running"
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create build run: %w", err)
	}
	return nil
}

// CompleteRun fills in the final stats and marks the run completed.
func (r *GormBuildRunRepository) CompleteRun(ctx context.Context, runUUID string, run *BuildRun) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":        "completed",
		"node_count":    run.NodeCount,
		"arc_count":     run.ArcCount,
		"leaf_count":    run.LeafCount,
		"root_count":    run.RootCount,
		"segmented":     run.Segmented,
		"phase_timings": run.PhaseTimings,
		"completed_at":  now,
	}

	result := r.db.WithContext(ctx).
		Model(&BuildRun{}).
		Where("run_uuid = ?", runUUID).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to complete build run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("build run not found: %s", runUUID)
	}
	return nil
}

// FailRun marks a run failed with the given error message.
func (r *GormBuildRunRepository) FailRun(ctx context.Context, runUUID string, errMsg string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&BuildRun{}).
		Where("run_uuid = ?", runUUID).
		Updates(map[string]interface{}{
			"status":        "failed",
			"error_message": errMsg,
			"completed_at":  now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to fail build run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("build run not found: %s", runUUID)
	}
	return nil
}

// GetRunByUUID retrieves a run by its UUID.
func (r *GormBuildRunRepository) GetRunByUUID(ctx context.Context, runUUID string) (*BuildRun, error) {
	var run BuildRun
	err := r.db.WithContext(ctx).Where("run_uuid = ?", runUUID).First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("build run not found: %s", runUUID)
		}
		return nil, fmt.Errorf("failed to get build run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (r *GormBuildRunRepository) ListRuns(ctx context.Context, limit int) ([]*BuildRun, error) {
	var runs []*BuildRun
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list build runs: %w", err)
	}
	return runs, nil
}
