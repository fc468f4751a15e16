package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&BuildRun{}))

	return db
}

func TestGormBuildRunRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBuildRunRepository(db)
	ctx := context.Background()

	run := &BuildRun{
		RunUUID:     "run-1",
		TreeType:    "join",
		MeshSource:  "chain:5",
		VertexCount: 5,
		ChunkSize:   4096,
	}
	require.NoError(t, repo.CreateRun(ctx, run))
	assert.NotZero(t, run.ID)

	got, err := repo.GetRunByUUID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "join", got.TreeType)
	assert.Equal(t, "running", got.Status)
}

func TestGormBuildRunRepository_GetByUUID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBuildRunRepository(db)

	_, err := repo.GetRunByUUID(context.Background(), "missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGormBuildRunRepository_CompleteRun(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBuildRunRepository(db)
	ctx := context.Background()

	run := &BuildRun{RunUUID: "run-2", TreeType: "split"}
	require.NoError(t, repo.CreateRun(ctx, run))

	final := &BuildRun{
		NodeCount: 3,
		ArcCount:  2,
		LeafCount: 1,
		RootCount: 1,
		Segmented: true,
	}
	require.NoError(t, final.SetPhaseTimings(map[string]float64{"sweep": 1.5}))
	require.NoError(t, repo.CompleteRun(ctx, "run-2", final))

	got, err := repo.GetRunByUUID(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, int64(3), got.NodeCount)
	assert.True(t, got.Segmented)
	assert.NotNil(t, got.CompletedAt)

	timings, err := got.PhaseTimingsMap()
	require.NoError(t, err)
	assert.Equal(t, 1.5, timings["sweep"])
}

func TestGormBuildRunRepository_CompleteRun_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBuildRunRepository(db)

	err := repo.CompleteRun(context.Background(), "missing", &BuildRun{})
	assert.Error(t, err)
}

func TestGormBuildRunRepository_FailRun(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBuildRunRepository(db)
	ctx := context.Background()

	run := &BuildRun{RunUUID: "run-3", TreeType: "join"}
	require.NoError(t, repo.CreateRun(ctx, run))
	require.NoError(t, repo.FailRun(ctx, "run-3", "mesh has no vertices"))

	got, err := repo.GetRunByUUID(ctx, "run-3")
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Equal(t, "mesh has no vertices", got.ErrorMessage)
}

func TestGormBuildRunRepository_ListRuns(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBuildRunRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.CreateRun(ctx, &BuildRun{RunUUID: string(rune('a' + i)), TreeType: "join"}))
	}

	runs, err := repo.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
