package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGormDB(t *testing.T) {
	t.Run("OpensAndMigrates", func(t *testing.T) {
		db, err := NewGormDB(&DBConfig{Path: ":memory:"})
		require.NoError(t, err)
		require.NotNil(t, db)

		assert.True(t, db.Migrator().HasTable(&BuildRun{}))
	})

	t.Run("DefaultsMaxConnsToOne", func(t *testing.T) {
		db, err := NewGormDB(&DBConfig{Path: ":memory:"})
		require.NoError(t, err)

		sqlDB, err := db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Ping())
		assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	})
}

func TestNewRepositories(t *testing.T) {
	db, err := NewGormDB(&DBConfig{Path: ":memory:"})
	require.NoError(t, err)

	repos := NewRepositories(db)
	require.NotNil(t, repos)
	assert.NotNil(t, repos.BuildRun)
}

func TestRepositories_Close(t *testing.T) {
	db, err := NewGormDB(&DBConfig{Path: ":memory:"})
	require.NoError(t, err)
	repos := NewRepositories(db)

	assert.NoError(t, repos.Close())
}

func TestRepositories_DB(t *testing.T) {
	db, err := NewGormDB(&DBConfig{Path: ":memory:"})
	require.NoError(t, err)
	repos := NewRepositories(db)

	assert.NotNil(t, repos.DB())
}

func TestRepositories_GormDB(t *testing.T) {
	db, err := NewGormDB(&DBConfig{Path: ":memory:"})
	require.NoError(t, err)
	repos := NewRepositories(db)

	assert.Equal(t, db, repos.GormDB())
}

func TestRepositories_HealthCheck(t *testing.T) {
	db, err := NewGormDB(&DBConfig{Path: ":memory:"})
	require.NoError(t, err)
	repos := NewRepositories(db)

	assert.NoError(t, repos.HealthCheck(context.Background()))
}
