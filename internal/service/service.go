// Package service wires configuration, logging, persistence, and the
// mergetree builder into the single operation the CLI drives: build a tree
// over a dataset and record its shape.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/topomesh/mergetree/internal/repository"
	"github.com/topomesh/mergetree/pkg/config"
	"github.com/topomesh/mergetree/pkg/mergetree"
	"github.com/topomesh/mergetree/pkg/meshio"
	"github.com/topomesh/mergetree/pkg/utils"
)

// Service is the main application service.
type Service struct {
	config *config.Config
	logger utils.Logger
	repos  *repository.Repositories

	running bool
}

// New creates a new Service instance.
func New(cfg *config.Config, logger utils.Logger) (*Service, error) {
	if logger == nil {
		logger = utils.NewDefaultLogger(utils.LevelInfo, nil)
	}

	return &Service{
		config: cfg,
		logger: logger,
	}, nil
}

// Initialize initializes the service's components: the run-statistics
// database, if enabled, and the data directory that holds JSON exports.
func (s *Service) Initialize(ctx context.Context) error {
	s.logger.Info("Initializing service components...")

	if err := s.config.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if s.config.Database.Enabled {
		if err := s.initDatabase(); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	s.running = true
	s.logger.Info("Service components initialized successfully")
	return nil
}

func (s *Service) initDatabase() error {
	s.logger.Info("Opening run-statistics database (%s)...", s.config.Database.Path)

	gormDB, err := repository.NewGormDB(&repository.DBConfig{
		Path:     s.config.Database.Path,
		MaxConns: s.config.Database.MaxConns,
	})
	if err != nil {
		return err
	}

	s.repos = repository.NewRepositories(gormDB)
	s.logger.Info("Run-statistics database ready")
	return nil
}

// BuildResult bundles the constructed tree with the run record describing
// how it was built.
type BuildResult struct {
	Tree *mergetree.Tree
	Run  *repository.BuildRun
}

// Build runs a single merge-tree construction over ds, recording the run
// in the statistics database when one is configured.
func (s *Service) Build(ctx context.Context, ds *meshio.Dataset, meshSource string, treeType mergetree.TreeType, segment bool) (*BuildResult, error) {
	runUUID := uuid.NewString()

	run := &repository.BuildRun{
		RunUUID:     runUUID,
		TreeType:    treeType.String(),
		MeshSource:  meshSource,
		VertexCount: int64(ds.Mesh.VertexCount()),
		ChunkSize:   int64(s.config.Build.ChunkSize),
	}

	if s.repos != nil {
		if err := s.repos.BuildRun.CreateRun(ctx, run); err != nil {
			s.logger.Warn("failed to record build run: %v", err)
		}
	}

	timer := utils.NewTimer("mergetree.build",
		utils.WithEnabled(s.config.Build.Stats),
		utils.WithLogger(s.logger))

	builder := mergetree.NewBuilder(ds.Mesh, ds.Field).
		WithLogger(s.logger).
		WithTimer(timer)

	params := mergetree.Params{
		Type:      treeType,
		ChunkSize: s.config.Build.ChunkSize,
		Segment:   segment,
	}

	tree, err := builder.Build(ctx, params)
	if err != nil {
		if s.repos != nil {
			if ferr := s.repos.BuildRun.FailRun(ctx, runUUID, err.Error()); ferr != nil {
				s.logger.Warn("failed to record build failure: %v", ferr)
			}
		}
		return nil, fmt.Errorf("build failed: %w", err)
	}

	run.NodeCount = int64(tree.NumNodes())
	run.ArcCount = int64(tree.NumArcs())
	run.LeafCount = int64(len(tree.Leaves()))
	run.RootCount = int64(len(tree.Roots()))
	run.Segmented = params.Segment
	run.Status = "completed"

	if s.config.Build.Stats {
		if err := run.SetPhaseTimings(phaseDurations(timer)); err != nil {
			s.logger.Warn("failed to encode phase timings: %v", err)
		}
	}

	if s.repos != nil {
		if err := s.repos.BuildRun.CompleteRun(ctx, runUUID, run); err != nil {
			s.logger.Warn("failed to record build completion: %v", err)
		}
	}

	return &BuildResult{Tree: tree, Run: run}, nil
}

func phaseDurations(t *utils.Timer) map[string]float64 {
	out := make(map[string]float64)
	for _, phase := range t.GetPhases() {
		out[phase.Name] = phase.Duration.Seconds() * 1000
	}
	return out
}

// Stop stops the service gracefully.
func (s *Service) Stop() error {
	s.logger.Info("Stopping service...")

	if s.repos != nil {
		if err := s.repos.Close(); err != nil {
			s.logger.Error("Failed to close database connection: %v", err)
		}
	}

	s.running = false
	s.logger.Info("Service stopped")

	return nil
}

// IsRunning returns whether the service is running.
func (s *Service) IsRunning() bool {
	return s.running
}

// HealthCheck performs a health check on the service.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.repos != nil {
		if err := s.repos.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
	}
	return nil
}
