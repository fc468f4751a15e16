// Package mergetree is the public façade over the merge tree construction
// pipeline: it wires the mesh and scalar field into precompute, the
// task-parallel leaf sweep, the trunk phase, and optional segmentation.
package mergetree

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/topomesh/mergetree/internal/sweep"
	"github.com/topomesh/mergetree/internal/trunk"
	internaltree "github.com/topomesh/mergetree/internal/tree"
	apperrors "github.com/topomesh/mergetree/pkg/errors"
	"github.com/topomesh/mergetree/pkg/mesh"
	"github.com/topomesh/mergetree/pkg/scalars"
	"github.com/topomesh/mergetree/pkg/utils"
)

var tracer = otel.Tracer("github.com/topomesh/mergetree/pkg/mergetree")

// Builder constructs merge trees over a fixed mesh and scalar field.
type Builder struct {
	Mesh   mesh.Mesh
	Field  scalars.Field
	Logger utils.Logger
	Timer  *utils.Timer
}

// NewBuilder returns a Builder with a null logger and a disabled timer; use
// the With* options to wire in real ones.
func NewBuilder(m mesh.Mesh, f scalars.Field) *Builder {
	return &Builder{
		Mesh:   m,
		Field:  f,
		Logger: &utils.NullLogger{},
		Timer:  utils.NewTimer("mergetree.build", utils.WithEnabled(false)),
	}
}

// WithLogger attaches a logger.
func (b *Builder) WithLogger(l utils.Logger) *Builder {
	b.Logger = l
	return b
}

// WithTimer attaches a phase timer.
func (b *Builder) WithTimer(t *utils.Timer) *Builder {
	b.Timer = t
	return b
}

// Build runs precompute, the leaf-task sweep, the trunk phase, and
// (if requested) segmentation, returning the finished tree.
func (b *Builder) Build(ctx context.Context, params Params) (*Tree, error) {
	ctx, span := tracer.Start(ctx, "mergetree.Build")
	defer span.End()

	if b.Mesh.VertexCount() != b.Field.Len() {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput,
			"mesh vertex count does not match field length", nil)
	}
	if params.ChunkSize <= 0 {
		params.ChunkSize = 4096
	}

	if b.Mesh.VertexCount() == 0 {
		return &Tree{Type: params.Type, store: internaltree.NewStore(0)}, nil
	}

	var ord sweep.Order
	switch params.Type {
	case Split:
		ord = sweep.SplitOrder(b.Field)
	default:
		ord = sweep.JoinOrder(b.Field)
	}

	store := internaltree.NewStore(b.Mesh.VertexCount())

	pt := b.Timer.Start("precompute")
	sweep.Precompute(ctx, b.Mesh, ord, store, params.ChunkSize)
	pt.Stop()
	b.Logger.Debug("precompute done, leaves=%d", len(store.Leaves()))

	if len(store.Leaves()) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeStructuralError,
			"no local extrema found; mesh has no vertices or is malformed", nil)
	}

	engine := sweep.NewEngine(b.Mesh, ord, store)

	st := b.Timer.Start("sweep")
	if err := engine.Run(ctx); err != nil {
		st.Stop()
		return nil, apperrors.Wrap(apperrors.CodeAnalysisError, "leaf sweep failed", err)
	}
	st.Stop()
	b.Logger.Debug("leaf sweep done, active_tasks_remaining=%d", engine.ActiveTasks())

	tt := b.Timer.Start("trunk")
	trunk.Run(ctx, engine, b.Field, params.ChunkSize)
	tt.Stop()

	if params.Segment {
		sg := b.Timer.Start("segment")
		trunk.Segment(ctx, engine, params.ChunkSize)
		sg.Stop()
	}

	if len(store.Roots()) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeStructuralError,
			"sweep produced no root; mesh may be disconnected in a way the sweep cannot close", nil)
	}

	return &Tree{Type: params.Type, store: store}, nil
}

// BuildContourPair builds both the join and split trees over the same
// mesh and field, the pair a contour-tree merge step needs downstream.
func (b *Builder) BuildContourPair(ctx context.Context, params Params) (join, split *Tree, err error) {
	joinParams := params
	joinParams.Type = Join
	join, err = b.Build(ctx, joinParams)
	if err != nil {
		return nil, nil, err
	}
	splitParams := params
	splitParams.Type = Split
	split, err = b.Build(ctx, splitParams)
	if err != nil {
		return nil, nil, err
	}
	return join, split, nil
}
