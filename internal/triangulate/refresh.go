package triangulate

import (
	"log/slog"

	"github.com/talgya/lookout/internal/world"
)

// Refresher keeps the latest mesh of every chunk and rebuilds the dirty
// ones on demand. Call Process once per tick after all edits are applied.
type Refresher struct {
	grid   *world.Grid
	tri    *Triangulator
	meshes []*ChunkMesh
}

func NewRefresher(g *world.Grid) *Refresher {
	return &Refresher{
		grid:   g,
		tri:    NewTriangulator(g),
		meshes: make([]*ChunkMesh, len(g.Chunks())),
	}
}

// Mesh returns the current mesh of a chunk, or nil if it was never built.
func (r *Refresher) Mesh(chunk int) *ChunkMesh {
	if chunk < 0 || chunk >= len(r.meshes) {
		return nil
	}
	return r.meshes[chunk]
}

// Meshes returns every chunk mesh indexed by chunk id.
func (r *Refresher) Meshes() []*ChunkMesh {
	return r.meshes
}

// Process rebuilds every dirty chunk from scratch, clears its flag and
// returns the rebuilt chunk ids in ascending order.
func (r *Refresher) Process() []int {
	dirty := r.grid.DirtyChunks()
	for _, id := range dirty {
		m := r.meshes[id]
		if m == nil {
			m = NewChunkMesh(id, r.grid.Surface())
			r.meshes[id] = m
		}
		r.tri.Rebuild(m)
		r.grid.ClearDirty(id)
	}
	if len(dirty) > 0 {
		slog.Debug("chunks refreshed", "count", len(dirty))
	}
	return dirty
}
