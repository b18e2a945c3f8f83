package triangulate

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/lookout/internal/world"
)

// BuildAll triangulates every chunk of the grid with up to workers
// goroutines (GOMAXPROCS when workers <= 0). The grid must not be mutated
// until BuildAll returns. Dirty flags are left untouched.
func BuildAll(ctx context.Context, g *world.Grid, workers int) ([]*ChunkMesh, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	meshes := make([]*ChunkMesh, len(g.Chunks()))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range meshes {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			meshes[i] = NewTriangulator(g).Build(i)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("triangulate chunks: %w", err)
	}
	return meshes, nil
}
