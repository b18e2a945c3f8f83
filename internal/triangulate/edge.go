package triangulate

import (
	"github.com/talgya/lookout/internal/geom"
	"github.com/talgya/lookout/internal/metrics"
)

// EdgeVertices is an edge subdivided into four spans. V1 and V5 are the
// corners; V3 is always the midpoint, which is where a river bed dips.
type EdgeVertices struct {
	V1, V2, V3, V4, V5 geom.Vec3
}

// NewEdge subdivides the edge from corner1 to corner2 into quarters.
func NewEdge(corner1, corner2 geom.Vec3) EdgeVertices {
	return NewEdgeStep(corner1, corner2, 0.25)
}

// NewEdgeStep places V2 and V4 at outerStep from either corner.
func NewEdgeStep(corner1, corner2 geom.Vec3, outerStep float64) EdgeVertices {
	return EdgeVertices{
		V1: corner1,
		V2: corner1.Lerp(corner2, outerStep),
		V3: corner1.Lerp(corner2, 0.5),
		V4: corner1.Lerp(corner2, 1-outerStep),
		V5: corner2,
	}
}

// TerraceLerpEdge interpolates every vertex of an edge for a terrace step.
func TerraceLerpEdge(a, b EdgeVertices, step int) EdgeVertices {
	return EdgeVertices{
		V1: metrics.TerraceLerp(a.V1, b.V1, step),
		V2: metrics.TerraceLerp(a.V2, b.V2, step),
		V3: metrics.TerraceLerp(a.V3, b.V3, step),
		V4: metrics.TerraceLerp(a.V4, b.V4, step),
		V5: metrics.TerraceLerp(a.V5, b.V5, step),
	}
}
