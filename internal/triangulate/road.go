package triangulate

import (
	"github.com/talgya/lookout/internal/geom"
	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/metrics"
	"github.com/talgya/lookout/internal/world"
)

// roadInterpolators returns how far towards the left and right edge
// corners the road reaches inside the cell for direction d.
func roadInterpolators(d hex.Direction, c *world.Cell) (float64, float64) {
	if c.HasRoadThroughEdge(d) {
		return 0.5, 0.5
	}
	x, y := 0.25, 0.25
	if c.HasRoadThroughEdge(d.Previous()) {
		x = 0.5
	}
	if c.HasRoadThroughEdge(d.Next()) {
		y = 0.5
	}
	return x, y
}

// roadSegment adds the two quads of a road strip; the road's middle line
// runs through v2 and v5.
func (t *Triangulator) roadSegment(v1, v2, v3, v4, v5, v6 geom.Vec3) {
	roads := t.mesh.Roads
	roads.AddQuad(v1, v2, v4, v5)
	roads.AddQuad(v2, v3, v5, v6)
	roads.AddQuadUVRect(0, 1, 0, 0)
	roads.AddQuadUVRect(1, 0, 0, 0)
}

func (t *Triangulator) triangulateRoad(center, mL, mR geom.Vec3, e EdgeVertices, hasRoadThroughEdge bool) {
	if !hasRoadThroughEdge {
		t.roadEdge(center, mL, mR)
		return
	}
	mC := mL.Lerp(mR, 0.5)
	t.roadSegment(mL, mC, mR, e.V2, e.V3, e.V4)
	roads := t.mesh.Roads
	roads.AddTriangle(center, mL, mC)
	roads.AddTriangle(center, mC, mR)
	roads.AddTriangleUV(geom.V2(1, 0), geom.V2(0, 0), geom.V2(1, 0))
	roads.AddTriangleUV(geom.V2(1, 0), geom.V2(1, 0), geom.V2(0, 0))
}

// roadEdge adds the triangle of road surface that fills the gap between
// the road center and an edge without a road.
func (t *Triangulator) roadEdge(center, mL, mR geom.Vec3) {
	roads := t.mesh.Roads
	roads.AddTriangle(center, mL, mR)
	roads.AddTriangleUV(geom.V2(1, 0), geom.V2(0, 0), geom.V2(0, 0))
}

// triangulateRoadAdjacentToRiver routes the roads of a river cell around
// the channel. A straight river or a wide bend can split the roads onto
// two banks, in which case a bridge is requested.
func (t *Triangulator) triangulateRoadAdjacentToRiver(d hex.Direction, c *world.Cell, center geom.Vec3, e EdgeVertices) {
	hasRoadThroughEdge := c.HasRoadThroughEdge(d)
	previousHasRiver := c.HasRiverThroughEdge(d.Previous())
	nextHasRiver := c.HasRiverThroughEdge(d.Next())
	ix, iy := roadInterpolators(d, c)
	roadCenter := center

	in, _ := c.IncomingRiver()
	out, _ := c.OutgoingRiver()
	switch {
	case c.HasRiverBeginOrEnd():
		roadCenter = roadCenter.Add(metrics.SolidEdgeMiddle(c.RiverBeginOrEndDirection().Opposite()).Scale(1.0 / 3))

	case in == out.Opposite():
		var corner geom.Vec3
		if previousHasRiver {
			if !hasRoadThroughEdge && !c.HasRoadThroughEdge(d.Next()) {
				return
			}
			corner = metrics.SecondSolidCorner(d)
		} else {
			if !hasRoadThroughEdge && !c.HasRoadThroughEdge(d.Previous()) {
				return
			}
			corner = metrics.FirstSolidCorner(d)
		}
		roadCenter = roadCenter.Add(corner.Scale(0.5))
		if in == d.Next() && (c.HasRoadThroughEdge(d.Next2()) || c.HasRoadThroughEdge(d.Opposite())) {
			t.addBridge(c, roadCenter, center.Sub(corner.Scale(0.5)))
		}
		center = center.Add(corner.Scale(0.25))

	case in == out.Previous():
		roadCenter = roadCenter.Sub(metrics.SecondSolidCorner(in).Scale(0.2))

	case in == out.Next():
		roadCenter = roadCenter.Sub(metrics.FirstSolidCorner(in).Scale(0.2))

	case previousHasRiver && nextHasRiver:
		if !hasRoadThroughEdge {
			return
		}
		offset := metrics.SolidEdgeMiddle(d).Scale(hex.InnerToOuter)
		roadCenter = roadCenter.Add(offset.Scale(0.7))
		center = center.Add(offset.Scale(0.5))

	default:
		middle := d
		if previousHasRiver {
			middle = d.Next()
		} else if nextHasRiver {
			middle = d.Previous()
		}
		if !c.HasRoadThroughEdge(middle) && !c.HasRoadThroughEdge(middle.Previous()) && !c.HasRoadThroughEdge(middle.Next()) {
			return
		}
		offset := metrics.SolidEdgeMiddle(middle)
		center = center.Add(offset.Scale(0.25))
		if d == middle && c.HasRoadThroughEdge(d.Opposite()) {
			t.addBridge(c, roadCenter, center.Sub(offset.Scale(hex.InnerToOuter*0.7)))
		}
	}

	mL := center.Lerp(e.V1, ix)
	mR := center.Lerp(e.V5, iy)
	t.triangulateRoad(roadCenter, mL, mR, e, hasRoadThroughEdge)
	if previousHasRiver {
		t.roadEdge(roadCenter, center, mL)
	}
	if nextHasRiver {
		t.roadEdge(roadCenter, mR, center)
	}
}
