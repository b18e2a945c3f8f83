package triangulate

import (
	"github.com/talgya/lookout/internal/geom"
	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/metrics"
	"github.com/talgya/lookout/internal/world"
)

// triangulateWithRiver cuts a channel from the cell center to an edge the
// river passes through. The channel's inner end is pulled towards the
// other river edge so bends never overlap.
func (t *Triangulator) triangulateWithRiver(d hex.Direction, c *world.Cell, center geom.Vec3, e EdgeVertices) {
	var centerL, centerR geom.Vec3
	switch {
	case c.HasRiverThroughEdge(d.Opposite()):
		centerL = center.Add(metrics.FirstSolidCorner(d.Previous()).Scale(0.25))
		centerR = center.Add(metrics.SecondSolidCorner(d.Next()).Scale(0.25))
	case c.HasRiverThroughEdge(d.Next()):
		centerL = center
		centerR = center.Lerp(e.V5, 2.0/3)
	case c.HasRiverThroughEdge(d.Previous()):
		centerL = center.Lerp(e.V1, 2.0/3)
		centerR = center
	case c.HasRiverThroughEdge(d.Next2()):
		centerL = center
		centerR = center.Add(metrics.SolidEdgeMiddle(d.Next()).Scale(0.5 * hex.InnerToOuter))
	default:
		centerL = center.Add(metrics.SolidEdgeMiddle(d.Previous()).Scale(0.5 * hex.InnerToOuter))
		centerR = center
	}
	center = centerL.Lerp(centerR, 0.5)

	m := NewEdgeStep(centerL.Lerp(e.V1, 0.5), centerR.Lerp(e.V5, 0.5), 1.0/6)
	m.V3.Y = e.V3.Y
	center.Y = e.V3.Y

	color := c.Color()
	t.edgeStrip(m, color, e, color, false)

	terrain := t.mesh.Terrain
	terrain.AddTriangle(centerL, m.V1, m.V2)
	terrain.AddTriangleColor(color)
	terrain.AddQuad(centerL, center, m.V2, m.V3)
	terrain.AddQuadColor(color)
	terrain.AddQuad(center, centerR, m.V3, m.V4)
	terrain.AddQuadColor(color)
	terrain.AddTriangle(centerR, m.V4, m.V5)
	terrain.AddTriangleColor(color)

	if !c.IsUnderwater() {
		in, hasIn := c.IncomingRiver()
		reversed := hasIn && in == d
		t.riverQuad(centerL, centerR, m.V2, m.V4, c.RiverSurfaceY(), 0.4, reversed)
		t.riverQuad(m.V2, m.V4, e.V2, e.V4, c.RiverSurfaceY(), 0.6, reversed)
	}
}

// triangulateRiverEndpoint closes a channel that starts or ends in the cell.
func (t *Triangulator) triangulateRiverEndpoint(d hex.Direction, c *world.Cell, center geom.Vec3, e EdgeVertices) {
	m := NewEdgeStep(center.Lerp(e.V1, 0.5), center.Lerp(e.V5, 0.5), 0.25)
	m.V3.Y = e.V3.Y

	color := c.Color()
	t.edgeStrip(m, color, e, color, false)
	t.edgeFan(center, m, color)

	if c.IsUnderwater() {
		return
	}
	reversed := c.HasIncomingRiver()
	y := c.RiverSurfaceY()
	t.riverQuad(m.V2, m.V4, e.V2, e.V4, y, 0.6, reversed)

	center.Y, m.V2.Y, m.V4.Y = y, y, y
	rivers := t.mesh.Rivers
	rivers.AddTriangle(center, m.V2, m.V4)
	if reversed {
		rivers.AddTriangleUV(geom.V2(0.5, 0.4), geom.V2(1, 0.2), geom.V2(0, 0.2))
	} else {
		rivers.AddTriangleUV(geom.V2(0.5, 0.4), geom.V2(0, 0.6), geom.V2(1, 0.6))
	}
}

// triangulateAdjacentToRiver fills a wedge next to a channel. The fan
// center moves off the cell center so the wedge meets the channel edge.
func (t *Triangulator) triangulateAdjacentToRiver(d hex.Direction, c *world.Cell, center geom.Vec3, e EdgeVertices) {
	if c.HasRoads() {
		t.triangulateRoadAdjacentToRiver(d, c, center, e)
	}

	if c.HasRiverThroughEdge(d.Next()) {
		if c.HasRiverThroughEdge(d.Previous()) {
			center = center.Add(metrics.SolidEdgeMiddle(d).Scale(hex.InnerToOuter * 0.5))
		} else if c.HasRiverThroughEdge(d.Previous2()) {
			center = center.Add(metrics.FirstSolidCorner(d).Scale(0.25))
		}
	} else if c.HasRiverThroughEdge(d.Previous()) && c.HasRiverThroughEdge(d.Next2()) {
		center = center.Add(metrics.SecondSolidCorner(d).Scale(0.25))
	}

	m := NewEdgeStep(center.Lerp(e.V1, 0.5), center.Lerp(e.V5, 0.5), 0.25)
	color := c.Color()
	t.edgeStrip(m, color, e, color, false)
	t.edgeFan(center, m, color)
}

func (t *Triangulator) riverQuad(v1, v2, v3, v4 geom.Vec3, y, v float64, reversed bool) {
	t.riverQuadSpan(v1, v2, v3, v4, y, y, v, reversed)
}

// riverQuadSpan adds a river surface quad whose near edge sits at y1 and far
// edge at y2. The v coordinate runs against the flow when reversed.
func (t *Triangulator) riverQuadSpan(v1, v2, v3, v4 geom.Vec3, y1, y2, v float64, reversed bool) {
	v1.Y, v2.Y = y1, y1
	v3.Y, v4.Y = y2, y2
	rivers := t.mesh.Rivers
	rivers.AddQuad(v1, v2, v3, v4)
	if reversed {
		rivers.AddQuadUVRect(1, 0, 0.8-v, 0.6-v)
	} else {
		rivers.AddQuadUVRect(0, 1, v, v+0.25)
	}
}
