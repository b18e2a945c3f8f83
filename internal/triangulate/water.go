package triangulate

import (
	"github.com/talgya/lookout/internal/geom"
	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/metrics"
	"github.com/talgya/lookout/internal/world"
)

// triangulateWater covers one sixth of an underwater cell with open water,
// or with a shore strip when the neighbor is dry land.
func (t *Triangulator) triangulateWater(d hex.Direction, c *world.Cell, center geom.Vec3) {
	center.Y = c.WaterSurfaceY()
	n := t.grid.Neighbor(c, d)
	if n != nil && !n.IsUnderwater() {
		t.triangulateWaterShore(d, c, n, center)
	} else {
		t.triangulateOpenWater(d, c, n, center)
	}
}

func (t *Triangulator) triangulateOpenWater(d hex.Direction, c, n *world.Cell, center geom.Vec3) {
	c1 := center.Add(metrics.FirstWaterCorner(d))
	c2 := center.Add(metrics.SecondWaterCorner(d))
	water := t.mesh.Water
	water.AddTriangle(center, c1, c2)

	if d > hex.SE || n == nil {
		return
	}
	bridge := metrics.WaterBridge(d)
	e1 := c1.Add(bridge)
	e2 := c2.Add(bridge)
	water.AddQuad(c1, c2, e1, e2)

	if d > hex.E {
		return
	}
	next := t.grid.Neighbor(c, d.Next())
	if next == nil || !next.IsUnderwater() {
		return
	}
	water.AddTriangle(c2, e2, c2.Add(metrics.WaterBridge(d.Next())))
}

// triangulateWaterShore fills the water hexagon wedge and a foam strip that
// reaches the neighbor's solid edge. River mouths become estuaries.
func (t *Triangulator) triangulateWaterShore(d hex.Direction, c, n *world.Cell, center geom.Vec3) {
	e1 := NewEdge(
		center.Add(metrics.FirstWaterCorner(d)),
		center.Add(metrics.SecondWaterCorner(d)),
	)
	water := t.mesh.Water
	water.AddTriangle(center, e1.V1, e1.V2)
	water.AddTriangle(center, e1.V2, e1.V3)
	water.AddTriangle(center, e1.V3, e1.V4)
	water.AddTriangle(center, e1.V4, e1.V5)

	center2 := n.Position().WithY(center.Y)
	e2 := NewEdge(
		center2.Add(metrics.SecondSolidCorner(d.Opposite())),
		center2.Add(metrics.FirstSolidCorner(d.Opposite())),
	)

	shore := t.mesh.WaterShore
	if c.HasRiverThroughEdge(d) {
		in, hasIn := c.IncomingRiver()
		t.triangulateEstuary(e1, e2, hasIn && in == d)
	} else {
		shore.AddQuad(e1.V1, e1.V2, e2.V1, e2.V2)
		shore.AddQuad(e1.V2, e1.V3, e2.V2, e2.V3)
		shore.AddQuad(e1.V3, e1.V4, e2.V3, e2.V4)
		shore.AddQuad(e1.V4, e1.V5, e2.V4, e2.V5)
		for range 4 {
			shore.AddQuadUVRect(0, 0, 0, 1)
		}
	}

	next := t.grid.Neighbor(c, d.Next())
	if next == nil {
		return
	}
	v3 := next.Position()
	nextFoam := 1.0
	if next.IsUnderwater() {
		v3 = v3.Add(metrics.FirstWaterCorner(d.Previous()))
		nextFoam = 0
	} else {
		v3 = v3.Add(metrics.FirstSolidCorner(d.Previous()))
	}
	v3.Y = center.Y
	shore.AddTriangle(e1.V5, e2.V5, v3)
	shore.AddTriangleUV(geom.V2(0, 0), geom.V2(0, 1), geom.V2(0, nextFoam))
}

// waterfallInWater drops a river from y1 to y2 and clips the quad where it
// meets the water surface at waterY.
func (t *Triangulator) waterfallInWater(v1, v2, v3, v4 geom.Vec3, y1, y2, waterY float64) {
	v1.Y, v2.Y = y1, y1
	v3.Y, v4.Y = y2, y2
	v1 = t.surface.Perturb(v1)
	v2 = t.surface.Perturb(v2)
	v3 = t.surface.Perturb(v3)
	v4 = t.surface.Perturb(v4)

	f := (waterY - y2) / (y1 - y2)
	v3 = v3.Lerp(v1, f)
	v4 = v4.Lerp(v2, f)

	rivers := t.mesh.Rivers
	rivers.AddQuadUnperturbed(v1, v2, v3, v4)
	rivers.AddQuadUVRect(0, 1, 0.8, 1)
}

// triangulateEstuary replaces the shore strip where a river meets open
// water. The second UV channel carries the river flow, mirrored when the
// river flows into the land cell.
func (t *Triangulator) triangulateEstuary(e1, e2 EdgeVertices, incomingRiver bool) {
	shore := t.mesh.WaterShore
	shore.AddTriangle(e2.V1, e1.V2, e1.V1)
	shore.AddTriangle(e2.V5, e1.V5, e1.V4)
	shore.AddTriangleUV(geom.V2(0, 1), geom.V2(0, 0), geom.V2(0, 0))
	shore.AddTriangleUV(geom.V2(0, 1), geom.V2(0, 0), geom.V2(0, 0))

	estuaries := t.mesh.Estuaries
	estuaries.AddQuad(e2.V1, e1.V2, e2.V2, e1.V3)
	estuaries.AddTriangle(e1.V3, e2.V2, e2.V4)
	estuaries.AddQuad(e1.V3, e1.V4, e2.V4, e2.V5)

	estuaries.AddQuadUV(geom.V2(0, 1), geom.V2(0, 0), geom.V2(1, 1), geom.V2(0, 0))
	estuaries.AddTriangleUV(geom.V2(0, 0), geom.V2(1, 1), geom.V2(1, 1))
	estuaries.AddQuadUV(geom.V2(0, 0), geom.V2(0, 0), geom.V2(1, 1), geom.V2(0, 1))

	if incomingRiver {
		estuaries.AddQuadUV2(geom.V2(1.5, 1), geom.V2(0.7, 1.15), geom.V2(1, 0.8), geom.V2(0.5, 1.1))
		estuaries.AddTriangleUV2(geom.V2(0.5, 1.1), geom.V2(1, 0.8), geom.V2(0, 0.8))
		estuaries.AddQuadUV2(geom.V2(0.5, 1.1), geom.V2(0.3, 1.15), geom.V2(0, 0.8), geom.V2(-0.5, 1))
	} else {
		estuaries.AddQuadUV2(geom.V2(-0.5, -0.2), geom.V2(0.3, -0.35), geom.V2(0, 0), geom.V2(0.5, -0.3))
		estuaries.AddTriangleUV2(geom.V2(0.5, -0.3), geom.V2(0, 0), geom.V2(1, 0))
		estuaries.AddQuadUV2(geom.V2(0.5, -0.3), geom.V2(0.7, -0.35), geom.V2(1, 0), geom.V2(1.5, -0.2))
	}
}
