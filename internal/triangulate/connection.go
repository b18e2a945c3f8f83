package triangulate

import (
	"github.com/talgya/lookout/internal/geom"
	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/metrics"
	"github.com/talgya/lookout/internal/world"
)

// triangulateConnection fills the blend band between a cell and its
// neighbor in direction d, and the corner shared with the next neighbor.
// Only NE, E and SE reach here so every band is built once.
func (t *Triangulator) triangulateConnection(d hex.Direction, c *world.Cell, e1 EdgeVertices) {
	n := t.grid.Neighbor(c, d)
	if n == nil {
		return
	}

	bridge := metrics.Bridge(d)
	bridge.Y = n.Position().Y - c.Position().Y
	e2 := NewEdge(e1.V1.Add(bridge), e1.V5.Add(bridge))

	hasRiver := c.HasRiverThroughEdge(d)
	hasRoad := c.HasRoadThroughEdge(d)
	if hasRiver {
		e2.V3.Y = n.StreamBedY()
		t.riverConnection(d, c, n, e1, e2)
	}

	if t.grid.EdgeType(c, d) == metrics.EdgeSlope {
		t.edgeTerraces(e1, c, e2, n, hasRoad)
	} else {
		t.edgeStrip(e1, c.Color(), e2, n.Color(), hasRoad)
	}
	t.addEdgeWall(e1, c, e2, n, hasRiver, hasRoad)

	next := t.grid.Neighbor(c, d.Next())
	if d > hex.E || next == nil {
		return
	}
	v5 := e1.V5.Add(metrics.Bridge(d.Next()))
	v5.Y = next.Position().Y

	self := corner{e1.V5, c}
	side := corner{e2.V5, n}
	third := corner{v5, next}
	switch {
	case c.Elevation() <= n.Elevation() && c.Elevation() <= next.Elevation():
		t.triangulateCorner(self, side, third)
	case c.Elevation() <= n.Elevation():
		t.triangulateCorner(third, self, side)
	case n.Elevation() <= next.Elevation():
		t.triangulateCorner(side, third, self)
	default:
		t.triangulateCorner(third, self, side)
	}
}

// riverConnection lays the river surface across the blend band, or a
// waterfall where the river drops into or climbs out of open water.
func (t *Triangulator) riverConnection(d hex.Direction, c, n *world.Cell, e1, e2 EdgeVertices) {
	switch {
	case !c.IsUnderwater() && !n.IsUnderwater():
		in, hasIn := c.IncomingRiver()
		reversed := hasIn && in == d
		t.riverQuadSpan(e1.V2, e1.V4, e2.V2, e2.V4, c.RiverSurfaceY(), n.RiverSurfaceY(), 0.8, reversed)
	case !c.IsUnderwater() && c.Elevation() > n.WaterLevel():
		t.waterfallInWater(e1.V2, e1.V4, e2.V2, e2.V4, c.RiverSurfaceY(), n.RiverSurfaceY(), n.WaterSurfaceY())
	case c.IsUnderwater() && !n.IsUnderwater() && n.Elevation() > c.WaterLevel():
		t.waterfallInWater(e2.V4, e2.V2, e1.V4, e1.V2, n.RiverSurfaceY(), c.RiverSurfaceY(), c.WaterSurfaceY())
	}
}

// edgeTerraces builds a terraced blend band between cells one level apart.
func (t *Triangulator) edgeTerraces(begin EdgeVertices, beginCell *world.Cell, end EdgeVertices, endCell *world.Cell, hasRoad bool) {
	e2 := TerraceLerpEdge(begin, end, 1)
	c2 := metrics.TerraceLerpColor(beginCell.Color(), endCell.Color(), 1)
	t.edgeStrip(begin, beginCell.Color(), e2, c2, hasRoad)

	for i := 2; i < metrics.TerraceSteps; i++ {
		e1, c1 := e2, c2
		e2 = TerraceLerpEdge(begin, end, i)
		c2 = metrics.TerraceLerpColor(beginCell.Color(), endCell.Color(), i)
		t.edgeStrip(e1, c1, e2, c2, hasRoad)
	}
	t.edgeStrip(e2, c2, end, endCell.Color(), hasRoad)
}

// corner is one vertex of a three-cell corner together with its cell.
type corner struct {
	v    geom.Vec3
	cell *world.Cell
}

type cornerFunc func(t *Triangulator, bottom, left, right corner)

// cornerCases is indexed by the edge type from the bottom cell to the left
// cell, then to the right cell. The bottom cell is never above the others.
var cornerCases = [3][3]cornerFunc{
	metrics.EdgeFlat: {
		metrics.EdgeFlat:  (*Triangulator).cornerByLeftRight,
		metrics.EdgeSlope: func(t *Triangulator, b, l, r corner) { t.cornerTerraces(r, b, l) },
		metrics.EdgeCliff: (*Triangulator).cornerByLeftRight,
	},
	metrics.EdgeSlope: {
		metrics.EdgeFlat:  func(t *Triangulator, b, l, r corner) { t.cornerTerraces(l, r, b) },
		metrics.EdgeSlope: (*Triangulator).cornerTerraces,
		metrics.EdgeCliff: (*Triangulator).cornerTerracesCliff,
	},
	metrics.EdgeCliff: {
		metrics.EdgeFlat:  (*Triangulator).cornerByLeftRight,
		metrics.EdgeSlope: (*Triangulator).cornerCliffTerraces,
		metrics.EdgeCliff: (*Triangulator).cornerByLeftRight,
	},
}

func edgeTypeBetween(a, b *world.Cell) metrics.EdgeType {
	return metrics.EdgeTypeOf(a.Elevation(), b.Elevation())
}

func (t *Triangulator) triangulateCorner(bottom, left, right corner) {
	leftType := edgeTypeBetween(bottom.cell, left.cell)
	rightType := edgeTypeBetween(bottom.cell, right.cell)
	cornerCases[leftType][rightType](t, bottom, left, right)
	t.addCornerWall(bottom, left, right)
}

// cornerByLeftRight handles corners where the bottom cell has no slope
// towards either side, so only the left-right edge can be terraced.
func (t *Triangulator) cornerByLeftRight(bottom, left, right corner) {
	if edgeTypeBetween(left.cell, right.cell) == metrics.EdgeSlope {
		if left.cell.Elevation() < right.cell.Elevation() {
			t.cornerCliffTerraces(right, bottom, left)
		} else {
			t.cornerTerracesCliff(left, right, bottom)
		}
		return
	}
	terrain := t.mesh.Terrain
	terrain.AddTriangle(bottom.v, left.v, right.v)
	terrain.AddTriangleColors(bottom.cell.Color(), left.cell.Color(), right.cell.Color())
}

// cornerTerraces fills a corner where both sides of begin are slopes.
func (t *Triangulator) cornerTerraces(begin, left, right corner) {
	beginColor, leftColor, rightColor := begin.cell.Color(), left.cell.Color(), right.cell.Color()
	v3 := metrics.TerraceLerp(begin.v, left.v, 1)
	v4 := metrics.TerraceLerp(begin.v, right.v, 1)
	c3 := metrics.TerraceLerpColor(beginColor, leftColor, 1)
	c4 := metrics.TerraceLerpColor(beginColor, rightColor, 1)

	terrain := t.mesh.Terrain
	terrain.AddTriangle(begin.v, v3, v4)
	terrain.AddTriangleColors(beginColor, c3, c4)

	for i := 2; i < metrics.TerraceSteps; i++ {
		v1, v2, c1, c2 := v3, v4, c3, c4
		v3 = metrics.TerraceLerp(begin.v, left.v, i)
		v4 = metrics.TerraceLerp(begin.v, right.v, i)
		c3 = metrics.TerraceLerpColor(beginColor, leftColor, i)
		c4 = metrics.TerraceLerpColor(beginColor, rightColor, i)
		terrain.AddQuad(v1, v2, v3, v4)
		terrain.AddQuadColors(c1, c2, c3, c4)
	}
	terrain.AddQuad(v3, v4, left.v, right.v)
	terrain.AddQuadColors(c3, c4, leftColor, rightColor)
}

// cornerTerracesCliff handles a slope towards left and a cliff towards
// right. The terraces collapse onto a point on the cliff face.
func (t *Triangulator) cornerTerracesCliff(begin, left, right corner) {
	b := cliffBoundaryFactor(begin.cell, right.cell)
	boundary := t.surface.Perturb(begin.v).Lerp(t.surface.Perturb(right.v), b)
	boundaryColor := begin.cell.Color().Lerp(right.cell.Color(), b)

	t.boundaryTriangle(begin, left, boundary, boundaryColor)
	t.closeCliffCorner(left, right, boundary, boundaryColor)
}

// cornerCliffTerraces mirrors cornerTerracesCliff with the cliff on the left.
func (t *Triangulator) cornerCliffTerraces(begin, left, right corner) {
	b := cliffBoundaryFactor(begin.cell, left.cell)
	boundary := t.surface.Perturb(begin.v).Lerp(t.surface.Perturb(left.v), b)
	boundaryColor := begin.cell.Color().Lerp(left.cell.Color(), b)

	t.boundaryTriangle(right, begin, boundary, boundaryColor)
	t.closeCliffCorner(left, right, boundary, boundaryColor)
}

// cliffBoundaryFactor is where the terraces of a one-level slope meet the
// cliff: one elevation step along the cliff's height.
func cliffBoundaryFactor(begin, other *world.Cell) float64 {
	b := 1 / float64(other.Elevation()-begin.Elevation())
	if b < 0 {
		b = -b
	}
	return b
}

func (t *Triangulator) closeCliffCorner(left, right corner, boundary geom.Vec3, boundaryColor geom.Color) {
	if edgeTypeBetween(left.cell, right.cell) == metrics.EdgeSlope {
		t.boundaryTriangle(left, right, boundary, boundaryColor)
		return
	}
	terrain := t.mesh.Terrain
	terrain.AddTriangleUnperturbed(t.surface.Perturb(left.v), t.surface.Perturb(right.v), boundary)
	terrain.AddTriangleColors(left.cell.Color(), right.cell.Color(), boundaryColor)
}

// boundaryTriangle fans the terrace steps from begin to left onto the
// boundary point. The boundary is already perturbed, so nothing here is
// perturbed twice.
func (t *Triangulator) boundaryTriangle(begin, left corner, boundary geom.Vec3, boundaryColor geom.Color) {
	beginColor, leftColor := begin.cell.Color(), left.cell.Color()
	v2 := t.surface.Perturb(metrics.TerraceLerp(begin.v, left.v, 1))
	c2 := metrics.TerraceLerpColor(beginColor, leftColor, 1)

	terrain := t.mesh.Terrain
	terrain.AddTriangleUnperturbed(t.surface.Perturb(begin.v), v2, boundary)
	terrain.AddTriangleColors(beginColor, c2, boundaryColor)

	for i := 2; i < metrics.TerraceSteps; i++ {
		v1, c1 := v2, c2
		v2 = t.surface.Perturb(metrics.TerraceLerp(begin.v, left.v, i))
		c2 = metrics.TerraceLerpColor(beginColor, leftColor, i)
		terrain.AddTriangleUnperturbed(v1, v2, boundary)
		terrain.AddTriangleColors(c1, c2, boundaryColor)
	}
	terrain.AddTriangleUnperturbed(v2, t.surface.Perturb(left.v), boundary)
	terrain.AddTriangleColors(c2, leftColor, boundaryColor)
}
