// Package triangulate turns cell state into chunk geometry. Every chunk is
// rebuilt from scratch into seven mesh layers plus a list of placement
// requests; identical cell state always produces identical buffers.
package triangulate

import (
	"crypto/sha256"
	"fmt"

	"github.com/talgya/lookout/internal/geom"
	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/mesh"
	"github.com/talgya/lookout/internal/metrics"
	"github.com/talgya/lookout/internal/world"
)

// ChunkMesh holds the geometry of one chunk.
type ChunkMesh struct {
	Chunk      int
	Terrain    *mesh.Layer
	Rivers     *mesh.Layer
	Roads      *mesh.Layer
	Water      *mesh.Layer
	WaterShore *mesh.Layer
	Estuaries  *mesh.Layer
	Walls      *mesh.Layer
	Placements []Placement
}

// NewChunkMesh allocates empty layers that perturb through p.
func NewChunkMesh(chunk int, p mesh.Perturber) *ChunkMesh {
	return &ChunkMesh{
		Chunk:      chunk,
		Terrain:    mesh.NewLayer("terrain", mesh.UseColors, p),
		Rivers:     mesh.NewLayer("rivers", mesh.UseUV, p),
		Roads:      mesh.NewLayer("roads", mesh.UseUV, p),
		Water:      mesh.NewLayer("water", 0, p),
		WaterShore: mesh.NewLayer("waterShore", mesh.UseUV, p),
		Estuaries:  mesh.NewLayer("estuaries", mesh.UseUV|mesh.UseUV2, p),
		Walls:      mesh.NewLayer("walls", 0, p),
	}
}

// Layers returns the layers in a fixed order.
func (m *ChunkMesh) Layers() []*mesh.Layer {
	return []*mesh.Layer{m.Terrain, m.Rivers, m.Roads, m.Water, m.WaterShore, m.Estuaries, m.Walls}
}

// Clear empties every layer and the placement list.
func (m *ChunkMesh) Clear() {
	for _, l := range m.Layers() {
		l.Clear()
	}
	m.Placements = m.Placements[:0]
}

// TriangleCount sums the triangles over all layers.
func (m *ChunkMesh) TriangleCount() int {
	n := 0
	for _, l := range m.Layers() {
		n += l.TriangleCount()
	}
	return n
}

// Digest returns a hex SHA-256 over every layer buffer and placement, so two
// builds can be compared without keeping both meshes around.
func (m *ChunkMesh) Digest() string {
	var buf []byte
	for _, l := range m.Layers() {
		buf = l.AppendBinary(buf)
	}
	h := sha256.New()
	h.Write(buf)
	for _, p := range m.Placements {
		fmt.Fprintf(h, "%d:%d:%d:%d:%v:%v:%v:%v:%v;", p.Kind, p.CellID, p.Faction, p.Tier,
			p.Choice, p.Position, p.Yaw, p.Forward, p.Scale)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Triangulator builds chunk meshes from a grid. It reads the grid and never
// mutates it. A Triangulator is not safe for concurrent use; give each
// goroutine its own.
type Triangulator struct {
	grid    *world.Grid
	surface *metrics.Surface

	mesh   *ChunkMesh
	cellID int // Cell being triangulated, for placements without one
}

func NewTriangulator(g *world.Grid) *Triangulator {
	return &Triangulator{grid: g, surface: g.Surface()}
}

// Build triangulates a chunk into a freshly allocated mesh.
func (t *Triangulator) Build(chunk int) *ChunkMesh {
	m := NewChunkMesh(chunk, t.surface)
	t.Rebuild(m)
	return m
}

// Rebuild clears m and triangulates its chunk again, reusing the buffers.
func (t *Triangulator) Rebuild(m *ChunkMesh) {
	m.Clear()
	t.mesh = m
	for _, id := range t.grid.Chunks()[m.Chunk].Cells {
		t.triangulateCell(t.grid.Cell(id))
	}
	t.mesh = nil
}

func (t *Triangulator) triangulateCell(c *world.Cell) {
	t.cellID = c.ID()
	for _, d := range hex.Directions {
		t.triangulateDirection(d, c)
	}

	if c.IsUnderwater() || c.HasRiver() {
		return
	}
	if !c.HasRoads() {
		t.addFeature(c, c.Position())
	}
	if f := c.Base(); f != world.FactionNone {
		t.addUnit(PlacementBase, c, f)
	}
	if f := c.Army(); f != world.FactionNone {
		t.addUnit(PlacementArmy, c, f)
	}
	if c.HasCity() {
		t.addUnit(PlacementCity, c, world.FactionNone)
	}
}

// centerCase is the layout of one sixth of a cell's interior.
type centerCase uint8

const (
	centerPlain         centerCase = iota // No river in the cell
	centerRiverThrough                    // River enters here and leaves elsewhere
	centerRiverEndpoint                   // River starts or ends in this cell
	centerBesideRiver                     // River in the cell, not through this edge
)

func classifyCenter(c *world.Cell, d hex.Direction) centerCase {
	switch {
	case !c.HasRiver():
		return centerPlain
	case !c.HasRiverThroughEdge(d):
		return centerBesideRiver
	case c.HasRiverBeginOrEnd():
		return centerRiverEndpoint
	default:
		return centerRiverThrough
	}
}

type centerFunc func(t *Triangulator, d hex.Direction, c *world.Cell, center geom.Vec3, e EdgeVertices)

var centerCases = [...]centerFunc{
	centerPlain:         (*Triangulator).triangulateWithoutRiver,
	centerRiverThrough:  (*Triangulator).triangulateWithRiver,
	centerRiverEndpoint: (*Triangulator).triangulateRiverEndpoint,
	centerBesideRiver:   (*Triangulator).triangulateAdjacentToRiver,
}

func (t *Triangulator) triangulateDirection(d hex.Direction, c *world.Cell) {
	center := c.Position()
	e := NewEdge(
		center.Add(metrics.FirstSolidCorner(d)),
		center.Add(metrics.SecondSolidCorner(d)),
	)

	kind := classifyCenter(c, d)
	if kind == centerRiverThrough || kind == centerRiverEndpoint {
		e.V3.Y = c.StreamBedY()
	}
	centerCases[kind](t, d, c, center, e)

	if d <= hex.SE {
		t.triangulateConnection(d, c, e)
	}
	if c.IsUnderwater() {
		t.triangulateWater(d, c, center)
	}
}

func (t *Triangulator) triangulateWithoutRiver(d hex.Direction, c *world.Cell, center geom.Vec3, e EdgeVertices) {
	t.edgeFan(center, e, c.Color())

	if c.HasRoads() {
		ix, iy := roadInterpolators(d, c)
		t.triangulateRoad(center, center.Lerp(e.V1, ix), center.Lerp(e.V5, iy), e, c.HasRoadThroughEdge(d))
	}
	if !c.IsUnderwater() && !c.HasRoadThroughEdge(d) {
		t.addFeature(c, center.Add(e.V1).Add(e.V5).Scale(1.0/3))
	}
}

// edgeFan fills the triangle between center and an edge with four triangles.
func (t *Triangulator) edgeFan(center geom.Vec3, e EdgeVertices, color geom.Color) {
	terrain := t.mesh.Terrain
	terrain.AddTriangle(center, e.V1, e.V2)
	terrain.AddTriangleColor(color)
	terrain.AddTriangle(center, e.V2, e.V3)
	terrain.AddTriangleColor(color)
	terrain.AddTriangle(center, e.V3, e.V4)
	terrain.AddTriangleColor(color)
	terrain.AddTriangle(center, e.V4, e.V5)
	terrain.AddTriangleColor(color)
}

// edgeStrip joins two parallel edges with four quads, blending c1 into c2.
func (t *Triangulator) edgeStrip(e1 EdgeVertices, c1 geom.Color, e2 EdgeVertices, c2 geom.Color, hasRoad bool) {
	terrain := t.mesh.Terrain
	terrain.AddQuad(e1.V1, e1.V2, e2.V1, e2.V2)
	terrain.AddQuadColors2(c1, c2)
	terrain.AddQuad(e1.V2, e1.V3, e2.V2, e2.V3)
	terrain.AddQuadColors2(c1, c2)
	terrain.AddQuad(e1.V3, e1.V4, e2.V3, e2.V4)
	terrain.AddQuadColors2(c1, c2)
	terrain.AddQuad(e1.V4, e1.V5, e2.V4, e2.V5)
	terrain.AddQuadColors2(c1, c2)

	if hasRoad {
		t.roadSegment(e1.V2, e1.V3, e1.V4, e2.V2, e2.V3, e2.V4)
	}
}
