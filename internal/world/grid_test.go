package world

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/metrics"
)

func newTestGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := NewGrid(10, 10, metrics.NewSurface(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func neighborOf(t *testing.T, g *Grid, id int, d hex.Direction) int {
	t.Helper()
	n, ok := g.Cell(id).NeighborID(d)
	if !ok {
		t.Fatalf("cell %d has no neighbor %s", id, d)
	}
	return n
}

// checkInvariants verifies river symmetry, one river per edge direction,
// road symmetry and road/river exclusivity for the whole grid.
func checkInvariants(t *testing.T, g *Grid) {
	t.Helper()
	for id := 0; id < g.Len(); id++ {
		c := g.Cell(id)
		if out, ok := c.OutgoingRiver(); ok {
			n := g.Neighbor(c, out)
			if n == nil {
				t.Fatalf("cell %d: outgoing river %s leaves the map", id, out)
			}
			if in, ok := n.IncomingRiver(); !ok || in != out.Opposite() {
				t.Fatalf("cell %d: outgoing %s not mirrored on %d", id, out, n.ID())
			}
		}
		if in, ok := c.IncomingRiver(); ok {
			n := g.Neighbor(c, in)
			if n == nil {
				t.Fatalf("cell %d: incoming river %s enters from outside", id, in)
			}
			if out, ok := n.OutgoingRiver(); !ok || out != in.Opposite() {
				t.Fatalf("cell %d: incoming %s not mirrored on %d", id, in, n.ID())
			}
		}
		for _, d := range hex.Directions {
			if !c.HasRoadThroughEdge(d) {
				continue
			}
			if c.HasRiverThroughEdge(d) {
				t.Fatalf("cell %d: road and river share edge %s", id, d)
			}
			n := g.Neighbor(c, d)
			if n == nil || !n.HasRoadThroughEdge(d.Opposite()) {
				t.Fatalf("cell %d: road %s not mirrored", id, d)
			}
		}
	}
	for _, f := range Factions {
		if len(g.ArmyCells(f)) > MaxArmyStarts {
			t.Fatalf("%s holds %d army starts", f, len(g.ArmyCells(f)))
		}
		holders := 0
		for id := 0; id < g.Len(); id++ {
			if g.Cell(id).Base() == f {
				holders++
			}
		}
		if holders > 1 {
			t.Fatalf("%s base on %d cells", f, holders)
		}
	}
}

func TestNewGridRejectsInvalidSize(t *testing.T) {
	sizes := [][2]int{{7, 10}, {10, 12}, {0, 5}, {-5, 5}, {5, 0}}
	for _, s := range sizes {
		g, err := NewGrid(s[0], s[1], metrics.NewSurface(1))
		if !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("%dx%d: expected ErrInvalidSize, got %v", s[0], s[1], err)
		}
		if g != nil {
			t.Fatalf("%dx%d: expected no grid", s[0], s[1])
		}
	}
}

func TestAdjacencyIsSymmetric(t *testing.T) {
	g := newTestGrid(t)
	for id := 0; id < g.Len(); id++ {
		c := g.Cell(id)
		for _, d := range hex.Directions {
			n := g.Neighbor(c, d)
			if n == nil {
				continue
			}
			if back, _ := n.NeighborID(d.Opposite()); back != id {
				t.Fatalf("cell %d %s -> %d, but back link points to %d", id, d, n.ID(), back)
			}
			if dist := hex.Distance(c.Coord(), n.Coord()); dist != 1 {
				t.Fatalf("cell %d and neighbor %d are %d apart", id, n.ID(), dist)
			}
		}
	}
	// Interior cells have all six neighbors.
	for _, d := range hex.Directions {
		if _, ok := g.Cell(44).NeighborID(d); !ok {
			t.Fatalf("interior cell missing neighbor %s", d)
		}
	}
}

func TestChunkMembership(t *testing.T) {
	g := newTestGrid(t)
	if len(g.Chunks()) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(g.Chunks()))
	}
	for _, ch := range g.Chunks() {
		if len(ch.Cells) != 25 {
			t.Fatalf("chunk %d: expected 25 cells, got %d", ch.ID, len(ch.Cells))
		}
	}
	if got := g.Cell(3*10 + 7).Chunk(); got != 1 {
		t.Fatalf("cell (7,3): expected chunk 1, got %d", got)
	}
	if got := g.Cell(8*10 + 2).Chunk(); got != 2 {
		t.Fatalf("cell (2,8): expected chunk 2, got %d", got)
	}
}

func TestCellLookup(t *testing.T) {
	g := newTestGrid(t)
	c := g.Cell(57)
	if got := g.CellAt(c.Coord()); got != c {
		t.Fatalf("CellAt: expected cell 57, got %v", got)
	}
	p := hex.Center(7, 5)
	if got := g.CellAtPosition(p); got == nil || got.ID() != 57 {
		t.Fatalf("CellAtPosition: expected cell 57, got %v", got)
	}
	if g.CellAt(hex.FromOffset(10, 0)) != nil || g.CellAt(hex.FromOffset(0, -1)) != nil {
		t.Fatalf("coordinates off the map should not resolve")
	}
	if g.Cell(-1) != nil || g.Cell(100) != nil {
		t.Fatalf("ids out of range should not resolve")
	}
	if got := len(g.CellsWithin(44, 1)); got != 7 {
		t.Fatalf("expected 7 cells within 1 of an interior cell, got %d", got)
	}
	if got := len(g.CellsWithin(0, 1)); got >= 7 {
		t.Fatalf("corner cell should have a clipped brush, got %d", got)
	}
}

func TestRefreshMarksChunks(t *testing.T) {
	g := newTestGrid(t)
	if len(g.DirtyChunks()) != 4 {
		t.Fatalf("new grid should start with every chunk dirty")
	}
	for _, id := range g.DirtyChunks() {
		g.ClearDirty(id)
	}

	// Feature levels only touch the owning chunk.
	g.SetUrbanLevel(4, 2)
	if got := g.DirtyChunks(); !slices.Equal(got, []int{0}) {
		t.Fatalf("expected [0], got %v", got)
	}
	g.ClearDirty(0)

	// Terrain on the chunk border also refreshes the neighbor chunk.
	g.SetTerrain(4, TerrainDesert)
	if got := g.DirtyChunks(); !slices.Equal(got, []int{0, 1}) {
		t.Fatalf("expected [0 1], got %v", got)
	}
	g.ClearDirty(0)
	g.ClearDirty(1)

	// Setting the same value again is a no-op.
	g.SetTerrain(4, TerrainDesert)
	if len(g.DirtyChunks()) != 0 {
		t.Fatalf("unchanged terrain should not refresh, got %v", g.DirtyChunks())
	}
}

func TestSetElevationMovesPosition(t *testing.T) {
	g := newTestGrid(t)
	before := g.Cell(44).Position()
	g.SetElevation(44, 3)
	after := g.Cell(44).Position()
	if diff := after.Y - before.Y; diff < 8.999 || diff > 9.001 {
		t.Fatalf("expected the center to rise by 9, got %f", diff)
	}
	if after.X != before.X || after.Z != before.Z {
		t.Fatalf("elevation should not move the center horizontally")
	}
}

func TestSetOutgoingRiverUphillIsNoop(t *testing.T) {
	g := newTestGrid(t)
	dst := neighborOf(t, g, 44, hex.E)
	g.SetElevation(dst, 2)
	before := g.Snapshot()
	if g.SetOutgoingRiver(44, hex.E) {
		t.Fatalf("river uphill should be refused")
	}
	if !slices.Equal(before, g.Snapshot()) {
		t.Fatalf("refused river should not change state")
	}

	// A lake surface at the neighbor's height lets the river out.
	g.SetWaterLevel(44, 2)
	if !g.SetOutgoingRiver(44, hex.E) {
		t.Fatalf("river into a lake outlet should be accepted")
	}
	checkInvariants(t, g)
}

func TestSetOutgoingRiverLinksBothEnds(t *testing.T) {
	g := newTestGrid(t)
	dst := neighborOf(t, g, 44, hex.E)
	g.SetBase(44, FactionUnion)
	g.SetBase(dst, FactionConfederate)
	if !g.AddRoad(44, hex.E) {
		t.Fatalf("expected road to be added")
	}

	if !g.SetOutgoingRiver(44, hex.E) {
		t.Fatalf("expected river to be added")
	}
	if in, ok := g.Cell(dst).IncomingRiver(); !ok || in != hex.W {
		t.Fatalf("expected incoming river from W on %d", dst)
	}
	if g.Cell(44).HasRoadThroughEdge(hex.E) || g.Cell(dst).HasRoadThroughEdge(hex.W) {
		t.Fatalf("river should remove the road on its edge")
	}
	if g.Cell(44).Base() != FactionNone || g.Cell(dst).Base() != FactionNone {
		t.Fatalf("river should clear bases on both cells")
	}
	if _, ok := g.BaseCell(FactionUnion); ok {
		t.Fatalf("cleared base should leave the bookkeeping")
	}
	if g.SetOutgoingRiver(44, hex.E) {
		t.Fatalf("repeating the same river should be a no-op")
	}
	checkInvariants(t, g)
}

func TestSetOutgoingRiverReplacesConflicts(t *testing.T) {
	g := newTestGrid(t)
	east := neighborOf(t, g, 44, hex.E)
	west := neighborOf(t, g, 44, hex.W)
	ne := neighborOf(t, g, 44, hex.NE)

	// Reverse flow: the river currently enters 44 from the east.
	if !g.SetOutgoingRiver(east, hex.W) {
		t.Fatalf("expected river to be added")
	}
	if !g.SetOutgoingRiver(44, hex.E) {
		t.Fatalf("expected reversed river to be added")
	}
	if g.Cell(44).HasIncomingRiver() || g.Cell(east).HasOutgoingRiver() {
		t.Fatalf("reversing a river should drop the old edge")
	}

	// Redirecting the outgoing river drops the previous one.
	if !g.SetOutgoingRiver(44, hex.NE) {
		t.Fatalf("expected redirected river to be added")
	}
	if g.Cell(east).HasIncomingRiver() {
		t.Fatalf("old destination should lose its incoming river")
	}

	// A second river into the same cell replaces the first.
	sw := neighborOf(t, g, 44, hex.SW)
	if !g.SetOutgoingRiver(sw, hex.NE) {
		t.Fatalf("expected river from the south west to be added")
	}
	if !g.SetOutgoingRiver(west, hex.E) {
		t.Fatalf("expected river from the west to be added")
	}
	if in, _ := g.Cell(44).IncomingRiver(); in != hex.W {
		t.Fatalf("expected incoming river from W, got %s", in)
	}
	if g.Cell(sw).HasOutgoingRiver() {
		t.Fatalf("replaced river should be removed at its source")
	}
	if !g.Cell(ne).HasIncomingRiver() {
		t.Fatalf("outgoing river should survive a new incoming river")
	}
	checkInvariants(t, g)
}

func TestRaisingDestinationRemovesOnlyThatRiver(t *testing.T) {
	g := newTestGrid(t)
	a := 43
	b := neighborOf(t, g, a, hex.E)
	c := neighborOf(t, g, b, hex.E)
	g.SetElevation(a, 2)
	g.SetElevation(b, 1)
	if !g.SetOutgoingRiver(a, hex.E) || !g.SetOutgoingRiver(b, hex.E) {
		t.Fatalf("expected both rivers to be added")
	}

	g.SetElevation(c, 3)
	if g.Cell(b).HasOutgoingRiver() || g.Cell(c).HasIncomingRiver() {
		t.Fatalf("river into the raised cell should be removed")
	}
	if !g.Cell(a).HasOutgoingRiver() || !g.Cell(b).HasIncomingRiver() {
		t.Fatalf("upstream river should be untouched")
	}
	checkInvariants(t, g)
}

func TestRoadRules(t *testing.T) {
	g := newTestGrid(t)
	east := neighborOf(t, g, 44, hex.E)
	if !g.AddRoad(44, hex.E) {
		t.Fatalf("expected road to be added")
	}
	if !g.Cell(east).HasRoadThroughEdge(hex.W) {
		t.Fatalf("road should be mirrored on the neighbor")
	}
	if g.AddRoad(44, hex.E) {
		t.Fatalf("duplicate road should be refused")
	}

	// Cliffs refuse roads.
	nw := neighborOf(t, g, 44, hex.NW)
	g.SetElevation(nw, 2)
	if g.AddRoad(44, hex.NW) {
		t.Fatalf("road up a cliff should be refused")
	}

	// River edges refuse roads.
	sw := neighborOf(t, g, 44, hex.SW)
	g.SetOutgoingRiver(44, hex.SW)
	if g.AddRoad(44, hex.SW) || g.AddRoad(sw, hex.NE) {
		t.Fatalf("road across a river should be refused")
	}

	// A road that becomes too steep disappears.
	g.SetElevation(east, 1)
	if !g.Cell(44).HasRoadThroughEdge(hex.E) {
		t.Fatalf("slope road should survive")
	}
	g.SetElevation(east, 2)
	if g.Cell(44).HasRoadThroughEdge(hex.E) || g.Cell(east).HasRoadThroughEdge(hex.W) {
		t.Fatalf("cliff road should be removed on both ends")
	}

	g.AddRoad(44, hex.W)
	g.AddRoad(44, hex.SE)
	g.RemoveRoads(44)
	if g.Cell(44).HasRoads() {
		t.Fatalf("expected all roads removed")
	}
	checkInvariants(t, g)
}

func TestSixthArmyEvictsOldest(t *testing.T) {
	g := newTestGrid(t)
	ids := []int{11, 12, 13, 14, 15, 16}
	for _, id := range ids {
		g.SetArmy(id, FactionConfederate)
	}
	if got := g.ArmyCells(FactionConfederate); !slices.Equal(got, ids[1:]) {
		t.Fatalf("expected %v, got %v", ids[1:], got)
	}
	if g.Cell(11).Army() != FactionNone {
		t.Fatalf("evicted cell should lose its army")
	}

	// Switching sides leaves the old list.
	g.SetArmy(13, FactionUnion)
	if got := g.ArmyCells(FactionConfederate); !slices.Equal(got, []int{12, 14, 15, 16}) {
		t.Fatalf("expected [12 14 15 16], got %v", got)
	}
	if got := g.ArmyCells(FactionUnion); !slices.Equal(got, []int{13}) {
		t.Fatalf("expected [13], got %v", got)
	}

	g.SetArmy(12, FactionNone)
	if got := g.ArmyCells(FactionConfederate); !slices.Equal(got, []int{14, 15, 16}) {
		t.Fatalf("expected [14 15 16], got %v", got)
	}
	checkInvariants(t, g)
}

func TestBaseEviction(t *testing.T) {
	g := newTestGrid(t)
	g.SetBase(20, FactionConfederate)
	g.SetBase(30, FactionUnion)

	// The Confederates move onto the Union base.
	g.SetBase(30, FactionConfederate)
	if g.Cell(20).Base() != FactionNone {
		t.Fatalf("previous Confederate base should be cleared")
	}
	if g.Cell(30).Base() != FactionConfederate {
		t.Fatalf("expected Confederate base on 30")
	}
	if id, ok := g.BaseCell(FactionConfederate); !ok || id != 30 {
		t.Fatalf("expected Confederate base cell 30, got %d", id)
	}
	if _, ok := g.BaseCell(FactionUnion); ok {
		t.Fatalf("Union base should be gone")
	}

	g.SetBase(30, FactionNone)
	if _, ok := g.BaseCell(FactionConfederate); ok {
		t.Fatalf("clearing the base should clear the bookkeeping")
	}
	g.SetBase(31, Faction(9))
	if g.Cell(31).Base() != FactionNone {
		t.Fatalf("unknown factions should be ignored")
	}
	checkInvariants(t, g)
}

func TestHasBridge(t *testing.T) {
	g := newTestGrid(t)
	west := neighborOf(t, g, 44, hex.W)
	g.SetOutgoingRiver(west, hex.E)
	g.SetOutgoingRiver(44, hex.E)
	c := g.Cell(44)
	if c.HasBridge() {
		t.Fatalf("river without roads has no bridge")
	}
	g.AddRoad(44, hex.NE)
	if c.HasBridge() {
		t.Fatalf("road on one bank only has no bridge")
	}
	g.AddRoad(44, hex.SW)
	if !c.HasBridge() {
		t.Fatalf("roads on both banks need a bridge")
	}

	// Wide bend: road on the inner side and one across.
	g2 := newTestGrid(t)
	in := neighborOf(t, g2, 44, hex.W)
	g2.SetOutgoingRiver(in, hex.E)
	g2.SetOutgoingRiver(44, hex.NE)
	g2.AddRoad(44, hex.NW)
	if g2.Cell(44).HasBridge() {
		t.Fatalf("inner road alone has no bridge")
	}
	g2.AddRoad(44, hex.SE)
	if !g2.Cell(44).HasBridge() {
		t.Fatalf("roads inside and outside a bend need a bridge")
	}
}

func TestDerivedHeights(t *testing.T) {
	g := newTestGrid(t)
	g.SetElevation(44, 2)
	g.SetWaterLevel(44, 3)
	c := g.Cell(44)
	if !c.IsUnderwater() {
		t.Fatalf("expected cell to be underwater")
	}
	if c.StreamBedY() != (2-1.75)*3 {
		t.Fatalf("unexpected stream bed %f", c.StreamBedY())
	}
	if c.RiverSurfaceY() != 1.5*3 {
		t.Fatalf("unexpected river surface %f", c.RiverSurfaceY())
	}
	if c.WaterSurfaceY() != 2.5*3 {
		t.Fatalf("unexpected water surface %f", c.WaterSurfaceY())
	}
	if g.EdgeType(c, hex.E) != metrics.EdgeCliff {
		t.Fatalf("expected a cliff towards the east")
	}
}

func TestRandomEditsKeepInvariants(t *testing.T) {
	g := newTestGrid(t)
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 2000; i++ {
		id := rng.Intn(g.Len())
		d := hex.Direction(rng.Intn(6))
		switch rng.Intn(8) {
		case 0:
			g.SetElevation(id, rng.Intn(4))
		case 1:
			g.SetWaterLevel(id, rng.Intn(3))
		case 2, 3:
			g.SetOutgoingRiver(id, d)
		case 4:
			g.AddRoad(id, d)
		case 5:
			g.RemoveRiver(id)
		case 6:
			g.SetArmy(id, Faction(rng.Intn(3)))
		case 7:
			g.SetBase(id, Faction(rng.Intn(3)))
		}
		checkInvariants(t, g)
	}
}
