package movement

import (
	"testing"

	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/metrics"
	"github.com/talgya/lookout/internal/world"
)

func newTestGrid(t *testing.T) *world.Grid {
	t.Helper()
	g, err := world.NewGrid(10, 10, metrics.NewSurface(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func TestCost(t *testing.T) {
	tests := []struct {
		name  string
		setup func(g *world.Grid)
		want  float64
	}{
		{"open grass", func(g *world.Grid) {}, 1},
		{"forest", func(g *world.Grid) { g.SetTerrain(45, world.TerrainForest) }, 2},
		{"hills uphill", func(g *world.Grid) {
			g.SetTerrain(45, world.TerrainHills)
			g.SetElevation(45, 1)
		}, 3},
		{"road on both sides", func(g *world.Grid) { g.AddRoad(44, hex.E) }, 0.5},
		{"cliff without road", func(g *world.Grid) { g.SetElevation(45, 2) }, 2},
		{"downhill", func(g *world.Grid) { g.SetElevation(44, 2) }, 1},
		{"into a wall", func(g *world.Grid) { g.SetWalled(45, true) }, 4},
		{"out of a wall", func(g *world.Grid) { g.SetWalled(44, true) }, 4},
		{"through a gate", func(g *world.Grid) {
			g.SetWalled(45, true)
			g.AddRoad(44, hex.E)
		}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGrid(t)
			tt.setup(g)
			if got := Cost(g.Cell(45), g.Cell(44), hex.E); got != tt.want {
				t.Fatalf("expected %.2f, got %.2f", tt.want, got)
			}
		})
	}
}

func TestCostOntoBridge(t *testing.T) {
	g := newTestGrid(t)
	g.SetOutgoingRiver(44, hex.E)
	g.SetOutgoingRiver(45, hex.E)
	g.AddRoad(45, hex.NW)
	g.AddRoad(45, hex.SE)
	c := g.Cell(45)
	if !c.HasBridge() {
		t.Fatalf("expected a bridge over the straight river")
	}

	from := g.Neighbor(c, hex.NW)
	// (1 base + 1 bridge) halved by the road.
	if got := Cost(c, from, hex.SE); got != 1 {
		t.Fatalf("expected 1.00, got %.2f", got)
	}
}

func TestFindPath(t *testing.T) {
	g := newTestGrid(t)
	p, ok := FindPath(g, 0, 9)
	if !ok {
		t.Fatalf("expected a path")
	}
	if len(p.Cells) != 10 || p.Cells[0] != 0 || p.Cells[9] != 9 {
		t.Fatalf("expected 10 cells from 0 to 9, got %v", p.Cells)
	}
	if p.Cost != 9 {
		t.Fatalf("expected cost 9, got %.2f", p.Cost)
	}

	for x := 0; x < 9; x++ {
		g.AddRoad(x, hex.E)
	}
	p, ok = FindPath(g, 0, 9)
	if !ok || p.Cost != 4.5 {
		t.Fatalf("expected road cost 4.5, got %.2f (ok=%v)", p.Cost, ok)
	}
}

func TestFindPathAvoidsWater(t *testing.T) {
	g := newTestGrid(t)
	g.SetWaterLevel(9, 1)
	if _, ok := FindPath(g, 0, 9); ok {
		t.Fatalf("expected no path into water")
	}

	// A lake column across the map cuts it in two.
	for z := 0; z < 10; z++ {
		g.SetWaterLevel(z*10+5, 1)
	}
	if _, ok := FindPath(g, 0, 8); ok {
		t.Fatalf("expected the lake to block the path")
	}
}

func TestReachable(t *testing.T) {
	g := newTestGrid(t)
	got := Reachable(g, 44, 1)
	if len(got) != 7 {
		t.Fatalf("expected 7 reachable cells, got %d", len(got))
	}
	if got[44] != 0 {
		t.Fatalf("expected start cost 0, got %.2f", got[44])
	}
	if len(Reachable(g, 44, 0)) != 1 {
		t.Fatalf("expected only the start with no budget")
	}
}
