package editor

import (
	"testing"

	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/metrics"
	"github.com/talgya/lookout/internal/world"
)

func newTestEditor(t *testing.T) (*Editor, *world.Grid) {
	t.Helper()
	g, err := world.NewGrid(10, 10, metrics.NewSurface(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return New(g), g
}

func TestBrushSizeCoversDisk(t *testing.T) {
	e, g := newTestEditor(t)
	e.Brush = Brush{Size: 1, Terrain: TerrainOf(world.TerrainForest), Elevation: Level(2)}
	if !e.Press(44) {
		t.Fatalf("expected press on 44 to hit the map")
	}

	painted := 0
	for id := 0; id < g.Len(); id++ {
		c := g.Cell(id)
		if c.Terrain() == world.TerrainForest {
			painted++
			if c.Elevation() != 2 {
				t.Fatalf("expected elevation 2 on %d, got %d", id, c.Elevation())
			}
		}
	}
	if painted != 7 {
		t.Fatalf("expected 7 painted cells, got %d", painted)
	}
}

func TestPressOutsideMap(t *testing.T) {
	e, _ := newTestEditor(t)
	if e.Press(-1) || e.Press(100) {
		t.Fatalf("expected presses outside the map to miss")
	}
}

func TestDragDrawsRiver(t *testing.T) {
	e, g := newTestEditor(t)
	e.Brush = Brush{River: Yes}
	for _, id := range []int{43, 44, 45} {
		e.Press(id)
	}
	e.Release()

	for _, id := range []int{43, 44} {
		d, ok := g.Cell(id).OutgoingRiver()
		if !ok || d != hex.E {
			t.Fatalf("expected river out of %d towards E, got %v %v", id, d, ok)
		}
	}
	if d, ok := g.Cell(45).IncomingRiver(); !ok || d != hex.W {
		t.Fatalf("expected river into 45 from W, got %v %v", d, ok)
	}

	e.Brush = Brush{River: No}
	e.Press(44)
	if g.Cell(43).HasRiver() || g.Cell(45).HasRiver() {
		t.Fatalf("removing the river on 44 should clear both ends")
	}
}

func TestDragIgnoresJumps(t *testing.T) {
	e, g := newTestEditor(t)
	e.Brush = Brush{River: Yes, Road: Yes}
	e.Press(43)
	e.Press(47)
	if g.Cell(43).HasRiver() || g.Cell(43).HasRoads() {
		t.Fatalf("a press on a non-adjacent cell is not a drag")
	}

	e.Press(43)
	e.Release()
	e.Press(44)
	if g.Cell(43).HasRiver() {
		t.Fatalf("a released press should not continue the drag")
	}
}

func TestDragDrawsRoad(t *testing.T) {
	e, g := newTestEditor(t)
	e.Brush = Brush{Road: Yes}
	e.Press(43)
	e.Press(44)
	e.Release()
	if !g.Cell(43).HasRoadThroughEdge(hex.E) || !g.Cell(44).HasRoadThroughEdge(hex.W) {
		t.Fatalf("expected a road between 43 and 44")
	}

	e.Brush = Brush{Road: No}
	e.Press(43)
	if g.Cell(44).HasRoads() {
		t.Fatalf("removing roads on 43 should clear the neighbor side")
	}
}

func TestTogglesAndSpawn(t *testing.T) {
	e, g := newTestEditor(t)
	e.Brush = Brush{Walled: Yes, City: Yes, Urban: Level(3), Spawn: SpawnBase, Faction: world.FactionUnion}
	e.Press(22)
	c := g.Cell(22)
	if !c.Walled() || !c.HasCity() || c.UrbanLevel() != 3 || c.Base() != world.FactionUnion {
		t.Fatalf("expected walled Union city with urban 3 on 22")
	}

	e.Brush = Brush{}
	e.Press(22)
	if !c.Walled() || !c.HasCity() {
		t.Fatalf("ignore toggles should leave the cell alone")
	}

	e.Brush = Brush{Walled: No, Spawn: SpawnArmy, Faction: world.FactionConfederate}
	e.Press(22)
	if c.Walled() || c.Army() != world.FactionConfederate {
		t.Fatalf("expected unwalled Confederate army on 22")
	}

	e.Brush = Brush{Spawn: SpawnRemove}
	e.Press(22)
	if c.Base() != world.FactionNone || c.Army() != world.FactionNone {
		t.Fatalf("expected spawn remove to clear base and army")
	}
}

func TestParseToggle(t *testing.T) {
	tests := []struct {
		in   string
		want Toggle
		ok   bool
	}{
		{"", Ignore, true},
		{"ignore", Ignore, true},
		{"yes", Yes, true},
		{"True", Yes, true},
		{"no", No, true},
		{"off", No, true},
		{"maybe", Ignore, false},
	}
	for _, tt := range tests {
		got, err := ParseToggle(tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("%q: expected ok=%v, got error %v", tt.in, tt.ok, err)
		}
		if got != tt.want {
			t.Fatalf("%q: expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

const testScript = `
strokes:
  - brush: {size: 1, terrain: Forest, elevation: 1}
    cells: [{x: 4, z: 4}]
  - brush: {river: yes}
    cells: [{x: 1, z: 1}, {x: 2, z: 1}]
  - brush: {spawn: base, faction: Union, walled: yes}
    cells: [{x: 7, z: 7}]
`

func TestRunScript(t *testing.T) {
	e, g := newTestEditor(t)
	s, err := ParseScript([]byte(testScript))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := e.Run(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 presses, got %d", n)
	}
	if g.Cell(44).Terrain() != world.TerrainForest || g.Cell(44).Elevation() != 1 {
		t.Fatalf("expected forest at elevation 1 on 44")
	}
	if d, ok := g.Cell(11).OutgoingRiver(); !ok || d != hex.E {
		t.Fatalf("expected river 11 -> 12")
	}
	if id, ok := g.BaseCell(world.FactionUnion); !ok || id != 77 || !g.Cell(77).Walled() {
		t.Fatalf("expected walled Union base on 77")
	}
}

func TestScriptErrors(t *testing.T) {
	if _, err := ParseScript([]byte("strokes:\n  - brush: {river: maybe}\n")); err == nil {
		t.Fatalf("expected an error for an unknown toggle")
	}

	e, _ := newTestEditor(t)
	s, err := ParseScript([]byte("strokes:\n  - brush: {terrain: Lava}\n    cells: [{x: 1, z: 1}]\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := e.Run(s); err == nil {
		t.Fatalf("expected an error for an unknown terrain")
	}

	s, err = ParseScript([]byte("strokes:\n  - brush: {walled: yes}\n    cells: [{x: 1, z: 1}, {x: 10, z: 0}]\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := e.Run(s)
	if err == nil || n != 1 {
		t.Fatalf("expected an error after 1 press, got %d presses and %v", n, err)
	}
}
