package editor

import (
	"github.com/talgya/lookout/internal/geom"
	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/world"
)

// Editor applies its Brush to a grid. Successive presses on adjacent cells
// form a drag, along which rivers and roads are drawn.
type Editor struct {
	Brush Brush

	grid     *world.Grid
	previous *world.Cell
	drag     bool
	dragDir  hex.Direction
}

func New(g *world.Grid) *Editor {
	return &Editor{grid: g}
}

// Press applies the brush centred on cell id and reports whether the cell
// exists. Pressing outside the map ends the current drag.
func (e *Editor) Press(id int) bool {
	current := e.grid.Cell(id)
	if current == nil {
		e.previous = nil
		return false
	}
	if e.previous != nil && e.previous != current {
		e.validateDrag(current)
	} else {
		e.drag = false
	}
	e.editCells(current)
	e.previous = current
	return true
}

// PressAt presses the cell under a world position.
func (e *Editor) PressAt(p geom.Vec3) bool {
	c := e.grid.CellAtPosition(p)
	if c == nil {
		e.previous = nil
		return false
	}
	return e.Press(c.ID())
}

// Release ends the current drag.
func (e *Editor) Release() {
	e.previous = nil
	e.drag = false
}

func (e *Editor) validateDrag(current *world.Cell) {
	for _, d := range hex.Directions {
		if e.grid.Neighbor(e.previous, d) == current {
			e.drag = true
			e.dragDir = d
			return
		}
	}
	e.drag = false
}

func (e *Editor) editCells(center *world.Cell) {
	for _, c := range e.grid.CellsWithin(center.ID(), max(e.Brush.Size, 0)) {
		e.editCell(c.ID())
	}
}

func (e *Editor) editCell(id int) {
	g, b := e.grid, &e.Brush
	if b.Terrain != nil {
		g.SetTerrain(id, *b.Terrain)
	}
	if b.Elevation != nil {
		g.SetElevation(id, *b.Elevation)
	}
	if b.Water != nil {
		g.SetWaterLevel(id, *b.Water)
	}
	if b.River == No {
		g.RemoveRiver(id)
	}
	if b.Road == No {
		g.RemoveRoads(id)
	}

	switch b.Spawn {
	case SpawnBase:
		g.SetBase(id, b.Faction)
	case SpawnArmy:
		g.SetArmy(id, b.Faction)
	case SpawnRemove:
		g.SetBase(id, world.FactionNone)
		g.SetArmy(id, world.FactionNone)
	}

	if b.Urban != nil {
		g.SetUrbanLevel(id, *b.Urban)
	}
	if b.Farm != nil {
		g.SetFarmLevel(id, *b.Farm)
	}
	if b.Plant != nil {
		g.SetPlantLevel(id, *b.Plant)
	}
	if b.Walled != Ignore {
		g.SetWalled(id, b.Walled == Yes)
	}
	if b.City != Ignore {
		g.SetCity(id, b.City == Yes)
	}

	if !e.drag {
		return
	}
	other := g.Neighbor(g.Cell(id), e.dragDir.Opposite())
	if other == nil {
		return
	}
	if b.River == Yes {
		g.SetOutgoingRiver(other.ID(), e.dragDir)
	}
	if b.Road == Yes {
		g.AddRoad(other.ID(), e.dragDir)
	}
}
