package world

import (
	"slices"

	"github.com/talgya/lookout/internal/hex"
)

// Cell mutators. Every mutator takes a cell id; an unknown id or direction
// is a silent no-op, as is any edit that would break a cross-cell rule.
// Each mutator marks the chunks whose geometry it changes as dirty.

// SetTerrain changes the terrain type of a cell.
func (g *Grid) SetTerrain(id int, t Terrain) {
	c := g.Cell(id)
	if c == nil || c.terrain == t {
		return
	}
	c.terrain = t
	g.refresh(c)
}

// SetElevation moves a cell up or down. Rivers that no longer flow
// downhill and roads that now climb more than one level are removed.
func (g *Grid) SetElevation(id, elevation int) {
	c := g.Cell(id)
	if c == nil || c.elevation == elevation {
		return
	}
	c.elevation = elevation
	g.updatePosition(c)
	g.validateRivers(c)
	for _, d := range hex.Directions {
		if c.roads[d] && g.ElevationDifference(c, d) > 1 {
			g.setRoad(c, d, false)
		}
	}
	g.refresh(c)
}

// SetWaterLevel changes the water surface of a cell.
func (g *Grid) SetWaterLevel(id, level int) {
	c := g.Cell(id)
	if c == nil || c.water == level {
		return
	}
	c.water = level
	g.validateRivers(c)
	g.refresh(c)
}

func (g *Grid) SetUrbanLevel(id, level int) {
	if c := g.Cell(id); c != nil && c.urban != level {
		c.urban = level
		g.refreshSelf(c)
	}
}

func (g *Grid) SetFarmLevel(id, level int) {
	if c := g.Cell(id); c != nil && c.farm != level {
		c.farm = level
		g.refreshSelf(c)
	}
}

func (g *Grid) SetPlantLevel(id, level int) {
	if c := g.Cell(id); c != nil && c.plant != level {
		c.plant = level
		g.refreshSelf(c)
	}
}

// SetWalled toggles the wall flag. Walls sit on the boundary, so the
// neighbors' chunks are refreshed too.
func (g *Grid) SetWalled(id int, walled bool) {
	if c := g.Cell(id); c != nil && c.walled != walled {
		c.walled = walled
		g.refresh(c)
	}
}

func (g *Grid) SetCity(id int, city bool) {
	if c := g.Cell(id); c != nil && c.city != city {
		c.city = city
		g.refreshSelf(c)
	}
}

// SetBase places faction f's base on a cell. Each faction has one base:
// the previous holder loses it, and a base of the other faction on this
// cell is replaced. FactionNone clears the cell's base.
func (g *Grid) SetBase(id int, f Faction) {
	c := g.Cell(id)
	if c == nil || (f != FactionNone && !f.Playable()) {
		return
	}
	g.setBase(c, f)
}

func (g *Grid) setBase(c *Cell, f Faction) {
	if c.base == f {
		return
	}
	if c.base.Playable() && g.bases[c.base] == c.id {
		g.bases[c.base] = noNeighbor
	}
	if f.Playable() {
		if prev := g.bases[f]; prev != noNeighbor && prev != c.id {
			old := &g.cells[prev]
			old.base = FactionNone
			g.refreshSelf(old)
		}
		g.bases[f] = c.id
	}
	c.base = f
	g.refreshSelf(c)
}

// SetArmy marks a cell as an army start for f. A faction holds at most
// MaxArmyStarts cells; adding another evicts the oldest one.
func (g *Grid) SetArmy(id int, f Faction) {
	c := g.Cell(id)
	if c == nil || (f != FactionNone && !f.Playable()) {
		return
	}
	g.setArmy(c, f)
}

func (g *Grid) setArmy(c *Cell, f Faction) {
	if c.army == f {
		return
	}
	if c.army.Playable() {
		g.armies[c.army] = slices.DeleteFunc(g.armies[c.army], func(id int) bool {
			return id == c.id
		})
	}
	if f.Playable() {
		list := g.armies[f]
		if len(list) >= MaxArmyStarts {
			victim := 0
			// Never evict the cell being inserted.
			if list[0] == c.id && len(list) > 1 {
				victim = 1
			}
			evicted := &g.cells[list[victim]]
			list = slices.Delete(list, victim, victim+1)
			evicted.army = FactionNone
			g.refreshSelf(evicted)
		}
		g.armies[f] = append(list, c.id)
	}
	c.army = f
	g.refreshSelf(c)
}

// SetOutgoingRiver starts a river flowing out of a cell in direction d.
// It reports whether the river was created. The destination must be
// downhill, level, or at the source's water level. Any river edge that
// would conflict is removed first, bases on both cells are cleared and a
// road on the edge is removed.
func (g *Grid) SetOutgoingRiver(id int, d hex.Direction) bool {
	c := g.Cell(id)
	if c == nil || !d.Valid() {
		return false
	}
	if c.hasOutgoing && c.outgoing == d {
		return false
	}
	n := g.Neighbor(c, d)
	if !validRiver(c, n) {
		return false
	}

	g.removeOutgoing(c)
	g.removeIncoming(n)
	if c.hasIncoming && c.incoming == d {
		g.removeIncoming(c)
	}

	c.hasOutgoing = true
	c.outgoing = d
	n.hasIncoming = true
	n.incoming = d.Opposite()

	g.setBase(c, FactionNone)
	g.setBase(n, FactionNone)
	g.setRoad(c, d, false)
	return true
}

// RemoveRiver removes both river edges of a cell.
func (g *Grid) RemoveRiver(id int) {
	if c := g.Cell(id); c != nil {
		g.removeOutgoing(c)
		g.removeIncoming(c)
	}
}

func (g *Grid) RemoveOutgoingRiver(id int) {
	if c := g.Cell(id); c != nil {
		g.removeOutgoing(c)
	}
}

func (g *Grid) RemoveIncomingRiver(id int) {
	if c := g.Cell(id); c != nil {
		g.removeIncoming(c)
	}
}

func (g *Grid) removeOutgoing(c *Cell) {
	if !c.hasOutgoing {
		return
	}
	c.hasOutgoing = false
	g.refreshSelf(c)
	if n := g.Neighbor(c, c.outgoing); n != nil {
		n.hasIncoming = false
		g.refreshSelf(n)
	}
}

func (g *Grid) removeIncoming(c *Cell) {
	if !c.hasIncoming {
		return
	}
	c.hasIncoming = false
	g.refreshSelf(c)
	if n := g.Neighbor(c, c.incoming); n != nil {
		n.hasOutgoing = false
		g.refreshSelf(n)
	}
}

// validRiver reports whether a river may flow from src into dst: dst must
// not be higher than src, unless src's lake surface reaches it.
func validRiver(src, dst *Cell) bool {
	if src == nil || dst == nil {
		return false
	}
	return src.elevation >= dst.elevation || src.water == dst.elevation
}

// validateRivers drops river edges that no longer flow legally. The two
// edges are checked independently.
func (g *Grid) validateRivers(c *Cell) {
	if c.hasOutgoing && !validRiver(c, g.Neighbor(c, c.outgoing)) {
		g.removeOutgoing(c)
	}
	if c.hasIncoming && !validRiver(g.Neighbor(c, c.incoming), c) {
		g.removeIncoming(c)
	}
}

// AddRoad builds a road across the edge in direction d and reports whether
// it was added. Edges carrying a river or climbing more than one level
// are refused.
func (g *Grid) AddRoad(id int, d hex.Direction) bool {
	c := g.Cell(id)
	if c == nil || !d.Valid() {
		return false
	}
	if c.roads[d] || c.HasRiverThroughEdge(d) || g.ElevationDifference(c, d) > 1 {
		return false
	}
	if g.Neighbor(c, d) == nil {
		return false
	}
	g.setRoad(c, d, true)
	return true
}

// RemoveRoads removes every road leaving a cell.
func (g *Grid) RemoveRoads(id int) {
	c := g.Cell(id)
	if c == nil {
		return
	}
	for _, d := range hex.Directions {
		if c.roads[d] {
			g.setRoad(c, d, false)
		}
	}
}

func (g *Grid) setRoad(c *Cell, d hex.Direction, state bool) {
	c.roads[d] = state
	if n := g.Neighbor(c, d); n != nil {
		n.roads[d.Opposite()] = state
		g.refreshSelf(n)
	}
	g.refreshSelf(c)
}
