package world

import (
	"fmt"

	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/metrics"
)

// CellState is the persisted part of a cell.
type CellState struct {
	Terrain     Terrain
	Elevation   int
	WaterLevel  int
	UrbanLevel  int
	FarmLevel   int
	PlantLevel  int
	Walled      bool
	Base        Faction
	Army        Faction
	City        bool
	HasIncoming bool
	Incoming    hex.Direction
	HasOutgoing bool
	Outgoing    hex.Direction
	Roads       uint8
}

// State returns the persisted part of a cell.
func (c *Cell) State() CellState {
	return CellState{
		Terrain:     c.terrain,
		Elevation:   c.elevation,
		WaterLevel:  c.water,
		UrbanLevel:  c.urban,
		FarmLevel:   c.farm,
		PlantLevel:  c.plant,
		Walled:      c.walled,
		Base:        c.base,
		Army:        c.army,
		City:        c.city,
		HasIncoming: c.hasIncoming,
		Incoming:    c.incoming,
		HasOutgoing: c.hasOutgoing,
		Outgoing:    c.outgoing,
		Roads:       c.RoadMask(),
	}
}

// Snapshot returns the state of every cell in row order.
func (g *Grid) Snapshot() []CellState {
	states := make([]CellState, len(g.cells))
	for i := range g.cells {
		states[i] = g.cells[i].State()
	}
	return states
}

// RestoreGrid builds a new grid from saved cell states. Values are taken
// as stored, except that one-sided river or road edges are dropped, roads
// sharing an edge with a river are dropped, and faction slots are rebuilt
// in row order with the usual eviction rules.
func RestoreGrid(width, height int, surface *metrics.Surface, states []CellState) (*Grid, error) {
	g, err := NewGrid(width, height, surface)
	if err != nil {
		return nil, err
	}
	if len(states) != len(g.cells) {
		return nil, fmt.Errorf("restore grid %dx%d: expected %d cells, got %d",
			width, height, len(g.cells), len(states))
	}

	for i, s := range states {
		c := &g.cells[i]
		c.terrain = s.Terrain
		c.elevation = s.Elevation
		c.water = s.WaterLevel
		c.urban = s.UrbanLevel
		c.farm = s.FarmLevel
		c.plant = s.PlantLevel
		c.walled = s.Walled
		c.city = s.City
		c.hasIncoming = s.HasIncoming && s.Incoming.Valid()
		c.incoming = s.Incoming
		c.hasOutgoing = s.HasOutgoing && s.Outgoing.Valid()
		c.outgoing = s.Outgoing
		for _, d := range hex.Directions {
			c.roads[d] = s.Roads&(1<<d) != 0
		}
		g.updatePosition(c)
	}

	g.repairRivers()
	g.repairRoads()

	for i, s := range states {
		c := &g.cells[i]
		if s.Base.Playable() {
			g.setBase(c, s.Base)
		}
		if s.Army.Playable() {
			g.setArmy(c, s.Army)
		}
	}

	g.MarkAllDirty()
	return g, nil
}

// repairRivers keeps only river edges both endpoints agree on.
func (g *Grid) repairRivers() {
	for i := range g.cells {
		c := &g.cells[i]
		if c.hasIncoming && c.hasOutgoing && c.incoming == c.outgoing {
			c.hasIncoming = false
		}
	}
	for i := range g.cells {
		c := &g.cells[i]
		if !c.hasOutgoing {
			continue
		}
		n := g.Neighbor(c, c.outgoing)
		if n == nil || !n.hasIncoming || n.incoming != c.outgoing.Opposite() {
			c.hasOutgoing = false
		}
	}
	for i := range g.cells {
		c := &g.cells[i]
		if !c.hasIncoming {
			continue
		}
		n := g.Neighbor(c, c.incoming)
		if n == nil || !n.hasOutgoing || n.outgoing != c.incoming.Opposite() {
			c.hasIncoming = false
		}
	}
}

// repairRoads keeps only road edges both endpoints agree on and that no
// river crosses. Rivers must already be consistent.
func (g *Grid) repairRoads() {
	for i := range g.cells {
		c := &g.cells[i]
		for _, d := range hex.Directions {
			if !c.roads[d] {
				continue
			}
			n := g.Neighbor(c, d)
			if n == nil || !n.roads[d.Opposite()] || c.HasRiverThroughEdge(d) {
				c.roads[d] = false
				if n != nil {
					n.roads[d.Opposite()] = false
				}
			}
		}
	}
}
