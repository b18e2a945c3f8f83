package world

import (
	"github.com/talgya/lookout/internal/geom"
	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/metrics"
)

// noNeighbor marks a missing neighbor in the adjacency table.
const noNeighbor = -1

// Cell is a single hex of the grid. Fields are only changed through the
// Grid mutators, which keep river, road and faction state consistent
// across neighbors.
type Cell struct {
	id        int
	coord     hex.Coord
	chunk     int
	position  geom.Vec3
	neighbors [6]int

	terrain   Terrain
	elevation int
	water     int

	urban, farm, plant int
	walled             bool
	city               bool
	base               Faction
	army               Faction

	hasIncoming, hasOutgoing bool
	incoming, outgoing       hex.Direction
	roads                    [6]bool
}

func (c *Cell) ID() int                { return c.id }
func (c *Cell) Coord() hex.Coord       { return c.coord }
func (c *Cell) Chunk() int             { return c.chunk }
func (c *Cell) Position() geom.Vec3    { return c.position }
func (c *Cell) Terrain() Terrain       { return c.terrain }
func (c *Cell) Color() geom.Color      { return c.terrain.Color() }
func (c *Cell) Elevation() int         { return c.elevation }
func (c *Cell) WaterLevel() int        { return c.water }
func (c *Cell) UrbanLevel() int        { return c.urban }
func (c *Cell) FarmLevel() int         { return c.farm }
func (c *Cell) PlantLevel() int        { return c.plant }
func (c *Cell) Walled() bool           { return c.walled }
func (c *Cell) HasCity() bool          { return c.city }
func (c *Cell) Base() Faction          { return c.base }
func (c *Cell) Army() Faction          { return c.army }
func (c *Cell) HasIncomingRiver() bool { return c.hasIncoming }
func (c *Cell) HasOutgoingRiver() bool { return c.hasOutgoing }

// NeighborID returns the id of the neighbor in direction d.
func (c *Cell) NeighborID(d hex.Direction) (int, bool) {
	if !d.Valid() || c.neighbors[d] == noNeighbor {
		return 0, false
	}
	return c.neighbors[d], true
}

// IncomingRiver returns the direction the river enters from.
func (c *Cell) IncomingRiver() (hex.Direction, bool) {
	return c.incoming, c.hasIncoming
}

// OutgoingRiver returns the direction the river leaves through.
func (c *Cell) OutgoingRiver() (hex.Direction, bool) {
	return c.outgoing, c.hasOutgoing
}

func (c *Cell) IsUnderwater() bool { return c.water > c.elevation }

func (c *Cell) HasRiver() bool { return c.hasIncoming || c.hasOutgoing }

// HasRiverBeginOrEnd reports whether a river starts or ends in this cell.
func (c *Cell) HasRiverBeginOrEnd() bool { return c.hasIncoming != c.hasOutgoing }

// RiverBeginOrEndDirection is the only river edge of a begin/end cell.
func (c *Cell) RiverBeginOrEndDirection() hex.Direction {
	if c.hasIncoming {
		return c.incoming
	}
	return c.outgoing
}

func (c *Cell) HasRiverThroughEdge(d hex.Direction) bool {
	return (c.hasIncoming && c.incoming == d) || (c.hasOutgoing && c.outgoing == d)
}

func (c *Cell) HasRoadThroughEdge(d hex.Direction) bool {
	return d.Valid() && c.roads[d]
}

func (c *Cell) HasRoads() bool {
	for _, r := range c.roads {
		if r {
			return true
		}
	}
	return false
}

// RoadMask packs the road flags, bit i for direction i.
func (c *Cell) RoadMask() uint8 {
	var m uint8
	for i, r := range c.roads {
		if r {
			m |= 1 << i
		}
	}
	return m
}

func (c *Cell) StreamBedY() float64 {
	return (float64(c.elevation) + metrics.StreamBedElevationOffset) * metrics.ElevationStep
}

func (c *Cell) RiverSurfaceY() float64 {
	return (float64(c.elevation) + metrics.WaterElevationOffset) * metrics.ElevationStep
}

func (c *Cell) WaterSurfaceY() float64 {
	return (float64(c.water) + metrics.WaterElevationOffset) * metrics.ElevationStep
}

// HasBridge reports whether a road has to cross the river inside this cell.
// A straight river needs roads on both banks; a wide bend needs a road on
// the inner side and one on the outer side.
func (c *Cell) HasBridge() bool {
	if !c.hasIncoming || !c.hasOutgoing {
		return false
	}
	in, out := c.incoming, c.outgoing
	switch {
	case in == out.Opposite():
		return (c.roads[in.Next()] || c.roads[in.Next2()]) &&
			(c.roads[in.Previous()] || c.roads[in.Previous2()])
	case in.Next2() == out || in.Previous2() == out:
		inner := in.Next()
		if in.Previous2() == out {
			inner = in.Previous()
		}
		middle := inner.Opposite()
		return c.roads[inner] &&
			(c.roads[middle] || c.roads[middle.Previous()] || c.roads[middle.Next()])
	}
	return false
}
