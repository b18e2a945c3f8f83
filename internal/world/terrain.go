// Package world provides the cell graph: the grid of hex cells, their
// terrain/elevation/water/river/road state, and the mutators that keep the
// cross-cell invariants intact.
package world

import "github.com/talgya/lookout/internal/geom"

// Terrain types for cells. The numeric values are part of the map file format.
type Terrain int32

const (
	TerrainMud      Terrain = iota // Lowland, river banks and lake beds
	TerrainMountain                // High ground
	TerrainGrass                   // Default open ground
	TerrainDesert                  // Dry lowland
	TerrainForest                  // Slow going
	TerrainHills                   // Slow going
)

// TerrainTypes lists every terrain in file-format order.
var TerrainTypes = [...]Terrain{
	TerrainMud, TerrainMountain, TerrainGrass, TerrainDesert, TerrainForest, TerrainHills,
}

var terrainColors = map[Terrain]geom.Color{
	TerrainMud:      geom.RGB(112, 84, 62),
	TerrainMountain: geom.RGB(128, 128, 136),
	TerrainGrass:    geom.RGB(104, 156, 72),
	TerrainDesert:   geom.RGB(222, 196, 132),
	TerrainForest:   geom.RGB(46, 102, 52),
	TerrainHills:    geom.RGB(150, 138, 90),
}

// Color returns the base vertex color for a terrain. Unknown values use the
// hills color.
func (t Terrain) Color() geom.Color {
	if c, ok := terrainColors[t]; ok {
		return c
	}
	return terrainColors[TerrainHills]
}

// String returns a human-readable name for a terrain type.
func (t Terrain) String() string {
	switch t {
	case TerrainMud:
		return "Mud"
	case TerrainMountain:
		return "Mountain"
	case TerrainGrass:
		return "Grass"
	case TerrainDesert:
		return "Desert"
	case TerrainForest:
		return "Forest"
	case TerrainHills:
		return "Hills"
	default:
		return "Unknown"
	}
}

// ParseTerrain returns the terrain with the given name.
func ParseTerrain(name string) (Terrain, bool) {
	for _, t := range TerrainTypes {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

// Faction identifies a side that can own a base or an army start.
// The numeric values are part of the map file format.
type Faction int32

const (
	FactionNone Faction = iota
	FactionConfederate
	FactionUnion
)

// Factions lists the playable factions.
var Factions = [...]Faction{FactionConfederate, FactionUnion}

// MaxArmyStarts is the number of army start cells a faction may hold.
const MaxArmyStarts = 5

func (f Faction) String() string {
	switch f {
	case FactionNone:
		return "None"
	case FactionConfederate:
		return "Confederate"
	case FactionUnion:
		return "Union"
	default:
		return "Unknown"
	}
}

// ParseFaction returns the faction with the given name.
func ParseFaction(name string) (Faction, bool) {
	for _, f := range []Faction{FactionNone, FactionConfederate, FactionUnion} {
		if f.String() == name {
			return f, true
		}
	}
	return 0, false
}

// Playable reports whether f is a real faction rather than None.
func (f Faction) Playable() bool {
	return f == FactionConfederate || f == FactionUnion
}
