package triangulate

import (
	"github.com/talgya/lookout/internal/geom"
	"github.com/talgya/lookout/internal/metrics"
	"github.com/talgya/lookout/internal/world"
)

// PlacementKind names the category of object a placement asks for.
type PlacementKind uint8

const (
	PlacementUrban PlacementKind = iota
	PlacementFarm
	PlacementPlant
	PlacementBase
	PlacementArmy
	PlacementCity
	PlacementBridge
	PlacementWallTower
)

var placementNames = [...]string{
	PlacementUrban:     "urban",
	PlacementFarm:      "farm",
	PlacementPlant:     "plant",
	PlacementBase:      "base",
	PlacementArmy:      "army",
	PlacementCity:      "city",
	PlacementBridge:    "bridge",
	PlacementWallTower: "tower",
}

func (k PlacementKind) String() string {
	if int(k) < len(placementNames) {
		return placementNames[k]
	}
	return "unknown"
}

// Placement is a request for the renderer to instantiate an object. The
// mesh layers never contain these objects themselves.
type Placement struct {
	Kind    PlacementKind
	CellID  int
	Faction world.Faction // Base and army only

	// Tier is the density tier (0 sparse .. 2 dense) of a feature and
	// Choice picks one model within that tier.
	Tier   int
	Choice float64

	Position geom.Vec3
	Yaw      float64   // Degrees about the vertical axis
	Forward  geom.Vec3 // Bridges and towers are oriented by direction instead of yaw
	Scale    geom.Vec3
}

var unitScale = geom.V3(1, 1, 1)

// pickTier returns the first tier whose threshold lies above hash.
func pickTier(level int, hash float64) (int, bool) {
	if level <= 0 {
		return 0, false
	}
	for i, threshold := range metrics.FeatureThresholds(level) {
		if hash < threshold {
			return i, true
		}
	}
	return 0, false
}

// addFeature places at most one urban, farm or plant object at pos. When
// more than one category qualifies, the one with the lowest hash wins.
func (t *Triangulator) addFeature(c *world.Cell, pos geom.Vec3) {
	if c.Base() != world.FactionNone {
		return
	}
	h := t.surface.SampleHash(pos)

	kind := PlacementUrban
	tier, ok := pickTier(c.UrbanLevel(), h.A)
	used := h.A
	if farm, farmOK := pickTier(c.FarmLevel(), h.B); farmOK && (!ok || h.B < used) {
		kind, tier, used, ok = PlacementFarm, farm, h.B, true
	}
	if plant, plantOK := pickTier(c.PlantLevel(), h.C); plantOK && (!ok || h.C < used) {
		kind, tier, ok = PlacementPlant, plant, true
	}
	if !ok {
		return
	}

	t.mesh.Placements = append(t.mesh.Placements, Placement{
		Kind:     kind,
		CellID:   c.ID(),
		Tier:     tier,
		Choice:   h.D,
		Position: t.surface.Perturb(pos),
		Yaw:      360 * h.E,
		Scale:    unitScale,
	})
}

// addUnit places a base, army or city object on the cell center.
func (t *Triangulator) addUnit(kind PlacementKind, c *world.Cell, f world.Faction) {
	pos := c.Position()
	h := t.surface.SampleHash(pos)
	t.mesh.Placements = append(t.mesh.Placements, Placement{
		Kind:     kind,
		CellID:   c.ID(),
		Faction:  f,
		Position: t.surface.Perturb(pos),
		Yaw:      360 * h.E,
		Scale:    unitScale,
	})
}

// addBridge spans a bridge between two road centers on opposite banks.
func (t *Triangulator) addBridge(c *world.Cell, roadCenter1, roadCenter2 geom.Vec3) {
	roadCenter1 = t.surface.Perturb(roadCenter1)
	roadCenter2 = t.surface.Perturb(roadCenter2)
	length := roadCenter1.Distance(roadCenter2)
	t.mesh.Placements = append(t.mesh.Placements, Placement{
		Kind:     PlacementBridge,
		CellID:   c.ID(),
		Position: roadCenter1.Add(roadCenter2).Scale(0.5),
		Forward:  roadCenter2.Sub(roadCenter1),
		Scale:    geom.V3(1, 1, length/metrics.BridgeDesignLength),
	})
}

// addTower puts a watchtower midway along a wall segment, facing along it.
func (t *Triangulator) addTower(left, right geom.Vec3) {
	along := right.Sub(left)
	along.Y = 0
	t.mesh.Placements = append(t.mesh.Placements, Placement{
		Kind:     PlacementWallTower,
		CellID:   t.cellID,
		Position: left.Add(right).Scale(0.5),
		Forward:  along,
		Scale:    unitScale,
	})
}
