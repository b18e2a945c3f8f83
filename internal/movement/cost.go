// Package movement prices steps between adjacent cells and searches paths
// over those prices.
package movement

import (
	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/world"
)

// Cost surcharges.
const (
	wallCrossingCost = 3.0
	climbCost        = 1.0
	bridgeCost       = 1.0
)

// MinStepCost is the cheapest possible step: open ground along a road.
const MinStepCost = 0.5

// terrainCost is the base price of entering a cell.
func terrainCost(t world.Terrain) float64 {
	switch t {
	case world.TerrainForest, world.TerrainHills:
		return 2
	default:
		return 1
	}
}

// Cost returns the price of stepping into to from from, where d points from
// from towards to. Crossing a wall line without a road costs extra, as do
// climbing and crossing a bridge; a road on both sides of the edge halves
// the total.
func Cost(to, from *world.Cell, d hex.Direction) float64 {
	cost := terrainCost(to.Terrain())

	if from.Walled() != to.Walled() &&
		!from.HasRoadThroughEdge(d) && !to.HasRoadThroughEdge(d.Opposite()) {
		cost += wallCrossingCost
	}
	if to.Elevation()-from.Elevation() >= 1 {
		cost += climbCost
	}
	if to.HasBridge() {
		cost += bridgeCost
	}
	if from.HasRoadThroughEdge(d) && to.HasRoadThroughEdge(d.Opposite()) {
		cost *= 0.5
	}
	return cost
}
