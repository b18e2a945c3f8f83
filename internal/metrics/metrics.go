// Package metrics is the surface parameter library: the fixed constants and
// pure functions that turn cell state into positions, terrace steps and edge
// classifications, plus the seeded noise and hash tables used for
// perturbation and feature placement.
package metrics

import (
	"github.com/talgya/lookout/internal/geom"
	"github.com/talgya/lookout/internal/hex"
)

// Solid region and blend band of a cell.
const (
	SolidFactor = 0.8
	BlendFactor = 1 - SolidFactor
)

// Elevation and terraces.
const (
	ElevationStep             = 3.0
	TerracesPerSlope          = 3
	TerraceSteps              = TerracesPerSlope*2 + 1
	HorizontalTerraceStepSize = 1.0 / TerraceSteps
	VerticalTerraceStepSize   = 1.0 / (TerracesPerSlope + 1)
)

// Rivers and water.
const (
	StreamBedElevationOffset = -1.75
	WaterElevationOffset     = -0.5
	WaterFactor              = 0.6
	WaterBlendFactor         = 1 - WaterFactor
)

// Perturbation.
const (
	CellPerturbStrength      = 4.0
	ElevationPerturbStrength = 1.5
	// NoiseScale converts world units to noise space.
	NoiseScale = 0.05
)

// Walls, towers and bridges.
const (
	WallHeight          = 4.0
	WallThickness       = 0.75
	WallElevationOffset = VerticalTerraceStepSize
	WallTowerThreshold  = 0.5
	WallYOffset         = -1.0
	BridgeDesignLength  = 7.0
)

// Chunk dimensions in cells.
const (
	ChunkSizeX = 5
	ChunkSizeZ = 5
)

// corners holds the seven outer corners of a pointy-top hexagon; the
// seventh repeats the first so corner d+1 never needs wrapping.
var corners = [7]geom.Vec3{
	{X: 0, Y: 0, Z: hex.OuterRadius},
	{X: hex.InnerRadius, Y: 0, Z: 0.5 * hex.OuterRadius},
	{X: hex.InnerRadius, Y: 0, Z: -0.5 * hex.OuterRadius},
	{X: 0, Y: 0, Z: -hex.OuterRadius},
	{X: -hex.InnerRadius, Y: 0, Z: -0.5 * hex.OuterRadius},
	{X: -hex.InnerRadius, Y: 0, Z: 0.5 * hex.OuterRadius},
	{X: 0, Y: 0, Z: hex.OuterRadius},
}

func FirstCorner(d hex.Direction) geom.Vec3  { return corners[d] }
func SecondCorner(d hex.Direction) geom.Vec3 { return corners[d+1] }

// FirstSolidCorner is the first corner of the solid (unblended) inner hexagon.
func FirstSolidCorner(d hex.Direction) geom.Vec3 {
	return corners[d].Scale(SolidFactor)
}

// SecondSolidCorner is the second corner of the solid inner hexagon.
func SecondSolidCorner(d hex.Direction) geom.Vec3 {
	return corners[d+1].Scale(SolidFactor)
}

// Bridge is the offset from a solid edge to the neighbor's solid edge.
func Bridge(d hex.Direction) geom.Vec3 {
	return corners[d].Add(corners[d+1]).Scale(BlendFactor)
}

// SolidEdgeMiddle is the midpoint of the solid edge facing d.
func SolidEdgeMiddle(d hex.Direction) geom.Vec3 {
	return corners[d].Add(corners[d+1]).Scale(0.5 * SolidFactor)
}

func FirstWaterCorner(d hex.Direction) geom.Vec3 {
	return corners[d].Scale(WaterFactor)
}

func SecondWaterCorner(d hex.Direction) geom.Vec3 {
	return corners[d+1].Scale(WaterFactor)
}

// WaterBridge spans the gap between two open water hexagons.
func WaterBridge(d hex.Direction) geom.Vec3 {
	return corners[d].Add(corners[d+1]).Scale(WaterBlendFactor)
}

// TerraceLerp interpolates between a and b for the given terrace step.
// Horizontal movement is linear in step; vertical movement only happens on
// odd steps, so each terrace has a flat tread followed by a riser.
func TerraceLerp(a, b geom.Vec3, step int) geom.Vec3 {
	h := float64(step) * HorizontalTerraceStepSize
	a.X += (b.X - a.X) * h
	a.Z += (b.Z - a.Z) * h
	v := float64((step+1)/2) * VerticalTerraceStepSize
	a.Y += (b.Y - a.Y) * v
	return a
}

// TerraceLerpColor blends colors linearly across terrace steps.
func TerraceLerpColor(a, b geom.Color, step int) geom.Color {
	return a.Lerp(b, float64(step)*HorizontalTerraceStepSize)
}

// EdgeType classifies the elevation relationship across a cell boundary.
type EdgeType uint8

const (
	EdgeFlat EdgeType = iota
	EdgeSlope
	EdgeCliff
)

func (t EdgeType) String() string {
	switch t {
	case EdgeFlat:
		return "Flat"
	case EdgeSlope:
		return "Slope"
	default:
		return "Cliff"
	}
}

// EdgeTypeOf returns Flat for equal elevations, Slope for a difference of
// one and Cliff otherwise.
func EdgeTypeOf(elevation1, elevation2 int) EdgeType {
	if elevation1 == elevation2 {
		return EdgeFlat
	}
	delta := elevation2 - elevation1
	if delta == 1 || delta == -1 {
		return EdgeSlope
	}
	return EdgeCliff
}

// featureThresholds[level-1][tier]: a hash below the threshold selects that tier.
var featureThresholds = [3][3]float64{
	{0.0, 0.0, 0.4},
	{0.0, 0.4, 0.6},
	{0.4, 0.6, 0.8},
}

// FeatureThresholds returns the tier thresholds for a density level in 1..3.
// Levels above 3 use the densest table.
func FeatureThresholds(level int) [3]float64 {
	if level > len(featureThresholds) {
		level = len(featureThresholds)
	}
	return featureThresholds[level-1]
}

// WallThicknessOffset returns half the wall thickness along the horizontal
// direction from near to far.
func WallThicknessOffset(near, far geom.Vec3) geom.Vec3 {
	offset := geom.Vec3{X: far.X - near.X, Z: far.Z - near.Z}
	return offset.Normalize().Scale(WallThickness * 0.5)
}

// WallLerp places a wall foot halfway between near and far, biased towards
// the lower side so walls sit on the first terrace.
func WallLerp(near, far geom.Vec3) geom.Vec3 {
	near.X += (far.X - near.X) * 0.5
	near.Z += (far.Z - near.Z) * 0.5
	v := 1 - WallElevationOffset
	if near.Y < far.Y {
		v = WallElevationOffset
	}
	near.Y += (far.Y-near.Y)*v + WallYOffset
	return near
}
