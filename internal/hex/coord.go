// Package hex provides the cube coordinate system for the cell grid.
// Cells are pointy-top hexagons stored row-major in offset order; the
// third cube coordinate is derived: y = -x - z.
package hex

import (
	"fmt"
	"math"

	"github.com/talgya/lookout/internal/geom"
)

// Hexagon radii in world units.
const (
	OuterToInner = 0.866025404
	InnerToOuter = 1.0 / OuterToInner
	OuterRadius  = 10.0
	InnerRadius  = OuterRadius * OuterToInner
)

// Coord is a cube coordinate. Only X and Z are stored.
type Coord struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Y returns the implicit third cube coordinate.
func (c Coord) Y() int {
	return -c.X - c.Z
}

// FromOffset converts a storage column/row pair to cube coordinates.
func FromOffset(x, z int) Coord {
	return Coord{X: x - z/2, Z: z}
}

// Offset returns the storage column/row pair for c.
func (c Coord) Offset() (x, z int) {
	return c.X + c.Z/2, c.Z
}

// OffsetIndex returns the row-major storage index for a grid of the given width.
func (c Coord) OffsetIndex(width int) int {
	return c.Z*width + c.X + c.Z/2
}

// Center returns the unperturbed world position of the cell at column x, row z.
func Center(x, z int) geom.Vec3 {
	return geom.Vec3{
		X: (float64(x) + float64(z)*0.5 - float64(z/2)) * (InnerRadius * 2),
		Y: 0,
		Z: float64(z) * (OuterRadius * 1.5),
	}
}

// FromPosition returns the coordinate of the cell containing a world position.
// The Y component of the position is ignored.
func FromPosition(p geom.Vec3) Coord {
	x := p.X / (InnerRadius * 2)
	y := -x
	offset := p.Z / (OuterRadius * 3)
	x -= offset
	y -= offset

	iX := int(math.RoundToEven(x))
	iY := int(math.RoundToEven(y))
	iZ := int(math.RoundToEven(-x - y))

	if iX+iY+iZ != 0 {
		dX := math.Abs(x - float64(iX))
		dY := math.Abs(y - float64(iY))
		dZ := math.Abs(-x - y - float64(iZ))
		if dX > dY && dX > dZ {
			iX = -iY - iZ
		} else if dZ > dY {
			iZ = -iX - iY
		}
	}
	return Coord{X: iX, Z: iZ}
}

// Distance returns the cube distance between two coordinates.
func Distance(a, b Coord) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y() - b.Y())
	dz := abs(a.Z - b.Z)
	max := dx
	if dy > max {
		max = dy
	}
	if dz > max {
		max = dz
	}
	return max
}

// Disk returns every coordinate within cube distance radius of c, c included.
// Coordinates are ordered by Z then X so callers get a stable edit order.
func Disk(c Coord, radius int) []Coord {
	if radius < 0 {
		return nil
	}
	res := make([]Coord, 0, 1+3*radius*(radius+1))
	for dz := -radius; dz <= radius; dz++ {
		lo := max(-radius, -dz-radius)
		hi := min(radius, -dz+radius)
		for dx := lo; dx <= hi; dx++ {
			res = append(res, Coord{X: c.X + dx, Z: c.Z + dz})
		}
	}
	return res
}

// String formats the coordinate as (x, y, z).
func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y(), c.Z)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
