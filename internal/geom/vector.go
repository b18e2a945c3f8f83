// Package geom provides the small vector and color types shared by the
// coordinate system, the surface library and the triangulation engine.
package geom

import "math"

// Vec3 is a point or direction in world space. Y is up.
type Vec3 struct {
	X, Y, Z float64
}

// V3 builds a Vec3.
func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (v Vec3) Add(o Vec3) Vec3         { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3         { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3    { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Len() float64            { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Distance(o Vec3) float64 { return v.Sub(o).Len() }

// Normalize returns the unit vector, or the zero vector for tiny inputs.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-10 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Lerp interpolates towards o. t is clamped to [0, 1].
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	t = Clamp01(t)
	return Vec3{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t, v.Z + (o.Z-v.Z)*t}
}

// WithY returns a copy of v with Y replaced.
func (v Vec3) WithY(y float64) Vec3 {
	v.Y = y
	return v
}

// Vec2 is a texture coordinate.
type Vec2 struct {
	X, Y float64
}

// V2 builds a Vec2.
func V2(x, y float64) Vec2 { return Vec2{x, y} }

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// RGB builds an opaque color from 0-255 channel values.
func RGB(r, g, b uint8) Color {
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255, 1}
}

// Lerp interpolates towards o. t is clamped to [0, 1].
func (c Color) Lerp(o Color, t float64) Color {
	t = Clamp01(t)
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

// Clamp01 limits t to the unit interval.
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
