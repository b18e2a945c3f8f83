// Package mesh holds the output buffers of the triangulation engine. A
// Layer is one logical mesh (terrain, rivers, water, ...) made of vertices,
// triangle indices and optional per-vertex colors and UV channels.
package mesh

import (
	"encoding/binary"
	"math"

	"github.com/talgya/lookout/internal/geom"
)

// Perturber displaces vertices before they are stored.
type Perturber interface {
	Perturb(p geom.Vec3) geom.Vec3
}

// Flags select the optional per-vertex channels of a layer.
type Flags uint8

const (
	UseColors Flags = 1 << iota
	UseUV
	UseUV2
)

// Layer is a growable mesh buffer. Triangles index into Vertices; Colors,
// UV and UV2 run parallel to Vertices when the matching flag is set.
type Layer struct {
	Name      string
	Flags     Flags
	Vertices  []geom.Vec3
	Triangles []int32
	Colors    []geom.Color
	UV        []geom.Vec2
	UV2       []geom.Vec2

	perturber Perturber
}

// NewLayer returns an empty layer. A nil perturber stores vertices as given.
func NewLayer(name string, flags Flags, p Perturber) *Layer {
	return &Layer{Name: name, Flags: flags, perturber: p}
}

// Clear empties the buffers but keeps their capacity.
func (l *Layer) Clear() {
	l.Vertices = l.Vertices[:0]
	l.Triangles = l.Triangles[:0]
	l.Colors = l.Colors[:0]
	l.UV = l.UV[:0]
	l.UV2 = l.UV2[:0]
}

func (l *Layer) VertexCount() int   { return len(l.Vertices) }
func (l *Layer) TriangleCount() int { return len(l.Triangles) / 3 }
func (l *Layer) Empty() bool        { return len(l.Triangles) == 0 }

func (l *Layer) perturb(p geom.Vec3) geom.Vec3 {
	if l.perturber == nil {
		return p
	}
	return l.perturber.Perturb(p)
}

// AddTriangle adds a perturbed triangle.
func (l *Layer) AddTriangle(v1, v2, v3 geom.Vec3) {
	l.AddTriangleUnperturbed(l.perturb(v1), l.perturb(v2), l.perturb(v3))
}

// AddTriangleUnperturbed adds a triangle with its vertices as given.
func (l *Layer) AddTriangleUnperturbed(v1, v2, v3 geom.Vec3) {
	i := int32(len(l.Vertices))
	l.Vertices = append(l.Vertices, v1, v2, v3)
	l.Triangles = append(l.Triangles, i, i+1, i+2)
}

func (l *Layer) AddTriangleColor(c geom.Color) {
	l.Colors = append(l.Colors, c, c, c)
}

func (l *Layer) AddTriangleColors(c1, c2, c3 geom.Color) {
	l.Colors = append(l.Colors, c1, c2, c3)
}

func (l *Layer) AddTriangleUV(uv1, uv2, uv3 geom.Vec2) {
	l.UV = append(l.UV, uv1, uv2, uv3)
}

func (l *Layer) AddTriangleUV2(uv1, uv2, uv3 geom.Vec2) {
	l.UV2 = append(l.UV2, uv1, uv2, uv3)
}

// AddQuad adds a perturbed quad as the triangles (v1,v3,v2) and (v2,v3,v4).
func (l *Layer) AddQuad(v1, v2, v3, v4 geom.Vec3) {
	l.AddQuadUnperturbed(l.perturb(v1), l.perturb(v2), l.perturb(v3), l.perturb(v4))
}

// AddQuadUnperturbed adds a quad with its vertices as given.
func (l *Layer) AddQuadUnperturbed(v1, v2, v3, v4 geom.Vec3) {
	i := int32(len(l.Vertices))
	l.Vertices = append(l.Vertices, v1, v2, v3, v4)
	l.Triangles = append(l.Triangles, i, i+2, i+1, i+1, i+2, i+3)
}

func (l *Layer) AddQuadColor(c geom.Color) {
	l.Colors = append(l.Colors, c, c, c, c)
}

// AddQuadColors2 colors the first edge with c1 and the second with c2.
func (l *Layer) AddQuadColors2(c1, c2 geom.Color) {
	l.Colors = append(l.Colors, c1, c1, c2, c2)
}

func (l *Layer) AddQuadColors(c1, c2, c3, c4 geom.Color) {
	l.Colors = append(l.Colors, c1, c2, c3, c4)
}

func (l *Layer) AddQuadUV(uv1, uv2, uv3, uv4 geom.Vec2) {
	l.UV = append(l.UV, uv1, uv2, uv3, uv4)
}

// AddQuadUVRect maps the quad onto the rectangle [uMin,uMax]×[vMin,vMax].
func (l *Layer) AddQuadUVRect(uMin, uMax, vMin, vMax float64) {
	l.UV = append(l.UV,
		geom.V2(uMin, vMin), geom.V2(uMax, vMin),
		geom.V2(uMin, vMax), geom.V2(uMax, vMax))
}

func (l *Layer) AddQuadUV2(uv1, uv2, uv3, uv4 geom.Vec2) {
	l.UV2 = append(l.UV2, uv1, uv2, uv3, uv4)
}

// AppendBinary appends a little-endian dump of the layer: counts followed
// by every buffer in order. Equal layers always produce equal bytes.
func (l *Layer) AppendBinary(b []byte) []byte {
	le := binary.LittleEndian
	b = le.AppendUint32(b, uint32(len(l.Vertices)))
	b = le.AppendUint32(b, uint32(len(l.Triangles)))
	b = le.AppendUint32(b, uint32(len(l.Colors)))
	b = le.AppendUint32(b, uint32(len(l.UV)))
	b = le.AppendUint32(b, uint32(len(l.UV2)))
	for _, v := range l.Vertices {
		b = appendFloats(b, v.X, v.Y, v.Z)
	}
	for _, t := range l.Triangles {
		b = le.AppendUint32(b, uint32(t))
	}
	for _, c := range l.Colors {
		b = appendFloats(b, c.R, c.G, c.B, c.A)
	}
	for _, uv := range l.UV {
		b = appendFloats(b, uv.X, uv.Y)
	}
	for _, uv := range l.UV2 {
		b = appendFloats(b, uv.X, uv.Y)
	}
	return b
}

func appendFloats(b []byte, fs ...float64) []byte {
	for _, f := range fs {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(f))
	}
	return b
}
