package mesh

import (
	"bytes"
	"testing"

	"github.com/talgya/lookout/internal/geom"
)

type shift struct{ dx float64 }

func (s shift) Perturb(p geom.Vec3) geom.Vec3 {
	p.X += s.dx
	return p
}

func TestAddQuadWindingAndPerturbation(t *testing.T) {
	l := NewLayer("terrain", UseColors, shift{dx: 1})
	l.AddQuad(geom.V3(0, 0, 0), geom.V3(1, 0, 0), geom.V3(0, 0, 1), geom.V3(1, 0, 1))
	l.AddQuadColors2(geom.RGB(255, 0, 0), geom.RGB(0, 0, 255))

	want := []int32{0, 2, 1, 1, 2, 3}
	for i, idx := range want {
		if l.Triangles[i] != idx {
			t.Fatalf("expected triangles %v, got %v", want, l.Triangles)
		}
	}
	if l.Vertices[0].X != 1 || l.Vertices[3].X != 2 {
		t.Fatalf("expected perturbed vertices, got %v", l.Vertices)
	}
	if l.Colors[1] != geom.RGB(255, 0, 0) || l.Colors[2] != geom.RGB(0, 0, 255) {
		t.Fatalf("expected first edge red and second edge blue, got %v", l.Colors)
	}

	l.AddTriangleUnperturbed(geom.V3(5, 0, 0), geom.V3(6, 0, 0), geom.V3(5, 0, 1))
	if l.Vertices[4].X != 5 {
		t.Fatalf("unperturbed triangle should keep its vertices, got %v", l.Vertices[4])
	}
	if l.TriangleCount() != 3 || l.VertexCount() != 7 {
		t.Fatalf("expected 3 triangles over 7 vertices, got %d over %d", l.TriangleCount(), l.VertexCount())
	}
}

func TestQuadUVRect(t *testing.T) {
	l := NewLayer("rivers", UseUV, nil)
	l.AddQuadUVRect(0, 1, 0.4, 0.6)
	want := []geom.Vec2{geom.V2(0, 0.4), geom.V2(1, 0.4), geom.V2(0, 0.6), geom.V2(1, 0.6)}
	for i, uv := range want {
		if l.UV[i] != uv {
			t.Fatalf("expected %v, got %v", want, l.UV)
		}
	}
}

func TestAppendBinaryIsStable(t *testing.T) {
	build := func() *Layer {
		l := NewLayer("water", UseUV|UseUV2, nil)
		l.AddTriangle(geom.V3(0, 1, 0), geom.V3(1, 1, 0), geom.V3(0, 1, 1))
		l.AddTriangleUV(geom.V2(0, 0), geom.V2(1, 0), geom.V2(0, 1))
		l.AddTriangleUV2(geom.V2(0.5, 1.1), geom.V2(0, 0), geom.V2(1, 1))
		return l
	}
	a := build().AppendBinary(nil)
	b := build().AppendBinary(nil)
	if !bytes.Equal(a, b) {
		t.Fatalf("equal layers should dump equal bytes")
	}

	l := build()
	l.Clear()
	if !l.Empty() || l.VertexCount() != 0 || len(l.UV2) != 0 {
		t.Fatalf("clear should empty every buffer")
	}
	empty := l.AppendBinary(nil)
	if len(empty) != 5*4 {
		t.Fatalf("empty layer should dump only its counts, got %d bytes", len(empty))
	}
}
