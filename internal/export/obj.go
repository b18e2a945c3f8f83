// Package export writes chunk meshes in Wavefront OBJ form for inspection
// in external tools.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/talgya/lookout/internal/mesh"
	"github.com/talgya/lookout/internal/triangulate"
)

// OBJWriter streams layers into a single OBJ file. Indices in OBJ are
// global, so the writer tracks how many vertices and UVs came before.
type OBJWriter struct {
	w        *bufio.Writer
	vertices int
	uvs      int
	buf      []byte
}

func NewOBJWriter(w io.Writer) *OBJWriter {
	return &OBJWriter{w: bufio.NewWriter(w)}
}

// WriteChunk writes every non-empty layer of a chunk as its own object
// and lists the placements as comments. Coordinates are written as
// stored: Y up, left-handed.
func (o *OBJWriter) WriteChunk(m *triangulate.ChunkMesh) error {
	for _, l := range m.Layers() {
		if l.Empty() {
			continue
		}
		if err := o.WriteLayer(fmt.Sprintf("chunk%d_%s", m.Chunk, l.Name), l); err != nil {
			return err
		}
	}
	for _, p := range m.Placements {
		_, err := fmt.Fprintf(o.w, "# placement %s cell=%d tier=%d at %g %g %g\n",
			p.Kind, p.CellID, p.Tier, p.Position.X, p.Position.Y, p.Position.Z)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteLayer writes one layer as an object. Vertex colors are appended to
// the vertex lines when the layer has them.
func (o *OBJWriter) WriteLayer(name string, l *mesh.Layer) error {
	if _, err := fmt.Fprintf(o.w, "o %s\n", name); err != nil {
		return err
	}
	colors := len(l.Colors) == len(l.Vertices)
	for i, v := range l.Vertices {
		b := append(o.buf[:0], "v "...)
		b = appendFloats(b, v.X, v.Y, v.Z)
		if colors {
			c := l.Colors[i]
			b = append(b, ' ')
			b = appendFloats(b, c.R, c.G, c.B)
		}
		b = append(b, '\n')
		o.buf = b
		if _, err := o.w.Write(b); err != nil {
			return err
		}
	}
	uv := len(l.UV) == len(l.Vertices)
	if uv {
		for _, t := range l.UV {
			b := append(o.buf[:0], "vt "...)
			b = appendFloats(b, t.X, t.Y)
			b = append(b, '\n')
			o.buf = b
			if _, err := o.w.Write(b); err != nil {
				return err
			}
		}
	}
	for i := 0; i+2 < len(l.Triangles); i += 3 {
		b := append(o.buf[:0], 'f')
		for _, idx := range l.Triangles[i : i+3] {
			b = append(b, ' ')
			b = strconv.AppendInt(b, int64(o.vertices)+int64(idx)+1, 10)
			if uv {
				b = append(b, '/')
				b = strconv.AppendInt(b, int64(o.uvs)+int64(idx)+1, 10)
			}
		}
		b = append(b, '\n')
		o.buf = b
		if _, err := o.w.Write(b); err != nil {
			return err
		}
	}
	o.vertices += len(l.Vertices)
	if uv {
		o.uvs += len(l.UV)
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (o *OBJWriter) Flush() error {
	return o.w.Flush()
}

// WriteFile exports meshes into one OBJ file at path.
func WriteFile(path string, meshes []*triangulate.ChunkMesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create obj file: %w", err)
	}
	o := NewOBJWriter(f)
	for _, m := range meshes {
		if m == nil {
			continue
		}
		if err := o.WriteChunk(m); err != nil {
			f.Close()
			return fmt.Errorf("write chunk %d: %w", m.Chunk, err)
		}
	}
	if err := o.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush obj file: %w", err)
	}
	return f.Close()
}

func appendFloats(b []byte, fs ...float64) []byte {
	for i, f := range fs {
		if i > 0 {
			b = append(b, ' ')
		}
		b = strconv.AppendFloat(b, f, 'f', 4, 64)
	}
	return b
}
