package world

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/lookout/internal/geom"
	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/metrics"
)

// ErrInvalidSize is returned when map dimensions are not positive multiples
// of the chunk size.
var ErrInvalidSize = errors.New("map size must be a positive multiple of the chunk size")

// Chunk is a fixed block of cells that is re-triangulated as a unit.
type Chunk struct {
	ID    int
	Cells []int
}

// Grid owns the cell arena, the chunk partition and the faction
// bookkeeping. It is not safe for concurrent mutation; read-only access
// from several goroutines is fine once mutation has stopped.
type Grid struct {
	width, height int
	chunkCountX   int
	chunkCountZ   int
	surface       *metrics.Surface

	cells  []Cell
	chunks []Chunk
	dirty  mapset.Set[int]

	bases  [3]int
	armies [3][]int
}

// NewGrid builds a width×height grid of flat grass cells. Every chunk
// starts dirty.
func NewGrid(width, height int, surface *metrics.Surface) (*Grid, error) {
	if width <= 0 || height <= 0 || width%metrics.ChunkSizeX != 0 || height%metrics.ChunkSizeZ != 0 {
		return nil, fmt.Errorf("new grid %dx%d: %w", width, height, ErrInvalidSize)
	}
	g := &Grid{
		width:       width,
		height:      height,
		chunkCountX: width / metrics.ChunkSizeX,
		chunkCountZ: height / metrics.ChunkSizeZ,
		surface:     surface,
		cells:       make([]Cell, width*height),
		dirty:       mapset.New[int](),
		bases:       [3]int{noNeighbor, noNeighbor, noNeighbor},
	}

	g.chunks = make([]Chunk, g.chunkCountX*g.chunkCountZ)
	for i := range g.chunks {
		g.chunks[i].ID = i
		g.chunks[i].Cells = make([]int, 0, metrics.ChunkSizeX*metrics.ChunkSizeZ)
	}

	for z, i := 0, 0; z < height; z++ {
		for x := 0; x < width; x++ {
			g.createCell(x, z, i)
			i++
		}
	}
	g.MarkAllDirty()
	return g, nil
}

func (g *Grid) createCell(x, z, i int) {
	c := &g.cells[i]
	c.id = i
	c.coord = hex.FromOffset(x, z)
	c.terrain = TerrainGrass
	c.neighbors = [6]int{noNeighbor, noNeighbor, noNeighbor, noNeighbor, noNeighbor, noNeighbor}
	c.position = hex.Center(x, z)
	g.updatePosition(c)

	if x > 0 {
		g.link(i, hex.W, i-1)
	}
	if z > 0 {
		if z&1 == 0 {
			g.link(i, hex.SE, i-g.width)
			if x > 0 {
				g.link(i, hex.SW, i-g.width-1)
			}
		} else {
			g.link(i, hex.SW, i-g.width)
			if x < g.width-1 {
				g.link(i, hex.SE, i-g.width+1)
			}
		}
	}

	chunkX := x / metrics.ChunkSizeX
	chunkZ := z / metrics.ChunkSizeZ
	c.chunk = chunkX + chunkZ*g.chunkCountX
	g.chunks[c.chunk].Cells = append(g.chunks[c.chunk].Cells, i)
}

func (g *Grid) link(a int, d hex.Direction, b int) {
	g.cells[a].neighbors[d] = b
	g.cells[b].neighbors[d.Opposite()] = a
}

// updatePosition places the cell center at its elevation plus the
// noise jitter for its location.
func (g *Grid) updatePosition(c *Cell) {
	p := c.position
	p.Y = float64(c.elevation)*metrics.ElevationStep + g.surface.ElevationJitter(p)
	c.position = p
}

func (g *Grid) Width() int                { return g.width }
func (g *Grid) Height() int               { return g.height }
func (g *Grid) ChunkCountX() int          { return g.chunkCountX }
func (g *Grid) ChunkCountZ() int          { return g.chunkCountZ }
func (g *Grid) Surface() *metrics.Surface { return g.surface }
func (g *Grid) Len() int                  { return len(g.cells) }
func (g *Grid) Chunks() []Chunk           { return g.chunks }

// Cell returns the cell with the given id, or nil when out of range.
func (g *Grid) Cell(id int) *Cell {
	if id < 0 || id >= len(g.cells) {
		return nil
	}
	return &g.cells[id]
}

// CellAt returns the cell at a cube coordinate, or nil outside the map.
func (g *Grid) CellAt(c hex.Coord) *Cell {
	x, z := c.Offset()
	if z < 0 || z >= g.height || x < 0 || x >= g.width {
		return nil
	}
	return &g.cells[x+z*g.width]
}

// CellAtPosition returns the cell under a world position.
func (g *Grid) CellAtPosition(p geom.Vec3) *Cell {
	return g.CellAt(hex.FromPosition(p))
}

// Neighbor returns the neighbor of a cell in direction d, or nil.
func (g *Grid) Neighbor(c *Cell, d hex.Direction) *Cell {
	id, ok := c.NeighborID(d)
	if !ok {
		return nil
	}
	return &g.cells[id]
}

// CellsWithin returns the cells within cube distance radius of the given
// cell, in row order. Coordinates outside the map are skipped.
func (g *Grid) CellsWithin(id, radius int) []*Cell {
	center := g.Cell(id)
	if center == nil || radius < 0 {
		return nil
	}
	var cells []*Cell
	for _, c := range hex.Disk(center.coord, radius) {
		if cell := g.CellAt(c); cell != nil {
			cells = append(cells, cell)
		}
	}
	return cells
}

// ElevationDifference returns the absolute elevation change towards the
// neighbor in direction d, or 0 when there is none.
func (g *Grid) ElevationDifference(c *Cell, d hex.Direction) int {
	n := g.Neighbor(c, d)
	if n == nil {
		return 0
	}
	diff := c.elevation - n.elevation
	if diff < 0 {
		return -diff
	}
	return diff
}

// EdgeType classifies the boundary between a cell and its neighbor.
func (g *Grid) EdgeType(c *Cell, d hex.Direction) metrics.EdgeType {
	n := g.Neighbor(c, d)
	if n == nil {
		return metrics.EdgeFlat
	}
	return metrics.EdgeTypeOf(c.elevation, n.elevation)
}

// BaseCell returns the id of the cell holding f's base.
func (g *Grid) BaseCell(f Faction) (int, bool) {
	if !f.Playable() || g.bases[f] == noNeighbor {
		return 0, false
	}
	return g.bases[f], true
}

// ArmyCells returns f's army start cells in insertion order.
func (g *Grid) ArmyCells(f Faction) []int {
	if !f.Playable() {
		return nil
	}
	return slices.Clone(g.armies[f])
}

// DirtyChunks returns the ids of chunks awaiting re-triangulation, sorted.
func (g *Grid) DirtyChunks() []int {
	ids := make([]int, 0, g.dirty.Size())
	g.dirty.Each(func(id int) {
		ids = append(ids, id)
	})
	slices.Sort(ids)
	return ids
}

// ClearDirty marks a chunk as up to date.
func (g *Grid) ClearDirty(chunk int) {
	g.dirty.Remove(chunk)
}

// MarkAllDirty schedules every chunk for re-triangulation.
func (g *Grid) MarkAllDirty() {
	for i := range g.chunks {
		g.dirty.Put(i)
	}
}

// refresh schedules the cell's chunk and any neighbor chunk that differs.
func (g *Grid) refresh(c *Cell) {
	g.dirty.Put(c.chunk)
	for _, n := range c.neighbors {
		if n != noNeighbor && g.cells[n].chunk != c.chunk {
			g.dirty.Put(g.cells[n].chunk)
		}
	}
}

func (g *Grid) refreshSelf(c *Cell) {
	g.dirty.Put(c.chunk)
}
