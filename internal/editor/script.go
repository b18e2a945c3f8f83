package editor

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/world"
)

// Script is a recorded editing session: a list of strokes, each a brush
// dragged across a path of cells given in offset coordinates.
//
//	strokes:
//	  - brush: {size: 0, river: yes}
//	    cells: [{x: 3, z: 4}, {x: 4, z: 4}, {x: 5, z: 4}]
type Script struct {
	Strokes []Stroke `yaml:"strokes"`
}

type Stroke struct {
	Brush BrushSpec `yaml:"brush"`
	Cells []Point   `yaml:"cells"`
}

// Point is an offset coordinate.
type Point struct {
	X int `yaml:"x"`
	Z int `yaml:"z"`
}

// BrushSpec is the YAML form of a Brush. Terrain and faction are given by
// name.
type BrushSpec struct {
	Size      int       `yaml:"size"`
	Terrain   string    `yaml:"terrain"`
	Elevation *int      `yaml:"elevation"`
	Water     *int      `yaml:"water"`
	Urban     *int      `yaml:"urban"`
	Farm      *int      `yaml:"farm"`
	Plant     *int      `yaml:"plant"`
	River     Toggle    `yaml:"river"`
	Road      Toggle    `yaml:"road"`
	Walled    Toggle    `yaml:"walled"`
	City      Toggle    `yaml:"city"`
	Spawn     SpawnMode `yaml:"spawn"`
	Faction   string    `yaml:"faction"`
}

// Brush resolves the terrain and faction names.
func (s BrushSpec) Brush() (Brush, error) {
	b := Brush{
		Size:      s.Size,
		Elevation: s.Elevation,
		Water:     s.Water,
		Urban:     s.Urban,
		Farm:      s.Farm,
		Plant:     s.Plant,
		River:     s.River,
		Road:      s.Road,
		Walled:    s.Walled,
		City:      s.City,
		Spawn:     s.Spawn,
	}
	if s.Terrain != "" {
		t, ok := world.ParseTerrain(s.Terrain)
		if !ok {
			return Brush{}, fmt.Errorf("unknown terrain %q", s.Terrain)
		}
		b.Terrain = &t
	}
	if s.Faction != "" {
		f, ok := world.ParseFaction(s.Faction)
		if !ok {
			return Brush{}, fmt.Errorf("unknown faction %q", s.Faction)
		}
		b.Faction = f
	}
	return b, nil
}

// ParseScript decodes a YAML edit script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse edit script: %w", err)
	}
	return &s, nil
}

// LoadScript reads and decodes an edit script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read edit script: %w", err)
	}
	return ParseScript(data)
}

// Run plays every stroke of a script and returns the number of presses.
// A stroke that leaves the map stops the script with an error; the edits
// made so far stay applied.
func (e *Editor) Run(s *Script) (int, error) {
	presses := 0
	for i, st := range s.Strokes {
		b, err := st.Brush.Brush()
		if err != nil {
			return presses, fmt.Errorf("stroke %d: %w", i, err)
		}
		e.Brush = b
		e.Release()
		for _, p := range st.Cells {
			c := e.grid.CellAt(hex.FromOffset(p.X, p.Z))
			if c == nil {
				e.Release()
				return presses, fmt.Errorf("stroke %d: cell (%d, %d) is outside the map", i, p.X, p.Z)
			}
			e.Press(c.ID())
			presses++
		}
		e.Release()
	}
	slog.Debug("edit script applied", "strokes", len(s.Strokes), "presses", presses)
	return presses, nil
}
