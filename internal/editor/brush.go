// Package editor applies brush edits to a grid the way an interactive map
// editor would: a brush of a given radius, optional per-field changes and
// drag strokes that draw rivers and roads between adjacent cells.
package editor

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/lookout/internal/world"
)

// Toggle is a tri-state brush option.
type Toggle uint8

const (
	Ignore Toggle = iota
	Yes
	No
)

func (t Toggle) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "ignore"
	}
}

// ParseToggle accepts ignore, yes, no and the YAML booleans.
func ParseToggle(s string) (Toggle, error) {
	switch strings.ToLower(s) {
	case "", "ignore":
		return Ignore, nil
	case "yes", "true", "on":
		return Yes, nil
	case "no", "false", "off":
		return No, nil
	}
	return Ignore, fmt.Errorf("unknown toggle %q", s)
}

func (t *Toggle) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseToggle(n.Value)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// SpawnMode selects what the brush does with start positions.
type SpawnMode uint8

const (
	SpawnIgnore SpawnMode = iota
	SpawnBase
	SpawnArmy
	SpawnRemove // Clears both base and army
)

func (m SpawnMode) String() string {
	switch m {
	case SpawnBase:
		return "base"
	case SpawnArmy:
		return "army"
	case SpawnRemove:
		return "remove"
	default:
		return "ignore"
	}
}

func ParseSpawnMode(s string) (SpawnMode, error) {
	for _, m := range []SpawnMode{SpawnIgnore, SpawnBase, SpawnArmy, SpawnRemove} {
		if strings.EqualFold(m.String(), s) {
			return m, nil
		}
	}
	if s == "" {
		return SpawnIgnore, nil
	}
	return SpawnIgnore, fmt.Errorf("unknown spawn mode %q", s)
}

func (m *SpawnMode) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseSpawnMode(n.Value)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Brush describes one edit. Nil fields are left untouched.
type Brush struct {
	Size int // Cube radius around the pressed cell

	Terrain   *world.Terrain
	Elevation *int
	Water     *int
	Urban     *int
	Farm      *int
	Plant     *int

	River  Toggle // Yes draws along drags, No removes
	Road   Toggle
	Walled Toggle
	City   Toggle

	Spawn   SpawnMode
	Faction world.Faction
}

// Level is a helper for filling the optional brush fields.
func Level(v int) *int { return &v }

// TerrainOf is the Terrain counterpart of Level.
func TerrainOf(t world.Terrain) *world.Terrain { return &t }
