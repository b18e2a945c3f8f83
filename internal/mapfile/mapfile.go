// Package mapfile reads and writes the binary map format. All values are
// little-endian. A file starts with an int32 format version; version 1
// follows it with the map width and height, version 0 files are always
// 20×15. Cell records follow in row order.
package mapfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/metrics"
	"github.com/talgya/lookout/internal/world"
)

// Version is the format version written by Encode.
const Version = 1

// Dimensions of maps saved before the header carried a size.
const (
	legacyWidth  = 20
	legacyHeight = 15
)

// maxCells bounds the cell count a header may claim.
const maxCells = 1 << 22

var (
	ErrUnsupportedVersion = errors.New("unsupported map format version")
	ErrNotFound           = errors.New("map file not found")
	ErrCorrupt            = errors.New("corrupt map data")
)

// riverNone marks a missing river edge; present edges are stored as
// direction + riverOffset.
const (
	riverNone   = 0
	riverOffset = 128
)

// cellRecord is the on-disk layout of one cell. Farm levels are not part
// of the format and load as zero.
type cellRecord struct {
	Terrain    int32
	Elevation  int32
	WaterLevel int32
	UrbanLevel uint8
	PlantLevel uint8
	Walled     bool
	Base       int32
	Army       int32
	City       bool
	Incoming   uint8
	Outgoing   uint8
	Roads      uint8
}

func encodeRiver(has bool, d hex.Direction) uint8 {
	if !has {
		return riverNone
	}
	return uint8(d) + riverOffset
}

func decodeRiver(b uint8) (bool, hex.Direction, error) {
	if b == riverNone {
		return false, 0, nil
	}
	d := hex.Direction(b - riverOffset)
	if b < riverOffset || !d.Valid() {
		return false, 0, fmt.Errorf("river byte %d: %w", b, ErrCorrupt)
	}
	return true, d, nil
}

func toRecord(s world.CellState) cellRecord {
	return cellRecord{
		Terrain:    int32(s.Terrain),
		Elevation:  int32(s.Elevation),
		WaterLevel: int32(s.WaterLevel),
		UrbanLevel: uint8(s.UrbanLevel),
		PlantLevel: uint8(s.PlantLevel),
		Walled:     s.Walled,
		Base:       int32(s.Base),
		Army:       int32(s.Army),
		City:       s.City,
		Incoming:   encodeRiver(s.HasIncoming, s.Incoming),
		Outgoing:   encodeRiver(s.HasOutgoing, s.Outgoing),
		Roads:      s.Roads,
	}
}

func fromRecord(r cellRecord) (world.CellState, error) {
	s := world.CellState{
		Terrain:    world.Terrain(r.Terrain),
		Elevation:  int(r.Elevation),
		WaterLevel: int(r.WaterLevel),
		UrbanLevel: int(r.UrbanLevel),
		PlantLevel: int(r.PlantLevel),
		Walled:     r.Walled,
		Base:       world.Faction(r.Base),
		Army:       world.Faction(r.Army),
		City:       r.City,
		Roads:      r.Roads & 0x3f,
	}
	var err error
	if s.HasIncoming, s.Incoming, err = decodeRiver(r.Incoming); err != nil {
		return s, err
	}
	if s.HasOutgoing, s.Outgoing, err = decodeRiver(r.Outgoing); err != nil {
		return s, err
	}
	return s, nil
}

// Encode writes g in the current format version.
func Encode(w io.Writer, g *world.Grid) error {
	bw := bufio.NewWriter(w)
	header := [3]int32{Version, int32(g.Width()), int32(g.Height())}
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, s := range g.Snapshot() {
		if err := binary.Write(bw, binary.LittleEndian, toRecord(s)); err != nil {
			return fmt.Errorf("write cell %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush map: %w", err)
	}
	return nil
}

// Decode reads a map and builds a new grid on surface. Nothing is built
// unless the whole file reads cleanly.
func Decode(r io.Reader, surface *metrics.Surface) (*world.Grid, error) {
	br := bufio.NewReader(r)
	le := binary.LittleEndian

	var version int32
	if err := binary.Read(br, le, &version); err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}

	width, height := legacyWidth, legacyHeight
	switch version {
	case 0:
	case 1:
		var size [2]int32
		if err := binary.Read(br, le, &size); err != nil {
			return nil, fmt.Errorf("read size: %w", err)
		}
		width, height = int(size[0]), int(size[1])
	default:
		return nil, fmt.Errorf("version %d: %w", version, ErrUnsupportedVersion)
	}
	if width <= 0 || height <= 0 || width*height > maxCells {
		return nil, fmt.Errorf("map size %dx%d: %w", width, height, ErrCorrupt)
	}

	states := make([]world.CellState, width*height)
	for i := range states {
		var rec cellRecord
		if err := binary.Read(br, le, &rec); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				err = ErrCorrupt
			}
			return nil, fmt.Errorf("read cell %d: %w", i, err)
		}
		s, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		states[i] = s
	}

	g, err := world.RestoreGrid(width, height, surface, states)
	if err != nil {
		return nil, fmt.Errorf("restore map: %w", err)
	}
	return g, nil
}

// SaveFile writes g to path, replacing any existing file only once the new
// contents are complete.
func SaveFile(path string, g *world.Grid) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create map file: %w", err)
	}
	if err := Encode(f, g); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close map file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace map file: %w", err)
	}
	return nil
}

// LoadFile reads the map at path. A missing file yields ErrNotFound.
func LoadFile(path string, surface *metrics.Surface) (*world.Grid, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open map file: %w", err)
	}
	defer f.Close()
	return Decode(f, surface)
}
