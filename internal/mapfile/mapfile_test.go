package mapfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/metrics"
	"github.com/talgya/lookout/internal/world"
)

const recordSize = 31

func sampleGrid(t *testing.T) *world.Grid {
	t.Helper()
	g, err := world.NewGrid(10, 10, metrics.NewSurface(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.SetTerrain(3, world.TerrainDesert)
	g.SetElevation(43, 3)
	g.SetElevation(44, 2)
	g.SetWaterLevel(80, 1)
	g.SetOutgoingRiver(43, hex.E)
	g.SetOutgoingRiver(44, hex.SE)
	g.AddRoad(11, hex.NE)
	g.AddRoad(11, hex.W)
	g.SetWalled(66, true)
	g.SetCity(66, true)
	g.SetUrbanLevel(66, 2)
	g.SetPlantLevel(67, 3)
	g.SetBase(20, world.FactionConfederate)
	g.SetBase(29, world.FactionUnion)
	g.SetArmy(30, world.FactionUnion)
	g.SetArmy(31, world.FactionUnion)
	return g
}

func TestRoundTrip(t *testing.T) {
	g := sampleGrid(t)
	g.SetFarmLevel(68, 2)

	var buf bytes.Buffer
	if err := Encode(&buf, g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 12+100*recordSize {
		t.Fatalf("expected %d bytes, got %d", 12+100*recordSize, buf.Len())
	}

	loaded, err := Decode(&buf, g.Surface())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Width() != 10 || loaded.Height() != 10 {
		t.Fatalf("expected 10x10, got %dx%d", loaded.Width(), loaded.Height())
	}

	want := g.Snapshot()
	for i := range want {
		want[i].FarmLevel = 0 // Not stored
	}
	if !slices.Equal(want, loaded.Snapshot()) {
		t.Fatalf("loaded grid differs from the saved one")
	}
	if got := loaded.ArmyCells(world.FactionUnion); !slices.Equal(got, []int{30, 31}) {
		t.Fatalf("expected Union armies [30 31], got %v", got)
	}
}

func TestHeaderLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleGrid(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := buf.Bytes()
	le := binary.LittleEndian
	if v := le.Uint32(b[0:]); v != Version {
		t.Fatalf("expected version %d, got %d", Version, v)
	}
	if w, h := le.Uint32(b[4:]), le.Uint32(b[8:]); w != 10 || h != 10 {
		t.Fatalf("expected 10x10 header, got %dx%d", w, h)
	}

	// Cell 44 flows south-east, in from the west.
	rec := b[12+44*recordSize:]
	if rec[24] != 128+uint8(hex.W) || rec[25] != 128+uint8(hex.SE) {
		t.Fatalf("expected river bytes %d/%d, got %d/%d", 128+hex.W, 128+hex.SE, rec[24], rec[25])
	}
}

func legacyFile(cells int, patch func(rec []byte, i int)) []byte {
	b := binary.LittleEndian.AppendUint32(nil, 0)
	for i := 0; i < cells; i++ {
		rec := make([]byte, recordSize)
		binary.LittleEndian.PutUint32(rec, uint32(world.TerrainGrass))
		if patch != nil {
			patch(rec, i)
		}
		b = append(b, rec...)
	}
	return b
}

func TestDecodeVersionZero(t *testing.T) {
	data := legacyFile(20*15, func(rec []byte, i int) {
		if i == 7 {
			binary.LittleEndian.PutUint32(rec[4:], 2)
		}
	})
	g, err := Decode(bytes.NewReader(data), metrics.NewSurface(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Width() != 20 || g.Height() != 15 {
		t.Fatalf("expected 20x15, got %dx%d", g.Width(), g.Height())
	}
	if g.Cell(7).Elevation() != 2 {
		t.Fatalf("expected elevation 2 on cell 7, got %d", g.Cell(7).Elevation())
	}
}

func TestDecodeErrors(t *testing.T) {
	unsupported := binary.LittleEndian.AppendUint32(nil, 2)
	badRiver := legacyFile(20*15, func(rec []byte, i int) {
		if i == 3 {
			rec[25] = 5
		}
	})
	truncated := legacyFile(20*15, nil)[:100]

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"version 2", unsupported, ErrUnsupportedVersion},
		{"river byte below 128", badRiver, ErrCorrupt},
		{"truncated cells", truncated, ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Decode(bytes.NewReader(tt.data), metrics.NewSurface(1))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if g != nil {
				t.Fatalf("expected no grid on error")
			}
		})
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "field.map")

	if _, err := LoadFile(path, metrics.NewSurface(1)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	g := sampleGrid(t)
	if err := SaveFile(path, g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := LoadFile(path, g.Surface())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(g.Snapshot(), loaded.Snapshot()) {
		t.Fatalf("loaded grid differs from the saved one")
	}
}
